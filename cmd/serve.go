package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatapp/server/internal/config"
	"chatapp/server/internal/conversation"
	"chatapp/server/internal/database"
	"chatapp/server/internal/handlers"
	"chatapp/server/internal/routes"
	"chatapp/server/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := database.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer database.Close(st)

		app := newApp(cfg, st)

		errCh := make(chan error, 1)
		go func() {
			jww.INFO.Printf("Server starting on port %s", cfg.Port)
			errCh <- app.Listen(":" + cfg.Port)
		}()

		select {
		case err := <-errCh:
			return errors.Wrap(err, "server stopped")
		case <-ctx.Done():
		}

		jww.INFO.Printf("Shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	},
}

func init() {
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	v.BindPFlag(config.KeyPort, serveCmd.Flags().Lookup("port"))

	serveCmd.Flags().Int64("user", 1, "Id of the user the server acts for")
	v.BindPFlag(config.KeyCurrentUserID, serveCmd.Flags().Lookup("user"))

	serveCmd.Flags().Bool("seed", true, "Write demo data into an empty store")
	v.BindPFlag(config.KeySeed, serveCmd.Flags().Lookup("seed"))

	rootCmd.AddCommand(serveCmd)
}

func newApp(cfg *config.Config, st store.Store) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Chat API",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))

	svc := conversation.New(st, conversation.WithTimeout(cfg.StoreTimeout))
	routes.SetupRoutes(app, handlers.New(svc, st, cfg.UploadDir), cfg.CurrentUserID)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	if code >= fiber.StatusInternalServerError {
		jww.ERROR.Printf("%s %s: %+v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}
