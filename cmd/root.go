// Package cmd implements the chat server's command line.
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"chatapp/server/internal/config"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
)

// v holds the layered configuration: defaults, environment, then flags.
var v = config.New()

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chatserver",
	Short: "Runs the chat backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("env-file", ".env",
		"Path of the .env file to load before reading the environment")

	rootCmd.PersistentFlags().StringP("log-level", "v", "info",
		"Log level: trace, debug, info, warn or error")
	v.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("store", config.DriverMemory,
		"Store backend: memory, postgres or mongo")
	v.BindPFlag(config.KeyStoreDriver, rootCmd.PersistentFlags().Lookup("store"))

	rootCmd.PersistentFlags().String("database-url", "",
		"PostgreSQL connection URL, for the postgres store")
	v.BindPFlag(config.KeyDatabaseURL, rootCmd.PersistentFlags().Lookup("database-url"))

	rootCmd.PersistentFlags().String("mongodb-uri", "",
		"MongoDB connection URI, for the mongo store")
	v.BindPFlag(config.KeyMongoURI, rootCmd.PersistentFlags().Lookup("mongodb-uri"))
}

// initConfig loads the .env file before any command reads the environment.
func initConfig() {
	envFile, _ := rootCmd.PersistentFlags().GetString("env-file")
	config.LoadEnvFile(envFile)
	initLog(v.GetString(config.KeyLogLevel))
}

func initLog(level string) {
	switch level {
	case "trace":
		jww.SetStdoutThreshold(jww.LevelTrace)
		jww.SetFlags(log.LstdFlags | log.Lmicroseconds)
	case "debug":
		jww.SetStdoutThreshold(jww.LevelDebug)
		jww.SetFlags(log.LstdFlags | log.Lmicroseconds)
	case "warn":
		jww.SetStdoutThreshold(jww.LevelWarn)
	case "error":
		jww.SetStdoutThreshold(jww.LevelError)
	default:
		jww.SetStdoutThreshold(jww.LevelInfo)
	}
	jww.INFO.Printf("log level set to: %s", level)
}
