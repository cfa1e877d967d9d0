package cmd

import (
	"fmt"
	"time"

	"chatapp/server/internal/config"
	"chatapp/server/internal/conversation"
	"chatapp/server/internal/database"
	"chatapp/server/internal/models"
	"chatapp/server/internal/store"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Writes the demo users, contacts and messages into an empty store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		cfg.Seed = false

		st, err := database.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer database.Close(st)

		seeded, err := store.Seed(cmd.Context(), st, time.Now())
		if err != nil {
			return err
		}
		if !seeded {
			fmt.Println("Store already has users, nothing to do")
			return nil
		}
		fmt.Println("Seeded demo data")
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manages users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create USERNAME NAME",
	Short: "Registers a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		cfg.Seed = false

		st, err := database.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer database.Close(st)

		in := models.InsertUser{Username: args[0], Name: args[1]}
		if avatar, _ := cmd.Flags().GetString("avatar"); avatar != "" {
			in.Avatar = &avatar
		}

		svc := conversation.New(st, conversation.WithTimeout(cfg.StoreTimeout))
		user, err := svc.RegisterUser(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Printf("Created user %d (%s)\n", user.ID, user.Username)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().String("avatar", "", "Avatar URL")

	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(seedCmd, userCmd)
}
