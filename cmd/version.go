package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Change this value to set the version for this build
const currentVersion = "1.0.0"

// Version returns the version string printed by the version command.
func Version() string {
	return fmt.Sprintf("Chat server v%s (%s)\n", currentVersion, runtime.Version())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of the chat server",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
