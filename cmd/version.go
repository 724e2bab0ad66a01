package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tristendillon/depcheck/core/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version of depcheck",
	Long:  `Displays the version of depcheck.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "depcheck %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
