package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tranvictor/bridgekit/ui"
)

const (
	VERSION string = "0.1.0"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show bridgekit version",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		u := ui.NewTerminalUI(cmd.OutOrStdout(), cmd.InOrStdin())
		u.Info("Version: %s", VERSION)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
