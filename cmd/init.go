package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gosh-shell/gosh/core/config"
)

// initCmd initializes the shell configuration directory.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration directory.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		_, err := config.Initialize(cfgPath, cmd.ErrOrStderr())
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
