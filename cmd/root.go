package cmd

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gosh-shell/gosh/core/config"
	"github.com/gosh-shell/gosh/core/shell"
)

var (
	cfgPath     string
	commandLine string
)

func defaultConfigPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".gosh")
	}
	return ".gosh"
}

// loadConfig reads the configuration directory, falling back to defaults
// when none has been initialized yet.
func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Initialize(cfgPath, os.Stderr)
	}
	return configuration, err
}

// rootCmd represents the base command when called without any subcommands:
// an interactive shell, a -c command string, or a script file.
var rootCmd = &cobra.Command{
	Use:   "gosh [script]",
	Short: "A shell with first-class pipeline handles.",
	Long: `gosh is an interactive shell whose pipelines are real objects:
they can be captured, waited on, suspended and resumed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		sh, err := shell.New(configuration, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		switch {
		case commandLine != "":
			os.Exit(sh.EvalReader(strings.NewReader(commandLine)))
		case len(args) == 1:
			fd, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer fd.Close()
			os.Exit(sh.EvalReader(fd))
		default:
			os.Exit(sh.Run())
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "config path")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "run a command string and exit")
}
