// Package commands implements the typeforge command line.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/typeforge/config"
	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/logger"
)

var (
	configPath string
	workDir    string
	jsonLogs   bool
)

// RootCmd is the typeforge command.
var RootCmd = &cobra.Command{
	Use:   "typeforge",
	Short: "Compile type definitions into Python, Rust and TypeScript",
	Long: `typeforge compiles a language-neutral type graph into matching type
definitions for several target languages, so that values serialized by one
side deserialize on the other.

The type graph is read from an IR document (JSON, YAML or TOML) or from the
exported types of a Go package.

Available commands:
  generate - Write generated files and the lock manifest
  check    - Verify generated files are up to date
  watch    - Regenerate when the input changes
  ir       - Print or convert the type graph
  version  - Show version information

Examples:
  typeforge generate                        # Use typeforge.toml
  typeforge generate -i types.yaml -t rust  # One target, no config file
  typeforge check                           # Exit 1 when stale`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if workDir != "" && workDir != "." {
			if err := os.Chdir(workDir); err != nil {
				return errors.Wrapf(err, "failed to change to %s", workDir)
			}
		}
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	RootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (default: search upward for typeforge.toml)")
	RootCmd.PersistentFlags().StringVarP(&workDir, "dir", "C", ".", "Directory to run in")
	RootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")

	RootCmd.AddCommand(GenerateCmd)
	RootCmd.AddCommand(CheckCmd)
	RootCmd.AddCommand(WatchCmd)
	RootCmd.AddCommand(IRCmd)
	RootCmd.AddCommand(VersionCmd)
}

// loadConfig reads the explicit --config file or searches from --dir.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load(".")
}

// errStale marks a check that found differences.
var errStale = errors.New("generated files are out of date")

// ExitCode maps a command error to the process exit code:
// 1 when generated files are stale or a target failed, 2 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errStale), errors.Is(err, errTargetsFailed):
		return 1
	}
	return 2
}
