package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recall-project/recall/pkg/color"
	"github.com/recall-project/recall/pkg/config"
	"github.com/recall-project/recall/pkg/logging"
)

var (
	jsonOutput bool
	noColor    bool
	configPath string

	rootCmd = &cobra.Command{
		Use:   "recall",
		Short: "recall - reversible-action history engine",
		Long: `recall is a two-tier undo/redo engine: a linear stack for global
undo/redo plus an addressable audit timeline that can selectively undo
or redo any past event out of chronological order, with fuzzy relevance
search over records and events.

State is in-memory and scoped to one open document per process; use the
interactive shell to work against a live session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			color.Init(noColor)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultFileName, "path to config file")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// loadConfig loads the effective configuration and applies its logging
// settings to the global logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(logging.Level(cfg.Logging.Level))
	if cfg.Logging.Format == "text" {
		logger.SetFormat(logging.FormatText)
	}
	logging.SetGlobal(logger)
	return cfg, nil
}

// outputJSON prints v as JSON if --json flag is set, otherwise does nothing.
func outputJSON(v any) error {
	if !jsonOutput {
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fmtErr prints a formatted error message to stderr.
func fmtErr(format string, args ...any) {
	fmt.Fprintln(os.Stderr, color.Errorf(format, args...))
}
