package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recall-project/recall/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config <command>",
	Short: "Manage recall configuration",
	Long: `Manage recall configuration stored in ` + config.DefaultFileName + `.

Configuration options:
  history.display_limit - Cap on history listing length (0 = unlimited)
  search.max_results    - Cap on ranked search output (0 = unlimited)
  export.path           - Default timeline export file
  logging.level         - Log level (debug, info, warn, error)
  logging.format        - Log format (json, text)

Available commands:
  show - Show current configuration
  init - Write a default configuration file`,
	DisableFlagsInUseLine: true,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			fmtErr("load config: %v", err)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(cfg)
			return
		}

		fmt.Println("# recall configuration")
		fmt.Printf("# Location: %s\n\n", configPath)
		fmt.Printf("history.display_limit: %d\n", cfg.History.DisplayLimit)
		fmt.Printf("search.max_results: %d\n", cfg.Search.MaxResults)
		fmt.Printf("export.path: %s\n", cfg.Export.Path)
		fmt.Printf("logging.level: %s\n", cfg.Logging.Level)
		fmt.Printf("logging.format: %s\n", cfg.Logging.Format)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat(configPath); err == nil {
			fmtErr("config file already exists: %s", configPath)
			os.Exit(1)
		}
		if err := config.Save(configPath, config.Default()); err != nil {
			fmtErr("write config: %v", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", configPath)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
