package main

import (
	"fmt"
	"os"

	"beta-dashboard/config"
	"beta-dashboard/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "betadash",
	Short: "Global Banking Beta Dashboard",
	Long: `betadash serves a dashboard of banking-index and bank-level betas across
countries, with a localized glossary (English, Tamil, Hindi), a choropleth map,
a regional summary and filterable bank tables.

Bank betas are read from beta_comparison.json in the data directory when present
and can be replaced per browser session by uploading JSON documents.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath
		}
		var err error
		cfg, err = config.Load(path, configPath != "")
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		logger, err = logging.New(logging.Options{Level: cfg.Log.Level, Development: cfg.Log.Development})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config file (default betadash.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, renderCmd, checkCmd, initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
