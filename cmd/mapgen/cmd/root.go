package cmd

import (
	"fmt"
	"os"

	"github.com/Togather-Foundation/mapgen/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "mapgen",
		Short: "mapgen - fill layers with static map images",
		Long: `mapgen geocodes an address and fills a layer with a static map image
from Mapbox or Esri ArcGIS Online.

Settings entered in the dialog can be remembered per provider and are
pre-filled the next time the same provider is used.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	addPersistentFlags(rootCmd)

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

func addPersistentFlags(c *cobra.Command) {
	c.PersistentFlags().StringVar(&configPath, "config", "", "config file path (optional, uses MAPGEN_* env vars by default)")
	c.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	c.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: console)")
}

// loadConfig loads the configuration and applies the global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}
