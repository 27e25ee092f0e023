// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the counsel CLI, a research
// assistant for Kenyan law. The research pipeline retrieves from the
// local corpus, then summarizes, reasons, and formats through the
// configured generative backends.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/legalizeme/counsel/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the counsel CLI.
var rootCmd = &cobra.Command{
	Use:   "counsel",
	Short: "Legal research assistant for Kenyan law",
	Long: `counsel answers questions about Kenyan law by retrieving from a local
document corpus and running a four-stage research pipeline: retrieve,
summarize, reason, format. Generative backends are tried in priority
order with automatic fallback.

Corpus management and research are subcommands: "corpus ingest" indexes
source documents, "corpus search" queries the index directly, and
"research" runs the full pipeline.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./counsel.yaml or ~/.config/counsel/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("counsel")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "counsel"))
		}
	}

	viper.SetEnvPrefix("COUNSEL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
