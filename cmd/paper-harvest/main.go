// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-harvest CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-harvest/internal/logutil"
	"github.com/pdiddy/paper-harvest/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from the secrets directory at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when it is non-empty, or the secret value
// for key otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the paper-harvest CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-harvest",
	Short: "Crawl, translate, and export academic article abstracts",
	Long: `paper-harvest walks paginated article listings, extracts bibliographic
metadata and English abstracts into a SQLite database, enriches the records
with Simplified Chinese translations through an OpenAI-compatible chat API,
and exports the result as CSV, JSON Lines, or labeled text.

Each stage is a subcommand: crawl, translate, and export. Stages share the
database, so an interrupted crawl resumes where it stopped and translation
can run long after the crawl that produced the records.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir)
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-harvest.yaml or ~/.config/paper-harvest/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of plain-text secret files")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-harvest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-harvest"))
		}
	}

	viper.SetEnvPrefix("PAPER_HARVEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags makes every flag of cmd resolvable through viper, so values fall
// back from explicit flag to environment or config file to the flag default.
func bindFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// newRunLogger builds the stderr logger for one command invocation. Every
// event carries the component name and a fresh run ID.
func newRunLogger(component string) zerolog.Logger {
	log := logutil.New(os.Stderr, viper.GetString("log-level")).
		With().Str("run", uuid.NewString()).Logger()
	return logutil.WithComponent(log, component)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
