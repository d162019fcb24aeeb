// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-harvest/internal/store"
	"github.com/pdiddy/paper-harvest/internal/translate"
	"github.com/pdiddy/paper-harvest/pkg/types"
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate stored English abstracts to Simplified Chinese",
	Long: `Translate walks the stored records that have an English abstract but no
Chinese one and fills the gap through an OpenAI-compatible chat-completions
API. Identical abstracts are translated once and the result is shared,
so re-running after a partial failure only pays for what is still missing.

The API key is taken from --api-key, then the DEEPSEEK_API_KEY environment
variable, then a deepseek-api-key file in the secrets directory.`,
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().String("db", defaultDBPath, "SQLite database file")
	translateCmd.Flags().String("model", "", "chat-completions model identifier (e.g. deepseek-chat)")
	translateCmd.Flags().String("base-url", translate.DefaultBaseURL, "OpenAI-compatible API root")
	translateCmd.Flags().String("api-key", "", "API key for the translation service")
	translateCmd.Flags().Int("max-items", 0, "maximum records to translate (0 = all pending)")
	translateCmd.Flags().Int("concurrency", defaultConcurrency, "maximum in-flight translation requests")
	translateCmd.Flags().Float64("rate", defaultRate, "request pacing in requests per second (0 = unlimited)")

	rootCmd.AddCommand(translateCmd)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}

	model := viper.GetString("model")
	if model == "" {
		return fmt.Errorf("--model is required")
	}

	apiKey := viper.GetString("api-key")
	if apiKey == "" {
		apiKey = os.Getenv("DEEPSEEK_API_KEY")
	}
	apiKey = secretDefault("deepseek-api-key", apiKey)
	if apiKey == "" {
		return fmt.Errorf("no API key: use --api-key, DEEPSEEK_API_KEY, or a deepseek-api-key secrets file")
	}

	cfg := types.TranslateConfig{
		DBPath:      viper.GetString("db"),
		Model:       model,
		BaseURL:     viper.GetString("base-url"),
		APIKey:      apiKey,
		MaxItems:    viper.GetInt("max-items"),
		Concurrency: viper.GetInt("concurrency"),
		Rate:        viper.GetFloat64("rate"),
	}

	log := newRunLogger("translate")

	s, err := store.NewStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	backend := &translate.DeepSeekBackend{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
	}

	summary, err := translate.New(s, backend, cfg, log).Run(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d translation(s) failed", summary.Failed)
	}
	return nil
}
