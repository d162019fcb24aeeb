// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-harvest/internal/export"
	"github.com/pdiddy/paper-harvest/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored articles to csv, jsonl, or txt",
	Long: `Export writes the stored article records to a file. CSV output carries a
UTF-8 byte order mark so spreadsheet tools render the Chinese abstracts
correctly; jsonl emits one JSON object per record; txt is a labeled
human-readable block per record.

With --search-url only the records crawled from that listing are exported.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("db", defaultDBPath, "SQLite database file")
	exportCmd.Flags().String("format", "", "output format: csv, jsonl, or txt")
	exportCmd.Flags().String("out", "", "output file path")
	exportCmd.Flags().String("search-url", "", "restrict the export to one listing's records")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}

	rawFormat := viper.GetString("format")
	if rawFormat == "" {
		return fmt.Errorf("--format is required")
	}
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return err
	}
	outPath := viper.GetString("out")
	if outPath == "" {
		return fmt.Errorf("--out is required")
	}

	s, err := store.NewStore(viper.GetString("db"))
	if err != nil {
		return err
	}
	defer s.Close()

	rows, err := s.ArticlesForExport(context.Background(), viper.GetString("search-url"))
	if err != nil {
		return err
	}
	if err := export.WriteFile(outPath, format, rows); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "exported %d articles to %s\n", len(rows), outPath)
	return nil
}
