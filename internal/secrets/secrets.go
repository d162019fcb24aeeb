// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads API credentials from a directory of plain-text
// files, one secret per file: the filename names the key and the trimmed
// file body is its value. The translation stage looks up deepseek-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load collects the secrets under dir. A directory that does not exist
// yields an empty map, not an error, so runs without secrets work as long
// as no stage needs a key. Files that cannot be read are skipped with a
// stderr warning; dotfiles and subdirectories are ignored.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}

	return out, nil
}
