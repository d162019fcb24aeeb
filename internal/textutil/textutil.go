// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil provides the whitespace normalization and content
// hashing shared by the crawl, translation, and store layers.
package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Clean collapses every run of whitespace to a single space and trims the
// ends. An all-whitespace input yields "".
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Hash returns the lowercase hex SHA-256 digest of s. Abstracts are hashed
// after cleaning, so equal cleaned text always yields equal digests.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
