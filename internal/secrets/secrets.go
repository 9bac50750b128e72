// Copyright Matt King, 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text
// files. Each file is one secret: the filename is the key and the
// trimmed contents are the value. The toolkit knows three keys, the
// Notion integration token and database ID for catalog sync and the
// contact address CrossRef asks polite-pool clients to send.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Well-known key files under .secrets/.
const (
	KeyNotionAPIKey     = "notion-api-key"
	KeyNotionDatabaseID = "notion-database-id"
	KeyCrossrefMailto   = "crossref-mailto"
)

// Store maps key-file names to their trimmed values.
type Store map[string]string

// Get returns the value for key, or fallback when the key is absent.
func (s Store) Get(key, fallback string) string {
	if v := s[key]; v != "" {
		return v
	}
	return fallback
}

func (s Store) NotionAPIKey() string     { return s[KeyNotionAPIKey] }
func (s Store) NotionDatabaseID() string { return s[KeyNotionDatabaseID] }
func (s Store) CrossrefMailto() string   { return s[KeyCrossrefMailto] }

// Load reads every file in dir into a Store. A missing directory is not
// an error; Load returns an empty store. Unreadable files produce a
// warning on stderr but do not abort, so one bad key cannot block a
// command that needs a different one.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return Store{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := Store{}
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
			s[name] = value
		}
	}
	return s, nil
}
