// Package config provides configuration structures for the term index server.
// It defines per-index settings and the server configuration file.
package config

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	DefaultMaxEdits      = 1
	DefaultMaxEditsLimit = 3
	DefaultMaxResults    = 100
	DefaultBuildShards   = 4

	// MaxBuildShards bounds how many tries a sharded build may hold at once.
	MaxBuildShards = 64
)

// validIndexName matches names that are safe to use as a directory name.
var validIndexName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,127}$`)

// IndexSettings contains all configuration options for a term index.
//
// Queries that do not name an edit budget use DefaultMaxEdits; a requested
// budget above MaxEditsLimit is rejected. MaxResults caps prefix and near
// results. Unless CaseSensitive is set, words and query terms are lowercased.
type IndexSettings struct {
	Name            string `json:"name" toml:"name"`                           // Unique name for the index, also its directory name
	DefaultMaxEdits int    `json:"default_max_edits" toml:"default_max_edits"` // Edit budget of near queries that give none
	MaxEditsLimit   int    `json:"max_edits_limit" toml:"max_edits_limit"`     // Largest edit budget a near query may ask for
	MaxResults      int    `json:"max_results" toml:"max_results"`             // Cap on prefix/near results
	CaseSensitive   bool   `json:"case_sensitive" toml:"case_sensitive"`       // Keep letter case of words and query terms
	BuildShards     int    `json:"build_shards" toml:"build_shards"`           // Tries built in parallel by a bulk build
}

// ApplyDefaults applies default values to the index settings
func (settings *IndexSettings) ApplyDefaults() {
	if settings.MaxEditsLimit == 0 {
		settings.MaxEditsLimit = DefaultMaxEditsLimit
	}
	if settings.DefaultMaxEdits == 0 {
		settings.DefaultMaxEdits = DefaultMaxEdits
	}
	// Keep the default within the limit
	if settings.DefaultMaxEdits > settings.MaxEditsLimit {
		settings.DefaultMaxEdits = settings.MaxEditsLimit
	}
	if settings.MaxResults == 0 {
		settings.MaxResults = DefaultMaxResults
	}
	if settings.BuildShards == 0 {
		settings.BuildShards = DefaultBuildShards
	}
}

// Validate returns one message per problem found; an empty result means the settings are usable.
func (settings *IndexSettings) Validate() []string {
	var problems []string

	name := strings.TrimSpace(settings.Name)
	switch {
	case name == "":
		problems = append(problems, "Index name cannot be empty or whitespace-only")
	case !validIndexName.MatchString(settings.Name):
		problems = append(problems, "Index name '"+settings.Name+"' must start with a letter or digit and contain only letters, digits, '_' or '-' (max 128 characters)")
	}

	if settings.DefaultMaxEdits < 0 {
		problems = append(problems, fmt.Sprintf("default_max_edits must not be negative (got %d)", settings.DefaultMaxEdits))
	}
	if settings.MaxEditsLimit < 0 {
		problems = append(problems, fmt.Sprintf("max_edits_limit must not be negative (got %d)", settings.MaxEditsLimit))
	}
	if settings.DefaultMaxEdits > settings.MaxEditsLimit {
		problems = append(problems, fmt.Sprintf("default_max_edits (%d) must not exceed max_edits_limit (%d)", settings.DefaultMaxEdits, settings.MaxEditsLimit))
	}
	if settings.MaxResults < 1 {
		problems = append(problems, fmt.Sprintf("max_results must be at least 1 (got %d)", settings.MaxResults))
	}
	if settings.BuildShards < 1 || settings.BuildShards > MaxBuildShards {
		problems = append(problems, fmt.Sprintf("build_shards must be between 1 and %d (got %d)", MaxBuildShards, settings.BuildShards))
	}

	return problems
}

// Normalize applies the index's case policy to a word or query term.
func (settings *IndexSettings) Normalize(term string) string {
	if settings.CaseSensitive {
		return term
	}
	return strings.ToLower(term)
}
