// Package api holds the user-facing configuration of idsieve.
package api

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// ErrInvalidProfile reports a profile setting the pipeline cannot run with.
var ErrInvalidProfile = errors.New("invalid profile")

// Profile configures how identifier sets are loaded, queried and filtered.
type Profile struct {
	// Delimiter ends the identifier field of a primary-stream line.
	Delimiter string
	// Quotes lists characters stripped from both ends of the identifier field.
	Quotes string
	// BatchSize is the number of records inserted between progress reports.
	BatchSize int
	// CaseFold lowercases identifiers at load and query time. Off by default:
	// keys are case-sensitive.
	CaseFold bool
	// Workers > 1 builds the index with partitioned parallel inserts.
	Workers int
	// SQLiteQuery selects the identifier column from a SQLite source.
	SQLiteQuery string
	// JSONPath selects the identifier from each document of a JSON-lines source.
	JSONPath string

	// Marker lists the characters accepted as the optional single prefix in
	// front of an identifier on a bulk-query line. Empty disables the prefix.
	Marker string
	// YieldEvery is the number of bulk-query lines between yields.
	YieldEvery int
	// Terminator ends every emitted bulk-filter line.
	Terminator string

	// CacheSize bounds the query result cache.
	CacheSize int
	Labels    Labels
}

// Labels maps query outcomes to display text.
type Labels struct {
	Match   string
	NoMatch string
	Pending string
}

// DefaultProfile returns the built-in configuration.
func DefaultProfile() Profile {
	return Profile{
		Delimiter:   ",",
		Quotes:      `"'`,
		BatchSize:   5000,
		Workers:     1,
		SQLiteQuery: "SELECT id FROM ids",
		JSONPath:    "$.id",
		Marker:      `"`,
		YieldEvery:  1000,
		Terminator:  "\n",
		CacheSize:   4096,
		Labels: Labels{
			Match:   "affected",
			NoMatch: "unaffected",
			Pending: "pending",
		},
	}
}

// Validate checks the profile for values the pipeline cannot run with.
func (p Profile) Validate() error {
	switch {
	case p.Delimiter == "":
		return fmt.Errorf("%w: delimiter must not be empty", ErrInvalidProfile)
	case p.BatchSize <= 0:
		return fmt.Errorf("%w: batch_size must be positive, got %d", ErrInvalidProfile, p.BatchSize)
	case p.YieldEvery <= 0:
		return fmt.Errorf("%w: yield_every must be positive, got %d", ErrInvalidProfile, p.YieldEvery)
	case p.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidProfile, p.Workers)
	case p.CacheSize <= 0:
		return fmt.Errorf("%w: cache_size must be positive, got %d", ErrInvalidProfile, p.CacheSize)
	case !utf8.ValidString(p.Marker):
		return fmt.Errorf("%w: marker must be valid UTF-8, got %q", ErrInvalidProfile, p.Marker)
	case p.Terminator != "\n" && p.Terminator != "\r\n":
		return fmt.Errorf("%w: terminator must be \\n or \\r\\n, got %q", ErrInvalidProfile, p.Terminator)
	}
	return nil
}

// profileFile is the on-disk shape. Pointer fields distinguish "absent" from
// an explicit zero value such as an empty marker.
type profileFile struct {
	Delimiter   *string     `hcl:"delimiter,optional"`
	Quotes      *string     `hcl:"quotes,optional"`
	BatchSize   *int        `hcl:"batch_size,optional"`
	CaseFold    *bool       `hcl:"case_fold,optional"`
	Workers     *int        `hcl:"workers,optional"`
	SQLiteQuery *string     `hcl:"sqlite_query,optional"`
	JSONPath    *string     `hcl:"json_path,optional"`
	Marker      *string     `hcl:"marker,optional"`
	YieldEvery  *int        `hcl:"yield_every,optional"`
	Terminator  *string     `hcl:"terminator,optional"`
	CacheSize   *int        `hcl:"cache_size,optional"`
	Labels      *labelsFile `hcl:"labels,block"`
}

type labelsFile struct {
	Match   *string `hcl:"match,optional"`
	NoMatch *string `hcl:"no_match,optional"`
	Pending *string `hcl:"pending,optional"`
}

// LoadProfile reads a profile from an .hcl or .json file. Settings absent from
// the file keep their DefaultProfile values.
func LoadProfile(path string) (Profile, error) {
	var f profileFile
	if err := hclsimple.DecodeFile(path, nil, &f); err != nil {
		return Profile{}, fmt.Errorf("load profile %s: %w", path, err)
	}
	return f.apply(DefaultProfile())
}

// ParseProfile decodes src as if read from filename; the extension selects
// HCL or JSON syntax.
func ParseProfile(filename string, src []byte) (Profile, error) {
	var f profileFile
	if err := hclsimple.Decode(filename, src, nil, &f); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", filename, err)
	}
	return f.apply(DefaultProfile())
}

func (f profileFile) apply(p Profile) (Profile, error) {
	set(&p.Delimiter, f.Delimiter)
	set(&p.Quotes, f.Quotes)
	set(&p.BatchSize, f.BatchSize)
	set(&p.CaseFold, f.CaseFold)
	set(&p.Workers, f.Workers)
	set(&p.SQLiteQuery, f.SQLiteQuery)
	set(&p.JSONPath, f.JSONPath)
	set(&p.Marker, f.Marker)
	set(&p.YieldEvery, f.YieldEvery)
	set(&p.Terminator, f.Terminator)
	set(&p.CacheSize, f.CacheSize)
	if f.Labels != nil {
		set(&p.Labels.Match, f.Labels.Match)
		set(&p.Labels.NoMatch, f.Labels.NoMatch)
		set(&p.Labels.Pending, f.Labels.Pending)
	}
	return p, p.Validate()
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
