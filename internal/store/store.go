// Package store implements the reference store (spec §4.1): read-only
// access to the administrative hierarchy and the context-scoped
// abbreviation dictionary, backed by an embedded CSV fixture by default
// and adaptable to SQLite or Meilisearch deployments.
package store

import (
	"regexp"
	"strings"

	"github.com/vnaddrnorm/core/internal/models"
	"github.com/vnaddrnorm/core/internal/normalizer"
)

// Store is the reference-store contract every phase reads through. All
// implementations must be safe for concurrent reads with no locking,
// since the store is constructed once at startup and never mutated.
type Store interface {
	// CandidatesInScope returns rows matching the given normalized
	// province/district (either may be empty, acting as a wildcard).
	CandidatesInScope(province, district string) []models.AdminRow
	// ValidateTriple reports whether at least one row matches all
	// supplied normalized names; empty arguments are wildcards.
	ValidateTriple(province, district, ward string) bool
	// LookupAbbreviation resolves key via (province,district) exact,
	// then (province,-), then (-,-), returning the first hit.
	LookupAbbreviation(key, province, district string) (string, bool)
	// LoadAbbreviations returns every key visible in scope, honoring
	// the same precedence; deterministic and cacheable.
	LoadAbbreviations(province, district string) map[string]string
	// RowByID looks up a single row by its opaque identifier.
	RowByID(id int64) (models.AdminRow, bool)
	// AllRows returns every row; used once at startup by the token
	// index builder. Never called on the hot path.
	AllRows() []models.AdminRow
}

var reCollapseWS = regexp.MustCompile(`\s+`)
var reLeadingZero = regexp.MustCompile(`^0+(\d)`)

// NormalizeName applies the Phase 1 name-normalization rules (lowercase,
// diacritics removed, whitespace collapsed, no leading zeros on numeric
// names) used for every *_name_normalized column.
func NormalizeName(s string) string {
	s = normalizer.RemoveAccentsAndLowercase(s)
	s = reCollapseWS.ReplaceAllString(strings.TrimSpace(s), " ")
	s = reLeadingZero.ReplaceAllString(s, "$1")
	return s
}
