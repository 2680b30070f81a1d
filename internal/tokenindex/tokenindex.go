// Package tokenindex implements the inverted index from spec §4.2: a
// token -> set-of-row-ids map built once at startup, used to bound the
// cost of Phase 2 fuzzy matching over the full administrative hierarchy.
package tokenindex

import (
	"strings"

	"github.com/vnaddrnorm/core/internal/models"
)

// Index is immutable after Build; concurrent reads require no locking.
type Index struct {
	byToken map[string]map[int64]struct{}
}

// Build indexes every token of every row's three normalized names
// (province, district, ward), keyed by row id.
func Build(rows []models.AdminRow) *Index {
	idx := &Index{byToken: make(map[string]map[int64]struct{})}
	for _, row := range rows {
		for _, name := range []string{row.ProvinceNameNormalized, row.DistrictNameNormalized, row.WardNameNormalized} {
			for _, tok := range strings.Fields(name) {
				set, ok := idx.byToken[tok]
				if !ok {
					set = make(map[int64]struct{})
					idx.byToken[tok] = set
				}
				set[row.RowID] = struct{}{}
			}
		}
	}
	return idx
}

// RowsContainingAll returns the intersection of row ids containing every
// token in tokens. An empty token list returns an empty set (callers that
// want "all rows" should check len(tokens)==0 themselves).
func (idx *Index) RowsContainingAll(tokens []string) map[int64]struct{} {
	if len(tokens) == 0 {
		return map[int64]struct{}{}
	}
	var result map[int64]struct{}
	for _, tok := range tokens {
		set, ok := idx.byToken[tok]
		if !ok {
			return map[int64]struct{}{}
		}
		if result == nil {
			result = make(map[int64]struct{}, len(set))
			for id := range set {
				result[id] = struct{}{}
			}
			continue
		}
		for id := range result {
			if _, ok := set[id]; !ok {
				delete(result, id)
			}
		}
	}
	if result == nil {
		result = map[int64]struct{}{}
	}
	return result
}

// RowsContainingAny returns the union of row ids containing at least one
// token in tokens.
func (idx *Index) RowsContainingAny(tokens []string) map[int64]struct{} {
	result := make(map[int64]struct{})
	for _, tok := range tokens {
		for id := range idx.byToken[tok] {
			result[id] = struct{}{}
		}
	}
	return result
}
