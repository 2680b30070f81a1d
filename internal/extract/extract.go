// Package extract implements Phase 2 (spec §4.4): turning a normalized
// token stream into scored Potential matches at the province, district,
// and ward levels. No street-level Potentials are produced.
package extract

import (
	"sort"

	"github.com/vnaddrnorm/core/internal/config"
	"github.com/vnaddrnorm/core/internal/models"
	"github.com/vnaddrnorm/core/internal/store"
	"github.com/vnaddrnorm/core/internal/tokenindex"
)

func threshold(level models.Level, cfg config.Config) float64 {
	switch level {
	case models.LevelProvince:
		return cfg.FuzzyThresholdProvince
	case models.LevelDistrict:
		return cfg.FuzzyThresholdDistrict
	case models.LevelWard:
		return cfg.FuzzyThresholdWard
	}
	return 1.01 // street has no fuzzy threshold; never matched here
}

func levelName(row models.AdminRow, level models.Level) string {
	switch level {
	case models.LevelProvince:
		return row.ProvinceNameNormalized
	case models.LevelDistrict:
		return row.DistrictNameNormalized
	case models.LevelWard:
		return row.WardNameNormalized
	}
	return ""
}

var levels = []models.Level{models.LevelProvince, models.LevelDistrict, models.LevelWard}

// ExtractPotentials scores every n-gram of tokens against every level of
// every row the token index surfaces as a candidate, applies the numeric
// keyword-context multiplier, and keeps everything clearing the per-level
// fuzzy threshold (exact matches always clear it). provinceHint and
// districtHint scope abbreviation lookups the same way Phase 1 does.
func ExtractPotentials(tokens []string, provinceHint, districtHint string, st store.Store, idx *tokenindex.Index, cfg config.Config) []models.Potential {
	var out []models.Potential
	seen := make(map[string]bool) // dedupe identical (level,rowID,span) triples

	for _, ng := range Enumerate(tokens) {
		out = append(out, scoreNgram(ng, ng.Text, models.SourceFuzzy, provinceHint, districtHint, st, idx, cfg, seen)...)

		if st != nil {
			if expansion, ok := st.LookupAbbreviation(ng.Text, provinceHint, districtHint); ok && expansion != ng.Text {
				out = append(out, scoreNgram(ng, expansion, models.SourceAbbrev, provinceHint, districtHint, st, idx, cfg, seen)...)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.RawScore != b.RawScore {
			return a.RawScore > b.RawScore
		}
		aLen, bLen := a.Span.End-a.Span.Start, b.Span.End-b.Span.Start
		if aLen != bLen {
			return aLen > bLen
		}
		return a.Span.Start < b.Span.Start
	})
	return out
}

func scoreNgram(ng Ngram, text string, source models.Source, provinceHint, districtHint string, st store.Store, idx *tokenindex.Index, cfg config.Config, seen map[string]bool) []models.Potential {
	var out []models.Potential
	if st == nil || idx == nil {
		return out
	}
	if reAllDigits.MatchString(text) && !IsShortNumeric(text) {
		return out // 3+ digit numbers are street numbers, never admin names
	}

	rowIDs := idx.RowsContainingAny(fieldsOf(text))
	for rowID := range rowIDs {
		row, ok := st.RowByID(rowID)
		if !ok {
			continue
		}
		for _, level := range levels {
			name := levelName(row, level)
			if name == "" {
				continue
			}
			score := Ensemble(text, name, cfg.EnsembleWeights)
			exact := text == name
			if exact {
				score = 1.0
			}

			if IsShortNumeric(text) {
				if ng.KeywordContext {
					score *= cfg.NumericKeywordBonus
				} else {
					score *= cfg.NumericNoKeywordPenalty
				}
				if score > 1.0 {
					score = 1.0
				}
			}

			if !exact && score < threshold(level, cfg) {
				continue
			}

			key := dedupeKey(level, rowID, ng.Span)
			if seen[key] {
				continue
			}
			seen[key] = true

			src := source
			if exact {
				src = models.SourceExact
			}
			out = append(out, models.Potential{
				Level:          level,
				CanonicalName:  name,
				Span:           ng.Span,
				RawScore:       score,
				Source:         src,
				KeywordContext: ng.KeywordContext,
				RowID:          rowID,
			})
		}
	}
	return out
}

func fieldsOf(s string) []string {
	var fields []string
	start := -1
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != ' ' {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			fields = append(fields, s[start:i])
			start = -1
		}
	}
	return fields
}

func dedupeKey(level models.Level, rowID int64, span models.Span) string {
	buf := make([]byte, 0, 32)
	buf = append(buf, level...)
	buf = append(buf, '|')
	buf = appendInt(buf, rowID)
	buf = append(buf, '|')
	buf = appendInt(buf, int64(span.Start))
	buf = append(buf, '|')
	buf = appendInt(buf, int64(span.End))
	return string(buf)
}

func appendInt(buf []byte, v int64) []byte {
	if v == 0 {
		return append(buf, '0')
	}
	if v < 0 {
		buf = append(buf, '-')
		v = -v
	}
	var tmp [20]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	return append(buf, tmp[i:]...)
}
