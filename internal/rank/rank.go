// Package rank implements Phase 4 (spec §4.6): scoring each Candidate into
// a final_confidence and match_type, then ordering the list.
package rank

import (
	"sort"

	"github.com/vnaddrnorm/core/internal/models"
)

func matchTypeScore(mt models.MatchType) float64 {
	switch mt {
	case models.MatchExact:
		return 50
	case models.MatchFuzzy:
		return 30
	case models.MatchExternal:
		return 25
	case models.MatchFallback:
		return 20
	default:
		return 0
	}
}

// classifyMatchType derives the Candidate's MatchType from its
// provenance: external-sourced candidates are always "external"; a
// candidate with no level present at all is "fallback"; a local or
// disambiguation candidate whose present levels all scored perfectly
// (>= 0.999) is "exact"; anything else is "fuzzy".
func classifyMatchType(c models.Candidate) models.MatchType {
	if c.Source == models.CandidateSourceExternal {
		return models.MatchExternal
	}
	if !c.HasProvince && !c.HasDistrict && !c.HasWard {
		return models.MatchFallback
	}
	if isExact(c) {
		return models.MatchExact
	}
	return models.MatchFuzzy
}

func isExact(c models.Candidate) bool {
	levelsPresent := 0
	levelsExact := 0
	for _, lvl := range []struct {
		present bool
		score   float64
	}{
		{c.HasProvince, c.ProvinceScore},
		{c.HasDistrict, c.DistrictScore},
		{c.HasWard, c.WardScore},
	} {
		if lvl.present {
			levelsPresent++
			if lvl.score >= 0.999 {
				levelsExact++
			}
		}
	}
	return levelsPresent > 0 && levelsPresent == levelsExact
}

// atRuleScore is spec §4.6's structural-completeness term: full
// province+district+ward = 30, province+district = 20, province only =
// 10, nothing = 0.
func atRuleScore(c models.Candidate) float64 {
	switch {
	case c.HasProvince && c.HasDistrict && c.HasWard:
		return 30
	case c.HasProvince && c.HasDistrict:
		return 20
	case c.HasProvince:
		return 10
	default:
		return 0
	}
}

// similarityScore is the 20-point weighted-average term (province 0.3,
// district 0.35, ward 0.35), scaled to [0,20].
func similarityScore(c models.Candidate) float64 {
	var sum, weight float64
	if c.HasProvince {
		sum += 0.30 * c.ProvinceScore
		weight += 0.30
	}
	if c.HasDistrict {
		sum += 0.35 * c.DistrictScore
		weight += 0.35
	}
	if c.HasWard {
		sum += 0.35 * c.WardScore
		weight += 0.35
	}
	if weight == 0 {
		return 0
	}
	return 20 * (sum / weight)
}

// Score fills in Candidate.MatchType, AtRuleScore, GeoContextScore (left
// to the caller via geoContextScore, 0 when unknown), and FinalConfidence
// per spec §4.6: base = match_type_score + at_rule_score +
// similarity_score, *1.1 geo-context bonus when geoContextScore > 0, *0.8
// hierarchy-invalid penalty, final = min(base/100, 1.0).
func Score(c models.Candidate, geoContextScore float64) models.Candidate {
	c.MatchType = classifyMatchType(c)
	c.AtRuleScore = atRuleScore(c)
	c.GeoContextScore = geoContextScore

	base := matchTypeScore(c.MatchType) + c.AtRuleScore + similarityScore(c)
	if geoContextScore > 0 {
		base *= 1.1
	}
	if !c.HierarchyValid {
		base *= 0.8
	}

	final := base / 100
	if final > 1.0 {
		final = 1.0
	}
	if final < 0 {
		final = 0
	}
	c.FinalConfidence = final
	return c
}

// Rank scores every candidate (geoContextScore from geo, keyed by
// candidate index, 0 if absent) and sorts descending by
// (final_confidence, at_rule_score, -match_type_priority, geo_context).
func Rank(candidates []models.Candidate, geoContextScores []float64) []models.Candidate {
	out := make([]models.Candidate, len(candidates))
	for i, c := range candidates {
		g := 0.0
		if i < len(geoContextScores) {
			g = geoContextScores[i]
		}
		out[i] = Score(c, g)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.FinalConfidence != b.FinalConfidence {
			return a.FinalConfidence > b.FinalConfidence
		}
		if a.AtRuleScore != b.AtRuleScore {
			return a.AtRuleScore > b.AtRuleScore
		}
		pa, pb := models.MatchTypePriority(a.MatchType), models.MatchTypePriority(b.MatchType)
		if pa != pb {
			return pa < pb
		}
		return a.GeoContextScore > b.GeoContextScore
	})
	return out
}
