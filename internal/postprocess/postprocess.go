// Package postprocess implements Phase 5 (spec §4.7): turning the
// top-ranked Candidate into the public Result, including the residual
// (unmatched) text and the quality flag.
package postprocess

import (
	"strings"

	"github.com/vnaddrnorm/core/internal/models"
	"github.com/vnaddrnorm/core/internal/normalizer"
)

// qualityFlag implements spec §4.7's completeness/confidence table.
func qualityFlag(c models.Candidate) models.QualityFlag {
	switch {
	case c.HasWard && c.HasDistrict && c.HasProvince && c.FinalConfidence >= 0.8:
		return models.QualityFull
	case c.HasDistrict && c.HasProvince && c.FinalConfidence >= 0.6:
		return models.QualityPartial
	case c.HasProvince && c.FinalConfidence >= 0.6:
		return models.QualityProvinceOnly
	default:
		return models.QualityFailed
	}
}

// residual computes the original-text span left over once every matched
// level's span is subtracted, via NormResult.OriginalSpan. Spans outside
// any matched level, plus the text before the first match and after the
// last, all land in the residual; we report it as whatever original text
// falls outside the union of matched spans.
func residual(norm normalizer.NormResult, c models.Candidate) string {
	type span struct{ start, end int }
	var spans []span
	for _, s := range []models.Span{c.ProvinceSpan, c.DistrictSpan, c.WardSpan} {
		if s == (models.Span{}) {
			continue
		}
		if start, end, ok := norm.OriginalSpan(s.Start, s.End); ok {
			spans = append(spans, span{start, end})
		}
	}
	if len(spans) == 0 {
		return strings.TrimSpace(norm.Original)
	}

	covered := make([]bool, len(norm.Original))
	for _, sp := range spans {
		for i := sp.start; i < sp.end && i < len(covered); i++ {
			covered[i] = true
		}
	}

	var b strings.Builder
	for i, r := range norm.Original {
		if i < len(covered) && covered[i] {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// BuildResult assembles the final Result from the best-ranked Candidate
// (candidates is assumed already sorted by rank.Rank; an empty slice
// produces a failed Result with the full raw text as residual).
func BuildResult(raw string, norm normalizer.NormResult, candidates []models.Candidate, timings models.PhaseTimings) models.Result {
	if len(candidates) == 0 {
		return models.Result{
			Raw:           raw,
			MatchType:     models.MatchNone,
			QualityFlag:   models.QualityFailed,
			RemainingText: strings.TrimSpace(raw),
			Timings:       timings,
			Candidates:    candidates,
		}
	}

	best := candidates[0]
	district, ward := best.DistrictDisplay, best.WardDisplay
	matchType := best.MatchType

	// spec §4.6: a top candidate below the low-confidence floor is reported
	// as no match at all, with any per-level score too weak to trust cleared.
	if best.FinalConfidence < 0.4 {
		matchType = models.MatchNone
		if best.DistrictScore < 0.5 {
			district = ""
		}
		if best.WardScore < 0.5 {
			ward = ""
		}
	}

	return models.Result{
		Raw:           raw,
		Province:      best.ProvinceDisplay,
		District:      district,
		Ward:          ward,
		Confidence:    best.FinalConfidence,
		MatchType:     matchType,
		QualityFlag:   qualityFlag(best),
		RemainingText: residual(norm, best),
		Timings:       timings,
		Candidates:    candidates,
	}
}
