// Package assemble implements Phase 3 (spec §4.5): combining per-level
// Potentials into full (province, district, ward) Candidates, pruned by
// hierarchy validity and bounded by a top-K cutoff per level.
package assemble

import (
	"sort"

	"github.com/vnaddrnorm/core/internal/config"
	"github.com/vnaddrnorm/core/internal/models"
	"github.com/vnaddrnorm/core/internal/store"
)

// topK returns the best n Potentials of level, already-sorted-descending
// input assumed (ExtractPotentials guarantees this).
func topK(potentials []models.Potential, level models.Level, n int) []models.Potential {
	var out []models.Potential
	for _, p := range potentials {
		if p.Level != level {
			continue
		}
		out = append(out, p)
		if len(out) == n {
			break
		}
	}
	return out
}

// absent is the sentinel "this level was not found" option every
// cartesian-product dimension carries alongside its real Potentials, since
// spec §4.5 allows any level to be missing from the final Candidate.
var absent = models.Potential{}

// AssembleCandidates builds the cartesian product of the top-K potentials
// per level (plus "absent" at each level), attaches display names and row
// data from st, consults migration for legacy-name rewriting before the
// hierarchy check, and marks each combination's HierarchyValid bit. The
// result is ordered by LocalConfidenceEstimate descending, ties going to
// the candidate with more levels present.
func AssembleCandidates(potentials []models.Potential, st store.Store, migration store.MigrationLoader, cfg config.Config) []models.Candidate {
	if migration == nil {
		migration = store.NoopMigrationLoader{}
	}

	provinces := append([]models.Potential{absent}, topK(potentials, models.LevelProvince, cfg.TopKPerLevel.Province)...)
	districts := append([]models.Potential{absent}, topK(potentials, models.LevelDistrict, cfg.TopKPerLevel.District)...)
	wards := append([]models.Potential{absent}, topK(potentials, models.LevelWard, cfg.TopKPerLevel.Ward)...)

	var out []models.Candidate
	for _, p := range provinces {
		for _, d := range districts {
			for _, w := range wards {
				if p.Span == (models.Span{}) && p.RowID == 0 && d.Span == (models.Span{}) && d.RowID == 0 && w.Span == (models.Span{}) && w.RowID == 0 {
					continue // every level absent: not a candidate worth ranking
				}
				out = append(out, buildCandidate(p, d, w, st, migration, wards, cfg))
			}
		}
	}

	levelsPresent := func(c models.Candidate) int {
		n := 0
		for _, has := range []bool{c.HasProvince, c.HasDistrict, c.HasWard} {
			if has {
				n++
			}
		}
		return n
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := LocalConfidenceEstimate(out[i]), LocalConfidenceEstimate(out[j])
		if ci != cj {
			return ci > cj
		}
		return levelsPresent(out[i]) > levelsPresent(out[j])
	})
	return out
}

func buildCandidate(p, d, w models.Potential, st store.Store, migration store.MigrationLoader, wardPool []models.Potential, cfg config.Config) models.Candidate {
	c := models.Candidate{Source: models.CandidateSourceLocal}

	if p.RowID != 0 || p.CanonicalName != "" {
		c.ProvinceName, c.ProvinceScore, c.ProvinceSpan, c.HasProvince = p.CanonicalName, p.RawScore, p.Span, true
		c.ProvinceRowID = p.RowID
	}
	if d.RowID != 0 || d.CanonicalName != "" {
		c.DistrictName, c.DistrictScore, c.DistrictSpan, c.HasDistrict = d.CanonicalName, d.RawScore, d.Span, true
		c.DistrictRowID = d.RowID
	}
	if w.RowID != 0 || w.CanonicalName != "" {
		c.WardName, c.WardScore, c.WardSpan, c.HasWard = w.CanonicalName, w.RawScore, w.Span, true
		c.WardRowID = w.RowID
	}

	if newP, newD, newW, ok := migration.Rewrite(c.ProvinceName, c.DistrictName, c.WardName); ok {
		c.ProvinceName, c.DistrictName, c.WardName = newP, newD, newW
	}

	c.HierarchyValid = st == nil || st.ValidateTriple(c.ProvinceName, c.DistrictName, c.WardName)

	if c.HasProvince {
		if row, ok := st.RowByID(c.ProvinceRowID); ok {
			c.ProvinceDisplay = row.ProvinceFull
		}
	}
	if c.HasDistrict {
		if row, ok := st.RowByID(c.DistrictRowID); ok {
			c.DistrictDisplay = displayName(row.DistrictName, row.DistrictFull)
		}
	}
	if c.HasWard {
		if row, ok := st.RowByID(c.WardRowID); ok {
			c.WardDisplay = displayName(row.WardName, row.WardFull)
		}
	}

	if c.HasWard && withinDisambiguationBand(w, wardPool, cfg.DisambiguationBand) {
		c.Source = models.CandidateSourceDisambiguation
	}

	return c
}

// displayName picks between the bare name and its prefixed full form: a
// purely numeric district/ward name (e.g. "8", "4") is ambiguous without
// its "Quận"/"Phường" prefix, so those display with the prefix; named
// ones (e.g. "Ba Đình") display bare.
func displayName(name, full string) string {
	if isNumeric(name) {
		return full
	}
	return name
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// withinDisambiguationBand reports whether chosen is not the sole top
// scorer: at least one other ward potential scores within band of it,
// meaning Phase 4 needs its full signal set (not just raw score) to break
// the tie, per spec §4.5's numeric-ward retention rule.
func withinDisambiguationBand(chosen models.Potential, pool []models.Potential, band float64) bool {
	count := 0
	for _, p := range pool {
		if p.RowID == 0 && p.CanonicalName == "" {
			continue
		}
		diff := chosen.RawScore - p.RawScore
		if diff < 0 {
			diff = -diff
		}
		if diff <= band && p.RowID != chosen.RowID {
			count++
		}
	}
	return count > 0
}

// LocalConfidenceEstimate is the weighted average of a Candidate's
// per-level Phase 2 scores (province 0.3, district 0.35, ward 0.35, spec
// §4.6's similarity_score weights), used both to order Candidates out of
// Phase 3 and to gate the external geocoder.
func LocalConfidenceEstimate(c models.Candidate) float64 {
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
	return sum / weight
}

// NeedsExternalLookup reports whether the best local candidate falls below
// cfg.ExternalThreshold (or there is no candidate at all); when it does,
// the pipeline consults the configured geocoder before moving to Phase 4.
func NeedsExternalLookup(candidates []models.Candidate, cfg config.Config) bool {
	if len(candidates) == 0 {
		return true
	}
	return LocalConfidenceEstimate(candidates[0]) < cfg.ExternalThreshold
}
