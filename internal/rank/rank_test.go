package rank

import (
	"testing"

	"github.com/vnaddrnorm/core/internal/models"
)

func TestScoreExactFullAddress(t *testing.T) {
	c := models.Candidate{
		HasProvince: true, ProvinceScore: 1.0,
		HasDistrict: true, DistrictScore: 1.0,
		HasWard: true, WardScore: 1.0,
		HierarchyValid: true,
	}
	scored := Score(c, 0)
	if scored.MatchType != models.MatchExact {
		t.Fatalf("expected exact match type, got %v", scored.MatchType)
	}
	if scored.FinalConfidence != 1.0 {
		t.Fatalf("expected confidence 1.0, got %v", scored.FinalConfidence)
	}
}

func TestScoreHierarchyInvalidPenalty(t *testing.T) {
	valid := models.Candidate{
		HasProvince: true, ProvinceScore: 0.9,
		HasDistrict: true, DistrictScore: 0.9,
		HasWard: true, WardScore: 0.9,
		HierarchyValid: true,
	}
	invalid := valid
	invalid.HierarchyValid = false

	sv, si := Score(valid, 0), Score(invalid, 0)
	if si.FinalConfidence >= sv.FinalConfidence {
		t.Fatalf("invalid hierarchy should score lower: valid=%v invalid=%v", sv.FinalConfidence, si.FinalConfidence)
	}
}

func TestScoreGeoContextBonus(t *testing.T) {
	c := models.Candidate{
		HasProvince: true, ProvinceScore: 0.85,
		HasDistrict: true, DistrictScore: 0.85,
		HierarchyValid: true,
	}
	withBonus := Score(c, 0.5)
	withoutBonus := Score(c, 0)
	if withBonus.FinalConfidence <= withoutBonus.FinalConfidence {
		t.Fatalf("geo context bonus should raise confidence: with=%v without=%v", withBonus.FinalConfidence, withoutBonus.FinalConfidence)
	}
}

func TestRankOrdersDescending(t *testing.T) {
	candidates := []models.Candidate{
		{HasProvince: true, ProvinceScore: 0.5, HierarchyValid: true},
		{HasProvince: true, ProvinceScore: 0.95, HasDistrict: true, DistrictScore: 0.95, HasWard: true, WardScore: 0.95, HierarchyValid: true},
		{HasProvince: true, ProvinceScore: 0.7, HasDistrict: true, DistrictScore: 0.7, HierarchyValid: true},
	}
	ranked := Rank(candidates, nil)
	for i := 1; i < len(ranked); i++ {
		if ranked[i].FinalConfidence > ranked[i-1].FinalConfidence {
			t.Fatalf("rank %d not descending: %v > %v", i, ranked[i].FinalConfidence, ranked[i-1].FinalConfidence)
		}
	}
}

func TestClassifyMatchTypeFallback(t *testing.T) {
	c := Score(models.Candidate{}, 0)
	if c.MatchType != models.MatchFallback {
		t.Fatalf("expected fallback match type for empty candidate, got %v", c.MatchType)
	}
}

func TestClassifyMatchTypeExternal(t *testing.T) {
	c := Score(models.Candidate{Source: models.CandidateSourceExternal, HasProvince: true, ProvinceScore: 0.8}, 0)
	if c.MatchType != models.MatchExternal {
		t.Fatalf("expected external match type, got %v", c.MatchType)
	}
}
