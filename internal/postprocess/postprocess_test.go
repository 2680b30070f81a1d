package postprocess

import (
	"strings"
	"testing"

	"github.com/vnaddrnorm/core/internal/models"
	"github.com/vnaddrnorm/core/internal/normalizer"
)

func TestBuildResultFullAddress(t *testing.T) {
	raw := "123 le van luong trung hoa cau giay ha noi"
	norm := normalizer.Normalize(raw, "", "", nil)
	tokens := strings.Fields(norm.Joined())

	wardIdx := indexOfSub(tokens, []string{"trung", "hoa"})
	districtIdx := indexOfSub(tokens, []string{"cau", "giay"})
	provinceIdx := indexOfSub(tokens, []string{"ha", "noi"})

	c := models.Candidate{
		HasWard: true, WardSpan: models.Span{Start: wardIdx, End: wardIdx + 2}, WardDisplay: "Trung Hòa",
		HasDistrict: true, DistrictSpan: models.Span{Start: districtIdx, End: districtIdx + 2}, DistrictDisplay: "Cầu Giấy",
		HasProvince: true, ProvinceSpan: models.Span{Start: provinceIdx, End: provinceIdx + 2}, ProvinceDisplay: "Hà Nội",
		FinalConfidence: 0.9,
		MatchType:       models.MatchExact,
	}

	result := BuildResult(raw, norm, []models.Candidate{c}, models.PhaseTimings{})
	if result.QualityFlag != models.QualityFull {
		t.Fatalf("expected full_address, got %v", result.QualityFlag)
	}
	if !strings.Contains(result.RemainingText, "123") || !strings.Contains(result.RemainingText, "luong") {
		t.Fatalf("expected residual to retain street text, got %q", result.RemainingText)
	}
	if strings.Contains(result.RemainingText, "cau giay") {
		t.Fatalf("residual should not contain matched district text, got %q", result.RemainingText)
	}
}

func TestBuildResultNoCandidates(t *testing.T) {
	raw := "khong ro dia chi"
	norm := normalizer.Normalize(raw, "", "", nil)
	result := BuildResult(raw, norm, nil, models.PhaseTimings{})
	if result.QualityFlag != models.QualityFailed {
		t.Fatalf("expected failed quality flag, got %v", result.QualityFlag)
	}
	if result.MatchType != models.MatchNone {
		t.Fatalf("expected none match type, got %v", result.MatchType)
	}
}

func TestQualityFlagPartial(t *testing.T) {
	c := models.Candidate{
		HasDistrict: true, HasProvince: true,
		FinalConfidence: 0.65,
	}
	if got := qualityFlag(c); got != models.QualityPartial {
		t.Fatalf("expected partial_address, got %v", got)
	}
}

func TestQualityFlagProvinceOnly(t *testing.T) {
	c := models.Candidate{HasProvince: true, FinalConfidence: 0.7}
	if got := qualityFlag(c); got != models.QualityProvinceOnly {
		t.Fatalf("expected province_only, got %v", got)
	}
}

func indexOfSub(tokens []string, sub []string) int {
	for i := 0; i+len(sub) <= len(tokens); i++ {
		match := true
		for j := range sub {
			if tokens[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
