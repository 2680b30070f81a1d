package pipeline

import (
	"context"
	"testing"

	"github.com/vnaddrnorm/core/internal/models"
)

// End-to-end scenarios the embedded fixture (internal/store/fixtures) was
// built to exercise: each literal input here is checked against its
// expected top-level fields, not just "did it run".
func TestGoldenScenarios(t *testing.T) {
	p := mustPipeline(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		raw      string
		hints    Hints
		province string
		district string
		ward     string
		minConf  float64
		maxConf  float64
		matchT   models.MatchType
		quality  models.QualityFlag
	}{
		{
			name:     "dien bien ba dinh hanoi abbreviations",
			raw:      "P. Điện Biên, Q. Ba Đình, HN",
			province: "Hà Nội",
			district: "Ba Đình",
			ward:     "Điện Biên",
			matchT:   models.MatchExact,
			minConf:  0.9,
			quality:  models.QualityFull,
		},
		{
			name:     "street number with province hint",
			raw:      "660/8 PHAM THE HIEN P4 Q8",
			hints:    Hints{ProvinceHint: "Ho Chi Minh"},
			province: "Hồ Chí Minh",
			district: "Quận 8",
			ward:     "Phường 4",
			minConf:  0.85,
			quality:  models.QualityFull,
		},
		{
			name:     "street only resolves province only",
			raw:      "22 NGO 629 GIAI PHONG HA NOI",
			province: "Hà Nội",
			minConf:  0.6,
			maxConf:  0.85,
			quality:  models.QualityProvinceOnly,
		},
		{
			name:     "trung hoa not trung yen disambiguation",
			raw:      "14 LO 3A TRUNG YEN 6 KDT TRUNG YEN PHUONG TRUNG HOA CAU GIAY",
			hints:    Hints{ProvinceHint: "Ha Noi"},
			province: "Hà Nội",
			district: "Cầu Giấy",
			ward:     "Trung Hòa",
			quality:  models.QualityFull,
		},
		{
			name:     "letter digit spacing co nhue1",
			raw:      "co nhue1, bac tu liem, ha noi",
			province: "Hà Nội",
			district: "Bắc Từ Liêm",
			ward:     "Cổ Nhuế 1",
			minConf:  0.0,
			quality:  models.QualityFull,
		},
		{
			name:     "named ward preferred over numeric street number",
			raw:      "8 Nguyen Hue Ben Nghe Quan 1 TP HCM",
			province: "Hồ Chí Minh",
			district: "Quận 1",
			ward:     "Bến Nghé",
			quality:  models.QualityFull,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := p.Normalize(ctx, tc.raw, tc.hints)
			if err != nil {
				t.Fatalf("Normalize(%q): %v", tc.raw, err)
			}
			if result.Province != tc.province {
				t.Errorf("province: got %q, want %q", result.Province, tc.province)
			}
			if tc.district != "" && result.District != tc.district {
				t.Errorf("district: got %q, want %q", result.District, tc.district)
			}
			if tc.ward != "" && result.Ward != tc.ward {
				t.Errorf("ward: got %q, want %q", result.Ward, tc.ward)
			}
			if tc.matchT != "" && result.MatchType != tc.matchT {
				t.Errorf("match_type: got %q, want %q", result.MatchType, tc.matchT)
			}
			if tc.quality != "" && result.QualityFlag != tc.quality {
				t.Errorf("quality_flag: got %q, want %q", result.QualityFlag, tc.quality)
			}
			if tc.minConf > 0 && result.Confidence < tc.minConf {
				t.Errorf("confidence %v below minimum %v", result.Confidence, tc.minConf)
			}
			if tc.maxConf > 0 && result.Confidence > tc.maxConf {
				t.Errorf("confidence %v above maximum %v", result.Confidence, tc.maxConf)
			}
		})
	}
}

// Invariant 6 (spec §8): removing matched spans from the original string
// never produces a longer residual than the input.
func TestResidualNeverGrowsBeyondInput(t *testing.T) {
	p := mustPipeline(t)
	ctx := context.Background()
	inputs := []string{
		"P. Điện Biên, Q. Ba Đình, HN",
		"660/8 PHAM THE HIEN P4 Q8",
		"this text matches nothing in the gazetteer at all",
	}
	for _, raw := range inputs {
		result, err := p.Normalize(ctx, raw, Hints{})
		if err != nil {
			t.Fatalf("Normalize(%q): %v", raw, err)
		}
		if len(result.RemainingText) > len(raw) {
			t.Errorf("residual longer than input for %q: residual=%q", raw, result.RemainingText)
		}
	}
}

// Round-trip (spec §8): feeding a canonical full-address string back in
// resolves to the same triple with an exact match.
func TestRoundTripCanonicalNames(t *testing.T) {
	p := mustPipeline(t)
	ctx := context.Background()
	raw := "Điện Biên, Ba Đình, Hà Nội"
	result, err := p.Normalize(ctx, raw, Hints{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if result.MatchType != models.MatchExact {
		t.Fatalf("expected exact match for canonical round-trip, got %v (%+v)", result.MatchType, result)
	}
	if result.Province != "Hà Nội" || result.District != "Ba Đình" || result.Ward != "Điện Biên" {
		t.Fatalf("round-trip triple mismatch: %+v", result)
	}
}
