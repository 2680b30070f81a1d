package pipeline

import (
	"context"
	"testing"

	"github.com/vnaddrnorm/core/internal/config"
	vcache "github.com/vnaddrnorm/core/internal/cache"
	"github.com/vnaddrnorm/core/internal/models"
	"github.com/vnaddrnorm/core/internal/normalizer"
	"github.com/vnaddrnorm/core/internal/store"
)

func mustPipeline(t *testing.T) *Pipeline {
	t.Helper()
	st, err := store.NewMemoryStore(nil)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	norm, err := normalizer.NewNormalizer(st, 100, nil)
	if err != nil {
		t.Fatalf("NewNormalizer: %v", err)
	}
	lruTier, err := vcache.NewLRUTier(100, nil)
	if err != nil {
		t.Fatalf("NewLRUTier: %v", err)
	}
	return New(st, norm, nil, nil, lruTier, config.Default(), nil)
}

func TestNormalizeFullAddress(t *testing.T) {
	p := mustPipeline(t)
	result, err := p.Normalize(context.Background(), "123 Le Van Luong, Trung Hoa, Cau Giay, Ha Noi", Hints{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if result.Province == "" || result.District == "" || result.Ward == "" {
		t.Fatalf("expected full address match, got %+v", result)
	}
	if result.QualityFlag != models.QualityFull {
		t.Fatalf("expected full_address quality flag, got %v", result.QualityFlag)
	}
}

func TestNormalizeEmptyInputIsInputInvalid(t *testing.T) {
	p := mustPipeline(t)
	result, err := p.Normalize(context.Background(), "   ", Hints{})
	if err != nil {
		t.Fatalf("blank address should come back as a failed Result, not an error: %v", err)
	}
	if result.MatchType != models.MatchNone || result.QualityFlag != models.QualityFailed {
		t.Fatalf("expected none/failed for blank address, got %v/%v", result.MatchType, result.QualityFlag)
	}
}

func TestNormalizeCachesResult(t *testing.T) {
	p := mustPipeline(t)
	ctx := context.Background()
	raw := "Trung Hoa, Cau Giay, Ha Noi"

	first, err := p.Normalize(ctx, raw, Hints{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	second, err := p.Normalize(ctx, raw, Hints{})
	if err != nil {
		t.Fatalf("Normalize (cached): %v", err)
	}
	if first.Province != second.Province || first.Confidence != second.Confidence {
		t.Fatalf("cached result diverged: %+v vs %+v", first, second)
	}
}

func TestNormalizeUnmatchableAddressFails(t *testing.T) {
	p := mustPipeline(t)
	result, err := p.Normalize(context.Background(), "this text matches nothing in the gazetteer at all", Hints{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if result.QualityFlag != models.QualityFailed && result.QualityFlag != models.QualityProvinceOnly {
		t.Fatalf("expected failed or province_only for unmatchable text, got %v", result.QualityFlag)
	}
}
