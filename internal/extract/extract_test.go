package extract

import (
	"strings"
	"testing"

	"github.com/vnaddrnorm/core/internal/config"
	"github.com/vnaddrnorm/core/internal/models"
	"github.com/vnaddrnorm/core/internal/store"
	"github.com/vnaddrnorm/core/internal/tokenindex"
)

func mustStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewMemoryStore(nil)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	return s
}

func TestExtractPotentialsExactMatch(t *testing.T) {
	st := mustStore(t)
	idx := tokenindex.Build(st.AllRows())
	cfg := config.Default()

	tokens := strings.Fields("trung hoa cau giay ha noi")
	pots := ExtractPotentials(tokens, "", "", st, idx, cfg)
	if len(pots) == 0 {
		t.Fatalf("expected potentials")
	}

	var gotProvince, gotDistrict, gotWard bool
	for _, p := range pots {
		if p.Source != models.SourceExact {
			continue
		}
		switch p.Level {
		case models.LevelProvince:
			if p.CanonicalName == "ha noi" {
				gotProvince = true
			}
		case models.LevelDistrict:
			if p.CanonicalName == "cau giay" {
				gotDistrict = true
			}
		case models.LevelWard:
			if p.CanonicalName == "trung hoa" {
				gotWard = true
			}
		}
	}
	if !gotProvince || !gotDistrict || !gotWard {
		t.Fatalf("expected exact province/district/ward potentials, got %+v", pots)
	}
}

func TestExtractPotentialsSortedDescending(t *testing.T) {
	st := mustStore(t)
	idx := tokenindex.Build(st.AllRows())
	cfg := config.Default()

	tokens := strings.Fields("trung hoa cau giay ha noi")
	pots := ExtractPotentials(tokens, "", "", st, idx, cfg)
	for i := 1; i < len(pots); i++ {
		if pots[i].RawScore > pots[i-1].RawScore {
			t.Fatalf("potentials not sorted descending at %d: %v > %v", i, pots[i].RawScore, pots[i-1].RawScore)
		}
	}
}

func TestNumericKeywordContextMultiplier(t *testing.T) {
	st := mustStore(t)
	idx := tokenindex.Build(st.AllRows())
	cfg := config.Default()

	withKeyword := ExtractPotentials(strings.Fields("phuong 4 quan 8 ho chi minh"), "", "", st, idx, cfg)
	withoutKeyword := ExtractPotentials(strings.Fields("4 quan 8 ho chi minh"), "", "", st, idx, cfg)

	find := func(pots []models.Potential, level models.Level, name string) (models.Potential, bool) {
		for _, p := range pots {
			if p.Level == level && p.CanonicalName == name {
				return p, true
			}
		}
		return models.Potential{}, false
	}

	wardWith, ok1 := find(withKeyword, models.LevelWard, "4")
	wardWithout, ok2 := find(withoutKeyword, models.LevelWard, "4")
	if ok1 && ok2 && wardWith.RawScore <= wardWithout.RawScore {
		t.Fatalf("expected keyword-context ward score to exceed no-context score: %v vs %v", wardWith.RawScore, wardWithout.RawScore)
	}
}

func TestUncoveredSpans(t *testing.T) {
	covered := []models.Span{{Start: 2, End: 4}, {Start: 6, End: 7}}
	gaps := UncoveredSpans(covered, 8)
	want := []models.Span{{Start: 0, End: 2}, {Start: 4, End: 6}, {Start: 7, End: 8}}
	if len(gaps) != len(want) {
		t.Fatalf("got %v want %v", gaps, want)
	}
	for i := range want {
		if gaps[i] != want[i] {
			t.Fatalf("gap %d: got %v want %v", i, gaps[i], want[i])
		}
	}
}

func TestEnumerateKeywordContext(t *testing.T) {
	grams := Enumerate(strings.Fields("quan 8 ho chi minh"))
	var found bool
	for _, g := range grams {
		if g.Text == "8" && g.KeywordContext {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ngram \"8\" to carry keyword context after \"quan\"")
	}
}
