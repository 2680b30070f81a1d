package tokenindex

import (
	"testing"

	"github.com/vnaddrnorm/core/internal/models"
)

func sampleRows() []models.AdminRow {
	return []models.AdminRow{
		{RowID: 1, ProvinceNameNormalized: "ha noi", DistrictNameNormalized: "cau giay", WardNameNormalized: "trung hoa"},
		{RowID: 2, ProvinceNameNormalized: "ha noi", DistrictNameNormalized: "thanh xuan", WardNameNormalized: "trung yen"},
		{RowID: 3, ProvinceNameNormalized: "ho chi minh", DistrictNameNormalized: "1", WardNameNormalized: "ben nghe"},
	}
}

func TestRowsContainingAll(t *testing.T) {
	idx := Build(sampleRows())
	got := idx.RowsContainingAll([]string{"ha", "noi"})
	if len(got) != 2 {
		t.Fatalf("expected 2 rows for ha+noi, got %d", len(got))
	}
	if _, ok := got[3]; ok {
		t.Fatalf("row 3 should not match ha+noi")
	}

	got = idx.RowsContainingAll([]string{"trung", "hoa"})
	if len(got) != 1 {
		t.Fatalf("expected 1 row for trung+hoa, got %d", len(got))
	}
	if _, ok := got[1]; !ok {
		t.Fatalf("expected row 1 for trung+hoa")
	}
}

func TestRowsContainingAny(t *testing.T) {
	idx := Build(sampleRows())
	got := idx.RowsContainingAny([]string{"trung", "nghe"})
	if len(got) != 3 {
		t.Fatalf("expected all 3 rows to share trung/nghe tokens, got %d", len(got))
	}
}

func TestRowsContainingAllUnknownToken(t *testing.T) {
	idx := Build(sampleRows())
	got := idx.RowsContainingAll([]string{"nonexistent"})
	if len(got) != 0 {
		t.Fatalf("expected no rows for unknown token")
	}
}
