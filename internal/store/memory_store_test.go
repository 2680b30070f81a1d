package store

import "testing"

var _ Store = (*MemoryStore)(nil)

func mustStore(t *testing.T) *MemoryStore {
	t.Helper()
	s, err := NewMemoryStore(nil)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	return s
}

func TestCandidatesInScope(t *testing.T) {
	s := mustStore(t)

	all := s.CandidatesInScope("", "")
	if len(all) == 0 {
		t.Fatalf("expected rows from embedded fixture")
	}

	hn := s.CandidatesInScope("ha noi", "")
	for _, r := range hn {
		if r.ProvinceNameNormalized != "ha noi" {
			t.Fatalf("got row outside scope: %+v", r)
		}
	}
	if len(hn) == 0 {
		t.Fatalf("expected some Ha Noi rows")
	}

	cg := s.CandidatesInScope("ha noi", "cau giay")
	if len(cg) != 1 || cg[0].WardNameNormalized != "trung hoa" {
		t.Fatalf("expected exactly Cau Giay/Trung Hoa, got %+v", cg)
	}
}

func TestValidateTriple(t *testing.T) {
	s := mustStore(t)

	if !s.ValidateTriple("ha noi", "cau giay", "trung hoa") {
		t.Fatalf("expected valid triple")
	}
	if s.ValidateTriple("ha noi", "cau giay", "trung yen") {
		t.Fatalf("trung yen belongs to thanh xuan, not cau giay")
	}
	if !s.ValidateTriple("ha noi", "thanh xuan", "trung yen") {
		t.Fatalf("expected trung yen valid under thanh xuan")
	}
	if !s.ValidateTriple("", "", "") {
		t.Fatalf("empty triple should be a trivial wildcard match")
	}
}

func TestLookupAbbreviationPrecedence(t *testing.T) {
	s := mustStore(t)

	if w, ok := s.LookupAbbreviation("dbp", "", ""); !ok || w != "dien bien phu" {
		t.Fatalf("got %q,%v want dien bien phu,true", w, ok)
	}
	if w, ok := s.LookupAbbreviation("tysc", "ha noi", "cau giay"); !ok || w != "trung hoa" {
		t.Fatalf("got %q,%v want trung hoa,true (district-scoped)", w, ok)
	}
	if _, ok := s.LookupAbbreviation("tysc", "ha noi", "ba dinh"); ok {
		t.Fatalf("district-scoped abbreviation should not resolve under a different district")
	}
}

func TestLoadAbbreviationsCached(t *testing.T) {
	s := mustStore(t)
	m1 := s.LoadAbbreviations("ha noi", "cau giay")
	if m1["tysc"] != "trung hoa" {
		t.Fatalf("expected tysc in scoped abbreviations, got %v", m1)
	}
	m2 := s.LoadAbbreviations("ha noi", "cau giay")
	if len(m1) != len(m2) {
		t.Fatalf("cached result mismatch")
	}
}
