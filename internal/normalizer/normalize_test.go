package normalizer

import (
	"strings"
	"testing"
)

type fakeAbbrev map[string]string

func (f fakeAbbrev) LookupAbbreviation(key, province, district string) (string, bool) {
	w, ok := f[key]
	return w, ok
}

func TestNormalizeIdempotent(t *testing.T) {
	cases := []string{
		"P. Điện Biên, Q. Ba Đình, HN",
		"660/8 PHAM THE HIEN P4 Q8",
		"22 NGO 629 GIAI PHONG HA NOI",
		"co nhue1",
		"8 Nguyen Hue Ben Nghe Quan 1 TP HCM",
	}
	for _, raw := range cases {
		t.Run(raw, func(t *testing.T) {
			first := Normalize(raw, "", "", nil)
			second := Normalize(first.Joined(), "", "", nil)
			if first.Joined() != second.Joined() {
				t.Fatalf("not idempotent: %q -> %q -> %q", raw, first.Joined(), second.Joined())
			}
		})
	}
}

func TestLetterDigitSpacing(t *testing.T) {
	got := Normalize("co nhue1", "", "", nil).Joined()
	want := "co nhue 1"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPunctuatedAbbrevExpansion(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"P4 Q8", "phuong 4 quan 8"},
		{"TT. Trau Quy", "thi tran trau quy"},
		{"TP HCM", "thanh pho hcm"},
	}
	for _, tc := range tests {
		got := Normalize(tc.raw, "", "", nil).Joined()
		if got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestHCMDistrictDictRequiresContext(t *testing.T) {
	withoutHint := Normalize("TB", "", "", nil).Joined()
	if strings.Contains(withoutHint, "tan binh") {
		t.Fatalf("HCM dict should not fire from a bare %q without HCM context: got %q", "TB", withoutHint)
	}
	withSuffix := Normalize("Q. TB", "", "", nil).Joined()
	if !strings.Contains(withSuffix, "tan binh") {
		t.Fatalf("HCM dict should expand a trailing %q even without a hint: got %q", "Q. TB", withSuffix)
	}
	withHint := Normalize("Q. TB", "Ho Chi Minh", "", nil).Joined()
	if !strings.Contains(withHint, "tan binh") {
		t.Fatalf("HCM dict should expand %q under an HCM hint: got %q", "Q. TB", withHint)
	}
}

func TestAbbreviationStoreLookup(t *testing.T) {
	store := fakeAbbrev{"dbp": "dien bien phu"}
	got := Normalize("dbp", "", "", store).Joined()
	want := "dien bien phu"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestOriginalSpanAlignment(t *testing.T) {
	r := Normalize("P4 Q8 Ha Noi", "", "", nil)
	start, end, ok := r.OriginalSpan(0, 2)
	if !ok {
		t.Fatalf("expected alignment for first token")
	}
	if r.Original[start:end] != "p4" {
		t.Fatalf("got span %q, want %q", r.Original[start:end], "p4")
	}
}
