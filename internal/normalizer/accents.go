// Package normalizer implements Phase 1 preprocessing: Unicode
// normalization, context-aware abbreviation expansion, diacritic
// stripping, and letter/digit spacing.
package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics loại bỏ dấu tiếng Việt một cách an toàn: NFD decompose,
// drop combining marks, NFC recompose. đ/Đ are untouched here since they
// are standalone letters, not base+combining-mark sequences.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, _ := transform.String(t, s)
	return out
}

// isMn kiểm tra xem rune có phải là diacritic mark không
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// foldDStroke maps đ/Đ to d/D; StripDiacritics alone cannot remove it.
func foldDStroke(s string) string {
	s = strings.ReplaceAll(s, "đ", "d")
	s = strings.ReplaceAll(s, "Đ", "D")
	return s
}

// RemoveAccentsAndLowercase loại bỏ dấu, fold đ, và chuyển về lowercase.
func RemoveAccentsAndLowercase(s string) string {
	return strings.ToLower(foldDStroke(StripDiacritics(s)))
}
