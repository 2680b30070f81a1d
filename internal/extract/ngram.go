package extract

import (
	"regexp"

	"github.com/vnaddrnorm/core/internal/models"
)

// maxNgram bounds n-gram enumeration length; administrative names rarely
// run past four words ("thanh pho ho chi minh" being the usual outlier,
// handled via abbreviation expansion in Phase 1 instead).
const maxNgram = 4

var reAdminKeyword = regexp.MustCompile(`^(phuong|xa|quan|huyen|thanh|thi|tran|pho)$`)
var reAllDigits = regexp.MustCompile(`^[0-9]+$`)

// Ngram is one contiguous span of normalized tokens considered as a
// potential match for some administrative level.
type Ngram struct {
	Text           string
	Span           models.Span
	KeywordContext bool // preceded by an admin keyword token
}

// Enumerate returns every n-gram of tokens[?:?] for n in [1, maxNgram],
// each tagged with whether it is immediately preceded by an administrative
// keyword (spec §4.4's numeric-disambiguation signal).
func Enumerate(tokens []string) []Ngram {
	var out []Ngram
	for start := range tokens {
		keywordBefore := start > 0 && reAdminKeyword.MatchString(tokens[start-1])
		text := ""
		for n := 1; n <= maxNgram && start+n <= len(tokens); n++ {
			if n == 1 {
				text = tokens[start]
			} else {
				text = text + " " + tokens[start+n-1]
			}
			out = append(out, Ngram{
				Text:           text,
				Span:           models.Span{Start: start, End: start + n},
				KeywordContext: keywordBefore,
			})
		}
	}
	return out
}

// IsShortNumeric reports whether s is a purely numeric token of 1-2 digits,
// the class spec §4.4's keyword-context multiplier applies to (3+ digit
// numbers are street numbers and are not scored against any admin level).
func IsShortNumeric(s string) bool {
	return reAllDigits.MatchString(s) && len(s) <= 2
}
