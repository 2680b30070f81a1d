package extract

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"

	"github.com/vnaddrnorm/core/internal/config"
)

// tokenSortRatio mirrors fuzzywuzzy's token_sort_ratio: sort each string's
// tokens alphabetically, join, then compare. We use Jaro-Winkler as the
// underlying similarity metric, the same choice the teacher's sim()
// function makes for its ensemble (address_matcher.go), with the same
// (0.7, 4) boost parameters.
func tokenSortRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return smetrics.JaroWinkler(sortedJoin(a), sortedJoin(b), 0.7, 4)
}

func sortedJoin(s string) string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

// levenshteinNormalized returns 1 - (edit distance / max length), in [0,1].
func levenshteinNormalized(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	den := len(a)
	if len(b) > den {
		den = len(b)
	}
	if den == 0 {
		return 1
	}
	return 1.0 - float64(d)/float64(den)
}

// Ensemble computes spec §4.4.2c's S = w_ts*token_sort_ratio +
// w_lev*levenshtein_normalized.
func Ensemble(a, b string, w config.EnsembleWeights) float64 {
	return w.TokenSort*tokenSortRatio(a, b) + w.Levenshtein*levenshteinNormalized(a, b)
}
