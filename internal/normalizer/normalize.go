package normalizer

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// AbbreviationLookup is the narrow slice of the reference store Phase 1
// needs: context-scoped key -> word resolution (spec §4.1).
type AbbreviationLookup interface {
	LookupAbbreviation(key, provinceHint, districtHint string) (string, bool)
}

// OriginalToken is one whitespace-delimited token of the pre-Phase-1
// string, with its byte span in that string. Phase 5 uses these spans to
// compute the residual.
type OriginalToken struct {
	Text  string
	Start int
	End   int
}

// AlignmentRange maps one OriginalToken to the half-open range of
// NormResult.Tokens it produced (it may be empty, one, or several).
type AlignmentRange struct {
	NormStart int
	NormEnd   int
}

// NormResult is Phase 1's output: the normalized token stream plus enough
// bookkeeping to map any span of it back to original byte offsets.
type NormResult struct {
	Original       string
	OriginalTokens []OriginalToken
	Tokens         []string
	Alignment      []AlignmentRange
}

// Joined returns the normalized tokens as a single space-separated string.
func (r NormResult) Joined() string {
	return strings.Join(r.Tokens, " ")
}

// OriginalSpan returns the [start,end) byte range in Original covered by
// normalized token indices [normStart, normEnd).
func (r NormResult) OriginalSpan(normStart, normEnd int) (int, int, bool) {
	start, end := -1, -1
	for i, rng := range r.Alignment {
		if rng.NormEnd <= normStart || rng.NormStart >= normEnd {
			continue
		}
		if start == -1 || r.OriginalTokens[i].Start < start {
			start = r.OriginalTokens[i].Start
		}
		if r.OriginalTokens[i].End > end {
			end = r.OriginalTokens[i].End
		}
	}
	if start == -1 {
		return 0, 0, false
	}
	return start, end, true
}

var (
	reP  = regexp.MustCompile(`^p\.(\d*)$|^p(\d+)$`)
	reQ  = regexp.MustCompile(`^q\.(\d*)$|^q(\d+)$`)
	reTT = regexp.MustCompile(`^tt\.?$`)
	reTP = regexp.MustCompile(`^tp\.?$`)
	reF  = regexp.MustCompile(`^f(\d+)$`)

	reDistrictSignal = regexp.MustCompile(`\bquan\b|\bq\.\d*\b|\bq\d+\b`)
	reHCMSuffix      = regexp.MustCompile(`\bq\.?\s+(tb|gv|bt|td|pn)\.?\s*$`)

	reSeparators   = regexp.MustCompile(`[,\-_/]`)
	reNonAllowed   = regexp.MustCompile(`[^a-z0-9 ]`)
	reLetterDigit  = regexp.MustCompile(`([a-z])([0-9])`)
	reDigitLetter  = regexp.MustCompile(`([0-9])([a-z])`)
	reWhitespace   = regexp.MustCompile(`\s+`)
)

// expandPunctuatedAbbrev is Phase 1 step 3: pattern-based expansion of
// punctuated administrative abbreviations. Returns the replacement tokens
// and whether the word was consumed (ineligible for the step-4 store
// lookup that follows).
func expandPunctuatedAbbrev(word string, hasDistrictSignal, useHCM bool) ([]string, bool) {
	if m := reP.FindStringSubmatch(word); m != nil {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		if digits == "" {
			return []string{"phuong"}, true
		}
		return []string{"phuong", digits}, true
	}
	if m := reQ.FindStringSubmatch(word); m != nil {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		if digits == "" {
			return []string{"quan"}, true
		}
		return []string{"quan", digits}, true
	}
	if reTT.MatchString(word) {
		return []string{"thi", "tran"}, true
	}
	if reTP.MatchString(word) {
		return []string{"thanh", "pho"}, true
	}
	if m := reF.FindStringSubmatch(word); m != nil && hasDistrictSignal {
		return []string{"phuong", m[1]}, true
	}
	if useHCM {
		key := strings.TrimSuffix(word, ".")
		if expansion, ok := hcmDistrictDict[key]; ok {
			return strings.Fields(expansion), true
		}
	}
	return []string{word}, false
}

// cleanToken applies steps 5-7 to a single already-lowercased token:
// diacritic stripping, separator/character cleanup, and letter<->digit
// spacing. May split one token into several.
func cleanToken(tok string) []string {
	tok = RemoveAccentsAndLowercase(tok)
	tok = reSeparators.ReplaceAllString(tok, " ")
	tok = reNonAllowed.ReplaceAllString(tok, "")
	for i := 0; i < 2; i++ {
		tok = reLetterDigit.ReplaceAllString(tok, "$1 $2")
		tok = reDigitLetter.ReplaceAllString(tok, "$1 $2")
	}
	tok = reWhitespace.ReplaceAllString(strings.TrimSpace(tok), " ")
	if tok == "" {
		return nil
	}
	return strings.Split(tok, " ")
}

// Normalize runs the full Phase 1 pipeline (spec §4.3) uncached.
func Normalize(raw, provinceHint, districtHint string, store AbbreviationLookup) NormResult {
	s := norm.NFC.String(raw)
	s = strings.ToLower(s)

	hasDistrictSignal := reDistrictSignal.MatchString(s)
	useHCM := isHCMHint(provinceHint) || reHCMSuffix.MatchString(s)

	var originalTokens []OriginalToken
	i := 0
	for i < len(s) {
		for i < len(s) && s[i] == ' ' {
			i++
		}
		if i >= len(s) {
			break
		}
		start := i
		for i < len(s) && s[i] != ' ' {
			i++
		}
		originalTokens = append(originalTokens, OriginalToken{Text: s[start:i], Start: start, End: i})
	}

	alignment := make([]AlignmentRange, len(originalTokens))
	var tokens []string

	for idx, ot := range originalTokens {
		word := ot.Text
		expandedTokens, expanded := expandPunctuatedAbbrev(word, hasDistrictSignal, useHCM)
		if !expanded && store != nil {
			if w, ok := store.LookupAbbreviation(word, provinceHint, districtHint); ok {
				expandedTokens = strings.Fields(w)
				expanded = true
			}
		}

		normStart := len(tokens)
		for _, et := range expandedTokens {
			tokens = append(tokens, cleanToken(et)...)
		}
		alignment[idx] = AlignmentRange{NormStart: normStart, NormEnd: len(tokens)}
	}

	return NormResult{
		Original:       s,
		OriginalTokens: originalTokens,
		Tokens:         tokens,
		Alignment:      alignment,
	}
}

type cacheKey struct {
	raw      string
	province string
	district string
}

// Normalizer wraps Normalize with the Phase-1 LRU cache spec §5 requires,
// keyed on (raw, province_hint, district_hint).
type Normalizer struct {
	store  AbbreviationLookup
	cache  *lru.Cache[cacheKey, NormResult]
	logger *zap.Logger
}

// NewNormalizer builds a Normalizer. size is the LRU capacity (spec §5
// requires >= 10000 for the production cache).
func NewNormalizer(store AbbreviationLookup, size int, logger *zap.Logger) (*Normalizer, error) {
	if size <= 0 {
		size = 10000
	}
	c, err := lru.New[cacheKey, NormResult](size)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{store: store, cache: c, logger: logger}, nil
}

// Normalize returns the cached NormResult if present, otherwise computes
// and caches it.
func (n *Normalizer) Normalize(raw, provinceHint, districtHint string) NormResult {
	key := cacheKey{raw: raw, province: provinceHint, district: districtHint}
	if v, ok := n.cache.Get(key); ok {
		n.logger.Debug("phase1 cache hit", zap.String("raw", raw))
		return v
	}
	r := Normalize(raw, provinceHint, districtHint, n.store)
	n.cache.Add(key, r)
	n.logger.Debug("phase1 normalized", zap.String("raw", raw), zap.Int("tokens", len(r.Tokens)))
	return r
}
