package models

// Level identifies which tier of the hierarchy a Potential or Candidate
// field belongs to.
type Level string

const (
	LevelProvince Level = "province"
	LevelDistrict Level = "district"
	LevelWard     Level = "ward"
	LevelStreet   Level = "street"
)

// Source marks how a Potential was produced.
type Source string

const (
	SourceExact Source = "exact"
	SourceAbbrev Source = "abbrev"
	SourceFuzzy Source = "fuzzy"
)

// Span is a half-open [Start, End) range of token indices into the
// normalized token stream produced by Phase 1.
type Span struct {
	Start int
	End   int
}

// Potential is a single scored candidate for one level, extracted from one
// token span during Phase 2.
type Potential struct {
	Level          Level
	CanonicalName  string // normalized name, as stored on the matched row
	Span           Span
	RawScore       float64
	Source         Source
	KeywordContext bool
	RowID          int64 // the AdminRow this potential scores against
}
