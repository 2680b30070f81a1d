package models

// CandidateSource marks how a Candidate triple was assembled.
type CandidateSource string

const (
	CandidateSourceLocal          CandidateSource = "local"
	CandidateSourceDisambiguation CandidateSource = "disambiguation"
	CandidateSourceStreet         CandidateSource = "street"
	CandidateSourceExternal       CandidateSource = "external"
)

// Candidate is a full (province, district, ward) combination assembled in
// Phase 3 from Potentials, any of which may be absent.
type Candidate struct {
	ProvinceRowID int64
	DistrictRowID int64
	WardRowID     int64

	ProvinceName string // normalized, empty if absent
	DistrictName string
	WardName     string

	ProvinceDisplay string // full display name, empty if absent
	DistrictDisplay string
	WardDisplay     string

	ProvinceScore float64 // raw Phase 2 score, 0 if absent
	DistrictScore float64
	WardScore     float64

	ProvinceSpan Span
	DistrictSpan Span
	WardSpan     Span
	HasProvince  bool
	HasDistrict  bool
	HasWard      bool

	Source         CandidateSource
	HierarchyValid bool

	// Populated in Phase 4.
	MatchType      MatchType
	FinalConfidence float64
	AtRuleScore     float64
	GeoContextScore float64
}

// HasSpan reports whether level carries a meaningful token span (it will
// not for externally-sourced candidates).
func (c *Candidate) HasSpan(level Level) bool {
	if c.Source == CandidateSourceExternal {
		return false
	}
	switch level {
	case LevelProvince:
		return c.HasProvince
	case LevelDistrict:
		return c.HasDistrict
	case LevelWard:
		return c.HasWard
	}
	return false
}
