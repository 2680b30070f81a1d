package extract

import "github.com/vnaddrnorm/core/internal/models"

// UncoveredSpans returns the gaps in [0,total) not touched by any span in
// covered, in ascending order. Nothing in the pipeline calls it:
// ExtractPotentials emits no street-level Potentials, and Phase 5 computes
// the residual text on its own.
func UncoveredSpans(covered []models.Span, total int) []models.Span {
	touched := make([]bool, total)
	for _, s := range covered {
		for i := s.Start; i < s.End && i < total; i++ {
			touched[i] = true
		}
	}

	var gaps []models.Span
	start := -1
	for i := 0; i <= total; i++ {
		if i < total && !touched[i] {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			gaps = append(gaps, models.Span{Start: start, End: i})
			start = -1
		}
	}
	return gaps
}
