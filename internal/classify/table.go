// Package classify holds the user-editable classification tables that map raw
// criterion values to ordinal scores, their system defaults, and the
// consistency validation that must pass before every scoring run.
package classify

import (
	"fmt"
	"math"

	"github.com/hidroplan/rhnr-scoring/internal/domain"
)

// IntervalRow scores every value in the half-open range [Lower, Upper).
// A nil Lower means −∞, a nil Upper means +∞.
type IntervalRow struct {
	Lower *float64 `json:"lower"`
	Upper *float64 `json:"upper"`
	Score float64  `json:"score"`
}

// CategoryRow scores one category label.
type CategoryRow struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Table is one criterion's classification table, in interval or categorical
// form. Exactly one of Intervals and Categories is populated.
type Table struct {
	FieldName  string        `json:"field_name"`
	Intervals  []IntervalRow `json:"intervals,omitempty"`
	Categories []CategoryRow `json:"categories,omitempty"`
}

// IsCategorical reports whether the table is in categorical form.
func (t Table) IsCategorical() bool { return len(t.Categories) > 0 }

// ScoreNumber finds the unique interval containing v and returns its score.
// Tables are validated before scoring, so a missed lookup is an internal
// invariant violation, reported as ErrNoMatchingInterval.
func (t Table) ScoreNumber(v float64) (float64, error) {
	for _, row := range t.Intervals {
		lower := math.Inf(-1)
		if row.Lower != nil {
			lower = *row.Lower
		}
		upper := math.Inf(1)
		if row.Upper != nil {
			upper = *row.Upper
		}
		if lower <= v && v < upper {
			return row.Score, nil
		}
	}
	return 0, fmt.Errorf("criterion %q, value %g: %w", t.FieldName, v, domain.ErrNoMatchingInterval)
}

// ScoreCategory returns the score of the row labeled with the category.
func (t Table) ScoreCategory(category string) (float64, error) {
	for _, row := range t.Categories {
		if row.Category == category {
			return row.Score, nil
		}
	}
	return 0, &domain.ValidationError{
		FieldName: t.FieldName,
		Reason:    fmt.Sprintf("category %q does not exist", category),
	}
}

// Tables is the frozen per-run set of classification tables, keyed by
// criterion field name.
type Tables map[string]Table
