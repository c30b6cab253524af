package classify

import (
	"fmt"
	"math"

	"github.com/hidroplan/rhnr-scoring/internal/domain"
)

// Validate runs every consistency check on a table. Any violation is a
// ValidationError naming the offending criterion; the scoring run must not
// start while one exists.
func Validate(t Table) error {
	if t.IsCategorical() {
		if err := checkCategories(t); err != nil {
			return err
		}
	} else {
		if err := checkRowBounds(t); err != nil {
			return err
		}
		if err := checkRowOverlap(t); err != nil {
			return err
		}
	}
	return checkScoreUniqueness(t)
}

// ValidateAll validates every table in the set, failing on the first
// violation.
func ValidateAll(tables Tables) error {
	for _, t := range tables {
		if err := Validate(t); err != nil {
			return err
		}
	}
	return nil
}

// checkCategories rejects duplicate category labels.
func checkCategories(t Table) error {
	seen := make(map[string]struct{}, len(t.Categories))
	for _, row := range t.Categories {
		if _, dup := seen[row.Category]; dup {
			return &domain.ValidationError{
				FieldName: t.FieldName,
				Reason:    fmt.Sprintf("category %q is repeated", row.Category),
			}
		}
		seen[row.Category] = struct{}{}
	}
	return nil
}

// checkRowBounds rejects inverted intervals and fully null rows. A nil lower
// bound is accepted and reads as −∞, matching the lookup convention.
func checkRowBounds(t Table) error {
	if len(t.Intervals) == 0 {
		return &domain.ValidationError{FieldName: t.FieldName, Reason: "table has no rows"}
	}
	for _, row := range t.Intervals {
		if row.Lower == nil && row.Upper == nil {
			return &domain.ValidationError{
				FieldName: t.FieldName,
				Reason:    "a row has neither a lower nor an upper bound",
			}
		}
		if row.Lower != nil && row.Upper != nil && *row.Lower > *row.Upper {
			return &domain.ValidationError{
				FieldName: t.FieldName,
				Reason:    fmt.Sprintf("lower bound %g exceeds upper bound %g", *row.Lower, *row.Upper),
			}
		}
	}
	return nil
}

// checkRowOverlap rejects any pair of rows whose [lower, upper) spans
// intersect. Pairwise comparison; tables are at most a handful of rows.
func checkRowOverlap(t Table) error {
	for i, a := range t.Intervals {
		aLo, aHi := bounds(a)
		for j, b := range t.Intervals {
			if i == j {
				continue
			}
			bLo, bHi := bounds(b)
			if bLo > aLo && bLo < aHi {
				return overlapError(t.FieldName)
			}
			if bHi > aLo && bHi < aHi {
				return overlapError(t.FieldName)
			}
			// Identical spans slip past the strict-inside checks.
			if i < j && bLo == aLo && bHi == aHi {
				return overlapError(t.FieldName)
			}
		}
	}
	return nil
}

// checkScoreUniqueness rejects two rows sharing a score, in either form.
func checkScoreUniqueness(t Table) error {
	seen := make(map[float64]struct{})
	add := func(score float64) error {
		if _, dup := seen[score]; dup {
			return &domain.ValidationError{
				FieldName: t.FieldName,
				Reason:    fmt.Sprintf("score %g is repeated", score),
			}
		}
		seen[score] = struct{}{}
		return nil
	}
	for _, row := range t.Intervals {
		if err := add(row.Score); err != nil {
			return err
		}
	}
	for _, row := range t.Categories {
		if err := add(row.Score); err != nil {
			return err
		}
	}
	return nil
}

func bounds(row IntervalRow) (float64, float64) {
	lo := math.Inf(-1)
	if row.Lower != nil {
		lo = *row.Lower
	}
	hi := math.Inf(1)
	if row.Upper != nil {
		hi = *row.Upper
	}
	return lo, hi
}

func overlapError(field string) error {
	return &domain.ValidationError{FieldName: field, Reason: "interval rows overlap"}
}
