package domain

import (
	"errors"
	"fmt"
)

// Configuration/data errors. Calculators either propagate these as fatal for
// the whole run or degrade to a Null/zero value, per calculator.
var (
	// ErrMissingDrainageArea reports a station without a stored upstream
	// drainage area where one is required.
	ErrMissingDrainageArea = errors.New("station has no upstream drainage area")

	// ErrStationNotHidroreferenced reports a station with no basin-code
	// mapping in the topology source. Always fatal: topology-dependent
	// criteria cannot be computed without it.
	ErrStationNotHidroreferenced = errors.New("station is not hidro-referenced")

	// ErrMissingCoordinates reports a station without usable coordinates for
	// a point-in-polygon membership check.
	ErrMissingCoordinates = errors.New("station has no coordinates")

	// ErrNoDischargeSummaries reports a station without discharge
	// measurement summaries.
	ErrNoDischargeSummaries = errors.New("station has no discharge summaries")

	// ErrNoRatingCurves reports a station without rating-curve definitions.
	ErrNoRatingCurves = errors.New("station has no rating curves")

	// ErrNilCurveCoefficient reports a matched rating curve with a null
	// power-law coefficient.
	ErrNilCurveCoefficient = errors.New("rating curve has a null coefficient")

	// ErrNoSubBasinRecords reports that no water-security sub-basin records
	// exist upstream of a station's main course.
	ErrNoSubBasinRecords = errors.New("no water-security sub-basin records upstream")
)

// Structural/defect errors: internal invariant violations, never swallowed.
var (
	// ErrNoMatchingInterval reports that a validated interval table matched
	// no row for a value. Tables are validated before every run, so this is
	// an engine defect rather than a data problem.
	ErrNoMatchingInterval = errors.New("no classification interval matches value")
)

// ValidationError reports an inconsistency in a user-edited classification
// table, attributed to the criterion it belongs to. Always fatal to the run.
type ValidationError struct {
	FieldName string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("classification table %q: %s", e.FieldName, e.Reason)
}

// CalculatorError wraps a failure of one calculator for one station so the
// run abort carries a single attributable cause.
type CalculatorError struct {
	FieldName   string
	StationCode int
	Err         error
}

func (e *CalculatorError) Error() string {
	return fmt.Sprintf("criterion %q, station %d: %v", e.FieldName, e.StationCode, e.Err)
}

func (e *CalculatorError) Unwrap() error { return e.Err }
