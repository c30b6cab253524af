package domain

import "time"

// Consistency levels for warehouse series rows.
const (
	ConsistencyRaw       = 1
	ConsistencyConsisted = 2
)

// BasinCodeRecord ties a station to its position in the drainage network:
// its basin code (cobacia), the main-course code of the reach it sits on
// (cocursodag), and the hidro-referenced drainage area.
type BasinCodeRecord struct {
	StationCode int
	Cobacia     string
	Cocursodag  string
	DrainageKm2 *float64
	RiverName   string
}

// SeriesPoint is one dated observation of a station series with its
// consistency level.
type SeriesPoint struct {
	Date        time.Time
	Value       *float64
	Consistency int
}

// DischargeSummary is one field measurement of stage and discharge.
type DischargeSummary struct {
	StationCode int
	Consistency int
	Date        time.Time
	StageCm     float64
	Discharge   *float64 // m³/s, null when the gauging failed
	WetAreaM2   *float64
	WidthM      *float64
	MeanVelMS   *float64
	DepthM      *float64
}

// RatingCurve is a stage-discharge power-law relationship valid for a date
// window and a stage range. Coefficients may be null on malformed curves;
// the deviation statistic treats that as fatal.
type RatingCurve struct {
	StationCode int
	Consistency int
	ValidFrom   time.Time
	ValidTo     time.Time
	StageMinCm  float64
	StageMaxCm  float64
	CoefA       *float64
	CoefH0      *float64
	CoefN       *float64
}

// Contains reports whether the curve covers a measurement's date and stage.
func (c RatingCurve) Contains(date time.Time, stageCm float64) bool {
	if date.Before(c.ValidFrom) || date.After(c.ValidTo) {
		return false
	}
	return stageCm >= c.StageMinCm && stageCm <= c.StageMaxCm
}

// WaterSecurityRecord is one sub-basin row of the water-security index (ISH)
// layer: a numeric composite index weighted by the sub-basin's contributing
// area.
type WaterSecurityRecord struct {
	Cobacia string
	AreaKm2 float64
	Index   float64
}
