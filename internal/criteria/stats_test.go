package criteria

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hidroplan/rhnr-scoring/internal/domain"
)

func fp(v float64) *float64 { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRatedDischarge(t *testing.T) {
	assert.InDelta(t, 3.6742, RatedDischarge(2.0, 1.0, 1.5, 2.5), 1e-4)
	assert.Equal(t, 0.0, RatedDischarge(2.0, 1.0, 1.5, 1.0), "stage at the offset")
	assert.Equal(t, 0.0, RatedDischarge(2.0, 1.0, 1.5, 0.5), "stage below the offset")
}

func testCurve(from, to time.Time, minCm, maxCm float64) domain.RatingCurve {
	return domain.RatingCurve{
		ValidFrom:  from,
		ValidTo:    to,
		StageMinCm: minCm,
		StageMaxCm: maxCm,
		CoefA:      fp(2.0),
		CoefH0:     fp(1.0),
		CoefN:      fp(1.5),
	}
}

func TestCurveDeviationMeanPercentage(t *testing.T) {
	curves := []domain.RatingCurve{
		testCurve(day(2000, 1, 1), day(2030, 1, 1), 0, 1000),
	}
	summaries := []domain.DischargeSummary{
		// Rated at stage 2.5 m is 3.6742; measured 4.0 deviates 8.14%.
		{Date: day(2020, 6, 1), StageCm: 250, Discharge: fp(4.0)},
		// Rated exactly, zero deviation.
		{Date: day(2020, 7, 1), StageCm: 250, Discharge: fp(RatedDischarge(2.0, 1.0, 1.5, 2.5))},
	}

	deviation, err := CurveDeviation(summaries, curves, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.InDelta(t, 4.0722, deviation, 1e-3)
}

func TestCurveDeviationSkipsUnmatchedAndNullMeasurements(t *testing.T) {
	curves := []domain.RatingCurve{
		testCurve(day(2000, 1, 1), day(2030, 1, 1), 100, 300),
	}
	summaries := []domain.DischargeSummary{
		{Date: day(2020, 6, 1), StageCm: 250, Discharge: fp(4.0)},
		{Date: day(2020, 6, 2), StageCm: 250, Discharge: nil},       // null discharge
		{Date: day(2020, 6, 3), StageCm: 250, Discharge: fp(0)},     // failed gauging
		{Date: day(2020, 6, 4), StageCm: 500, Discharge: fp(4.0)},   // stage out of range
		{Date: day(1990, 6, 5), StageCm: 250, Discharge: fp(4.0)},   // date out of window
	}

	deviation, err := CurveDeviation(summaries, curves, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.InDelta(t, 8.1443, deviation, 1e-3)
}

func TestCurveDeviationFatalCases(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	curves := []domain.RatingCurve{
		testCurve(day(2000, 1, 1), day(2030, 1, 1), 0, 1000),
	}

	_, err := CurveDeviation(nil, curves, logger)
	assert.ErrorIs(t, err, domain.ErrNoDischargeSummaries)

	_, err = CurveDeviation([]domain.DischargeSummary{{Date: day(2020, 6, 1), StageCm: 250, Discharge: fp(4)}}, nil, logger)
	assert.ErrorIs(t, err, domain.ErrNoRatingCurves)

	broken := curves
	broken[0].CoefN = nil
	_, err = CurveDeviation([]domain.DischargeSummary{{Date: day(2020, 6, 1), StageCm: 250, Discharge: fp(4)}}, broken, logger)
	assert.ErrorIs(t, err, domain.ErrNilCurveCoefficient)
}

func TestCurveDeviationErrorsWhenEverythingSkipped(t *testing.T) {
	curves := []domain.RatingCurve{
		testCurve(day(2000, 1, 1), day(2030, 1, 1), 100, 300),
	}
	summaries := []domain.DischargeSummary{
		{Date: day(2020, 6, 1), StageCm: 900, Discharge: fp(4.0)},
	}

	_, err := CurveDeviation(summaries, curves, slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}

func fullYear(year int, consistency int) []domain.SeriesPoint {
	var points []domain.SeriesPoint
	for d := day(year, 1, 1); d.Year() == year; d = d.AddDate(0, 0, 1) {
		points = append(points, domain.SeriesPoint{Date: d, Value: fp(1.0), Consistency: consistency})
	}
	return points
}

func TestSeriesExtentYearsThreshold(t *testing.T) {
	var points []domain.SeriesPoint
	points = append(points, fullYear(2020, domain.ConsistencyRaw)...)
	// 2021 keeps only 300 recorded days, an 18% failure rate.
	points = append(points, fullYear(2021, domain.ConsistencyRaw)[:300]...)
	// 2022 keeps 340 recorded days, under the 10% threshold.
	points = append(points, fullYear(2022, domain.ConsistencyRaw)[:340]...)

	assert.Equal(t, 2, SeriesExtentYears(points, 0.10))
}

func TestSeriesExtentYearsSkipsNullObservations(t *testing.T) {
	points := fullYear(2020, domain.ConsistencyRaw)
	for i := 0; i < 60; i++ {
		points[i].Value = nil
	}

	assert.Equal(t, 0, SeriesExtentYears(points, 0.10))
}

func TestSeriesExtentYearsDeduplicatesByDate(t *testing.T) {
	// The raw and consisted series fully overlap; each day counts once.
	points := fullYear(2020, domain.ConsistencyRaw)
	points = append(points, fullYear(2020, domain.ConsistencyConsisted)...)

	assert.Equal(t, 1, SeriesExtentYears(points, 0.10))
}

func TestDischargeFrequency(t *testing.T) {
	var summaries []domain.DischargeSummary
	for year := 2015; year < 2025; year++ {
		summaries = append(summaries,
			domain.DischargeSummary{Date: day(year, 3, 1)},
			domain.DischargeSummary{Date: day(year, 9, 1)},
		)
	}

	total, perYear := DischargeFrequency(summaries, 2025)
	assert.Equal(t, 20, total)
	assert.InDelta(t, 2.0, perYear, 1e-9)
}

func TestDischargeFrequencyClampsSpan(t *testing.T) {
	summaries := []domain.DischargeSummary{
		{Date: day(2025, 3, 1)},
		{Date: day(2025, 9, 1)},
	}

	total, perYear := DischargeFrequency(summaries, 2025)
	assert.Equal(t, 2, total)
	assert.InDelta(t, 2.0, perYear, 1e-9)
}

func TestDischargeFrequencyEmpty(t *testing.T) {
	total, perYear := DischargeFrequency(nil, 2025)
	assert.Zero(t, total)
	assert.Zero(t, perYear)
}
