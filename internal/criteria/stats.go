package criteria

import (
	"log/slog"
	"math"
	"time"

	"github.com/hidroplan/rhnr-scoring/internal/domain"
)

// RatedDischarge evaluates the power-law rating-curve equation for a stage in
// meters: Q = a × (stage − H0)^n, zero at or below the offset H0.
func RatedDischarge(a, h0, n, stageM float64) float64 {
	if stageM <= h0 {
		return 0
	}
	return a * math.Pow(stageM-h0, n)
}

// CurveDeviation computes the mean percentage deviation between measured
// discharges and the discharge rated by the station's curve equations.
//
// For each measurement the curve whose validity window contains the date and
// whose stage range contains the measured stage is selected (first match in
// validity order). Measurements with no matching curve or with a null/zero
// discharge are skipped with a diagnostic. A matched curve with a null
// coefficient is fatal.
func CurveDeviation(summaries []domain.DischargeSummary, curves []domain.RatingCurve, logger *slog.Logger) (float64, error) {
	if len(summaries) == 0 {
		return 0, domain.ErrNoDischargeSummaries
	}
	if len(curves) == 0 {
		return 0, domain.ErrNoRatingCurves
	}

	var deviations []float64
	for _, m := range summaries {
		if m.Discharge == nil || *m.Discharge == 0 {
			logger.Warn("discharge summary with null discharge skipped",
				"station", m.StationCode, "date", m.Date.Format(time.DateOnly))
			continue
		}

		curve, ok := matchCurve(curves, m)
		if !ok {
			logger.Warn("no rating curve covers measurement",
				"station", m.StationCode,
				"date", m.Date.Format(time.DateOnly),
				"stage_cm", m.StageCm)
			continue
		}

		if curve.CoefA == nil || curve.CoefH0 == nil || curve.CoefN == nil {
			return 0, domain.ErrNilCurveCoefficient
		}

		// Stage is stored in centimeters; the curve is fitted in meters.
		rated := RatedDischarge(*curve.CoefA, *curve.CoefH0, *curve.CoefN, m.StageCm/100)
		deviations = append(deviations, 100*math.Abs(*m.Discharge-rated) / *m.Discharge)
	}

	if len(deviations) == 0 {
		return 0, domain.ErrNoRatingCurves
	}
	return mean(deviations), nil
}

func matchCurve(curves []domain.RatingCurve, m domain.DischargeSummary) (domain.RatingCurve, bool) {
	for _, c := range curves {
		if c.Contains(m.Date, m.StageCm) {
			return c, true
		}
	}
	return domain.RatingCurve{}, false
}

// SeriesExtentYears counts the calendar years with an adequate record: years
// whose fraction of missing days does not exceed failureThreshold. Duplicate
// dates keep the point with the higher consistency level; null observations
// do not count as recorded days.
func SeriesExtentYears(points []domain.SeriesPoint, failureThreshold float64) int {
	best := make(map[time.Time]domain.SeriesPoint, len(points))
	for _, p := range points {
		if p.Value == nil {
			continue
		}
		day := p.Date.Truncate(24 * time.Hour)
		if prev, ok := best[day]; !ok || p.Consistency > prev.Consistency {
			best[day] = p
		}
	}

	observed := make(map[int]int)
	for day := range best {
		observed[day.Year()]++
	}

	years := 0
	for year, days := range observed {
		missing := float64(daysInYear(year)-days) / float64(daysInYear(year))
		if missing <= failureThreshold {
			years++
		}
	}
	return years
}

// DischargeFrequency returns the total number of discharge measurements and
// the measurements-per-year rate over the span from the earliest measurement
// year to the reference year.
func DischargeFrequency(summaries []domain.DischargeSummary, referenceYear int) (total int, perYear float64) {
	if len(summaries) == 0 {
		return 0, 0
	}
	minYear := summaries[0].Date.Year()
	for _, m := range summaries[1:] {
		if y := m.Date.Year(); y < minYear {
			minYear = y
		}
	}
	span := referenceYear - minYear
	if span < 1 {
		span = 1
	}
	return len(summaries), float64(len(summaries)) / float64(span)
}

func daysInYear(year int) int {
	if time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC).YearDay() == 366 {
		return 366
	}
	return 365
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
