package criteria

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/hidroplan/rhnr-scoring/internal/basin"
	"github.com/hidroplan/rhnr-scoring/internal/domain"
	"github.com/hidroplan/rhnr-scoring/internal/watershed"
)

// DefaultSeriesFailureThreshold is the largest tolerated fraction of missing
// days for a calendar year to count toward the series extent.
const DefaultSeriesFailureThreshold = 0.10

// Deps carries the long-lived collaborators the calculators share. Built once
// at process start; reader construction is expensive and calculators run once
// per station per run.
type Deps struct {
	Topology  domain.TopologySource
	Geo       domain.GeoSource
	Series    domain.SeriesSource
	Scenarios domain.ScenarioSource
	Locator   *watershed.Locator
	Clock     clockwork.Clock
	Logger    *slog.Logger

	// SeriesFailureThreshold overrides DefaultSeriesFailureThreshold when
	// positive.
	SeriesFailureThreshold float64
}

// Set is the closed set of criterion calculators over one dependency wiring.
type Set struct {
	deps      Deps
	threshold float64
}

// NewSet wires the calculators. Locator defaults to one over Deps.Topology,
// Clock to the real clock and Logger to slog.Default when unset.
func NewSet(deps Deps) *Set {
	if deps.Locator == nil {
		deps.Locator = watershed.NewLocator(deps.Topology)
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	threshold := deps.SeriesFailureThreshold
	if threshold <= 0 {
		threshold = DefaultSeriesFailureThreshold
	}
	return &Set{deps: deps, threshold: threshold}
}

// DrainageArea returns the station's stored upstream drainage area.
// Policy: fatal when absent.
func (s *Set) DrainageArea(_ context.Context, st domain.Station) (domain.RawValue, error) {
	if st.DrainageKm2 == nil {
		return domain.Null(), domain.ErrMissingDrainageArea
	}
	return domain.Number(*st.DrainageKm2), nil
}

// SpatialRelevance measures how much of the station's drainage area is not
// already covered by upstream stations: 1 − (unshadowed upstream area /
// station area). An upstream station is shadowed when another upstream
// station sits between it and the target on the same course. No upstream
// stations means full relevance, 1.0.
// Policy: fatal on missing drainage area or topology mapping.
func (s *Set) SpatialRelevance(ctx context.Context, st domain.Station) (domain.RawValue, error) {
	if st.DrainageKm2 == nil || *st.DrainageKm2 == 0 {
		return domain.Null(), domain.ErrMissingDrainageArea
	}
	ref, err := s.deps.Topology.StationBasinCode(ctx, st.Code)
	if err != nil {
		return domain.Null(), err
	}
	upstream, err := s.deps.Locator.OperationalUpstream(ctx, ref)
	if err != nil {
		return domain.Null(), err
	}
	if len(upstream) == 0 {
		return domain.Number(1), nil
	}

	// Deduplicate identical areas: a primary gauge and its telemetry
	// duplicate report the same physical drainage.
	summed := make(map[float64]struct{})
	total := 0.0
	for _, u := range upstream {
		if shadowed(u, upstream) {
			continue
		}
		if _, dup := summed[*u.DrainageKm2]; dup {
			continue
		}
		summed[*u.DrainageKm2] = struct{}{}
		total += *u.DrainageKm2
	}
	return domain.Number(1 - total / *st.DrainageKm2), nil
}

// shadowed reports whether another upstream station lies between u and the
// target on u's course, making u's drainage area redundant in the sum.
func shadowed(u domain.BasinCodeRecord, upstream []domain.BasinCodeRecord) bool {
	for _, w := range upstream {
		if w.StationCode == u.StationCode {
			continue
		}
		if basin.CompareCodes(w.Cobacia, u.Cobacia) < 0 && strings.HasPrefix(u.Cocursodag, w.Cocursodag) {
			return true
		}
	}
	return false
}

// Semiarid reports whether the station sits inside the semiarid region.
// Policy: fatal on missing coordinates.
func (s *Set) Semiarid(ctx context.Context, st domain.Station) (domain.RawValue, error) {
	if st.Latitude == 0 && st.Longitude == 0 {
		return domain.Null(), domain.ErrMissingCoordinates
	}
	in, err := s.deps.Geo.InSemiarid(ctx, st.Latitude, st.Longitude)
	if err != nil {
		return domain.Null(), err
	}
	return domain.Boolean(in), nil
}

// FloodVulnerable reports whether the station's reach is mapped as
// flood-vulnerable. Absence of a record means false.
// Policy: fatal on missing topology mapping.
func (s *Set) FloodVulnerable(ctx context.Context, st domain.Station) (domain.RawValue, error) {
	ref, err := s.deps.Topology.StationBasinCode(ctx, st.Code)
	if err != nil {
		return domain.Null(), err
	}
	vulnerable, err := s.deps.Geo.FloodVulnerableReach(ctx, ref.Cobacia)
	if err != nil {
		return domain.Null(), err
	}
	return domain.Boolean(vulnerable), nil
}

// WaterSecurity classifies the area-weighted mean of the water-security index
// over the sub-basins upstream of the station's main course into one of five
// ordinal bands.
// Policy: fatal on missing topology mapping, empty sub-basin set, or a mean
// below the index floor.
func (s *Set) WaterSecurity(ctx context.Context, st domain.Station) (domain.RawValue, error) {
	ref, err := s.deps.Topology.StationBasinCode(ctx, st.Code)
	if err != nil {
		return domain.Null(), err
	}
	course, err := basin.MainCoursePrefix(ref.Cobacia)
	if err != nil {
		return domain.Null(), err
	}
	records, err := s.deps.Geo.WaterSecurityUpstream(ctx, ref.Cobacia, course)
	if err != nil {
		return domain.Null(), err
	}
	if len(records) == 0 {
		return domain.Null(), domain.ErrNoSubBasinRecords
	}

	var weighted, area float64
	for _, rec := range records {
		weighted += rec.Index * rec.AreaKm2
		area += rec.AreaKm2
	}
	band, err := waterSecurityBand(weighted / area)
	if err != nil {
		return domain.Null(), err
	}
	return domain.Category(band), nil
}

// waterSecurityBand maps a weighted index mean to its ordinal band using
// half-open thresholds.
func waterSecurityBand(mean float64) (string, error) {
	switch {
	case mean < 1.0 || math.IsNaN(mean):
		return "", fmt.Errorf("water-security mean %g below index floor", mean)
	case mean < 1.5:
		return "Mínimo", nil
	case mean < 2.5:
		return "Baixo", nil
	case mean < 3.5:
		return "Médio", nil
	case mean < 4.5:
		return "Alto", nil
	default:
		return "Máximo", nil
	}
}

// IrrigationPole reports whether the station sits inside a national
// irrigation pole. Policy: fatal on missing coordinates.
func (s *Set) IrrigationPole(ctx context.Context, st domain.Station) (domain.RawValue, error) {
	if st.Latitude == 0 && st.Longitude == 0 {
		return domain.Null(), domain.ErrMissingCoordinates
	}
	in, err := s.deps.Geo.InIrrigationPole(ctx, st.Latitude, st.Longitude)
	if err != nil {
		return domain.Null(), err
	}
	return domain.Boolean(in), nil
}

// NavigableReach reports whether the station's reach is part of a navigable
// waterway. Policy: fatal on missing topology mapping.
func (s *Set) NavigableReach(ctx context.Context, st domain.Station) (domain.RawValue, error) {
	ref, err := s.deps.Topology.StationBasinCode(ctx, st.Code)
	if err != nil {
		return domain.Null(), err
	}
	navigable, err := s.deps.Geo.NavigableReach(ctx, ref.Cobacia)
	if err != nil {
		return domain.Null(), err
	}
	return domain.Boolean(navigable), nil
}

// ReferenceNetworkProximity returns the smallest percentage drainage-area
// mismatch between the station and a reference-network station on the same
// river, for the given scenario.
// Policy: degrades to Null when the station has no known drainage area or no
// candidate exists.
func (s *Set) ReferenceNetworkProximity(ctx context.Context, st domain.Station, sc domain.Scenario) (domain.RawValue, error) {
	members, err := s.deps.Scenarios.ReferenceNetworkStations(ctx, sc)
	if err != nil {
		return domain.Null(), err
	}
	return s.proximity(ctx, st, members)
}

// PowerGridProximity is ReferenceNetworkProximity against the active
// stations operated for the electric-sector network.
// Policy: degrades to Null like ReferenceNetworkProximity.
func (s *Set) PowerGridProximity(ctx context.Context, st domain.Station) (domain.RawValue, error) {
	members, err := s.deps.Scenarios.PowerGridStations(ctx)
	if err != nil {
		return domain.Null(), err
	}
	return s.proximity(ctx, st, members)
}

func (s *Set) proximity(ctx context.Context, st domain.Station, members map[int]struct{}) (domain.RawValue, error) {
	if st.DrainageKm2 == nil || *st.DrainageKm2 == 0 {
		s.deps.Logger.Warn("proximity skipped, station has no drainage area", "station", st.Code)
		return domain.Null(), nil
	}
	ref, err := s.deps.Topology.StationBasinCode(ctx, st.Code)
	if err != nil {
		return domain.Null(), err
	}
	onRiver, err := s.deps.Locator.OnRiver(ctx, ref.Cobacia)
	if err != nil {
		return domain.Null(), err
	}

	best := math.Inf(1)
	found := false
	for _, cand := range onRiver {
		if cand.StationCode == st.Code {
			continue
		}
		if _, member := members[cand.StationCode]; !member {
			continue
		}
		mismatch := 100 * math.Abs(1-*cand.DrainageKm2 / *st.DrainageKm2)
		if mismatch < best {
			best = mismatch
			found = true
		}
	}
	if !found {
		return domain.Null(), nil
	}
	return domain.Number(best), nil
}

// SeriesExtent counts the calendar years with an adequate discharge record.
// Policy: degrades to zero with a diagnostic when the station has no series.
func (s *Set) SeriesExtent(ctx context.Context, st domain.Station) (domain.RawValue, error) {
	points, err := s.deps.Series.DischargeSeries(ctx, st.Code)
	if err != nil {
		return domain.Null(), err
	}
	if len(points) == 0 {
		s.deps.Logger.Warn("station has no discharge series", "station", st.Code)
		return domain.Number(0), nil
	}
	return domain.Number(float64(SeriesExtentYears(points, s.threshold))), nil
}

// CurveDeviation computes the mean percentage deviation between measured and
// rated discharges. Policy: fatal when the station has no summaries, no
// curves, or a matched curve carries a null coefficient.
func (s *Set) CurveDeviation(ctx context.Context, st domain.Station) (domain.RawValue, error) {
	summaries, err := s.deps.Series.DischargeSummaries(ctx, st.Code)
	if err != nil {
		return domain.Null(), err
	}
	curves, err := s.deps.Series.RatingCurves(ctx, st.Code)
	if err != nil {
		return domain.Null(), err
	}
	deviation, err := CurveDeviation(summaries, curves, s.deps.Logger)
	if err != nil {
		return domain.Null(), err
	}
	return domain.Number(deviation), nil
}

// DischargePerYear returns the yearly rate of discharge measurements up to
// the current reference year.
// Policy: degrades to zero when the station has no measurements.
func (s *Set) DischargePerYear(ctx context.Context, st domain.Station) (domain.RawValue, error) {
	summaries, err := s.deps.Series.DischargeSummaries(ctx, st.Code)
	if err != nil {
		return domain.Null(), err
	}
	if len(summaries) == 0 {
		s.deps.Logger.Warn("station has no discharge summaries", "station", st.Code)
		return domain.Number(0), nil
	}
	_, perYear := DischargeFrequency(summaries, s.deps.Clock.Now().Year())
	return domain.Number(perYear), nil
}
