package domain

import "context"

// InventorySource lists the active fluviometric stations the scoring run
// operates on. Implemented by the hydrological warehouse reader.
type InventorySource interface {
	ListStations(ctx context.Context) ([]Station, error)
}

// TopologySource answers drainage-network queries over the hidro-referenced
// station layer. Implemented by the GIS-backed auxiliary database reader.
type TopologySource interface {
	// StationBasinCode resolves a station to its basin-code record, or
	// ErrStationNotHidroreferenced when the station has no mapping.
	StationBasinCode(ctx context.Context, stationCode int) (BasinCodeRecord, error)

	// StationsAtOrAboveCode returns records whose cobacia is >= the given
	// code and whose cocursodag starts with coursePrefix (equals it when
	// exactCourse is set).
	StationsAtOrAboveCode(ctx context.Context, cobacia, coursePrefix string, exactCourse bool) ([]BasinCodeRecord, error)

	// StationsBelowCode returns records whose cobacia is < the given code
	// and whose cocursodag is one of the listed courses.
	StationsBelowCode(ctx context.Context, cobacia string, courses []string) ([]BasinCodeRecord, error)

	// OperationalReachStations returns the upstream stations on ref's
	// operational reach: active primary-authority stations without the
	// duplicate-sensor tag, unioned with tagged duplicates operated by the
	// secondary authority as proxy.
	OperationalReachStations(ctx context.Context, ref BasinCodeRecord) ([]BasinCodeRecord, error)
}

// GeoSource answers geospatial membership and index lookups.
type GeoSource interface {
	NavigableReach(ctx context.Context, cobacia string) (bool, error)
	FloodVulnerableReach(ctx context.Context, cobacia string) (bool, error)
	InSemiarid(ctx context.Context, lat, lon float64) (bool, error)
	InIrrigationPole(ctx context.Context, lat, lon float64) (bool, error)

	// WaterSecurityUpstream returns the ISH sub-basin records upstream of
	// the given basin code along coursePrefix.
	WaterSecurityUpstream(ctx context.Context, cobacia, coursePrefix string) ([]WaterSecurityRecord, error)
}

// SeriesSource provides per-station hydrological series and gauging data
// from the warehouse.
type SeriesSource interface {
	DischargeSeries(ctx context.Context, stationCode int) ([]SeriesPoint, error)
	DischargeSummaries(ctx context.Context, stationCode int) ([]DischargeSummary, error)
	RatingCurves(ctx context.Context, stationCode int) ([]RatingCurve, error)
}

// ScenarioSource resolves the station sets the proximity criteria are judged
// against.
type ScenarioSource interface {
	// ReferenceNetworkStations returns the station codes composing the
	// given reference-network scenario.
	ReferenceNetworkStations(ctx context.Context, sc Scenario) (map[int]struct{}, error)

	// PowerGridStations returns the codes of active stations operated for
	// the electric-sector network.
	PowerGridStations(ctx context.Context) (map[int]struct{}, error)
}
