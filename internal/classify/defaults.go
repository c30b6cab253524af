package classify

import "github.com/hidroplan/rhnr-scoring/internal/criteria"

// f is a shorthand for optional interval bounds in the default tables.
func f(v float64) *float64 { return &v }

// defaultIntervals holds the system-supplied interval tables. Criteria absent
// here default to the yes/no categorical table.
var defaultIntervals = map[string][]IntervalRow{
	criteria.FieldDrainageArea: {
		{Lower: f(0), Upper: f(500), Score: 0},
		{Lower: f(500), Upper: f(1000), Score: 1},
		{Lower: f(1000), Upper: f(1500), Score: 2},
		{Lower: f(1500), Upper: nil, Score: 3},
	},
	criteria.FieldSpatialRelevance: {
		{Lower: f(0), Upper: f(0.25), Score: 0},
		{Lower: f(0.25), Upper: f(0.5), Score: 2},
		{Lower: f(0.5), Upper: nil, Score: 3},
	},
	criteria.FieldSeriesExtent: {
		{Lower: f(0), Upper: f(10), Score: 0},
		{Lower: f(10), Upper: f(20), Score: 1},
		{Lower: f(20), Upper: f(30), Score: 2},
		{Lower: f(30), Upper: nil, Score: 3},
	},
	// Curve deviation scores inversely: the smaller the deviation, the
	// better the rating curve.
	criteria.FieldCurveDeviation: {
		{Lower: f(12), Upper: nil, Score: 0},
		{Lower: f(8), Upper: f(12), Score: 1},
		{Lower: f(6), Upper: f(8), Score: 2},
		{Lower: f(0), Upper: f(6), Score: 3},
	},
	criteria.FieldDischargePerYear: {
		{Lower: f(0), Upper: f(3), Score: 0},
		{Lower: f(3), Upper: f(4), Score: 2},
		{Lower: f(4), Upper: nil, Score: 3},
	},
	// Proximity criteria score the percentage drainage-area mismatch to
	// the nearest network station; closer is better.
	criteria.FieldRefNetworkS1: {
		{Lower: f(0), Upper: f(5), Score: 3},
		{Lower: f(5), Upper: f(10), Score: 2},
		{Lower: f(10), Upper: nil, Score: 0},
	},
	criteria.FieldRefNetworkS2: {
		{Lower: f(0), Upper: f(5), Score: 3},
		{Lower: f(5), Upper: f(10), Score: 2},
		{Lower: f(10), Upper: nil, Score: 0},
	},
	criteria.FieldPowerGrid: {
		{Lower: f(0), Upper: f(5), Score: 3},
		{Lower: f(5), Upper: f(10), Score: 2},
		{Lower: f(10), Upper: nil, Score: 0},
	},
}

// defaultFields is the catalog order the default table set covers.
var defaultFields = []string{
	criteria.FieldDrainageArea,
	criteria.FieldSpatialRelevance,
	criteria.FieldSemiarid,
	criteria.FieldFloodVulnerable,
	criteria.FieldWaterSecurity,
	criteria.FieldIrrigationPole,
	criteria.FieldNavigableReach,
	criteria.FieldRefNetworkS1,
	criteria.FieldRefNetworkS2,
	criteria.FieldPowerGrid,
	criteria.FieldSeriesExtent,
	criteria.FieldCurveDeviation,
	criteria.FieldDischargePerYear,
}

// DefaultTable returns the system default classification table for a
// criterion: its interval table when one is defined, the yes/no categorical
// table otherwise.
func DefaultTable(fieldName string) Table {
	if rows, ok := defaultIntervals[fieldName]; ok {
		intervals := make([]IntervalRow, len(rows))
		copy(intervals, rows)
		return Table{FieldName: fieldName, Intervals: intervals}
	}
	return Table{
		FieldName: fieldName,
		Categories: []CategoryRow{
			{Category: "Não", Score: 0},
			{Category: "Sim", Score: 3},
		},
	}
}

// DefaultTables builds the system default table set covering every cataloged
// criterion.
func DefaultTables() Tables {
	tables := make(Tables, len(defaultFields))
	for _, name := range defaultFields {
		tables[name] = DefaultTable(name)
	}
	return tables
}
