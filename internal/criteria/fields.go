// Package criteria implements the multi-criteria calculators that turn a
// station into raw criterion values, and the registry that catalogs them.
//
// Each calculator follows one of two failure policies, mirroring how the
// criterion behaves operationally:
//
//   - fatal: a missing prerequisite (drainage area, topology mapping, rating
//     curve coefficients) aborts the station's scoring pass;
//   - degrade: a station simply lacking data (no series, no gaugings) yields
//     a Null/zero raw value with a diagnostic log, and scoring continues.
//
// The policy of every calculator is noted on its method.
package criteria

// Field names are the stable join keys shared by classification tables,
// result records, and the presentation layer.
const (
	FieldDrainageArea     = "area_dren"
	FieldSpatialRelevance = "espacial"
	FieldSemiarid         = "semiarido"
	FieldFloodVulnerable  = "cheias"
	FieldWaterSecurity    = "ish"
	FieldIrrigationPole   = "irrigacao"
	FieldNavigableReach   = "navegacao"
	FieldRefNetworkS1     = "rhnr_c1"
	FieldRefNetworkS2     = "rhnr_c2"
	FieldPowerGrid        = "est_energia"
	FieldSeriesExtent     = "extensao"
	FieldCurveDeviation   = "desv_cchave"
	FieldDischargePerYear = "med_desc"
)

// Group is the display group of a criterion.
type Group string

const (
	GroupLocation    Group = "Localização da Estação"
	GroupObjectives  Group = "Objetivos da Estação"
	GroupDataQuality Group = "Qualidade dos Dados da Estação"
)
