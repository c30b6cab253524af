package criteria

import (
	"context"
	"fmt"

	"github.com/hidroplan/rhnr-scoring/internal/domain"
)

// Criterion catalogs one scoring criterion: its stable field name, display
// metadata, and the calculator producing its raw value.
type Criterion struct {
	Group       Group
	FieldName   string
	Description string
	Unit        string
	Calculate   func(ctx context.Context, st domain.Station) (domain.RawValue, error)
}

// Registry is the ordered catalog of active criteria. It decides what gets
// calculated and in which column order results appear.
type Registry struct {
	criteria []Criterion
}

// NewRegistry builds the standard criterion catalog over a calculator set.
// Field names are checked for uniqueness; the fixed catalog makes a duplicate
// a programming error, hence the panic.
func NewRegistry(set *Set) *Registry {
	criteria := []Criterion{
		{
			Group:       GroupLocation,
			FieldName:   FieldDrainageArea,
			Description: "Área de drenagem da bacia à montante",
			Unit:        "km²",
			Calculate:   set.DrainageArea,
		},
		{
			Group:       GroupLocation,
			FieldName:   FieldSpatialRelevance,
			Description: "Relevância espacial",
			Unit:        "razão de área",
			Calculate:   set.SpatialRelevance,
		},
		{
			Group:       GroupLocation,
			FieldName:   FieldSemiarid,
			Description: "Localizada na região semiárida",
			Unit:        "booleano",
			Calculate:   set.Semiarid,
		},
		{
			Group:       GroupObjectives,
			FieldName:   FieldFloodVulnerable,
			Description: "Trecho com vulnerabilidade a cheias",
			Unit:        "booleano",
			Calculate:   set.FloodVulnerable,
		},
		{
			Group:       GroupObjectives,
			FieldName:   FieldWaterSecurity,
			Description: "ISH na área de drenagem",
			Unit:        "classificação",
			Calculate:   set.WaterSecurity,
		},
		{
			Group:       GroupObjectives,
			FieldName:   FieldIrrigationPole,
			Description: "Localizada em Polos Nacionais de Irrigação",
			Unit:        "booleano",
			Calculate:   set.IrrigationPole,
		},
		{
			Group:       GroupObjectives,
			FieldName:   FieldNavigableReach,
			Description: "Trecho usado para navegação",
			Unit:        "booleano",
			Calculate:   set.NavigableReach,
		},
		{
			Group:       GroupLocation,
			FieldName:   FieldRefNetworkS1,
			Description: "Proximidade à estação da RHNR (cenário 1)",
			Unit:        "% de diferença de área",
			Calculate: func(ctx context.Context, st domain.Station) (domain.RawValue, error) {
				return set.ReferenceNetworkProximity(ctx, st, domain.ScenarioOne)
			},
		},
		{
			Group:       GroupLocation,
			FieldName:   FieldRefNetworkS2,
			Description: "Proximidade à estação da RHNR (cenário 2)",
			Unit:        "% de diferença de área",
			Calculate: func(ctx context.Context, st domain.Station) (domain.RawValue, error) {
				return set.ReferenceNetworkProximity(ctx, st, domain.ScenarioTwo)
			},
		},
		{
			Group:       GroupLocation,
			FieldName:   FieldPowerGrid,
			Description: "Proximidade à estação do setor elétrico",
			Unit:        "% de diferença de área",
			Calculate:   set.PowerGridProximity,
		},
		{
			Group:       GroupDataQuality,
			FieldName:   FieldSeriesExtent,
			Description: "Extensão da série de dados",
			Unit:        "anos",
			Calculate:   set.SeriesExtent,
		},
		{
			Group:       GroupDataQuality,
			FieldName:   FieldCurveDeviation,
			Description: "Desvio da Curva-Chave",
			Unit:        "percentual (%)",
			Calculate:   set.CurveDeviation,
		},
		{
			Group:       GroupDataQuality,
			FieldName:   FieldDischargePerYear,
			Description: "Medições de descarga líquida / Ano",
			Unit:        "medições/ano",
			Calculate:   set.DischargePerYear,
		},
	}

	seen := make(map[string]struct{}, len(criteria))
	for _, c := range criteria {
		if _, dup := seen[c.FieldName]; dup {
			panic(fmt.Sprintf("criteria: duplicate field name %q in registry", c.FieldName))
		}
		seen[c.FieldName] = struct{}{}
	}

	return &Registry{criteria: criteria}
}

// Criteria returns the catalog in registration order.
func (r *Registry) Criteria() []Criterion { return r.criteria }

// FieldNames returns the ordered field names of the catalog.
func (r *Registry) FieldNames() []string {
	names := make([]string, len(r.criteria))
	for i, c := range r.criteria {
		names[i] = c.FieldName
	}
	return names
}

// ByField finds a criterion by its field name.
func (r *Registry) ByField(name string) (Criterion, bool) {
	for _, c := range r.criteria {
		if c.FieldName == name {
			return c, true
		}
	}
	return Criterion{}, false
}
