package scoring_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hidroplan/rhnr-scoring/internal/classify"
	"github.com/hidroplan/rhnr-scoring/internal/criteria"
	"github.com/hidroplan/rhnr-scoring/internal/domain"
	"github.com/hidroplan/rhnr-scoring/internal/observability"
	"github.com/hidroplan/rhnr-scoring/internal/scoring"
)

func fp(v float64) *float64 { return &v }

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

// newEngine builds an engine over the standard catalog. Run never touches
// the calculators, so the set needs no data sources.
func newEngine(scenario domain.Scenario) *scoring.Engine {
	registry := criteria.NewRegistry(criteria.NewSet(criteria.Deps{Logger: discard()}))
	return scoring.New(registry, scenario, discard(), observability.NewMetricsForTesting())
}

func station(code int, values map[string]domain.RawValue) domain.StationRawValues {
	return domain.StationRawValues{StationCode: code, Values: values}
}

func TestRunScoresNumericThroughIntervals(t *testing.T) {
	engine := newEngine(domain.ScenarioOne)
	tables := classify.Tables{
		criteria.FieldDrainageArea: classify.DefaultTables()[criteria.FieldDrainageArea],
	}
	snapshot := []domain.StationRawValues{
		station(1, map[string]domain.RawValue{
			criteria.FieldDrainageArea: domain.Number(750),
		}),
	}

	records, err := engine.Run(snapshot, tables, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)

	want := domain.ScoreRecord{
		StationCode: 1,
		Scores:      map[string]float64{criteria.FieldDrainageArea: 1},
		Total:       1,
	}
	if diff := cmp.Diff(want, records[0]); diff != "" {
		t.Errorf("score record mismatch (-want +got):\n%s", diff)
	}
}

func TestRunScoresBooleanThroughCategories(t *testing.T) {
	engine := newEngine(domain.ScenarioOne)
	tables := classify.Tables{
		criteria.FieldSemiarid: classify.DefaultTables()[criteria.FieldSemiarid],
	}
	snapshot := []domain.StationRawValues{
		station(1, map[string]domain.RawValue{criteria.FieldSemiarid: domain.Boolean(true)}),
		station(2, map[string]domain.RawValue{criteria.FieldSemiarid: domain.Boolean(false)}),
		station(3, map[string]domain.RawValue{criteria.FieldSemiarid: domain.Null()}),
	}

	records, err := engine.Run(snapshot, tables, nil)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 3.0, records[0].Total, "Sim")
	assert.Equal(t, 0.0, records[1].Total, "Não")
	assert.Equal(t, 0.0, records[2].Total, "null folds to Não")
}

func TestRunClampsNegativeAndNullNumbers(t *testing.T) {
	engine := newEngine(domain.ScenarioOne)
	tables := classify.Tables{
		criteria.FieldSpatialRelevance: classify.DefaultTables()[criteria.FieldSpatialRelevance],
	}
	snapshot := []domain.StationRawValues{
		// Spatial relevance can go negative when upstream areas exceed
		// the target's; it scores as the zero class.
		station(1, map[string]domain.RawValue{criteria.FieldSpatialRelevance: domain.Number(-0.3)}),
		station(2, map[string]domain.RawValue{criteria.FieldSpatialRelevance: domain.Null()}),
	}

	records, err := engine.Run(snapshot, tables, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, records[0].Total)
	assert.Equal(t, 0.0, records[1].Total)
}

func TestRunTotalExcludesInactiveScenario(t *testing.T) {
	proximity := classify.Table{
		Intervals: []classify.IntervalRow{
			{Lower: fp(0), Upper: fp(20), Score: 3},
			{Lower: fp(20), Upper: nil, Score: 0},
		},
	}
	tables := classify.Tables{
		criteria.FieldRefNetworkS1: proximity,
		criteria.FieldRefNetworkS2: proximity,
	}
	values := map[string]domain.RawValue{
		criteria.FieldRefNetworkS1: domain.Number(10),
		criteria.FieldRefNetworkS2: domain.Number(10),
	}

	for scenario, inactive := range map[domain.Scenario]string{
		domain.ScenarioOne: criteria.FieldRefNetworkS2,
		domain.ScenarioTwo: criteria.FieldRefNetworkS1,
	} {
		records, err := newEngine(scenario).Run([]domain.StationRawValues{station(1, values)}, tables, nil)
		require.NoError(t, err)
		require.Len(t, records, 1)

		// Both fields are scored and reported; only the active one sums.
		assert.Equal(t, 3.0, records[0].Scores[inactive])
		assert.Equal(t, 3.0, records[0].Total, "scenario %d", scenario)
	}
}

func TestRunAbortsOnInvalidTable(t *testing.T) {
	engine := newEngine(domain.ScenarioOne)
	tables := classify.Tables{
		criteria.FieldDrainageArea: {
			FieldName: criteria.FieldDrainageArea,
			Intervals: []classify.IntervalRow{
				{Lower: fp(0), Upper: fp(10), Score: 0},
				{Lower: fp(5), Upper: fp(15), Score: 1},
			},
		},
	}

	records, err := engine.Run(nil, tables, nil)
	require.Error(t, err)
	assert.Nil(t, records)
	assert.Equal(t, scoring.StateAborted, engine.State())

	var vErr *domain.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestRunAbortsOnUnscorableStation(t *testing.T) {
	engine := newEngine(domain.ScenarioOne)
	tables := classify.Tables{
		criteria.FieldSeriesExtent: {
			FieldName: criteria.FieldSeriesExtent,
			Intervals: []classify.IntervalRow{
				{Lower: fp(10), Upper: fp(20), Score: 1},
			},
		},
	}
	snapshot := []domain.StationRawValues{
		station(7, map[string]domain.RawValue{criteria.FieldSeriesExtent: domain.Number(35)}),
	}

	_, err := engine.Run(snapshot, tables, nil)
	require.Error(t, err)

	var cErr *domain.CalculatorError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, 7, cErr.StationCode)
	assert.Equal(t, criteria.FieldSeriesExtent, cErr.FieldName)
	assert.ErrorIs(t, err, domain.ErrNoMatchingInterval)
}

func TestRunReportsProgressPerStation(t *testing.T) {
	engine := newEngine(domain.ScenarioOne)
	tables := classify.Tables{
		criteria.FieldSemiarid: classify.DefaultTables()[criteria.FieldSemiarid],
	}
	snapshot := []domain.StationRawValues{
		station(1, map[string]domain.RawValue{criteria.FieldSemiarid: domain.Boolean(true)}),
		station(2, map[string]domain.RawValue{criteria.FieldSemiarid: domain.Boolean(false)}),
		station(3, map[string]domain.RawValue{criteria.FieldSemiarid: domain.Boolean(true)}),
	}

	var calls [][2]int
	_, err := engine.Run(snapshot, tables, func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestEngineReadiness(t *testing.T) {
	engine := newEngine(domain.ScenarioOne)
	assert.Equal(t, scoring.StateIdle, engine.State())
	assert.Error(t, engine.CheckReadiness(context.Background()))

	_, err := engine.Run(nil, classify.Tables{}, nil)
	require.NoError(t, err)

	assert.Equal(t, scoring.StateDone, engine.State())
	assert.Equal(t, "done", engine.StateName())
	assert.NoError(t, engine.CheckReadiness(context.Background()))
}
