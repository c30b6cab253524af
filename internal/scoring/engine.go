// Package scoring implements the multi-criteria scoring run: snapshot
// assembly, classification-table validation, and per-station score
// aggregation.
package scoring

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hidroplan/rhnr-scoring/internal/classify"
	"github.com/hidroplan/rhnr-scoring/internal/criteria"
	"github.com/hidroplan/rhnr-scoring/internal/domain"
	"github.com/hidroplan/rhnr-scoring/internal/observability"
)

// State is the engine's run state.
type State int32

const (
	StateIdle State = iota
	StateValidating
	StateScoring
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateScoring:
		return "scoring"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ProgressFunc receives fractional progress after each scored station.
type ProgressFunc func(done, total int)

// Engine scores a frozen snapshot of station raw values against a validated
// set of classification tables. A run either completes with one ScoreRecord
// per station or aborts on the first error; there are no partial results and
// no retries.
type Engine struct {
	registry *criteria.Registry
	scenario domain.Scenario
	logger   *slog.Logger
	metrics  *observability.Metrics

	state atomic.Int32
	ready atomic.Bool
}

// New creates an Engine scoring against the given active scenario.
func New(registry *criteria.Registry, scenario domain.Scenario, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		registry: registry,
		scenario: scenario,
		logger:   logger,
		metrics:  metrics,
	}
}

// State returns the engine's current run state.
func (e *Engine) State() State { return State(e.state.Load()) }

// StateName returns the current run state as a string, for the status
// endpoint.
func (e *Engine) StateName() string { return e.State().String() }

// CheckReadiness returns nil once the engine has completed at least one run.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("no scoring run has completed yet")
	}
	return nil
}

// Run validates every supplied table, then scores each station on every
// criterion that has a table. Numeric raw values are clamped at zero and Null
// scores as zero; categorical criteria map booleans through Não/Sim. The
// total sums all per-criterion scores except the inactive reference-network
// scenario's.
func (e *Engine) Run(snapshot []domain.StationRawValues, tables classify.Tables, onProgress ProgressFunc) ([]domain.ScoreRecord, error) {
	start := time.Now()
	e.state.Store(int32(StateValidating))
	e.metrics.ScoringProgress.Set(0)

	if err := classify.ValidateAll(tables); err != nil {
		e.state.Store(int32(StateAborted))
		return nil, err
	}

	e.state.Store(int32(StateScoring))
	e.logger.Info("scoring run started",
		"stations", len(snapshot),
		"tables", len(tables),
		"scenario", int(e.scenario),
	)

	records := make([]domain.ScoreRecord, 0, len(snapshot))
	for i, station := range snapshot {
		record, err := e.scoreStation(station, tables)
		if err != nil {
			e.state.Store(int32(StateAborted))
			return nil, err
		}
		records = append(records, record)

		progress := float64(i+1) / float64(len(snapshot))
		e.metrics.ScoringProgress.Set(progress)
		if onProgress != nil {
			onProgress(i+1, len(snapshot))
		}
	}

	e.state.Store(int32(StateDone))
	e.ready.Store(true)
	e.metrics.StationsScored.Add(float64(len(records)))
	e.metrics.RunDuration.Observe(time.Since(start).Seconds())
	e.logger.Info("scoring run finished", "stations", len(records), "duration", time.Since(start))
	return records, nil
}

func (e *Engine) scoreStation(station domain.StationRawValues, tables classify.Tables) (domain.ScoreRecord, error) {
	scores := make(map[string]float64, len(tables))
	total := 0.0

	for _, criterion := range e.registry.Criteria() {
		table, ok := tables[criterion.FieldName]
		if !ok {
			continue
		}

		score, err := scoreValue(table, station.Value(criterion.FieldName))
		if err != nil {
			return domain.ScoreRecord{}, &domain.CalculatorError{
				FieldName:   criterion.FieldName,
				StationCode: station.StationCode,
				Err:         err,
			}
		}
		scores[criterion.FieldName] = score
		if e.countsTowardTotal(criterion.FieldName) {
			total += score
		}
	}

	return domain.ScoreRecord{
		StationCode: station.StationCode,
		Scores:      scores,
		Total:       total,
	}, nil
}

// countsTowardTotal excludes the inactive scenario's proximity field from
// the total.
func (e *Engine) countsTowardTotal(field string) bool {
	if e.scenario == domain.ScenarioOne && field == criteria.FieldRefNetworkS2 {
		return false
	}
	if e.scenario == domain.ScenarioTwo && field == criteria.FieldRefNetworkS1 {
		return false
	}
	return true
}

// scoreValue maps one raw value through one table. Booleans and Null pass
// through a categorical table as Não/Sim; numbers are clamped at zero with
// Null reading as zero.
func scoreValue(table classify.Table, raw domain.RawValue) (float64, error) {
	if table.IsCategorical() {
		return table.ScoreCategory(asCategory(raw))
	}

	v := 0.0
	switch raw.Kind {
	case domain.KindNumber:
		v = raw.Num
	case domain.KindBool:
		if raw.Bool {
			v = 1
		}
	case domain.KindNull:
		// scores as the zero class
	}
	if v < 0 {
		v = 0
	}
	return table.ScoreNumber(v)
}

func asCategory(raw domain.RawValue) string {
	switch raw.Kind {
	case domain.KindCategory:
		return raw.Category
	case domain.KindBool:
		if raw.Bool {
			return "Sim"
		}
		return "Não"
	default:
		return "Não"
	}
}
