package domain

// Scenario selects which reference-network composition the proximity
// criterion is judged against. Only the active scenario's field contributes
// to the total.
type Scenario int

const (
	// ScenarioOne is the initial selection plus implemented stations plus
	// revision proposals, minus stations proposed for exclusion.
	ScenarioOne Scenario = 1
	// ScenarioTwo is the revision proposals only.
	ScenarioTwo Scenario = 2
)

// ScoreRecord is the scored result for one station: one score per criterion
// plus the total. Created whole on every run, never partially updated.
type ScoreRecord struct {
	StationCode int
	Scores      map[string]float64
	Total       float64
}
