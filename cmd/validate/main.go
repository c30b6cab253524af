// Command validate checks a set of classification tables offline, before
// they are handed to a scoring run: structural consistency, coverage of the
// criteria catalog, and an optional dry-run scoring of a snapshot fixture.
//
// Usage:
//
//	go run ./cmd/validate -tables data/tables.json
//	go run ./cmd/validate -tables data/tables.json -snapshot data/mock/snapshot.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hidroplan/rhnr-scoring/internal/classify"
	"github.com/hidroplan/rhnr-scoring/internal/criteria"
	"github.com/hidroplan/rhnr-scoring/internal/domain"
	"github.com/hidroplan/rhnr-scoring/internal/observability"
	"github.com/hidroplan/rhnr-scoring/internal/scoring"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	tablesPath := flag.String("tables", "", "path to classification tables JSON (empty validates the built-in defaults)")
	snapshotPath := flag.String("snapshot", "", "optional raw-values snapshot JSON to dry-run score")
	flag.Parse()

	if code := run(*tablesPath, *snapshotPath); code != 0 {
		os.Exit(code)
	}
}

func run(tablesPath, snapshotPath string) int {
	fmt.Println("=== Classification Table Validation ===")
	fmt.Println()

	tables := classify.DefaultTables()
	if tablesPath != "" {
		loaded, err := classify.LoadFile(tablesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
		tables = loaded
	}

	phases := []*phase{
		validateConsistency(tables),
		validateCoverage(tables),
	}

	if snapshotPath != "" {
		snapshot, err := loadSnapshot(snapshotPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
		phases = append(phases, validateDryRun(tables, snapshot))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateConsistency runs the per-table structural checks every scoring run
// repeats before touching a station.
func validateConsistency(tables classify.Tables) *phase {
	p := &phase{name: "Phase 1: Table Consistency"}
	for field, table := range tables {
		if err := classify.Validate(table); err != nil {
			p.errorf("%s: %v", field, err)
		}
	}
	return p
}

// validateCoverage reports tables that do not match any cataloged criterion
// and cataloged criteria without a table. Neither blocks a run; uncovered
// criteria simply do not score.
func validateCoverage(tables classify.Tables) *phase {
	p := &phase{name: "Phase 2: Catalog Coverage"}

	catalog := make(map[string]bool)
	for _, field := range criteria.NewRegistry(offlineSet()).FieldNames() {
		catalog[field] = true
	}

	for field := range tables {
		if !catalog[field] {
			p.errorf("table %q does not match any cataloged criterion", field)
		}
	}
	for field := range catalog {
		if _, ok := tables[field]; !ok {
			fmt.Printf("  Note: criterion %q has no table and will not score\n", field)
		}
	}
	return p
}

// validateDryRun scores the snapshot with the tables under both scenarios.
func validateDryRun(tables classify.Tables, snapshot []domain.StationRawValues) *phase {
	p := &phase{name: "Phase 3: Dry-Run Scoring"}

	logger := slog.New(slog.DiscardHandler)
	for _, scenario := range []domain.Scenario{domain.ScenarioOne, domain.ScenarioTwo} {
		engine := scoring.New(criteria.NewRegistry(offlineSet()), scenario, logger, observability.NewMetricsForTesting())
		records, err := engine.Run(snapshot, tables, nil)
		if err != nil {
			p.errorf("scenario %d: %v", scenario, err)
			continue
		}
		fmt.Printf("  Scenario %d: scored %d stations\n", scenario, len(records))
	}
	return p
}

// offlineSet builds a calculator set with no data sources. Only the catalog
// metadata is used here; no calculator runs.
func offlineSet() *criteria.Set {
	return criteria.NewSet(criteria.Deps{Logger: slog.New(slog.DiscardHandler)})
}

func loadSnapshot(path string) ([]domain.StationRawValues, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snapshot []domain.StationRawValues
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return snapshot, nil
}
