// Command genmock generates offline fixtures for the validate command and
// the test suites: a raw-values snapshot built from the real criteria
// catalog, and the built-in classification tables as editable JSON.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -snapshot-out data/mock/snapshot.json \
//	  -tables-out data/mock/tables.json \
//	  -stations 50
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/hidroplan/rhnr-scoring/internal/classify"
	"github.com/hidroplan/rhnr-scoring/internal/criteria"
	"github.com/hidroplan/rhnr-scoring/internal/domain"
)

// Fixed seed so regenerated fixtures stay byte-identical.
const seed = 20240426

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	snapshotOut := flag.String("snapshot-out", "", "output path for the raw-values snapshot fixture")
	tablesOut := flag.String("tables-out", "", "output path for the classification tables JSON")
	stations := flag.Int("stations", 50, "number of mock stations")
	flag.Parse()

	if *snapshotOut == "" || *tablesOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -snapshot-out, -tables-out")
	}

	registry := criteria.NewRegistry(criteria.NewSet(criteria.Deps{Logger: slog.New(slog.DiscardHandler)}))
	snapshot := generateSnapshot(registry, *stations)

	if err := writeJSON(*snapshotOut, snapshot); err != nil {
		return fmt.Errorf("writing snapshot fixture: %w", err)
	}
	log.Printf("wrote snapshot fixture: %s (%d stations)", *snapshotOut, len(snapshot))

	if err := writeJSON(*tablesOut, classify.DefaultTables()); err != nil {
		return fmt.Errorf("writing tables: %w", err)
	}
	log.Printf("wrote classification tables: %s", *tablesOut)

	printStats(snapshot)
	return nil
}

// generateSnapshot fabricates one raw value per cataloged criterion per
// station, drawn from each criterion's plausible range. Roughly one value in
// twenty is Null to exercise the degraded path.
func generateSnapshot(registry *criteria.Registry, count int) []domain.StationRawValues {
	rng := rand.New(rand.NewSource(seed))

	snapshot := make([]domain.StationRawValues, 0, count)
	for i := 0; i < count; i++ {
		code := 10000000 + rng.Intn(80000000)
		values := make(map[string]domain.RawValue)
		for _, field := range registry.FieldNames() {
			values[field] = mockValue(rng, field)
		}
		snapshot = append(snapshot, domain.StationRawValues{StationCode: code, Values: values})
	}
	return snapshot
}

func mockValue(rng *rand.Rand, field string) domain.RawValue {
	if rng.Intn(20) == 0 {
		return domain.Null()
	}

	switch field {
	case criteria.FieldDrainageArea:
		return domain.Number(50 + rng.Float64()*4000)
	case criteria.FieldSpatialRelevance:
		return domain.Number(rng.Float64())
	case criteria.FieldSeriesExtent:
		return domain.Number(float64(rng.Intn(60)))
	case criteria.FieldCurveDeviation:
		return domain.Number(rng.Float64() * 25)
	case criteria.FieldDischargePerYear:
		return domain.Number(rng.Float64() * 6)
	case criteria.FieldRefNetworkS1, criteria.FieldRefNetworkS2, criteria.FieldPowerGrid:
		return domain.Number(rng.Float64() * 100)
	default:
		// The remaining criteria are yes/no memberships.
		return domain.Boolean(rng.Intn(2) == 1)
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(snapshot []domain.StationRawValues) {
	var nulls, booleans, trueCount int
	for _, row := range snapshot {
		for _, v := range row.Values {
			switch v.Kind {
			case domain.KindNull:
				nulls++
			case domain.KindBool:
				booleans++
				if v.Bool {
					trueCount++
				}
			}
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Stations: %d\n", len(snapshot))
	fmt.Printf("Null values: %d\n", nulls)
	fmt.Printf("Boolean values: %d (true=%d)\n", booleans, trueCount)
}
