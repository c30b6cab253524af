package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hidroplan/rhnr-scoring/internal/domain"
)

func fp(v float64) *float64 { return &v }

func openTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.db")

	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return s, db
}

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func TestSaveInventoryReplacesSnapshot(t *testing.T) {
	s, db := openTestStore(t)
	ctx := context.Background()

	stations := []domain.Station{
		{Code: 1, Name: "Fazenda Velha", Latitude: -10.2, Longitude: -48.3, DrainageKm2: fp(820), Basin: "Tocantins", Operating: true},
		{Code: 2, Name: "Porto Nacional", Latitude: -10.7, Longitude: -48.4, Operating: true, Telemetric: true},
	}
	require.NoError(t, s.SaveInventory(ctx, stations))
	assert.Equal(t, 2, count(t, db, "inventario"))

	// A second save replaces, not appends.
	require.NoError(t, s.SaveInventory(ctx, stations[:1]))
	assert.Equal(t, 1, count(t, db, "inventario"))

	var area sql.NullFloat64
	require.NoError(t, db.QueryRow(`SELECT area_drenagem FROM inventario WHERE codigo = 1`).Scan(&area))
	require.True(t, area.Valid)
	assert.InDelta(t, 820, area.Float64, 1e-9)
}

func TestSaveRawValuesRendersKinds(t *testing.T) {
	s, db := openTestStore(t)
	ctx := context.Background()

	snapshot := []domain.StationRawValues{
		{
			StationCode: 1,
			Values: map[string]domain.RawValue{
				"area_dren": domain.Number(820),
				"semiarido": domain.Boolean(true),
				"ish":       domain.Category("Baixo"),
				"rhnr_c1":   domain.Null(),
			},
		},
	}
	require.NoError(t, s.SaveRawValues(ctx, snapshot))
	assert.Equal(t, 4, count(t, db, "valores_brutos"))

	read := func(field string) sql.NullString {
		var v sql.NullString
		require.NoError(t, db.QueryRow(
			`SELECT valor FROM valores_brutos WHERE codigo_estacao = 1 AND criterio = ?`, field).Scan(&v))
		return v
	}

	assert.Equal(t, "820", read("area_dren").String)
	assert.Equal(t, "Sim", read("semiarido").String)
	assert.Equal(t, "Baixo", read("ish").String)
	assert.False(t, read("rhnr_c1").Valid, "null stays a SQL null")
}

func TestSaveScoresWritesScoresAndTotals(t *testing.T) {
	s, db := openTestStore(t)
	ctx := context.Background()

	records := []domain.ScoreRecord{
		{StationCode: 1, Scores: map[string]float64{"area_dren": 1, "semiarido": 3}, Total: 4},
		{StationCode: 2, Scores: map[string]float64{"area_dren": 2}, Total: 2},
	}
	require.NoError(t, s.SaveScores(ctx, records))

	assert.Equal(t, 3, count(t, db, "pontuacoes"))
	assert.Equal(t, 2, count(t, db, "totais"))

	var total float64
	require.NoError(t, db.QueryRow(`SELECT total FROM totais WHERE codigo_estacao = 1`).Scan(&total))
	assert.Equal(t, 4.0, total)
}
