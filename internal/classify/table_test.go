package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hidroplan/rhnr-scoring/internal/domain"
)

func TestScoreNumberHalfOpenIntervals(t *testing.T) {
	table := intervalTable("area_dren",
		IntervalRow{Lower: fp(0), Upper: fp(500), Score: 0},
		IntervalRow{Lower: fp(500), Upper: fp(1000), Score: 1},
		IntervalRow{Lower: fp(1000), Upper: nil, Score: 2},
	)

	cases := []struct {
		value float64
		want  float64
	}{
		{0, 0},
		{499.99, 0},
		{500, 1}, // boundary belongs to the upper row
		{999.99, 1},
		{1000, 2},
		{1e9, 2}, // nil upper reads as +infinity
	}
	for _, tc := range cases {
		score, err := table.ScoreNumber(tc.value)
		require.NoError(t, err)
		assert.Equal(t, tc.want, score, "value %g", tc.value)
	}
}

func TestScoreNumberNilLowerReadsAsMinusInfinity(t *testing.T) {
	table := intervalTable("desv_cchave",
		IntervalRow{Lower: nil, Upper: fp(6), Score: 3},
		IntervalRow{Lower: fp(6), Upper: nil, Score: 0},
	)

	score, err := table.ScoreNumber(-40)
	require.NoError(t, err)
	assert.Equal(t, 3.0, score)
}

func TestScoreNumberReportsGaps(t *testing.T) {
	table := intervalTable("extensao",
		IntervalRow{Lower: fp(0), Upper: fp(10), Score: 0},
		IntervalRow{Lower: fp(20), Upper: fp(30), Score: 1},
	)

	_, err := table.ScoreNumber(15)
	assert.ErrorIs(t, err, domain.ErrNoMatchingInterval)
}

func TestScoreCategory(t *testing.T) {
	table := Table{
		FieldName: "semiarido",
		Categories: []CategoryRow{
			{Category: "Não", Score: 0},
			{Category: "Sim", Score: 3},
		},
	}

	score, err := table.ScoreCategory("Sim")
	require.NoError(t, err)
	assert.Equal(t, 3.0, score)

	_, err = table.ScoreCategory("Talvez")
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "semiarido", vErr.FieldName)
}

func TestLoadFileFillsFieldNamesFromKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.json")
	payload := `{
		"area_dren": {
			"intervals": [
				{"lower": 0, "upper": 500, "score": 0},
				{"lower": 500, "upper": null, "score": 1}
			]
		},
		"semiarido": {
			"field_name": "semiarido",
			"categories": [
				{"category": "Não", "score": 0},
				{"category": "Sim", "score": 3}
			]
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	tables, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	assert.Equal(t, "area_dren", tables["area_dren"].FieldName)
	assert.False(t, tables["area_dren"].IsCategorical())
	assert.True(t, tables["semiarido"].IsCategorical())
	assert.NoError(t, ValidateAll(tables))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
