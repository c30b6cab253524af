package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hidroplan/rhnr-scoring/internal/domain"
)

func fp(v float64) *float64 { return &v }

func intervalTable(field string, rows ...IntervalRow) Table {
	return Table{FieldName: field, Intervals: rows}
}

func TestValidateAcceptsContiguousIntervals(t *testing.T) {
	table := intervalTable("area_dren",
		IntervalRow{Lower: fp(0), Upper: fp(500), Score: 0},
		IntervalRow{Lower: fp(500), Upper: fp(1000), Score: 1},
		IntervalRow{Lower: fp(1000), Upper: nil, Score: 2},
	)

	assert.NoError(t, Validate(table))
}

func TestValidateAcceptsNilLowerBound(t *testing.T) {
	table := intervalTable("desv_cchave",
		IntervalRow{Lower: nil, Upper: fp(6), Score: 3},
		IntervalRow{Lower: fp(6), Upper: nil, Score: 0},
	)

	assert.NoError(t, Validate(table))
}

func TestValidateRejectsEmptyIntervalTable(t *testing.T) {
	err := Validate(intervalTable("extensao"))

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "extensao", vErr.FieldName)
}

func TestValidateRejectsBothBoundsNull(t *testing.T) {
	table := intervalTable("extensao",
		IntervalRow{Lower: nil, Upper: nil, Score: 0},
	)

	var vErr *domain.ValidationError
	require.ErrorAs(t, Validate(table), &vErr)
	assert.Contains(t, vErr.Reason, "neither")
}

func TestValidateRejectsInvertedBounds(t *testing.T) {
	table := intervalTable("extensao",
		IntervalRow{Lower: fp(20), Upper: fp(10), Score: 0},
	)

	var vErr *domain.ValidationError
	require.ErrorAs(t, Validate(table), &vErr)
	assert.Contains(t, vErr.Reason, "exceeds")
}

func TestValidateRejectsOverlappingIntervals(t *testing.T) {
	cases := []struct {
		name string
		rows []IntervalRow
	}{
		{
			name: "partial overlap",
			rows: []IntervalRow{
				{Lower: fp(0), Upper: fp(10), Score: 0},
				{Lower: fp(5), Upper: fp(15), Score: 1},
			},
		},
		{
			name: "contained interval",
			rows: []IntervalRow{
				{Lower: fp(0), Upper: fp(100), Score: 0},
				{Lower: fp(20), Upper: fp(30), Score: 1},
			},
		},
		{
			name: "identical spans",
			rows: []IntervalRow{
				{Lower: fp(0), Upper: fp(10), Score: 0},
				{Lower: fp(0), Upper: fp(10), Score: 1},
			},
		},
		{
			name: "open upper bound swallows later row",
			rows: []IntervalRow{
				{Lower: fp(0), Upper: nil, Score: 0},
				{Lower: fp(50), Upper: fp(60), Score: 1},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var vErr *domain.ValidationError
			require.ErrorAs(t, Validate(intervalTable("espacial", tc.rows...)), &vErr)
			assert.Contains(t, vErr.Reason, "overlap")
		})
	}
}

func TestValidateAdjacentIntervalsDoNotOverlap(t *testing.T) {
	// [0,10) and [10,20) share only the boundary, which belongs to the
	// second row.
	table := intervalTable("extensao",
		IntervalRow{Lower: fp(0), Upper: fp(10), Score: 0},
		IntervalRow{Lower: fp(10), Upper: fp(20), Score: 1},
	)

	assert.NoError(t, Validate(table))
}

func TestValidateRejectsDuplicateScores(t *testing.T) {
	table := intervalTable("med_desc",
		IntervalRow{Lower: fp(0), Upper: fp(3), Score: 0},
		IntervalRow{Lower: fp(3), Upper: fp(4), Score: 0},
	)

	var vErr *domain.ValidationError
	require.ErrorAs(t, Validate(table), &vErr)
	assert.Contains(t, vErr.Reason, "score")
}

func TestValidateRejectsDuplicateCategories(t *testing.T) {
	table := Table{
		FieldName: "semiarido",
		Categories: []CategoryRow{
			{Category: "Sim", Score: 3},
			{Category: "Sim", Score: 0},
		},
	}

	var vErr *domain.ValidationError
	require.ErrorAs(t, Validate(table), &vErr)
	assert.Contains(t, vErr.Reason, "repeated")
}

func TestValidateRejectsDuplicateCategoryScores(t *testing.T) {
	table := Table{
		FieldName: "semiarido",
		Categories: []CategoryRow{
			{Category: "Sim", Score: 3},
			{Category: "Não", Score: 3},
		},
	}

	var vErr *domain.ValidationError
	require.ErrorAs(t, Validate(table), &vErr)
	assert.Contains(t, vErr.Reason, "score")
}

func TestValidateAllStopsOnFirstViolation(t *testing.T) {
	tables := Tables{
		"ok": intervalTable("ok",
			IntervalRow{Lower: fp(0), Upper: fp(1), Score: 0},
		),
		"broken": intervalTable("broken",
			IntervalRow{Lower: fp(5), Upper: fp(1), Score: 0},
		),
	}

	assert.Error(t, ValidateAll(tables))
}

func TestDefaultTablesAreConsistent(t *testing.T) {
	assert.NoError(t, ValidateAll(DefaultTables()))
}
