package basin_test

import (
	"errors"
	"testing"

	"github.com/hidroplan/rhnr-scoring/internal/basin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainCoursePrefix(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{name: "last digit even returns full code", code: "86994", want: "86994"},
		{name: "stops at first even digit from the right", code: "8697", want: "86"},
		{name: "single even digit", code: "4", want: "4"},
		{name: "long tributary code", code: "869947813", want: "8699478"},
		{name: "even digit at the head", code: "2111", want: "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := basin.MainCoursePrefix(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMainCoursePrefix_Invalid(t *testing.T) {
	for _, code := range []string{"", "1357", "9", "86x4"} {
		t.Run(code, func(t *testing.T) {
			_, err := basin.MainCoursePrefix(code)
			var invalid *basin.ErrInvalidCode
			require.Error(t, err)
			assert.True(t, errors.As(err, &invalid))
		})
	}
}

func TestMainCoursePrefix_Idempotent(t *testing.T) {
	for _, code := range []string{"86994", "8697", "869947813", "42"} {
		once, err := basin.MainCoursePrefix(code)
		require.NoError(t, err)
		twice, err := basin.MainCoursePrefix(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "code %s", code)
	}
}

func TestDownstreamCoursePrefixes(t *testing.T) {
	tests := []struct {
		code string
		want []string
	}{
		{code: "1234", want: []string{"12", "1234"}},
		{code: "8699478", want: []string{"8", "86", "86994", "8699478"}},
		{code: "777", want: nil},
		{code: "2", want: []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := basin.DownstreamCoursePrefixes(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDownstreamCoursePrefixes_Invalid(t *testing.T) {
	_, err := basin.DownstreamCoursePrefixes("")
	assert.Error(t, err)
}

func TestCompareCodes(t *testing.T) {
	assert.Negative(t, basin.CompareCodes("8631", "8697"))
	assert.Positive(t, basin.CompareCodes("8697", "8631"))
	assert.Zero(t, basin.CompareCodes("86994", "86994"))
	assert.Negative(t, basin.CompareCodes("869", "86994"))
}
