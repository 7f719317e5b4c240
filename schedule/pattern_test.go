package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhubio/staffhub/db"
)

func date(value string) time.Time {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBuildPattern_Presets(t *testing.T) {
	tests := []struct {
		patternType string
		pattern     []int
		workDays    int
		restDays    int
	}{
		{PatternType4x2, []int{1, 1, 1, 1, 0, 0}, 4, 2},
		{PatternType5x2, []int{1, 1, 1, 1, 1, 0, 0}, 5, 2},
		{PatternType6x1, []int{1, 1, 1, 1, 1, 1, 0}, 6, 1},
		{PatternType3x2x2, []int{1, 1, 1, 0, 0, 1, 1, 0, 0}, 5, 4},
	}

	for _, tt := range tests {
		t.Run(tt.patternType, func(t *testing.T) {
			p, err := BuildPattern(tt.patternType, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.pattern, p.Pattern)
			assert.Equal(t, tt.workDays, p.WorkDays)
			assert.Equal(t, tt.restDays, p.RestDays)
			assert.Equal(t, len(tt.pattern), p.CycleLength)
		})
	}
}

func TestBuildPattern_CustomRoundTrip(t *testing.T) {
	inputs := [][]int{
		{1},
		{0, 1},
		{1, 0, 1, 1, 0, 0, 1},
		{0, 0, 0},
	}

	for _, input := range inputs {
		p, err := BuildPattern(PatternTypeCustom, input)
		require.NoError(t, err)
		assert.Equal(t, input, p.Pattern)

		work := 0
		for _, v := range input {
			work += v
		}
		assert.Equal(t, work, p.WorkDays)
		assert.Equal(t, len(input)-work, p.RestDays)
		assert.Equal(t, len(input), p.CycleLength)
	}
}

func TestBuildPattern_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		patternType string
		custom      []int
	}{
		{"empty custom sequence", PatternTypeCustom, nil},
		{"non-binary value", PatternTypeCustom, []int{1, 0, 2}},
		{"negative value", PatternTypeCustom, []int{1, -1}},
		{"unknown preset", "7x0", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildPattern(tt.patternType, tt.custom)
			require.Error(t, err)
			var patternErr *InvalidPatternError
			assert.ErrorAs(t, err, &patternErr)
		})
	}
}

func TestIsWorkDay_CyclicPeriodicity(t *testing.T) {
	p, err := BuildPattern(PatternType3x2x2, nil)
	require.NoError(t, err)

	anchor := date("2025-10-06")
	cycle := p.CycleLength

	for offset := -30; offset <= 30; offset++ {
		d := anchor.AddDate(0, 0, offset)
		next := d.AddDate(0, 0, cycle)
		assert.Equal(t, IsWorkDay(p, anchor, d), IsWorkDay(p, anchor, next),
			"offset %d must match offset %d", offset, offset+cycle)
	}
}

func TestIsWorkDay_BeforeAnchor(t *testing.T) {
	p, err := BuildPattern(PatternType4x2, nil)
	require.NoError(t, err)

	anchor := date("2025-10-06")

	// Walking backwards from the anchor wraps to the end of the cycle.
	assert.True(t, IsWorkDay(p, anchor, date("2025-10-06")))  // index 0
	assert.False(t, IsWorkDay(p, anchor, date("2025-10-05"))) // index 5, rest
	assert.False(t, IsWorkDay(p, anchor, date("2025-10-04"))) // index 4, rest
	assert.True(t, IsWorkDay(p, anchor, date("2025-10-03")))  // index 3, work
	assert.True(t, IsWorkDay(p, anchor, date("2025-09-30")))  // index 0, full cycle back
}

func TestProjectRange_Length(t *testing.T) {
	p, err := BuildPattern(PatternType5x2, nil)
	require.NoError(t, err)

	anchor := date("2025-01-01")
	from := date("2025-10-01")
	to := date("2025-10-31")

	days, err := ProjectRange(p, anchor, from, to)
	require.NoError(t, err)
	require.Len(t, days, 31)

	for i, d := range days {
		assert.Equal(t, from.AddDate(0, 0, i).Format(DateLayout), d.Date)
		assert.Equal(t, IsWorkDay(p, anchor, from.AddDate(0, 0, i)), d.IsWorkDay)
	}
}

func TestProjectRange_SingleDay(t *testing.T) {
	p, err := BuildPattern(PatternType6x1, nil)
	require.NoError(t, err)

	days, err := ProjectRange(p, date("2025-10-06"), date("2025-10-06"), date("2025-10-06"))
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.True(t, days[0].IsWorkDay)
}

func TestProjectRange_InvalidRange(t *testing.T) {
	p, err := BuildPattern(PatternType4x2, nil)
	require.NoError(t, err)

	_, err = ProjectRange(p, date("2025-10-06"), date("2025-10-10"), date("2025-10-09"))
	require.Error(t, err)
	var rangeErr *InvalidRangeError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestRangeStats(t *testing.T) {
	p, err := BuildPattern(PatternType4x2, nil)
	require.NoError(t, err)

	anchor := date("2025-10-06")

	// Exactly one full cycle.
	stats, err := RangeStats(p, anchor, anchor, anchor.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Equal(t, 4, stats.WorkDays)
	assert.Equal(t, 2, stats.RestDays)
	assert.Equal(t, 67, stats.CoveragePercent) // 4/6 rounded

	// Two full cycles keep the same share.
	stats, err = RangeStats(p, anchor, anchor, anchor.AddDate(0, 0, 11))
	require.NoError(t, err)
	assert.Equal(t, 8, stats.WorkDays)
	assert.Equal(t, 4, stats.RestDays)
	assert.Equal(t, 67, stats.CoveragePercent)
}

func TestIsWorkDay_EmptyPattern(t *testing.T) {
	assert.False(t, IsWorkDay(db.RotationPattern{}, date("2025-10-06"), date("2025-10-07")))
}
