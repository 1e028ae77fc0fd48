package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidFrequency(t *testing.T) {
	for _, f := range []int{15, 30, 60, 90} {
		assert.True(t, ValidFrequency(f), "frequency %d should be valid", f)
	}
	for _, f := range []int{0, -30, 1, 7, 45, 91, 100} {
		assert.False(t, ValidFrequency(f), "frequency %d should be invalid", f)
	}
}

func TestNextPickup(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for _, f := range Frequencies {
		next := NextPickup(now, f)
		assert.Equal(t, now.Add(time.Duration(f)*24*time.Hour), next)
	}
}

func TestDiffDays_Rounding(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		b    time.Time
		want int
	}{
		{"exact 30 days", base.Add(30 * 24 * time.Hour), 30},
		{"just under half a day", base.Add(11 * time.Hour), 0},
		{"half a day rounds up", base.Add(12 * time.Hour), 1},
		{"negative half rounds away", base.Add(-12 * time.Hour), -1},
		{"29.4 days", base.Add(29*24*time.Hour + 10*time.Hour), 29},
		{"29.6 days", base.Add(29*24*time.Hour + 15*time.Hour), 30},
		{"ten days past", base.Add(-10 * 24 * time.Hour), -10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DiffDays(base, tc.b))
		})
	}
}

func TestDerive_NeverCollected(t *testing.T) {
	now := time.Now()
	st := Derive(now, nil, nil)
	assert.Nil(t, st.DaysSinceLast)
	assert.Nil(t, st.DaysUntilNext)
	assert.False(t, st.Overdue, "unscheduled household is never overdue")
}

func TestDerive_Overdue(t *testing.T) {
	now := time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC)
	last := now.Add(-40 * 24 * time.Hour)
	next := now.Add(-10 * 24 * time.Hour)

	st := Derive(now, &last, &next)
	require.NotNil(t, st.DaysSinceLast)
	require.NotNil(t, st.DaysUntilNext)
	assert.Equal(t, 40, *st.DaysSinceLast)
	assert.Equal(t, -10, *st.DaysUntilNext)
	assert.True(t, st.Overdue)
}

func TestDerive_UpcomingPickup(t *testing.T) {
	now := time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC)
	last := now.Add(-5 * 24 * time.Hour)
	next := now.Add(25 * 24 * time.Hour)

	st := Derive(now, &last, &next)
	require.NotNil(t, st.DaysUntilNext)
	assert.Equal(t, 25, *st.DaysUntilNext)
	assert.False(t, st.Overdue)
}

func TestDerive_DueToday(t *testing.T) {
	now := time.Date(2025, 7, 11, 12, 0, 0, 0, time.UTC)
	next := now.Add(2 * time.Hour)

	st := Derive(now, nil, &next)
	require.NotNil(t, st.DaysUntilNext)
	assert.Equal(t, 0, *st.DaysUntilNext)
	assert.False(t, st.Overdue, "due today is not overdue")
}
