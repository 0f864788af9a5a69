package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"9:00 AM", 540},
		{"09:00", 540},
		{"12:00 AM", 0},
		{"12:00 PM", 720},
		{"12:30 am", 30},
		{"1:05 pm", 785},
		{"11:59 PM", 1439},
		{"23:59", 1439},
		{"0:00", 0},
		{"7:45PM", 1185},
		{" 3:15 PM ", 915},
		{"", NoTime},
		{"abc", NoTime},
		{"25:00", NoTime},
		{"9:60", NoTime},
		{"13:00 PM", NoTime},
		{"0:30 AM", NoTime},
		{"9", NoTime},
		{"9:00:00", NoTime},
		{"-1:00", NoTime},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseClock(tt.input))
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "9:00 AM", FormatClock(540))
	assert.Equal(t, "12:00 AM", FormatClock(0))
	assert.Equal(t, "12:00 PM", FormatClock(720))
	assert.Equal(t, "11:59 PM", FormatClock(1439))
	assert.Equal(t, "", FormatClock(NoTime))
	assert.Equal(t, "", FormatClock(MinutesPerDay))
}

func TestOverlaps(t *testing.T) {
	// Touching endpoints are not a collision.
	assert.False(t, Overlaps(540, 600, 600, 660))
	assert.False(t, Overlaps(600, 660, 540, 600))

	// Plain intersection, both orders.
	assert.True(t, Overlaps(540, 600, 570, 630))
	assert.True(t, Overlaps(570, 630, 540, 600))

	// Containment.
	assert.True(t, Overlaps(540, 720, 570, 600))

	// Disjoint.
	assert.False(t, Overlaps(540, 600, 700, 760))

	// Sentinel never overlaps.
	assert.False(t, Overlaps(NoTime, 600, 540, 660))
	assert.False(t, Overlaps(540, 600, 570, NoTime))
}

func TestOverlapsSymmetry(t *testing.T) {
	intervals := [][2]int{{0, 60}, {30, 90}, {60, 120}, {90, 1439}, {540, 600}}
	for _, a := range intervals {
		for _, b := range intervals {
			assert.Equal(t, Overlaps(a[0], a[1], b[0], b[1]), Overlaps(b[0], b[1], a[0], a[1]),
				"overlap(%v,%v) must equal overlap(%v,%v)", a, b, b, a)
		}
	}
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 90, Duration(540, 630))
	assert.Equal(t, 0, Duration(630, 540))
	assert.Equal(t, 0, Duration(540, 540))
	assert.Equal(t, 0, Duration(NoTime, 600))
	assert.Equal(t, 0, Duration(540, NoTime))
}

func TestWeekStart(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Wednesday 2026-01-14 belongs to the week of Monday 2026-01-12.
	wed := time.Date(2026, 1, 14, 15, 30, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 1, 12, 0, 0, 0, 0, loc), WeekStart(wed, loc))
	assert.Equal(t, time.Date(2026, 1, 18, 0, 0, 0, 0, loc), WeekEnd(wed, loc))

	// Monday maps to itself, Sunday to the previous Monday.
	mon := time.Date(2026, 1, 12, 0, 0, 0, 0, loc)
	assert.Equal(t, mon, WeekStart(mon, loc))
	sun := time.Date(2026, 1, 18, 23, 0, 0, 0, loc)
	assert.Equal(t, mon, WeekStart(sun, loc))
}

func TestCivilDateNormalizesUTCSkew(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2026-01-15T03:00Z is still Jan 14 in New York.
	utc := time.Date(2026, 1, 15, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-14", DayKey(utc, loc))
	assert.Equal(t, time.Date(2026, 1, 14, 0, 0, 0, 0, loc), CivilDate(utc, loc))
}
