package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween("2026-03-10", "2026-03-10"))
	assert.Equal(t, 1, DaysBetween("2026-03-10", "2026-03-11"))
	assert.Equal(t, 3, DaysBetween("2026-02-27", "2026-03-02"))
	assert.Equal(t, -1, DaysBetween("2026-03-11", "2026-03-10"))
	assert.Equal(t, 0, DaysBetween("garbage", "2026-03-10"))
}

func TestAddDays(t *testing.T) {
	assert.Equal(t, "2026-03-01", AddDays("2026-02-28", 1))
	assert.Equal(t, "2026-03-09", AddDays("2026-03-10", -1))
	assert.Equal(t, "garbage", AddDays("garbage", 1))
}

func TestDayStartUsesClockLocation(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	clock := NewClock(loc)

	start, err := DayStart(clock, "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, loc).Unix(), start.Unix())
}
