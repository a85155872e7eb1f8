package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateZeroDatesAreNil(t *testing.T) {
	assert.Nil(t, parseDate(""))
	assert.Nil(t, parseDate("0000-01-01"))
	assert.Nil(t, parseDate("0000-00-00"))
	assert.Nil(t, parseDate("not a date"))

	got := parseDate("2024-03-16")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), *got)
}

func TestParseTimestampFormats(t *testing.T) {
	got := parseTimestamp("2024-05-01 18:30:00")
	require.NotNil(t, got)
	assert.Equal(t, 18, got.Hour())

	assert.NotNil(t, parseTimestamp("2024-05-01"))
	assert.Nil(t, parseTimestamp("0000-01-01 00:00:00"))
}

func TestTierScore(t *testing.T) {
	assert.Equal(t, 100.0, tierScore("1"))
	assert.Equal(t, 75.0, tierScore("2"))
	assert.Equal(t, 50.0, tierScore("3"))
	assert.Equal(t, 25.0, tierScore("4"))
	assert.Equal(t, 15.0, tierScore("Qualifier"))
	assert.Equal(t, 10.0, tierScore("Show Match"))
	assert.Equal(t, 10.0, tierScore(""))
}

func TestTournamentWeight(t *testing.T) {
	// Max prize in range: full prize component.
	w := tournamentWeight("1", 1_000_000, 10_000, 1_000_000)
	assert.InDelta(t, 0.70*100+0.30*100, w, 1e-9)

	// Min prize in range: no prize component.
	w = tournamentWeight("2", 10_000, 10_000, 1_000_000)
	assert.InDelta(t, 0.70*75, w, 1e-9)

	// No prize data at all: tier alone decides.
	w = tournamentWeight("3", 0, 0, 0)
	assert.InDelta(t, 0.70*50, w, 1e-9)
}

func TestParsePlacement(t *testing.T) {
	lower, upper, err := parsePlacement("1")
	require.NoError(t, err)
	assert.Equal(t, 1, lower)
	assert.Equal(t, 1, upper)

	lower, upper, err = parsePlacement("3-4")
	require.NoError(t, err)
	assert.Equal(t, 3, lower)
	assert.Equal(t, 4, upper)

	_, _, err = parsePlacement("")
	assert.Error(t, err)

	_, _, err = parsePlacement("4-3")
	assert.Error(t, err)

	_, _, err = parsePlacement("DQ")
	assert.Error(t, err)
}

func TestIsStaffRole(t *testing.T) {
	assert.True(t, isStaffRole("Coach"))
	assert.True(t, isStaffRole(" analyst "))
	assert.False(t, isStaffRole("awper"))
	assert.False(t, isStaffRole(""))
}
