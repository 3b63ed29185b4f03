package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sleepleague/sleepleague/internal/models"
)

// Three members, one of them with a zero-minute entry: only the two valid
// submitters get events, 480→2 and 420→1.
func TestRank_ZeroMinuteAndAbsentGetNothing(t *testing.T) {
	d := day(2023, time.January, 8)
	events := evaluateRank("g1", d, []models.SleepEntry{
		entry("u1", d, 480),
		entry("u2", d, 0),
		entry("u3", d, 420),
	})

	require.Len(t, events, 2)
	pts := pointsByUser(events)
	require.Equal(t, 2, pts["u1"])
	require.Equal(t, 1, pts["u3"])
	require.NotContains(t, pts, "u2")
}

// For N valid submitters the awarded points are exactly {1..N}; the longest
// sleeper takes N.
func TestRank_Conservation(t *testing.T) {
	d := day(2023, time.January, 8)
	events := evaluateRank("g1", d, []models.SleepEntry{
		entry("u1", d, 410),
		entry("u2", d, 505),
		entry("u3", d, 444),
		entry("u4", d, 390),
		entry("u5", d, 472),
	})

	require.Len(t, events, 5)
	seen := make(map[int]bool)
	for _, ev := range events {
		seen[ev.Points] = true
	}
	for p := 1; p <= 5; p++ {
		require.Truef(t, seen[p], "missing point value %d", p)
	}
	require.Equal(t, 5, pointsByUser(events)["u2"], "max minutes takes N")
}

// Equal durations order by ascending user id, so recomputation is
// deterministic.
func TestRank_TieBreakByUserID(t *testing.T) {
	d := day(2023, time.January, 8)
	events := evaluateRank("g1", d, []models.SleepEntry{
		entry("ub", d, 480),
		entry("ua", d, 480),
		entry("uc", d, 400),
	})

	pts := pointsByUser(events)
	require.Equal(t, 3, pts["ua"])
	require.Equal(t, 2, pts["ub"])
	require.Equal(t, 1, pts["uc"])
}

func TestRank_ReasonAndMetadata(t *testing.T) {
	d := day(2023, time.January, 8)
	events := evaluateRank("g1", d, []models.SleepEntry{
		entry("u1", d, 480),
		entry("u2", d, 420),
	})

	require.Equal(t, "Rank 1 / 2", events[0].Reason)
	require.Equal(t, 1, events[0].Meta.Rank)
	require.Equal(t, 480, events[0].Meta.SleepMinutes)
	require.Equal(t, "Rank 2 / 2", events[1].Reason)
}

func TestRank_EmptyDayProducesNoEvents(t *testing.T) {
	d := day(2023, time.January, 8)
	require.Empty(t, evaluateRank("g1", d, nil))
}
