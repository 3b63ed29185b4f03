package leaderboard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sleepleague/sleepleague/internal/leaderboard"
	"github.com/sleepleague/sleepleague/internal/models"
)

var day = time.Date(2023, time.January, 8, 0, 0, 0, 0, time.UTC)

func member(id, name string) models.Member {
	return models.Member{GroupID: "g1", UserID: id, Name: name}
}

func event(user string, d time.Time, points int, reason string) models.ScoreEvent {
	return models.ScoreEvent{GroupID: "g1", UserID: user, Day: d, Points: points, Reason: reason}
}

func sleepEntry(user string, d time.Time, minutes int) models.SleepEntry {
	return models.SleepEntry{GroupID: "g1", UserID: user, Day: d, SleepMinutes: minutes}
}

func TestRangeStats_TotalsAndOrder(t *testing.T) {
	members := []models.Member{member("u1", "Alice"), member("u2", "Bob"), member("u3", "Charlie")}
	events := []models.ScoreEvent{
		event("u1", day, 2, "Sleep Duration (7.0h)"),
		event("u1", day.AddDate(0, 0, 1), 3, "Sleep Duration (8.0h)"),
		event("u2", day, 4, "Sleep Duration (8.0h) + Winner Bonus"),
		event("u3", day, -1, "Non-submission Penalty"),
	}
	entries := []models.SleepEntry{
		sleepEntry("u1", day, 420),
		sleepEntry("u1", day.AddDate(0, 0, 1), 480),
		sleepEntry("u2", day, 500),
	}

	stats := leaderboard.RangeStats(members, events, entries)
	require.Len(t, stats, 3)

	require.Equal(t, "u1", stats[0].UserID)
	require.Equal(t, 5, stats[0].TotalPoints)
	require.Equal(t, 2, stats[0].Submissions)
	require.InDelta(t, 450.0, stats[0].AvgSleepMinutes, 0.001)

	require.Equal(t, "u2", stats[1].UserID)
	require.Equal(t, 4, stats[1].TotalPoints)

	require.Equal(t, "u3", stats[2].UserID)
	require.Equal(t, -1, stats[2].TotalPoints)
	require.Zero(t, stats[2].AvgSleepMinutes)
}

func TestDailyScorecard_SumsEventsAndFlagsWinner(t *testing.T) {
	members := []models.Member{member("u1", "Alice"), member("u2", "Bob")}
	entries := []models.SleepEntry{
		sleepEntry("u1", day, 480),
		sleepEntry("u2", day, 420),
	}
	events := []models.ScoreEvent{
		event("u1", day, 4, "Sleep Duration (8.0h) + Winner Bonus"),
		event("u1", day, -2, models.ReasonManualAdjustment),
		event("u2", day, 2, "Sleep Duration (7.0h)"),
	}

	rows := leaderboard.DailyScorecard(members, entries, events)
	require.Len(t, rows, 2)

	require.Equal(t, "u1", rows[0].UserID)
	require.Equal(t, 2, rows[0].Points, "manual adjustment sums in")
	require.Contains(t, rows[0].Reason, models.ReasonManualAdjustment)
	require.True(t, rows[0].IsWinner)
	require.Equal(t, 1, rows[0].Rank)

	require.Equal(t, "u2", rows[1].UserID)
	require.False(t, rows[1].IsWinner)
	require.Equal(t, 2, rows[1].Rank)
}

func TestDailyScorecard_NoDataMember(t *testing.T) {
	members := []models.Member{member("u1", "Alice")}
	rows := leaderboard.DailyScorecard(members, nil, nil)
	require.Len(t, rows, 1)
	require.Equal(t, "No data", rows[0].Reason)
	require.False(t, rows[0].IsWinner)
	require.Zero(t, rows[0].Points)
}

// Equal points: more sleep ranks higher.
func TestDailyScorecard_TieOrderBySleep(t *testing.T) {
	members := []models.Member{member("u1", "Alice"), member("u2", "Bob")}
	entries := []models.SleepEntry{
		sleepEntry("u1", day, 420),
		sleepEntry("u2", day, 430),
	}
	events := []models.ScoreEvent{
		event("u1", day, 2, "Sleep Duration (7.0h)"),
		event("u2", day, 2, "Sleep Duration (7.2h)"),
	}

	rows := leaderboard.DailyScorecard(members, entries, events)
	require.Equal(t, "u2", rows[0].UserID)
}
