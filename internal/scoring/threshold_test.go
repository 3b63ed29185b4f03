package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sleepleague/sleepleague/internal/models"
	"github.com/sleepleague/sleepleague/internal/rules"
)

func f(v float64) *float64 { return &v }
func iptr(v int) *int      { return &v }

// The default league rules: <4.5h −1, 4.5–5.5 0, 5.5–6.5 +1, 6.5–7.5 +2,
// ≥7.5 +3; non-submit −1; winner bonus +1.
func defaultThreshold() *rules.ThresholdRules {
	return &rules.ThresholdRules{
		Buckets: []rules.Bucket{
			{Max: f(4.5), Points: -1},
			{Min: f(4.5), Max: f(5.5), Points: 0},
			{Min: f(5.5), Max: f(6.5), Points: 1},
			{Min: f(6.5), Max: f(7.5), Points: 2},
			{Min: f(7.5), Points: 3},
		},
		NonSubmitPoints: iptr(-1),
		ThumbsUpBonus:   1,
	}
}

func day(yy int, mm time.Month, dd int) time.Time {
	return time.Date(yy, mm, dd, 0, 0, 0, 0, time.UTC)
}

func entry(user string, d time.Time, minutes int) models.SleepEntry {
	return models.SleepEntry{GroupID: "g1", UserID: user, Day: d, SleepMinutes: minutes}
}

func pointsByUser(events []models.ScoreEvent) map[string]int {
	out := make(map[string]int, len(events))
	for _, ev := range events {
		out[ev.UserID] = ev.Points
	}
	return out
}

func reasonByUser(events []models.ScoreEvent) map[string]string {
	out := make(map[string]string, len(events))
	for _, ev := range events {
		out[ev.UserID] = ev.Reason
	}
	return out
}

// One member per band, one absentee; the longest sleeper also takes the
// winner bonus.
func TestThreshold_BucketsWinnerAndPenalty(t *testing.T) {
	d := day(2023, time.January, 8)
	members := []string{"u1", "u2", "u3", "u4", "u5", "u6"}
	entries := []models.SleepEntry{
		entry("u1", d, 480), // 8.0h → +3, winner → 4
		entry("u2", d, 420), // 7.0h → +2
		entry("u3", d, 370), // 6.2h → +1
		entry("u4", d, 300), // 5.0h → 0
		entry("u5", d, 250), // 4.2h → −1
		// u6 absent → −1
	}

	events := evaluateThreshold(defaultThreshold(), "g1", d, members, entries, nil)
	require.Len(t, events, 6, "threshold mode emits one event per member")

	pts := pointsByUser(events)
	require.Equal(t, 4, pts["u1"])
	require.Equal(t, 2, pts["u2"])
	require.Equal(t, 1, pts["u3"])
	require.Equal(t, 0, pts["u4"])
	require.Equal(t, -1, pts["u5"])
	require.Equal(t, -1, pts["u6"])

	reasons := reasonByUser(events)
	require.Contains(t, reasons["u1"], "Winner Bonus")
	require.NotContains(t, reasons["u2"], "Winner Bonus")
	require.Equal(t, "Non-submission Penalty", reasons["u6"])
}

// Bucket bounds are lower-inclusive, upper-exclusive: exactly 7.5h is
// already the top bucket.
func TestThreshold_BoundaryGoesToUpperBucket(t *testing.T) {
	d := day(2023, time.January, 8)
	events := evaluateThreshold(defaultThreshold(), "g1", d,
		[]string{"u1"}, []models.SleepEntry{entry("u1", d, 450)}, nil) // 7.5h
	require.Equal(t, 3, events[0].Points)
}

func TestThreshold_LoneSubmitterGetsNoWinnerBonus(t *testing.T) {
	d := day(2023, time.January, 8)
	events := evaluateThreshold(defaultThreshold(), "g1", d,
		[]string{"u1", "u2"}, []models.SleepEntry{entry("u1", d, 480)}, nil)

	pts := pointsByUser(events)
	require.Equal(t, 3, pts["u1"], "no contest, no bonus")
	require.Equal(t, -1, pts["u2"])
	require.NotContains(t, reasonByUser(events)["u1"], "Winner Bonus")
}

func TestThreshold_ZeroMinuteEntryDoesNotCountAsContest(t *testing.T) {
	d := day(2023, time.January, 8)
	events := evaluateThreshold(defaultThreshold(), "g1", d,
		[]string{"u1", "u2"}, []models.SleepEntry{
			entry("u1", d, 480),
			entry("u2", d, 0),
		}, nil)

	require.NotContains(t, reasonByUser(events)["u1"], "Winner Bonus",
		"a zero-minute submission is not a valid opponent")
}

func TestThreshold_TiedMaximumBothGetBonus(t *testing.T) {
	d := day(2023, time.January, 8)
	events := evaluateThreshold(defaultThreshold(), "g1", d,
		[]string{"u1", "u2", "u3"}, []models.SleepEntry{
			entry("u1", d, 480),
			entry("u2", d, 480),
			entry("u3", d, 400),
		}, nil)

	pts := pointsByUser(events)
	require.Equal(t, 4, pts["u1"])
	require.Equal(t, 4, pts["u2"])
	require.Equal(t, 2, pts["u3"]) // 6.7h, no bonus
}

// A bucket list with a hole (authored before validation existed) must not
// abort the batch: the unmatched entry scores 0 with a diagnostic reason.
func TestThreshold_UnmatchedBucketFallsBackToZero(t *testing.T) {
	d := day(2023, time.January, 8)
	holey := &rules.ThresholdRules{
		Buckets: []rules.Bucket{
			{Max: f(5), Points: -1},
			{Min: f(7), Points: 2},
		},
	}
	events := evaluateThreshold(holey, "g1", d,
		[]string{"u1"}, []models.SleepEntry{entry("u1", d, 360)}, nil) // 6h, in the hole

	require.Equal(t, 0, events[0].Points)
	require.Contains(t, events[0].Reason, "No bucket match")
}

// Zero submissions: every member still gets the penalty row (the engine
// does not special-case an empty day).
func TestThreshold_EmptyDayEmitsPenalties(t *testing.T) {
	d := day(2023, time.January, 8)
	events := evaluateThreshold(defaultThreshold(), "g1", d,
		[]string{"u1", "u2", "u3"}, nil, nil)

	require.Len(t, events, 3)
	for _, ev := range events {
		require.Equal(t, -1, ev.Points)
		require.Equal(t, "Non-submission Penalty", ev.Reason)
		require.Equal(t, 0, ev.Meta.SleepMinutes)
	}
}

func TestThreshold_MetadataCarriesMinutes(t *testing.T) {
	d := day(2023, time.January, 8)
	events := evaluateThreshold(defaultThreshold(), "g1", d,
		[]string{"u1"}, []models.SleepEntry{entry("u1", d, 444)}, nil)
	require.Equal(t, 444, events[0].Meta.SleepMinutes)
}
