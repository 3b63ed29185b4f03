package scoring

import (
	"time"

	"github.com/sleepleague/sleepleague/internal/models"
)

// qualifyingDays collects the days on which the user slept at least
// minMinutes, keyed by dayKey.
func qualifyingDays(history []models.SleepEntry, userID string, minMinutes int) map[string]bool {
	days := make(map[string]bool)
	for _, en := range history {
		if en.UserID == userID && en.SleepMinutes >= minMinutes {
			days[dayKey(en.Day)] = true
		}
	}
	return days
}

// streakRun counts consecutive qualifying days ending today (today itself
// counts as 1 — callers only invoke this when today qualifies). The walk
// stops at the first gap and never looks back more than window prior days,
// so a missed day resets the run instead of being skipped over.
func streakRun(qualified map[string]bool, day time.Time, window int) int {
	run := 1
	for i := 1; i <= window; i++ {
		if !qualified[dayKey(day.AddDate(0, 0, -i))] {
			break
		}
		run++
	}
	return run
}
