package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/sleepleague/sleepleague/internal/models"
)

// evaluateRank awards N−i points to the submitter at descending-minutes
// position i: the longest sleeper of N gets N, the shortest gets 1. Equal
// durations are ordered by ascending user id so recomputation is
// deterministic. Non-submitters and zero-minute entries get no event at all
// in this mode.
func evaluateRank(groupID string, day time.Time, entries []models.SleepEntry) []models.ScoreEvent {
	valid := make([]models.SleepEntry, 0, len(entries))
	for _, en := range entries {
		if en.SleepMinutes > 0 {
			valid = append(valid, en)
		}
	}
	sort.Slice(valid, func(i, j int) bool {
		if valid[i].SleepMinutes != valid[j].SleepMinutes {
			return valid[i].SleepMinutes > valid[j].SleepMinutes
		}
		return valid[i].UserID < valid[j].UserID
	})

	n := len(valid)
	events := make([]models.ScoreEvent, 0, n)
	for i, en := range valid {
		events = append(events, models.ScoreEvent{
			GroupID: groupID,
			UserID:  en.UserID,
			Day:     day,
			Points:  n - i,
			Reason:  fmt.Sprintf("Rank %d / %d", i+1, n),
			Meta:    models.EventMeta{SleepMinutes: en.SleepMinutes, Rank: i + 1},
		})
	}
	return events
}
