package scoring

import (
	"fmt"
	"time"

	"github.com/sleepleague/sleepleague/internal/models"
	"github.com/sleepleague/sleepleague/internal/rules"
)

// evaluateThreshold produces one event per group member: bucket points for
// submitters, the non-submission penalty for everyone else, plus the winner
// bonus and streak bonus where earned.
func evaluateThreshold(r *rules.ThresholdRules, groupID string, day time.Time, memberIDs []string, entries, history []models.SleepEntry) []models.ScoreEvent {
	byUser := make(map[string]models.SleepEntry, len(entries))
	for _, en := range entries {
		byUser[en.UserID] = en
	}

	// Дневной максимум считается только по валидным записям (minutes > 0);
	// бонус победителя требует хотя бы двух участников.
	maxSleep, valid := 0, 0
	for _, en := range entries {
		if en.SleepMinutes <= 0 {
			continue
		}
		valid++
		if en.SleepMinutes > maxSleep {
			maxSleep = en.SleepMinutes
		}
	}
	contested := valid >= 2

	events := make([]models.ScoreEvent, 0, len(memberIDs))
	for _, userID := range memberIDs {
		en, submitted := byUser[userID]
		if !submitted {
			events = append(events, models.ScoreEvent{
				GroupID: groupID,
				UserID:  userID,
				Day:     day,
				Points:  r.NonSubmit(),
				Reason:  "Non-submission Penalty",
				Meta:    models.EventMeta{SleepMinutes: 0},
			})
			continue
		}

		hours := float64(en.SleepMinutes) / 60.0
		points := 0
		reason := fmt.Sprintf("No bucket match (%.1fh)", hours)
		for _, b := range r.Buckets {
			if b.Matches(hours) {
				points = b.Points
				reason = fmt.Sprintf("Sleep Duration (%.1fh)", hours)
				break
			}
		}

		if contested && en.SleepMinutes > 0 && en.SleepMinutes == maxSleep {
			points += r.ThumbsUpBonus
			reason += " + Winner Bonus"
		}

		meta := models.EventMeta{SleepMinutes: en.SleepMinutes}
		if en.SleepMinutes >= r.StreakMin() {
			run := streakRun(qualifyingDays(history, userID, r.StreakMin()), day, r.StreakTarget())
			switch {
			case run == r.StreakTarget():
				points += r.StreakComplete()
				reason += fmt.Sprintf(" + %d-day Streak!", run)
				meta.Streak = run
			case run > r.StreakTarget():
				points += r.StreakContinue()
				reason += " + Streak Continued"
				meta.Streak = run
			}
		}

		events = append(events, models.ScoreEvent{
			GroupID: groupID,
			UserID:  userID,
			Day:     day,
			Points:  points,
			Reason:  reason,
			Meta:    meta,
		})
	}
	return events
}
