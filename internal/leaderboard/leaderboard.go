// Package leaderboard aggregates score events and sleep entries into the
// rows leaderboard and scorecard views consume. It only shapes data; it
// renders nothing.
package leaderboard

import (
	"sort"
	"strings"

	"github.com/sleepleague/sleepleague/internal/models"
)

type MemberStats struct {
	UserID          string  `json:"userId"`
	Name            string  `json:"name"`
	TotalPoints     int     `json:"totalPoints"`
	AvgSleepMinutes float64 `json:"avgSleepMinutes"`
	Submissions     int     `json:"submissions"`
}

// RangeStats sums points and sleep per member over a date range, sorted by
// total points descending (ties by name for a stable listing).
func RangeStats(members []models.Member, events []models.ScoreEvent, entries []models.SleepEntry) []MemberStats {
	points := make(map[string]int)
	for _, ev := range events {
		points[ev.UserID] += ev.Points
	}
	minutes := make(map[string]int)
	count := make(map[string]int)
	for _, en := range entries {
		minutes[en.UserID] += en.SleepMinutes
		count[en.UserID]++
	}

	out := make([]MemberStats, 0, len(members))
	for _, m := range members {
		s := MemberStats{
			UserID:      m.UserID,
			Name:        m.Name,
			TotalPoints: points[m.UserID],
			Submissions: count[m.UserID],
		}
		if s.Submissions > 0 {
			s.AvgSleepMinutes = float64(minutes[m.UserID]) / float64(s.Submissions)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].Name < out[j].Name
	})
	return out
}

type ScorecardRow struct {
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	SleepMinutes int    `json:"sleepMinutes"`
	Points       int    `json:"points"`
	Reason       string `json:"reason"`
	Rank         int    `json:"rank"`
	IsWinner     bool   `json:"isWinner"`
}

// DailyScorecard combines one day's entries and events per member. Multiple
// events per user (say a manual adjustment on top of the engine row) are
// summed and their reasons joined. Rank orders by points, then minutes; the
// winner flag marks everyone at the day's positive sleep maximum.
func DailyScorecard(members []models.Member, entries []models.SleepEntry, events []models.ScoreEvent) []ScorecardRow {
	entryByUser := make(map[string]models.SleepEntry, len(entries))
	for _, en := range entries {
		entryByUser[en.UserID] = en
	}
	eventsByUser := make(map[string][]models.ScoreEvent, len(events))
	for _, ev := range events {
		eventsByUser[ev.UserID] = append(eventsByUser[ev.UserID], ev)
	}

	maxSleep := 0
	for _, en := range entries {
		if en.SleepMinutes > maxSleep {
			maxSleep = en.SleepMinutes
		}
	}

	rows := make([]ScorecardRow, 0, len(members))
	for _, m := range members {
		row := ScorecardRow{UserID: m.UserID, Name: m.Name}
		if en, ok := entryByUser[m.UserID]; ok {
			row.SleepMinutes = en.SleepMinutes
		}
		var reasons []string
		for _, ev := range eventsByUser[m.UserID] {
			row.Points += ev.Points
			reasons = append(reasons, ev.Reason)
		}
		row.Reason = strings.Join(reasons, ", ")
		if row.Reason == "" {
			row.Reason = "No data"
		}
		row.IsWinner = row.SleepMinutes > 0 && row.SleepMinutes == maxSleep
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].SleepMinutes > rows[j].SleepMinutes
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
