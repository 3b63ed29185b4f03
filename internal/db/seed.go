package db

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/sleepleague/sleepleague/internal/models"
	"github.com/sleepleague/sleepleague/internal/rules"
)

// SeedDemo creates a demo league with four users, the default bucket rules
// and two weeks of randomized entries, then recomputes every seeded day
// through the provided engine callback. Intended for local development only.
func SeedDemo(ctx context.Context, database *sql.DB, loc *time.Location, recompute func(ctx context.Context, groupID string, day time.Time) error) error {
	if existing, err := GetGroupByJoinCode(ctx, database, "DREAM1"); err != nil {
		return err
	} else if existing != nil {
		return nil // already seeded
	}

	names := []string{"Alice", "Bob", "Charlie", "David"}
	users := make([]models.User, 0, len(names))
	for _, n := range names {
		u, err := CreateUser(ctx, database, n, fmt.Sprintf("%s@example.com", n))
		if err != nil {
			return err
		}
		users = append(users, u)
	}

	group, err := CreateGroup(ctx, database, "The Dream Team", "DREAM1", users[0].ID)
	if err != nil {
		return err
	}
	for _, u := range users[1:] {
		if err := AddMember(ctx, database, group.ID, u.ID); err != nil {
			return err
		}
	}

	defaultRules, err := rules.Parse(rules.ModeThreshold, []byte(`{
		"buckets": [
			{"max": 4.5, "points": -1},
			{"min": 4.5, "max": 5.5, "points": 0},
			{"min": 5.5, "max": 6.5, "points": 1},
			{"min": 6.5, "max": 7.5, "points": 2},
			{"min": 7.5, "points": 3}
		],
		"nonSubmitPoints": -1,
		"thumbsUpBonus": 1
	}`))
	if err != nil {
		return err
	}

	today := time.Now().In(loc)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)

	if _, err := InsertScoringConfig(ctx, database, models.ScoringConfig{
		GroupID:    group.ID,
		Mode:       rules.ModeThreshold,
		ActiveFrom: today.AddDate(0, 0, -30),
		Rules:      defaultRules,
	}); err != nil {
		return err
	}

	sources := []string{models.SourceOura, models.SourceApple, models.SourceGarmin, models.SourceManual}
	for back := 14; back >= 0; back-- {
		d := today.AddDate(0, 0, -back)
		for _, u := range users {
			baseHours := 7
			switch u.Name {
			case "Bob":
				baseHours = 8
			case "David":
				baseHours = 5
			}
			if rand.Float64() > 0.9 {
				continue // просто не сдал отчёт
			}
			minutes := baseHours*60 + rand.Intn(61) - 30
			if _, err := UpsertSleepEntry(ctx, database, models.SleepEntry{
				GroupID:      group.ID,
				UserID:       u.ID,
				Day:          d,
				SleepMinutes: minutes,
				Source:       sources[rand.Intn(len(sources))],
				Confidence:   models.ConfidenceMeasured,
			}); err != nil {
				return err
			}
		}
		if err := recompute(ctx, group.ID, d); err != nil {
			return err
		}
	}
	return nil
}
