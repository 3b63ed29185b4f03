package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sleepleague/sleepleague/internal/models"
	"github.com/sleepleague/sleepleague/internal/rules"
)

type fakeStore struct {
	members []string
	entries []models.SleepEntry
	config  *models.ScoringConfig

	replaceCalls int
	lastEvents   []models.ScoreEvent
	replaceErr   error
}

func (s *fakeStore) ListMemberIDs(_ context.Context, _ string) ([]string, error) {
	return s.members, nil
}

func (s *fakeStore) ListSleepForDay(_ context.Context, _ string, d time.Time) ([]models.SleepEntry, error) {
	var out []models.SleepEntry
	for _, en := range s.entries {
		if dayKey(en.Day) == dayKey(d) {
			out = append(out, en)
		}
	}
	return out, nil
}

func (s *fakeStore) ListSleepRange(_ context.Context, _ string, from, to time.Time) ([]models.SleepEntry, error) {
	var out []models.SleepEntry
	for _, en := range s.entries {
		if !en.Day.Before(from) && !en.Day.After(to) {
			out = append(out, en)
		}
	}
	return out, nil
}

func (s *fakeStore) FindEffectiveConfig(_ context.Context, _ string, d time.Time) (*models.ScoringConfig, error) {
	if s.config == nil || s.config.ActiveFrom.After(d) {
		return nil, nil
	}
	return s.config, nil
}

func (s *fakeStore) ReplaceDayEvents(_ context.Context, _ string, _ time.Time, events []models.ScoreEvent) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.replaceCalls++
	s.lastEvents = events
	return nil
}

func thresholdConfig(activeFrom time.Time) *models.ScoringConfig {
	return &models.ScoringConfig{
		ID:         "cfg1",
		GroupID:    "g1",
		Mode:       rules.ModeThreshold,
		ActiveFrom: activeFrom,
		Rules:      rules.RuleSet{Mode: rules.ModeThreshold, Threshold: defaultThreshold()},
	}
}

func TestEngine_NoConfigPerformsNoWrites(t *testing.T) {
	d := day(2023, time.January, 8)
	store := &fakeStore{members: []string{"u1"}, entries: []models.SleepEntry{entry("u1", d, 480)}}
	eng := NewEngine(store, store, store, store, time.UTC, nil)

	res, err := eng.Recompute(context.Background(), "g1", d)
	require.NoError(t, err)
	require.Equal(t, StatusNoConfig, res.Status)
	require.Zero(t, store.replaceCalls, "no delete, no insert without a config")
}

func TestEngine_ConfigActiveOnlyFromItsDate(t *testing.T) {
	d := day(2023, time.January, 8)
	store := &fakeStore{
		members: []string{"u1"},
		config:  thresholdConfig(d.AddDate(0, 0, 1)), // active from tomorrow
	}
	eng := NewEngine(store, store, store, store, time.UTC, nil)

	res, err := eng.Recompute(context.Background(), "g1", d)
	require.NoError(t, err)
	require.Equal(t, StatusNoConfig, res.Status)
}

func TestEngine_Idempotence(t *testing.T) {
	d := day(2023, time.January, 8)
	store := &fakeStore{
		members: []string{"u1", "u2", "u3"},
		entries: []models.SleepEntry{
			entry("u1", d, 480),
			entry("u2", d, 420),
		},
		config: thresholdConfig(d.AddDate(0, 0, -30)),
	}
	eng := NewEngine(store, store, store, store, time.UTC, nil)

	res1, err := eng.Recompute(context.Background(), "g1", d)
	require.NoError(t, err)
	first := store.lastEvents

	res2, err := eng.Recompute(context.Background(), "g1", d)
	require.NoError(t, err)

	require.Equal(t, res1, res2)
	require.Equal(t, first, store.lastEvents, "same inputs, same replacement set")
	require.Equal(t, 2, store.replaceCalls)
}

func TestEngine_TimeOfDayDoesNotChangeTheDay(t *testing.T) {
	d := day(2023, time.January, 8)
	store := &fakeStore{
		members: []string{"u1"},
		entries: []models.SleepEntry{entry("u1", d, 480)},
		config:  thresholdConfig(d.AddDate(0, 0, -1)),
	}
	eng := NewEngine(store, store, store, store, time.UTC, nil)

	lateEvening := d.Add(23*time.Hour + 45*time.Minute)
	res, err := eng.Recompute(context.Background(), "g1", lateEvening)
	require.NoError(t, err)
	require.Equal(t, StatusComputed, res.Status)
	require.Equal(t, 1, res.Events)
	require.Equal(t, dayKey(d), dayKey(store.lastEvents[0].Day))
}

func TestEngine_RankModeReplacesWithValidSubmittersOnly(t *testing.T) {
	d := day(2023, time.January, 8)
	store := &fakeStore{
		members: []string{"u1", "u2", "u3"},
		entries: []models.SleepEntry{
			entry("u1", d, 480),
			entry("u2", d, 0),
			entry("u3", d, 420),
		},
		config: &models.ScoringConfig{
			ID: "cfg2", GroupID: "g1", Mode: rules.ModeRank,
			ActiveFrom: d.AddDate(0, 0, -1),
			Rules:      rules.RuleSet{Mode: rules.ModeRank, Rank: &rules.RankRules{}},
		},
	}
	eng := NewEngine(store, store, store, store, time.UTC, nil)

	res, err := eng.Recompute(context.Background(), "g1", d)
	require.NoError(t, err)
	require.Equal(t, 2, res.Events)
}

// An empty rank day still replaces (clearing stale rows), unlike the
// no-config case which must not write at all.
func TestEngine_RankEmptyDayStillClears(t *testing.T) {
	d := day(2023, time.January, 8)
	store := &fakeStore{
		members: []string{"u1"},
		config: &models.ScoringConfig{
			ID: "cfg2", GroupID: "g1", Mode: rules.ModeRank,
			ActiveFrom: d.AddDate(0, 0, -1),
			Rules:      rules.RuleSet{Mode: rules.ModeRank, Rank: &rules.RankRules{}},
		},
	}
	eng := NewEngine(store, store, store, store, time.UTC, nil)

	res, err := eng.Recompute(context.Background(), "g1", d)
	require.NoError(t, err)
	require.Equal(t, StatusComputed, res.Status)
	require.Zero(t, res.Events)
	require.Equal(t, 1, store.replaceCalls)
}

func TestEngine_PersistFailureSurfaces(t *testing.T) {
	d := day(2023, time.January, 8)
	store := &fakeStore{
		members:    []string{"u1"},
		entries:    []models.SleepEntry{entry("u1", d, 480)},
		config:     thresholdConfig(d.AddDate(0, 0, -1)),
		replaceErr: errors.New("connection reset"),
	}
	eng := NewEngine(store, store, store, store, time.UTC, nil)

	_, err := eng.Recompute(context.Background(), "g1", d)
	require.ErrorContains(t, err, "replace events")
}

func TestEngine_StreakHistoryFlowsThroughRecompute(t *testing.T) {
	d := day(2023, time.January, 8)
	entries := []models.SleepEntry{entry("u1", d, 420)}
	for back := 1; back <= 6; back++ {
		entries = append(entries, entry("u1", d.AddDate(0, 0, -back), 430))
	}
	store := &fakeStore{
		members: []string{"u1"},
		entries: entries,
		config:  thresholdConfig(d.AddDate(0, 0, -30)),
	}
	eng := NewEngine(store, store, store, store, time.UTC, nil)

	_, err := eng.Recompute(context.Background(), "g1", d)
	require.NoError(t, err)
	require.Equal(t, 5, store.lastEvents[0].Points) // +2 bucket, +3 streak
	require.Contains(t, store.lastEvents[0].Reason, "7-day Streak!")
}
