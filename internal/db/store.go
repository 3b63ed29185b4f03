package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/sleepleague/sleepleague/internal/models"
)

// Store adapts the package-level query functions to the source interfaces
// the scoring engine consumes.
type Store struct {
	DB *sql.DB
}

func NewStore(database *sql.DB) *Store { return &Store{DB: database} }

func (s *Store) ListMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	return ListMemberIDs(ctx, s.DB, groupID)
}

func (s *Store) ListSleepForDay(ctx context.Context, groupID string, day time.Time) ([]models.SleepEntry, error) {
	return ListSleepEntriesForDay(ctx, s.DB, groupID, day)
}

func (s *Store) ListSleepRange(ctx context.Context, groupID string, from, to time.Time) ([]models.SleepEntry, error) {
	return ListSleepEntriesRange(ctx, s.DB, groupID, from, to)
}

func (s *Store) FindEffectiveConfig(ctx context.Context, groupID string, day time.Time) (*models.ScoringConfig, error) {
	return FindEffectiveConfig(ctx, s.DB, groupID, day)
}

func (s *Store) ReplaceDayEvents(ctx context.Context, groupID string, day time.Time, events []models.ScoreEvent) error {
	return ReplaceDayEvents(ctx, s.DB, groupID, day, events)
}
