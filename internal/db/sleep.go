package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sleepleague/sleepleague/internal/ctxutil"
	"github.com/sleepleague/sleepleague/internal/models"
)

const dayFormat = "2006-01-02"

// UpsertSleepEntry создаёт или заменяет запись за (группа, участник, день).
func UpsertSleepEntry(ctx context.Context, database *sql.DB, e models.SleepEntry) (models.SleepEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	err := database.QueryRowContext(ctx, `
INSERT INTO sleep_entries (id, group_id, user_id, day, sleep_minutes, source, confidence, note)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (group_id, user_id, day) DO UPDATE SET
    sleep_minutes = EXCLUDED.sleep_minutes,
    source = EXCLUDED.source,
    confidence = EXCLUDED.confidence,
    note = EXCLUDED.note,
    updated_at = now()
RETURNING id, created_at, updated_at`,
		e.ID, e.GroupID, e.UserID, e.Day.Format(dayFormat),
		e.SleepMinutes, e.Source, e.Confidence, e.Note).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return models.SleepEntry{}, fmt.Errorf("upsert sleep entry: %w", err)
	}
	return e, nil
}

func ListSleepEntriesForDay(ctx context.Context, database *sql.DB, groupID string, day time.Time) ([]models.SleepEntry, error) {
	return ListSleepEntriesRange(ctx, database, groupID, day, day)
}

// ListSleepEntriesRange returns entries with from <= day <= to. Bounds are
// bound as date strings so the comparison never depends on server time zone.
func ListSleepEntriesRange(ctx context.Context, database *sql.DB, groupID string, from, to time.Time) ([]models.SleepEntry, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := database.QueryContext(ctx, `
SELECT id, group_id, user_id, day, sleep_minutes, source, confidence, note, created_at, updated_at
FROM sleep_entries
WHERE group_id = $1 AND day >= $2 AND day <= $3
ORDER BY day, user_id`,
		groupID, from.Format(dayFormat), to.Format(dayFormat))
	if err != nil {
		return nil, fmt.Errorf("list sleep entries: %w", err)
	}
	defer rows.Close()

	var out []models.SleepEntry
	for rows.Next() {
		var e models.SleepEntry
		if err := rows.Scan(&e.ID, &e.GroupID, &e.UserID, &e.Day, &e.SleepMinutes,
			&e.Source, &e.Confidence, &e.Note, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
