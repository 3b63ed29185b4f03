package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sleepleague/sleepleague/internal/ctxutil"
	"github.com/sleepleague/sleepleague/internal/models"
)

// ReplaceDayEvents atomically swaps the auto-generated events of one
// (group, day): advisory lock on the pair, delete everything except manual
// adjustments, insert the replacement batch. Either the whole swap commits
// or nothing does, so a failed insert can never leave the day half-cleared.
func ReplaceDayEvents(ctx context.Context, database *sql.DB, groupID string, day time.Time, events []models.ScoreEvent) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace day events: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Конкурентные пересчёты одной пары (группа, день) выстраиваются в
	// очередь на advisory-локе до конца транзакции.
	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`,
		groupID+"/"+day.Format(dayFormat)); err != nil {
		return fmt.Errorf("acquire day lock: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
DELETE FROM score_events
WHERE group_id = $1 AND day = $2 AND reason <> $3`,
		groupID, day.Format(dayFormat), models.ReasonManualAdjustment); err != nil {
		return fmt.Errorf("delete day events: %w", err)
	}

	for _, ev := range events {
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		meta, err := json.Marshal(ev.Meta)
		if err != nil {
			return fmt.Errorf("encode event metadata: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO score_events (id, group_id, user_id, day, points, reason, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			ev.ID, ev.GroupID, ev.UserID, ev.Day.Format(dayFormat),
			ev.Points, ev.Reason, meta); err != nil {
			return fmt.Errorf("insert score event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace day events: %w", err)
	}
	return nil
}

// InsertManualAdjustment adds a protected row that recomputation will not
// touch.
func InsertManualAdjustment(ctx context.Context, database *sql.DB, groupID, userID string, day time.Time, points int) (models.ScoreEvent, error) {
	ev := models.ScoreEvent{
		ID:      uuid.NewString(),
		GroupID: groupID,
		UserID:  userID,
		Day:     day,
		Points:  points,
		Reason:  models.ReasonManualAdjustment,
	}
	meta, err := json.Marshal(ev.Meta)
	if err != nil {
		return models.ScoreEvent{}, fmt.Errorf("encode event metadata: %w", err)
	}
	err = database.QueryRowContext(ctx, `
INSERT INTO score_events (id, group_id, user_id, day, points, reason, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at`,
		ev.ID, ev.GroupID, ev.UserID, ev.Day.Format(dayFormat),
		ev.Points, ev.Reason, meta).Scan(&ev.CreatedAt)
	if err != nil {
		return models.ScoreEvent{}, fmt.Errorf("insert manual adjustment: %w", err)
	}
	return ev, nil
}

func ListScoreEventsRange(ctx context.Context, database *sql.DB, groupID string, from, to time.Time) ([]models.ScoreEvent, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := database.QueryContext(ctx, `
SELECT id, group_id, user_id, day, points, reason, metadata, created_at
FROM score_events
WHERE group_id = $1 AND day >= $2 AND day <= $3
ORDER BY day, user_id, created_at`,
		groupID, from.Format(dayFormat), to.Format(dayFormat))
	if err != nil {
		return nil, fmt.Errorf("list score events: %w", err)
	}
	defer rows.Close()

	var out []models.ScoreEvent
	for rows.Next() {
		var (
			ev   models.ScoreEvent
			meta []byte
		)
		if err := rows.Scan(&ev.ID, &ev.GroupID, &ev.UserID, &ev.Day,
			&ev.Points, &ev.Reason, &meta, &ev.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &ev.Meta); err != nil {
				return nil, fmt.Errorf("decode event metadata: %w", err)
			}
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func ListScoreEventsForDay(ctx context.Context, database *sql.DB, groupID string, day time.Time) ([]models.ScoreEvent, error) {
	return ListScoreEventsRange(ctx, database, groupID, day, day)
}
