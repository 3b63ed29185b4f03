package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sleepleague/sleepleague/internal/ctxutil"
	"github.com/sleepleague/sleepleague/internal/models"
	"github.com/sleepleague/sleepleague/internal/rules"
)

// InsertScoringConfig stores a new immutable rule set row. The payload must
// already be validated (rules.Parse) — the store does not re-check.
func InsertScoringConfig(ctx context.Context, database *sql.DB, cfg models.ScoringConfig) (models.ScoringConfig, error) {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	payload, err := cfg.Rules.Payload()
	if err != nil {
		return models.ScoringConfig{}, fmt.Errorf("encode rules: %w", err)
	}
	err = database.QueryRowContext(ctx, `
INSERT INTO scoring_configs (id, group_id, mode, active_from, config)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at`,
		cfg.ID, cfg.GroupID, string(cfg.Mode), cfg.ActiveFrom.Format(dayFormat), payload).
		Scan(&cfg.CreatedAt)
	if err != nil {
		return models.ScoringConfig{}, fmt.Errorf("insert scoring config: %w", err)
	}
	return cfg, nil
}

// FindEffectiveConfig resolves the config in effect on the given day: the
// row with the greatest active_from not after the day. (nil, nil) means the
// group has no rules yet for that date.
func FindEffectiveConfig(ctx context.Context, database *sql.DB, groupID string, day time.Time) (*models.ScoringConfig, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	var (
		cfg     models.ScoringConfig
		mode    string
		payload []byte
	)
	err := database.QueryRowContext(ctx, `
SELECT id, group_id, mode, active_from, config, created_at
FROM scoring_configs
WHERE group_id = $1 AND active_from <= $2
ORDER BY active_from DESC, created_at DESC
LIMIT 1`, groupID, day.Format(dayFormat)).
		Scan(&cfg.ID, &cfg.GroupID, &mode, &cfg.ActiveFrom, &payload, &cfg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find effective config: %w", err)
	}

	cfg.Mode = rules.Mode(mode)
	rs, err := rules.Parse(cfg.Mode, payload)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", cfg.ID, err)
	}
	cfg.Rules = rs
	return &cfg, nil
}

func ListScoringConfigs(ctx context.Context, database *sql.DB, groupID string) ([]models.ScoringConfig, error) {
	rows, err := database.QueryContext(ctx, `
SELECT id, group_id, mode, active_from, config, created_at
FROM scoring_configs
WHERE group_id = $1
ORDER BY active_from DESC, created_at DESC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list scoring configs: %w", err)
	}
	defer rows.Close()

	var out []models.ScoringConfig
	for rows.Next() {
		var (
			cfg     models.ScoringConfig
			mode    string
			payload []byte
		)
		if err := rows.Scan(&cfg.ID, &cfg.GroupID, &mode, &cfg.ActiveFrom, &payload, &cfg.CreatedAt); err != nil {
			return nil, err
		}
		cfg.Mode = rules.Mode(mode)
		if cfg.Rules, err = rules.Parse(cfg.Mode, payload); err != nil {
			return nil, fmt.Errorf("config %s: %w", cfg.ID, err)
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}
