package models

import (
	"time"

	"github.com/sleepleague/sleepleague/internal/rules"
)

// ScoringConfig is a versioned rule set for a group. Rows are immutable:
// changing the rules inserts a new row with a later ActiveFrom, so past days
// can always be recomputed against the rules that were active then.
type ScoringConfig struct {
	ID         string        `db:"id"`
	GroupID    string        `db:"group_id"`
	Mode       rules.Mode    `db:"mode"`
	ActiveFrom time.Time     `db:"active_from"`
	Rules      rules.RuleSet `db:"config"`
	CreatedAt  time.Time     `db:"created_at"`
}
