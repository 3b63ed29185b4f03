package models

import "time"

// ReasonManualAdjustment помечает ручные корректировки: пересчёт их не трогает.
const ReasonManualAdjustment = "MANUAL_ADJUSTMENT"

// EventMeta is the structured part of a score event. SleepMinutes is always
// present (0 for non-submitters); Rank and Streak only where they apply.
type EventMeta struct {
	SleepMinutes int `json:"sleepMinutes"`
	Rank         int `json:"rank,omitempty"`
	Streak       int `json:"streak,omitempty"`
}

// ScoreEvent — one persisted (user, day) point record. Regenerated wholesale
// by the scoring engine; rows with ReasonManualAdjustment survive recompute.
type ScoreEvent struct {
	ID        string    `db:"id"`
	GroupID   string    `db:"group_id"`
	UserID    string    `db:"user_id"`
	Day       time.Time `db:"day"`
	Points    int       `db:"points"`
	Reason    string    `db:"reason"`
	Meta      EventMeta `db:"metadata"`
	CreatedAt time.Time `db:"created_at"`
}
