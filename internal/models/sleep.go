package models

import "time"

// Допустимые источники и уровни доверия самоотчёта.
const (
	SourceOura   = "Oura"
	SourceApple  = "Apple"
	SourceGarmin = "Garmin"
	SourceManual = "Manual"

	ConfidenceMeasured  = "MEASURED"
	ConfidenceEstimated = "ESTIMATED"
)

// SleepEntry — one self-reported night per (group, user, calendar day).
// Day carries only the date; time-of-day is always midnight.
type SleepEntry struct {
	ID           string    `db:"id"`
	GroupID      string    `db:"group_id"`
	UserID       string    `db:"user_id"`
	Day          time.Time `db:"day"`
	SleepMinutes int       `db:"sleep_minutes"`
	Source       string    `db:"source"`
	Confidence   string    `db:"confidence"`
	Note         *string   `db:"note"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func ValidSource(s string) bool {
	switch s {
	case SourceOura, SourceApple, SourceGarmin, SourceManual:
		return true
	}
	return false
}

func ValidConfidence(c string) bool {
	return c == ConfidenceMeasured || c == ConfidenceEstimated
}
