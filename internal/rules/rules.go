// Package rules models the per-group scoring rule payloads.
//
// A rule set is a tagged variant: exactly one of the mode payloads is set,
// chosen by Mode. Payloads are validated once, when a config is written;
// the scoring engine never re-validates at evaluation time.
package rules

import (
	"encoding/json"
	"fmt"
)

type Mode string

const (
	ModeThreshold Mode = "THRESHOLD"
	ModeRank      Mode = "RANK"
)

func (m Mode) Valid() bool { return m == ModeThreshold || m == ModeRank }

// Defaults for the threshold payload. The streak constants mirror the
// product's original fixed values but are overridable per group.
const (
	DefaultNonSubmitPoints     = -1
	DefaultStreakMinMinutes    = 420 // 7 hours
	DefaultStreakTargetDays    = 7
	DefaultStreakCompleteBonus = 3
	DefaultStreakContinueBonus = 1
)

// Bucket is a half-open duration interval in hours: [Min, Max).
// A nil bound leaves that side open.
type Bucket struct {
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Points int      `json:"points"`
}

// Matches reports whether the given sleep duration in hours falls into the
// bucket. Lower bound inclusive, upper bound exclusive.
func (b Bucket) Matches(hours float64) bool {
	if b.Min != nil && hours < *b.Min {
		return false
	}
	if b.Max != nil && hours >= *b.Max {
		return false
	}
	return true
}

type ThresholdRules struct {
	Buckets         []Bucket `json:"buckets"`
	NonSubmitPoints *int     `json:"nonSubmitPoints,omitempty"`
	ThumbsUpBonus   int      `json:"thumbsUpBonus,omitempty"`

	// Streak tuning; zero values fall back to the defaults above.
	StreakMinMinutes    int `json:"streakMinMinutes,omitempty"`
	StreakTargetDays    int `json:"streakTargetDays,omitempty"`
	StreakCompleteBonus int `json:"streakCompleteBonus,omitempty"`
	StreakContinueBonus int `json:"streakContinueBonus,omitempty"`
}

func (r *ThresholdRules) NonSubmit() int {
	if r.NonSubmitPoints == nil {
		return DefaultNonSubmitPoints
	}
	return *r.NonSubmitPoints
}

func (r *ThresholdRules) StreakMin() int {
	if r.StreakMinMinutes <= 0 {
		return DefaultStreakMinMinutes
	}
	return r.StreakMinMinutes
}

func (r *ThresholdRules) StreakTarget() int {
	if r.StreakTargetDays <= 0 {
		return DefaultStreakTargetDays
	}
	return r.StreakTargetDays
}

func (r *ThresholdRules) StreakComplete() int {
	if r.StreakCompleteBonus <= 0 {
		return DefaultStreakCompleteBonus
	}
	return r.StreakCompleteBonus
}

func (r *ThresholdRules) StreakContinue() int {
	if r.StreakContinueBonus <= 0 {
		return DefaultStreakContinueBonus
	}
	return r.StreakContinueBonus
}

// RankRules is reserved for future tie-break or weighting options; the rank
// evaluator currently needs nothing beyond mode selection.
type RankRules struct{}

// RuleSet is the validated, in-memory form of a scoring config payload.
type RuleSet struct {
	Mode      Mode
	Threshold *ThresholdRules
	Rank      *RankRules
}

// Parse decodes and validates a raw payload for the given mode. This is the
// single entry point for config writes; anything that passes here is safe to
// evaluate later without further checks.
func Parse(mode Mode, payload []byte) (RuleSet, error) {
	if !mode.Valid() {
		return RuleSet{}, fmt.Errorf("unknown scoring mode %q", mode)
	}
	rs := RuleSet{Mode: mode}
	switch mode {
	case ModeThreshold:
		var tr ThresholdRules
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &tr); err != nil {
				return RuleSet{}, fmt.Errorf("threshold payload: %w", err)
			}
		}
		rs.Threshold = &tr
	case ModeRank:
		var rr RankRules
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &rr); err != nil {
				return RuleSet{}, fmt.Errorf("rank payload: %w", err)
			}
		}
		rs.Rank = &rr
	}
	if err := rs.Validate(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}

// Payload encodes the mode-specific payload back to JSON for storage.
func (rs RuleSet) Payload() ([]byte, error) {
	switch rs.Mode {
	case ModeThreshold:
		return json.Marshal(rs.Threshold)
	case ModeRank:
		return json.Marshal(rs.Rank)
	}
	return nil, fmt.Errorf("unknown scoring mode %q", rs.Mode)
}

// Validate checks structural soundness. For threshold rules the bucket chain
// must cover the whole duration axis: open below, open above, and each upper
// bound picked up exactly by the next bucket's lower bound.
func (rs RuleSet) Validate() error {
	switch rs.Mode {
	case ModeRank:
		if rs.Rank == nil {
			return fmt.Errorf("rank rules missing")
		}
		return nil
	case ModeThreshold:
		// fallthrough to bucket checks below
	default:
		return fmt.Errorf("unknown scoring mode %q", rs.Mode)
	}

	tr := rs.Threshold
	if tr == nil {
		return fmt.Errorf("threshold rules missing")
	}
	if len(tr.Buckets) == 0 {
		return fmt.Errorf("threshold rules: bucket list is empty")
	}
	for i, b := range tr.Buckets {
		if b.Min != nil && b.Max != nil && *b.Min >= *b.Max {
			return fmt.Errorf("bucket %d: min %.2f must be below max %.2f", i, *b.Min, *b.Max)
		}
	}
	if first := tr.Buckets[0]; first.Min != nil && *first.Min > 0 {
		return fmt.Errorf("bucket 0: chain must start open (or at 0), got min %.2f", *first.Min)
	}
	last := tr.Buckets[len(tr.Buckets)-1]
	if last.Max != nil {
		return fmt.Errorf("bucket %d: chain must end open, got max %.2f", len(tr.Buckets)-1, *last.Max)
	}
	for i := 1; i < len(tr.Buckets); i++ {
		prev, cur := tr.Buckets[i-1], tr.Buckets[i]
		if prev.Max == nil {
			return fmt.Errorf("bucket %d: open upper bound before the last bucket", i-1)
		}
		if cur.Min == nil {
			return fmt.Errorf("bucket %d: missing lower bound", i)
		}
		if *cur.Min != *prev.Max {
			return fmt.Errorf("bucket %d: min %.2f does not continue previous max %.2f (gap or overlap)", i, *cur.Min, *prev.Max)
		}
	}
	return nil
}
