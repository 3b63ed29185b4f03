// Package scoring computes the daily score events for a group.
//
// The engine reads members, sleep entries and the effective rule config
// through narrow source interfaces, evaluates the mode the config selects,
// and replaces the day's auto-generated events in one atomic store call.
// Recomputing a day with unchanged inputs always converges to the same
// stored event set.
package scoring

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sleepleague/sleepleague/internal/ctxutil"
	"github.com/sleepleague/sleepleague/internal/metrics"
	"github.com/sleepleague/sleepleague/internal/models"
	"github.com/sleepleague/sleepleague/internal/rules"
)

type Status string

const (
	StatusComputed Status = "computed"
	StatusNoConfig Status = "no-config"
)

type Result struct {
	Status Status
	Events int
}

// MemberSource lists the user ids of a group.
type MemberSource interface {
	ListMemberIDs(ctx context.Context, groupID string) ([]string, error)
}

// SubmissionSource reads sleep entries. Both calls take normalized days and
// must be inclusive of the full calendar day regardless of server time zone.
type SubmissionSource interface {
	ListSleepForDay(ctx context.Context, groupID string, day time.Time) ([]models.SleepEntry, error)
	ListSleepRange(ctx context.Context, groupID string, from, to time.Time) ([]models.SleepEntry, error)
}

// ConfigSource resolves the effective config: greatest activeFrom <= day.
// A (nil, nil) return is the typed absence ("scoring not configured").
type ConfigSource interface {
	FindEffectiveConfig(ctx context.Context, groupID string, day time.Time) (*models.ScoringConfig, error)
}

// EventSink replaces a day's events. The implementation must delete the
// day's non-manual rows and insert the batch as one atomic unit.
type EventSink interface {
	ReplaceDayEvents(ctx context.Context, groupID string, day time.Time, events []models.ScoreEvent) error
}

type Engine struct {
	members MemberSource
	sleep   SubmissionSource
	configs ConfigSource
	events  EventSink
	loc     *time.Location
	log     *zap.Logger
	locks   *recomputeLimiter
}

func NewEngine(members MemberSource, sleep SubmissionSource, configs ConfigSource, events EventSink, loc *time.Location, log *zap.Logger) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		members: members,
		sleep:   sleep,
		configs: configs,
		events:  events,
		loc:     loc,
		log:     log,
		locks:   newRecomputeLimiter(),
	}
}

// Recompute regenerates the score events of one (group, day).
//
// With no active config it performs no writes at all and reports
// StatusNoConfig. Otherwise the whole day is replaced: in THRESHOLD mode
// every member gets exactly one event (non-submitters included), in RANK
// mode only valid submitters do — a rank day with no valid entries still
// clears stale events. Manual adjustments are never touched.
func (e *Engine) Recompute(ctx context.Context, groupID string, date time.Time) (Result, error) {
	day := DayOf(date, e.loc)

	unlock := e.locks.lock(groupID + "/" + dayKey(day))
	defer unlock()

	start := time.Now()
	res, err := e.recompute(ctx, groupID, day)
	metrics.ObserveRecompute(string(res.Status), err, time.Since(start))
	return res, err
}

func (e *Engine) recompute(ctx context.Context, groupID string, day time.Time) (Result, error) {
	cfg, err := e.configs.FindEffectiveConfig(ctx, groupID, day)
	if err != nil {
		return Result{}, fmt.Errorf("resolve config: %w", err)
	}
	if cfg == nil {
		e.log.Warn("no active scoring config",
			zap.String("group_id", groupID), zap.String("day", dayKey(day)))
		return Result{Status: StatusNoConfig}, nil
	}

	entries, err := e.sleep.ListSleepForDay(ctx, groupID, day)
	if err != nil {
		return Result{}, fmt.Errorf("load sleep entries: %w", err)
	}

	var events []models.ScoreEvent
	switch cfg.Mode {
	case rules.ModeThreshold:
		memberIDs, err := e.members.ListMemberIDs(ctx, groupID)
		if err != nil {
			return Result{}, fmt.Errorf("load members: %w", err)
		}
		// Bounded trailing window for streak evaluation: target prior days.
		window := cfg.Rules.Threshold.StreakTarget()
		history, err := e.sleep.ListSleepRange(ctx, groupID, day.AddDate(0, 0, -window), day.AddDate(0, 0, -1))
		if err != nil {
			return Result{}, fmt.Errorf("load streak history: %w", err)
		}
		events = evaluateThreshold(cfg.Rules.Threshold, groupID, day, memberIDs, entries, history)
	case rules.ModeRank:
		events = evaluateRank(groupID, day, entries)
	default:
		return Result{}, fmt.Errorf("config %s: unknown mode %q", cfg.ID, cfg.Mode)
	}

	if err := e.events.ReplaceDayEvents(ctx, groupID, day, events); err != nil {
		return Result{}, fmt.Errorf("replace events: %w", err)
	}
	metrics.EventsWritten.Add(float64(len(events)))

	log := e.log
	if op, ok := ctxutil.Op(ctx); ok {
		log = log.With(zap.String("op", op))
	}
	log.Info("day rescored",
		zap.String("group_id", groupID),
		zap.String("day", dayKey(day)),
		zap.String("mode", string(cfg.Mode)),
		zap.Int("events", len(events)))
	return Result{Status: StatusComputed, Events: len(events)}, nil
}
