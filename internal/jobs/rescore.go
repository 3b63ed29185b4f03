package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sleepleague/sleepleague/internal/ctxutil"
	"github.com/sleepleague/sleepleague/internal/db"
	"github.com/sleepleague/sleepleague/internal/leaderboard"
	"github.com/sleepleague/sleepleague/internal/notify"
	"github.com/sleepleague/sleepleague/internal/scoring"
)

// Rescore recomputes yesterday and today for every group. Late submissions
// and rule changes drift in between ticks; re-running the engine is cheap
// and idempotent, so the job just sweeps both days each time.
func Rescore(database *sql.DB, engine *scoring.Engine, notifier *notify.Notifier, loc *time.Location, log *zap.Logger) Job {
	return func(ctx context.Context) error {
		groupIDs, err := db.ListGroupIDs(ctx, database)
		if err != nil {
			return err
		}
		today := scoring.DayOf(time.Now(), loc)
		yesterday := today.AddDate(0, 0, -1)

		var firstErr error
		for _, groupID := range groupIDs {
			gctx := ctxutil.WithGroupID(ctxutil.WithOp(ctx, "rescore"), groupID)
			for _, day := range []time.Time{yesterday, today} {
				if _, err := engine.Recompute(gctx, groupID, day); err != nil {
					log.Error("rescore failed",
						zap.String("group_id", groupID),
						zap.Time("day", day),
						zap.Error(err))
					if firstErr == nil {
						firstErr = fmt.Errorf("group %s: %w", groupID, err)
					}
				}
			}
			if err := announce(gctx, database, notifier, groupID, today); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
}

func announce(ctx context.Context, database *sql.DB, notifier *notify.Notifier, groupID string, day time.Time) error {
	if notifier == nil {
		return nil
	}
	group, err := db.GetGroup(ctx, database, groupID)
	if err != nil || group == nil {
		return err
	}
	members, err := db.ListMembers(ctx, database, groupID)
	if err != nil {
		return err
	}
	entries, err := db.ListSleepEntriesForDay(ctx, database, groupID, day)
	if err != nil {
		return err
	}
	events, err := db.ListScoreEventsForDay(ctx, database, groupID, day)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil // ничего не насчитали — нечего анонсировать
	}
	rows := leaderboard.DailyScorecard(members, entries, events)
	return notifier.DailyScorecard(group.Name, day.Format("2006-01-02"), rows)
}
