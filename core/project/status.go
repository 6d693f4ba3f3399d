package project

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/worksite/progress/core"
)

// ItemSnapshot is the calculator's result record for one item at one reference
// date, under one perspective. Derived numerics are invalid (not zero) when
// the item misses a target date or scope: "not computable" and "computed as
// zero" are different answers.
type ItemSnapshot struct {
	Item          WorkItem     `json:"item"`
	DoneSoFar     null.Float64 `json:"done_so_far"`
	TodayProgress float64      `json:"today_progress"`
	Completed     null.Float64 `json:"completed"`
	Balance       null.Float64 `json:"balance"`
	ExpectedToday null.Float64 `json:"expected_today"`
	// MaxToday is the largest quantity the perspective user may still submit
	// for today without exceeding scope.
	MaxToday null.Float64 `json:"max_today"`
	Status   Status       `json:"status"`
}

// statusOf classifies an item given its cumulative progress at the reference
// date. Exactly one of the three states always applies:
//   - Missing Dates when a target date or the scope is absent;
//   - otherwise, a completed item compares its actual end date (or today, if
//     the date is not recorded yet, e.g. right after a backdated correction)
//     against the targeted end;
//   - an open item is Delay only once today has passed the targeted end -
//     being behind pace alone never produces Delay early.
func statusOf(itm WorkItem, total float64, today time.Time) Status {
	if !itm.SchedulingReady() {
		return StatusMissingDates
	}
	end := core.Date(itm.TargetedEnd.Time)
	today = core.Date(today)

	if total >= itm.Scope.Float64 {
		if itm.ActualEnd.Valid {
			if !core.Date(itm.ActualEnd.Time).After(end) {
				return StatusOntime
			}
			return StatusDelay
		}
	}
	if !today.After(end) {
		return StatusOntime
	}
	return StatusDelay
}

// Snapshot computes the full derived record for one item. `today` is the
// injected reference date; nothing here reads the system clock.
func (svc *Service) Snapshot(ctx context.Context, itm WorkItem, p Perspective, today time.Time) (ItemSnapshot, error) {
	today = core.Date(today)
	snap := ItemSnapshot{Item: itm, Status: StatusMissingDates}

	if !itm.SchedulingReady() {
		return snap, nil
	}
	scope := itm.Scope.Float64

	doneSoFar, err := svc.entries.SumEntries(ctx, EntryFilter{ItemID: itm.ID, Username: p.Username, DateLT: today})
	if err != nil {
		return snap, errors.Wrap(err, "summing past progress")
	}
	todayProgress, err := svc.todayProgress(ctx, itm, p, today)
	if err != nil {
		return snap, err
	}

	completed := doneSoFar + todayProgress
	expectedBalance := math.Max(scope-doneSoFar, 0)

	snap.DoneSoFar = null.Float64From(doneSoFar)
	snap.TodayProgress = todayProgress
	snap.Completed = null.Float64From(completed)
	snap.Balance = null.Float64From(math.Max(scope-completed, 0))
	snap.MaxToday = null.Float64From(scope - doneSoFar)

	// whole remainder is due once no scheduled days remain
	remainingDays := core.DaysBetween(today, itm.TargetedEnd.Time) + 1
	if remainingDays > 0 {
		snap.ExpectedToday = null.Float64From(CeilDiv(expectedBalance, remainingDays))
	} else {
		snap.ExpectedToday = null.Float64From(expectedBalance)
	}

	snap.Status = statusOf(itm, completed, today)
	return snap, nil
}

// todayProgress reads the perspective's entry for the reference date. The
// storage layer makes duplicate rows impossible; if some backend violates that
// anyway, the most recently created row wins and the fault is reported, not
// silently swallowed.
func (svc *Service) todayProgress(ctx context.Context, itm WorkItem, p Perspective, today time.Time) (float64, error) {
	rows, err := svc.entries.EntriesOn(ctx, itm.ID, p.Username, today)
	if err != nil {
		return 0, errors.Wrap(err, "reading today's progress")
	}
	switch {
	case len(rows) == 0:
		return 0, nil
	case len(rows) > 1 && p.Username != "":
		svc.log.Error("duplicate ledger rows", map[string]interface{}{
			"item_id": itm.ID, "username": p.Username, "date": today.Format(core.DateFormat),
		})
		return rows[0].Quantity, nil
	case p.Username == "":
		// all-users perspective: one row per user is legitimate
		var total float64
		seen := make(map[string]bool, len(rows))
		for _, row := range rows {
			if seen[row.Username] {
				svc.log.Error("duplicate ledger rows", map[string]interface{}{
					"item_id": itm.ID, "username": row.Username, "date": today.Format(core.DateFormat),
				})
				continue
			}
			seen[row.Username] = true
			total += row.Quantity
		}
		return total, nil
	}
	return rows[0].Quantity, nil
}
