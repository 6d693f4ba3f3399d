package project

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/worksite/progress/core"
)

// The actual-start and actual-end dates are observations derived from the
// ledger, as opposed to the admin's targeted dates. Two variants exist:
// applyDateRule runs online on every submission and only ever assigns the
// reference date; BackfillItemDates re-derives both dates from entry history.
// Both are idempotent: reapplying with an unchanged ledger changes nothing.

// applyDateRule adjusts the item's derived dates after today's quantity has
// been upserted. Totals are item-level (all users): the dates mark when the
// item as a whole started and finished.
//
//   - actual start is set to today on the first-ever positive progress, i.e.
//     when all recorded quantity outside today is zero; it is cleared again
//     when today's progress is reset to zero and nothing else remains
//     (correcting an erroneous first entry).
//   - actual end is set to today the moment cumulative progress first reaches
//     scope, and cleared when a correction drops the total back below it.
func (svc *Service) applyDateRule(ctx context.Context, itm WorkItem, today time.Time, todayQty float64) (WorkItem, error) {
	today = core.Date(today)

	totalExclToday, err := svc.entries.SumEntries(ctx, EntryFilter{ItemID: itm.ID, ExcludeDate: today})
	if err != nil {
		return itm, errors.Wrap(err, "summing progress outside today")
	}

	if !itm.ActualStart.Valid {
		if todayQty > 0 && totalExclToday == 0 {
			itm.ActualStart = null.TimeFrom(today)
		}
	} else if todayQty == 0 && totalExclToday == 0 {
		itm.ActualStart = null.Time{}
	}

	total, err := svc.entries.SumEntries(ctx, EntryFilter{ItemID: itm.ID})
	if err != nil {
		return itm, errors.Wrap(err, "summing total progress")
	}
	if itm.Scope.Valid && total >= itm.Scope.Float64 {
		if !itm.ActualEnd.Valid {
			itm.ActualEnd = null.TimeFrom(today)
		}
	} else if itm.ActualEnd.Valid {
		itm.ActualEnd = null.Time{}
	}

	if err = svc.items.UpdateItemDates(ctx, itm.ID, itm.ActualStart, itm.ActualEnd); err != nil {
		return itm, errors.Wrap(err, "updating item dates")
	}
	return itm, nil
}

// BackfillItemDates re-derives the item's dates from its full entry history:
// a missing actual start becomes the earliest entry's date, a missing actual
// end becomes the latest entry's date once total progress covers scope, and a
// stale actual end is cleared when the total no longer does. Used as a repair
// pass over imported or hand-edited data.
func (svc *Service) BackfillItemDates(ctx context.Context, itm WorkItem) (WorkItem, error) {
	total, err := svc.entries.SumEntries(ctx, EntryFilter{ItemID: itm.ID})
	if err != nil {
		return itm, errors.Wrap(err, "summing total progress")
	}

	if !itm.ActualStart.Valid && total > 0 {
		first, err := svc.entries.EarliestEntry(ctx, itm.ID, "")
		switch errors.Cause(err) {
		case nil:
			itm.ActualStart = null.TimeFrom(core.Date(first.Date))
		case ErrNoEntries:
			itm.ActualStart = itm.TargetedStart
		default:
			return itm, errors.Wrap(err, "finding earliest entry")
		}
	}

	if itm.Scope.Valid && total >= itm.Scope.Float64 {
		if !itm.ActualEnd.Valid {
			last, err := svc.entries.LatestEntry(ctx, itm.ID, "")
			switch errors.Cause(err) {
			case nil:
				itm.ActualEnd = null.TimeFrom(core.Date(last.Date))
			case ErrNoEntries:
				itm.ActualEnd = itm.TargetedEnd
			default:
				return itm, errors.Wrap(err, "finding latest entry")
			}
		}
	} else if itm.ActualEnd.Valid {
		itm.ActualEnd = null.Time{}
	}

	if err = svc.items.UpdateItemDates(ctx, itm.ID, itm.ActualStart, itm.ActualEnd); err != nil {
		return itm, errors.Wrap(err, "updating item dates")
	}
	return itm, nil
}

// BackfillProjectDates runs BackfillItemDates over every item of a project.
func (svc *Service) BackfillProjectDates(ctx context.Context, projectID string) error {
	items, err := svc.items.QueryItemsByProject(ctx, projectID)
	if err != nil {
		return errors.Wrap(err, "querying project items")
	}
	for _, itm := range items {
		if _, err = svc.BackfillItemDates(ctx, itm); err != nil {
			return err
		}
	}
	return nil
}
