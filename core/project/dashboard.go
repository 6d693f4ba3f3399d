package project

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/worksite/progress/core"
)

type (
	// DashboardItem is one item's roll-up line under the all-users
	// perspective.
	DashboardItem struct {
		ItemID        string       `json:"item_id"`
		Description   string       `json:"description"`
		Unit          string       `json:"unit"`
		Scope         null.Float64 `json:"scope"`
		TargetedStart null.Time    `json:"targeted_start"`
		TargetedEnd   null.Time    `json:"targeted_end"`
		ActualStart   null.Time    `json:"actual_start"`
		ActualEnd     null.Time    `json:"actual_end"`
		TotalProgress float64      `json:"total_progress"`
		Balance       float64      `json:"balance"`
		Percentage    float64      `json:"percentage"`
		Status        Status       `json:"status"`
		// DelayDays is populated for delayed items only: how far the actual
		// (or implied: today) end date overshoots the targeted one.
		DelayDays int `json:"delay_days,omitempty"`
	}

	// Dashboard is the aggregation engine's per-project result. Every item
	// lands in exactly one of the three buckets, derived from its status.
	Dashboard struct {
		ProjectID  string    `json:"project_id"`
		Name       string    `json:"name"`
		Location   string    `json:"location"`
		Kind       string    `json:"kind"`
		AssignedTo string    `json:"assigned_to"`
		Today      time.Time `json:"today"`

		// TodayActivities are items with positive progress reported today.
		TodayActivities []ItemSnapshot  `json:"today_activities"`
		Ontime          []DashboardItem `json:"ontime"`
		Delayed         []DashboardItem `json:"delayed"`
		MissingDates    []DashboardItem `json:"missing_dates"`

		CountToday   int `json:"count_today"`
		CountOntime  int `json:"count_ontime"`
		CountDelay   int `json:"count_delay"`
		CountMissing int `json:"count_missing"`

		AvgOntimePercent float64 `json:"avg_ontime_percent"`
		AvgDelayPercent  float64 `json:"avg_delay_percent"`
		// OverallCompletionPercent pools Ontime and Delay percentages
		// (missing-dates items excluded) and half-up rounds the mean.
		OverallCompletionPercent int `json:"overall_completion_percent"`
		// ProjectDelayDays answers "how late did the whole project finish"
		// once complete, and "how much lateness exists across open items"
		// until then.
		ProjectDelayDays int `json:"project_delay_days"`
	}
)

// Dashboard aggregates a project's items at the given reference date, under
// the all-users perspective.
func (svc *Service) Dashboard(ctx context.Context, projectID string, today time.Time) (Dashboard, error) {
	today = core.Date(today)

	prj, err := svc.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return Dashboard{}, err
	}
	items, err := svc.items.QueryItemsByProject(ctx, projectID)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying project items")
	}

	board := Dashboard{
		ProjectID:  prj.ID,
		Name:       prj.Name,
		Location:   prj.Location,
		Kind:       prj.Kind,
		AssignedTo: prj.AssignedTo,
		Today:      today,
	}

	var (
		totalScope, totalCompleted    float64
		ontimePercents, delayPercents []float64
		latestTargetEnd, latestActual null.Time
	)

	for _, itm := range items {
		snap, err := svc.Snapshot(ctx, itm, AllUsers, today)
		if err != nil {
			return Dashboard{}, err
		}
		if snap.TodayProgress > 0 {
			board.TodayActivities = append(board.TodayActivities, snap)
		}

		total, err := svc.entries.SumEntries(ctx, EntryFilter{ItemID: itm.ID})
		if err != nil {
			return Dashboard{}, errors.Wrap(err, "summing item progress")
		}

		line := DashboardItem{
			ItemID:        itm.ID,
			Description:   itm.Description,
			Unit:          itm.Unit,
			Scope:         itm.Scope,
			TargetedStart: itm.TargetedStart,
			TargetedEnd:   itm.TargetedEnd,
			ActualStart:   itm.ActualStart,
			ActualEnd:     itm.ActualEnd,
			TotalProgress: total,
			Status:        statusOf(itm, total, today),
		}
		if itm.Scope.Valid {
			line.Balance = math.Max(itm.Scope.Float64-total, 0)
			if itm.Scope.Float64 != 0 {
				line.Percentage = Round2(100 * total / itm.Scope.Float64)
			}
			totalScope += itm.Scope.Float64
			totalCompleted += total
		}

		switch line.Status {
		case StatusMissingDates:
			board.MissingDates = append(board.MissingDates, line)
		case StatusOntime:
			ontimePercents = append(ontimePercents, line.Percentage)
			board.Ontime = append(board.Ontime, line)
		case StatusDelay:
			actualEnd := today
			if itm.ActualEnd.Valid {
				actualEnd = core.Date(itm.ActualEnd.Time)
			}
			if days := core.DaysBetween(core.Date(itm.TargetedEnd.Time), actualEnd); days > 0 {
				line.DelayDays = days
			}
			delayPercents = append(delayPercents, line.Percentage)
			board.Delayed = append(board.Delayed, line)
		}

		if itm.TargetedEnd.Valid {
			latestTargetEnd = laterOf(latestTargetEnd, itm.TargetedEnd)
		}
		if itm.ActualEnd.Valid {
			latestActual = laterOf(latestActual, itm.ActualEnd)
		}
	}

	board.CountToday = len(board.TodayActivities)
	board.CountOntime = len(board.Ontime)
	board.CountDelay = len(board.Delayed)
	board.CountMissing = len(board.MissingDates)

	board.AvgOntimePercent = Round2(mean(ontimePercents))
	board.AvgDelayPercent = Round2(mean(delayPercents))
	if pooled := len(ontimePercents) + len(delayPercents); pooled > 0 {
		board.OverallCompletionPercent = RoundHalfUp((sum(ontimePercents) + sum(delayPercents)) / float64(pooled))
	}

	// A finished project reports how late it finished as a whole: latest
	// actual end vs latest targeted end. An unfinished one reports the
	// lateness currently accumulated across open delayed items.
	projectComplete := totalScope > 0 && totalCompleted >= totalScope
	if projectComplete && latestActual.Valid && latestTargetEnd.Valid {
		if days := core.DaysBetween(latestTargetEnd.Time, latestActual.Time); days > 0 {
			board.ProjectDelayDays = days
		}
	} else {
		for _, line := range board.Delayed {
			board.ProjectDelayDays += line.DelayDays
		}
	}

	return board, nil
}

// Overview builds one dashboard per project, for the admin landing page.
func (svc *Service) Overview(ctx context.Context, today time.Time) ([]Dashboard, error) {
	projects, err := svc.projects.QueryAllProjects(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	boards := make([]Dashboard, 0, len(projects))
	for _, prj := range projects {
		board, err := svc.Dashboard(ctx, prj.ID, today)
		if err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}
	return boards, nil
}

func laterOf(cur, candidate null.Time) null.Time {
	if !cur.Valid || candidate.Time.After(cur.Time) {
		return candidate
	}
	return cur
}

func sum(vals []float64) float64 {
	var total float64
	for _, v := range vals {
		total += v
	}
	return total
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return sum(vals) / float64(len(vals))
}
