package project

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/worksite/progress/core"
)

func TestStatusOf(t *testing.T) {
	start := core.NewDate(2021, 3, 1)
	end := core.NewDate(2021, 3, 10)

	scheduled := WorkItem{
		Scope:         null.Float64From(100),
		TargetedStart: null.TimeFrom(start),
		TargetedEnd:   null.TimeFrom(end),
	}
	withActualEnd := func(itm WorkItem, y int, m time.Month, d int) WorkItem {
		itm.ActualEnd = null.TimeFrom(core.NewDate(y, m, d))
		return itm
	}

	tests := []struct {
		name  string
		item  WorkItem
		total float64
		today string
		want  Status
	}{
		{name: "no targeted end", item: WorkItem{Scope: null.Float64From(100), TargetedStart: null.TimeFrom(start)}, today: "2021-03-05", want: StatusMissingDates},
		{name: "no scope", item: WorkItem{TargetedStart: null.TimeFrom(start), TargetedEnd: null.TimeFrom(end)}, today: "2021-03-05", want: StatusMissingDates},
		{name: "open and before end", item: scheduled, total: 10, today: "2021-03-05", want: StatusOntime},
		{name: "open on end date", item: scheduled, total: 10, today: "2021-03-10", want: StatusOntime},
		{name: "behind pace is not delay", item: scheduled, total: 1, today: "2021-03-09", want: StatusOntime},
		{name: "open past end", item: scheduled, total: 99, today: "2021-03-11", want: StatusDelay},
		{name: "completed on time", item: withActualEnd(scheduled, 2021, 3, 8), total: 100, today: "2021-03-20", want: StatusOntime},
		{name: "completed on end date", item: withActualEnd(scheduled, 2021, 3, 10), total: 100, today: "2021-03-20", want: StatusOntime},
		{name: "completed late", item: withActualEnd(scheduled, 2021, 3, 12), total: 100, today: "2021-03-20", want: StatusDelay},
		{name: "complete but end not recorded, before end", item: scheduled, total: 100, today: "2021-03-09", want: StatusOntime},
		{name: "complete but end not recorded, past end", item: scheduled, total: 100, today: "2021-03-12", want: StatusDelay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			today, err := core.ParseDate(tt.today)
			if err != nil {
				t.Fatal(err)
			}
			if got := statusOf(tt.item, tt.total, today); got != tt.want {
				t.Errorf("statusOf() = %q, want %q", got, tt.want)
			}
		})
	}
}
