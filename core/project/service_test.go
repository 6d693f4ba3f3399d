package project_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/worksite/progress/core/project"
)

func TestService_SubmitProgress_faults(t *testing.T) {
	env := setup(t)
	prj := env.createProject(t, "Faults")
	sec := env.createSection(t, prj.ID, "Civil")
	ready := env.createItem(t, sec.ID, "piles", null.Float64From(100), "2021-03-01", "2021-03-10")
	unscheduled := env.createItem(t, sec.ID, "trenching", null.Float64{}, "", "")

	t.Run("unknown item aborts", func(t *testing.T) {
		_, err := env.svc.SubmitProgress(context.Background(), prj.ID, "alice", date(t, "2021-03-02"),
			[]project.ProgressReport{{ItemID: "nope", Quantity: "1"}})
		assert.Equal(t, project.ErrItemNotFound, err)
	})

	t.Run("blank quantity is skipped", func(t *testing.T) {
		faults := env.submit(t, prj.ID, "alice", "2021-03-02", project.ProgressReport{ItemID: ready.ID, Quantity: "  "})
		assert.Empty(t, faults)
		total, err := env.entries.SumEntries(context.Background(), project.EntryFilter{ItemID: ready.ID})
		assert.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("item without dates or scope", func(t *testing.T) {
		faults := env.submit(t, prj.ID, "alice", "2021-03-02", project.ProgressReport{ItemID: unscheduled.ID, Quantity: "5"})
		if assert.Len(t, faults, 1) {
			assert.Equal(t, project.FaultPreconditionMissing, faults[0].Code)
			assert.Equal(t, unscheduled.ID, faults[0].ItemID)
		}
	})

	t.Run("non-numeric quantity", func(t *testing.T) {
		faults := env.submit(t, prj.ID, "alice", "2021-03-02", project.ProgressReport{ItemID: ready.ID, Quantity: "ten"})
		if assert.Len(t, faults, 1) {
			assert.Equal(t, project.FaultInvalidQuantity, faults[0].Code)
		}
	})

	t.Run("negative quantity", func(t *testing.T) {
		faults := env.submit(t, prj.ID, "alice", "2021-03-02", project.ProgressReport{ItemID: ready.ID, Quantity: "-3"})
		if assert.Len(t, faults, 1) {
			assert.Equal(t, project.FaultInvalidQuantity, faults[0].Code)
		}
	})

	t.Run("scope exceeded reports the remaining allowance", func(t *testing.T) {
		env.addEntry(t, ready.ID, "bob", "2021-03-02", 60)

		faults := env.submit(t, prj.ID, "bob", "2021-03-03", project.ProgressReport{ItemID: ready.ID, Quantity: "50"})
		if assert.Len(t, faults, 1) {
			assert.Equal(t, project.FaultScopeExceeded, faults[0].Code)
			assert.Equal(t, null.Float64From(40), faults[0].MaxAllowed)
		}

		// exactly the allowance goes through
		faults = env.submit(t, prj.ID, "bob", "2021-03-03", project.ProgressReport{ItemID: ready.ID, Quantity: "40"})
		assert.Empty(t, faults)
	})

	t.Run("faults are per item, good reports still land", func(t *testing.T) {
		faults := env.submit(t, prj.ID, "carol", "2021-03-04",
			project.ProgressReport{ItemID: unscheduled.ID, Quantity: "5"},
			project.ProgressReport{ItemID: ready.ID, Quantity: "10"},
		)
		assert.Len(t, faults, 1)

		total, err := env.entries.SumEntries(context.Background(), project.EntryFilter{ItemID: ready.ID, Username: "carol"})
		assert.NoError(t, err)
		assert.Equal(t, 10.0, total)
	})
}

func TestService_SubmitProgress_replacesSameDay(t *testing.T) {
	env := setup(t)
	prj := env.createProject(t, "Upsert")
	sec := env.createSection(t, prj.ID, "Civil")
	itm := env.createItem(t, sec.ID, "piles", null.Float64From(100), "2021-03-01", "2021-03-10")

	env.submit(t, prj.ID, "alice", "2021-03-02", project.ProgressReport{ItemID: itm.ID, Quantity: "30"})
	env.submit(t, prj.ID, "alice", "2021-03-02", project.ProgressReport{ItemID: itm.ID, Quantity: "20"})

	// the resubmission replaced the row, it did not add a second one
	total, err := env.entries.SumEntries(context.Background(), project.EntryFilter{ItemID: itm.ID})
	assert.NoError(t, err)
	assert.Equal(t, 20.0, total)

	rows, err := env.entries.EntriesOn(context.Background(), itm.ID, "alice", date(t, "2021-03-02"))
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestService_SubmitProgress_usernameNormalized(t *testing.T) {
	env := setup(t)
	prj := env.createProject(t, "Names")
	sec := env.createSection(t, prj.ID, "Civil")
	itm := env.createItem(t, sec.ID, "piles", null.Float64From(100), "2021-03-01", "2021-03-10")

	env.submit(t, prj.ID, " Alice ", "2021-03-02", project.ProgressReport{ItemID: itm.ID, Quantity: "5"})
	env.submit(t, prj.ID, "ALICE", "2021-03-02", project.ProgressReport{ItemID: itm.ID, Quantity: "8"})

	total, err := env.entries.SumEntries(context.Background(), project.EntryFilter{ItemID: itm.ID, Username: "alice"})
	assert.NoError(t, err)
	assert.Equal(t, 8.0, total)
}

func TestService_RedefineSections(t *testing.T) {
	env := setup(t)
	prj := env.createProject(t, "Structure")
	ctx := context.Background()

	secs, err := env.svc.RedefineSections(ctx, prj.ID, []project.SectionDefinition{
		{Title: "Civil", Items: []project.ItemDefinition{
			{Description: "piles", Unit: "piles", Scope: null.Float64From(100), TargetedStart: "2021-03-01", TargetedEnd: "2021-03-10"},
			{Description: "trenching", Unit: "m"},
		}},
		{Title: "Mechanical", Items: []project.ItemDefinition{
			{Description: "trackers", Scope: null.Float64From(50)},
		}},
	})
	assert.NoError(t, err)
	assert.Len(t, secs, 2)

	items, err := env.items.QueryItemsByProject(ctx, prj.ID)
	assert.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, "piles", items[0].Description)
	assert.True(t, items[0].SchedulingReady())
	assert.False(t, items[1].SchedulingReady())

	// resubmit: keep Civil (renamed) with only piles, drop Mechanical
	env.addEntry(t, items[0].ID, "alice", "2021-03-02", 10)
	secs, err = env.svc.RedefineSections(ctx, prj.ID, []project.SectionDefinition{
		{ID: secs[0].ID, Title: "Civil Works", Items: []project.ItemDefinition{
			{ID: items[0].ID, Description: "piles", Unit: "piles", Scope: null.Float64From(120), TargetedStart: "2021-03-01", TargetedEnd: "2021-03-12"},
		}},
	})
	assert.NoError(t, err)
	if assert.Len(t, secs, 1) {
		assert.Equal(t, "Civil Works", secs[0].Title)
	}

	items, err = env.items.QueryItemsByProject(ctx, prj.ID)
	assert.NoError(t, err)
	if assert.Len(t, items, 1) {
		assert.Equal(t, null.Float64From(120), items[0].Scope)
		// the kept item's ledger survives
		total, err := env.entries.SumEntries(ctx, project.EntryFilter{ItemID: items[0].ID})
		assert.NoError(t, err)
		assert.Equal(t, 10.0, total)
	}

	t.Run("moves an item between sections", func(t *testing.T) {
		moved := items[0]
		secs, err := env.svc.RedefineSections(ctx, prj.ID, []project.SectionDefinition{
			{ID: secs[0].ID, Title: "Civil Works"},
			{Title: "Foundations", Items: []project.ItemDefinition{
				{ID: moved.ID, Description: "piles", Unit: "piles", Scope: null.Float64From(120), TargetedStart: "2021-03-01", TargetedEnd: "2021-03-12"},
			}},
		})
		assert.NoError(t, err)
		assert.Len(t, secs, 2)

		itm := env.getItem(t, moved.ID)
		assert.Equal(t, secs[1].ID, itm.SectionID)
		// the move keeps the ledger intact
		total, err := env.entries.SumEntries(ctx, project.EntryFilter{ItemID: itm.ID})
		assert.NoError(t, err)
		assert.Equal(t, 10.0, total)
	})

	t.Run("unknown section id", func(t *testing.T) {
		_, err := env.svc.RedefineSections(ctx, prj.ID, []project.SectionDefinition{{ID: "nope", Title: "X"}})
		assert.Equal(t, project.ErrSectionNotFound, err)
	})
	t.Run("unknown project", func(t *testing.T) {
		_, err := env.svc.RedefineSections(ctx, "nope", nil)
		assert.Equal(t, project.ErrProjectNotFound, err)
	})
}

func TestService_ProjectBoard(t *testing.T) {
	env := setup(t)
	prj := env.createProject(t, "Board")
	secA := env.createSection(t, prj.ID, "Civil")
	secB := env.createSection(t, prj.ID, "Mechanical")
	itmA := env.createItem(t, secA.ID, "piles", null.Float64From(100), "2021-03-01", "2021-03-10")
	env.createItem(t, secB.ID, "trackers", null.Float64From(50), "2021-03-01", "2021-03-20")

	env.addEntry(t, itmA.ID, "alice", "2021-03-02", 10)
	env.addEntry(t, itmA.ID, "bob", "2021-03-02", 5)

	boards, err := env.svc.ProjectBoard(context.Background(), prj.ID, project.Perspective{Username: "alice"}, date(t, "2021-03-02"))
	assert.NoError(t, err)
	if assert.Len(t, boards, 2) {
		assert.Len(t, boards[0].Items, 1)
		// alice's perspective only sees her own quantities
		assert.Equal(t, 10.0, boards[0].Items[0].TodayProgress)
	}

	boards, err = env.svc.ProjectBoard(context.Background(), prj.ID, project.AllUsers, date(t, "2021-03-02"))
	assert.NoError(t, err)
	assert.Equal(t, 15.0, boards[0].Items[0].TodayProgress)
}
