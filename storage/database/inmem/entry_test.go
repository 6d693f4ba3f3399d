package inmemdb

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/worksite/progress/core"
	"github.com/worksite/progress/core/project"
)

func newEntryRepo(t *testing.T) *entryRepository {
	t.Helper()
	db, err := Open()
	if err != nil {
		t.Fatal(err)
	}
	return NewEntryRepository(db)
}

func day(d int) time.Time {
	return core.NewDate(2021, time.March, d)
}

func TestEntryRepository_UpsertEntry(t *testing.T) {
	repo := newEntryRepo(t)
	ctx := context.Background()

	entry, err := repo.UpsertEntry(ctx, project.ProgressEntry{ItemID: "itm", Username: "alice", Date: day(2), Quantity: 10})
	assert.NoError(t, err)
	assert.NotZero(t, entry.ID)

	// same key replaces in place, same row ID
	updated, err := repo.UpsertEntry(ctx, project.ProgressEntry{ItemID: "itm", Username: "alice", Date: day(2), Quantity: 25})
	assert.NoError(t, err)
	assert.Equal(t, entry.ID, updated.ID)
	assert.Equal(t, 25.0, updated.Quantity)

	// different user or date is a new row
	other, err := repo.UpsertEntry(ctx, project.ProgressEntry{ItemID: "itm", Username: "bob", Date: day(2), Quantity: 5})
	assert.NoError(t, err)
	assert.NotEqual(t, entry.ID, other.ID)

	_, err = repo.UpsertEntry(ctx, project.ProgressEntry{ItemID: "itm", Username: "alice", Date: day(3), Quantity: 5})
	assert.NoError(t, err)

	total, err := repo.SumEntries(ctx, project.EntryFilter{ItemID: "itm"})
	assert.NoError(t, err)
	assert.Equal(t, 35.0, total)

	t.Run("negative quantity rejected", func(t *testing.T) {
		_, err := repo.UpsertEntry(ctx, project.ProgressEntry{ItemID: "itm", Username: "alice", Date: day(2), Quantity: -1})
		assert.Equal(t, project.ErrInvalidQuantity, err)
	})

	t.Run("timestamps collapse to the calendar date", func(t *testing.T) {
		noon := time.Date(2021, time.March, 2, 12, 30, 0, 0, time.UTC)
		row, err := repo.UpsertEntry(ctx, project.ProgressEntry{ItemID: "itm", Username: "alice", Date: noon, Quantity: 7})
		assert.NoError(t, err)
		assert.Equal(t, entry.ID, row.ID, "same calendar day must hit the same row")
		assert.Equal(t, day(2), row.Date)
	})
}

func TestEntryRepository_UpsertEntry_concurrent(t *testing.T) {
	repo := newEntryRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(qty float64) {
			defer wg.Done()
			_, err := repo.UpsertEntry(ctx, project.ProgressEntry{ItemID: "itm", Username: "alice", Date: day(2), Quantity: qty})
			assert.NoError(t, err)
		}(float64(i))
	}
	wg.Wait()

	rows, err := repo.EntriesOn(ctx, "itm", "alice", day(2))
	assert.NoError(t, err)
	assert.Len(t, rows, 1, "concurrent upserts must collapse to one row")
}

func TestEntryRepository_SumEntries(t *testing.T) {
	repo := newEntryRepo(t)
	ctx := context.Background()

	seed := []struct {
		user string
		d    int
		qty  float64
	}{
		{"alice", 1, 10},
		{"alice", 2, 20},
		{"alice", 3, 30},
		{"bob", 2, 5},
	}
	for _, s := range seed {
		_, err := repo.UpsertEntry(ctx, project.ProgressEntry{ItemID: "itm", Username: s.user, Date: day(s.d), Quantity: s.qty})
		assert.NoError(t, err)
	}
	_, err := repo.UpsertEntry(ctx, project.ProgressEntry{ItemID: "other", Username: "alice", Date: day(2), Quantity: 100})
	assert.NoError(t, err)

	tests := []struct {
		name   string
		filter project.EntryFilter
		want   float64
	}{
		{"whole item", project.EntryFilter{ItemID: "itm"}, 65},
		{"one user", project.EntryFilter{ItemID: "itm", Username: "alice"}, 60},
		{"before a date", project.EntryFilter{ItemID: "itm", DateLT: day(3)}, 35},
		{"user before a date", project.EntryFilter{ItemID: "itm", Username: "alice", DateLT: day(3)}, 30},
		{"on a date", project.EntryFilter{ItemID: "itm", DateEQ: day(2)}, 25},
		{"excluding a date", project.EntryFilter{ItemID: "itm", ExcludeDate: day(2)}, 40},
		{"no match is zero", project.EntryFilter{ItemID: "itm", Username: "carol"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.SumEntries(ctx, tt.filter)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEntryRepository_boundaries(t *testing.T) {
	repo := newEntryRepo(t)
	ctx := context.Background()

	_, err := repo.EarliestEntry(ctx, "itm", "")
	assert.Equal(t, project.ErrNoEntries, err)

	for i, d := range []int{5, 2, 9} {
		_, err = repo.UpsertEntry(ctx, project.ProgressEntry{ItemID: "itm", Username: fmt.Sprintf("u%d", i), Date: day(d), Quantity: 1})
		assert.NoError(t, err)
	}

	first, err := repo.EarliestEntry(ctx, "itm", "")
	assert.NoError(t, err)
	assert.Equal(t, day(2), first.Date)

	last, err := repo.LatestEntry(ctx, "itm", "")
	assert.NoError(t, err)
	assert.Equal(t, day(9), last.Date)

	// scoped to one user
	last, err = repo.LatestEntry(ctx, "itm", "u0")
	assert.NoError(t, err)
	assert.Equal(t, day(5), last.Date)
}
