package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/worksite/progress/core"
	"github.com/worksite/progress/core/project"
)

type entryRepository struct {
	db *DB
}

var _ project.EntryRepository = (*entryRepository)(nil) // interface compliance check

func NewEntryRepository(db *DB) *entryRepository {
	return &entryRepository{db: db}
}

// UpsertEntry is atomic: the table lock serializes concurrent submissions for
// the same key, and byKey guarantees a single row per (item, username, date).
func (repo *entryRepository) UpsertEntry(ctx context.Context, entry project.ProgressEntry) (project.ProgressEntry, error) {
	if entry.Quantity < 0 {
		return project.ProgressEntry{}, project.ErrInvalidQuantity
	}
	entry.Date = core.Date(entry.Date)

	repo.db.entries.Lock()
	defer repo.db.entries.Unlock()

	key := keyOf(entry.ItemID, entry.Username, entry.Date)
	if id, ok := repo.db.entries.byKey[key]; ok {
		existing := repo.db.entries.table[id]
		existing.Quantity = entry.Quantity
		return *existing, nil
	}

	repo.db.entries.pkCount++
	entry.ID = repo.db.entries.pkCount
	repo.db.entries.table[entry.ID] = &entry
	repo.db.entries.byKey[key] = entry.ID
	return entry, nil
}

func (repo *entryRepository) SumEntries(ctx context.Context, filter project.EntryFilter) (float64, error) {
	repo.db.entries.Lock()
	defer repo.db.entries.Unlock()

	var total float64
	for _, entry := range repo.db.entries.table {
		if matches(entry, filter) {
			total += entry.Quantity
		}
	}
	return total, nil
}

func (repo *entryRepository) EntriesOn(ctx context.Context, itemID, username string, date time.Time) ([]project.ProgressEntry, error) {
	repo.db.entries.Lock()
	defer repo.db.entries.Unlock()

	var rows []project.ProgressEntry
	for _, entry := range repo.db.entries.table {
		if matches(entry, project.EntryFilter{ItemID: itemID, Username: username, DateEQ: date}) {
			rows = append(rows, *entry)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID > rows[j].ID })
	return rows, nil
}

func (repo *entryRepository) EarliestEntry(ctx context.Context, itemID, username string) (project.ProgressEntry, error) {
	return repo.boundaryEntry(itemID, username, true)
}

func (repo *entryRepository) LatestEntry(ctx context.Context, itemID, username string) (project.ProgressEntry, error) {
	return repo.boundaryEntry(itemID, username, false)
}

func (repo *entryRepository) boundaryEntry(itemID, username string, earliest bool) (project.ProgressEntry, error) {
	repo.db.entries.Lock()
	defer repo.db.entries.Unlock()

	var best *project.ProgressEntry
	for _, entry := range repo.db.entries.table {
		if !matches(entry, project.EntryFilter{ItemID: itemID, Username: username}) {
			continue
		}
		if best == nil {
			best = entry
			continue
		}
		if earliest {
			if entry.Date.Before(best.Date) || (entry.Date.Equal(best.Date) && entry.ID < best.ID) {
				best = entry
			}
		} else {
			if entry.Date.After(best.Date) || (entry.Date.Equal(best.Date) && entry.ID > best.ID) {
				best = entry
			}
		}
	}
	if best == nil {
		return project.ProgressEntry{}, project.ErrNoEntries
	}
	return *best, nil
}

func matches(entry *project.ProgressEntry, filter project.EntryFilter) bool {
	if filter.ItemID != "" && entry.ItemID != filter.ItemID {
		return false
	}
	if filter.Username != "" && entry.Username != filter.Username {
		return false
	}
	if !filter.DateLT.IsZero() && !entry.Date.Before(core.Date(filter.DateLT)) {
		return false
	}
	if !filter.DateEQ.IsZero() && !entry.Date.Equal(core.Date(filter.DateEQ)) {
		return false
	}
	if !filter.ExcludeDate.IsZero() && entry.Date.Equal(core.Date(filter.ExcludeDate)) {
		return false
	}
	return true
}
