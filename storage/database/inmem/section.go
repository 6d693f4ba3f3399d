package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/worksite/progress/core/project"
)

type sectionRepository struct {
	db *DB
}

var _ project.SectionRepository = (*sectionRepository)(nil) // interface compliance check

func NewSectionRepository(db *DB) *sectionRepository {
	return &sectionRepository{db: db}
}

func (repo *sectionRepository) CreateSection(ctx context.Context, sec project.Section) (project.Section, error) {
	repo.db.sections.Lock()
	defer repo.db.sections.Unlock()

	sec.ID = uuid.New().String()
	repo.db.sections.table[sec.ID] = &sec
	return sec, nil
}

func (repo *sectionRepository) QuerySectionsByProject(ctx context.Context, projectID string) ([]project.Section, error) {
	repo.db.sections.RLock()
	defer repo.db.sections.RUnlock()

	var secs []project.Section
	for _, sec := range repo.db.sections.table {
		if sec.ProjectID == projectID {
			secs = append(secs, *sec)
		}
	}
	sort.Slice(secs, func(i, j int) bool {
		if secs[i].Position != secs[j].Position {
			return secs[i].Position < secs[j].Position
		}
		return secs[i].ID < secs[j].ID
	})
	return secs, nil
}

func (repo *sectionRepository) UpdateSection(ctx context.Context, sec project.Section) (project.Section, error) {
	repo.db.sections.Lock()
	defer repo.db.sections.Unlock()

	orig, ok := repo.db.sections.table[sec.ID]
	if !ok {
		return project.Section{}, project.ErrSectionNotFound
	}
	sec.ProjectID = orig.ProjectID
	repo.db.sections.table[sec.ID] = &sec
	return sec, nil
}

func (repo *sectionRepository) DeleteSectionsByID(ctx context.Context, ids ...string) error {
	repo.db.sections.Lock()
	defer repo.db.sections.Unlock()

	for _, id := range ids {
		delete(repo.db.sections.table, id)
	}
	dropSectionItems(repo.db, ids...)
	return nil
}

// dropSectionItems cascades a section delete down to items and their entries.
func dropSectionItems(db *DB, sectionIDs ...string) {
	if len(sectionIDs) == 0 {
		return
	}
	isDropped := make(map[string]bool, len(sectionIDs))
	for _, id := range sectionIDs {
		isDropped[id] = true
	}

	var itemIDs []string
	db.items.Lock()
	for itemID, itm := range db.items.table {
		if isDropped[itm.SectionID] {
			itemIDs = append(itemIDs, itemID)
			delete(db.items.table, itemID)
		}
	}
	db.items.Unlock()
	dropItemEntries(db, itemIDs...)
}

// dropItemEntries cascades an item delete down to its ledger rows.
func dropItemEntries(db *DB, itemIDs ...string) {
	if len(itemIDs) == 0 {
		return
	}
	isDropped := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		isDropped[id] = true
	}

	db.entries.Lock()
	defer db.entries.Unlock()
	for entryID, entry := range db.entries.table {
		if isDropped[entry.ItemID] {
			delete(db.entries.table, entryID)
			delete(db.entries.byKey, keyOf(entry.ItemID, entry.Username, entry.Date))
		}
	}
}
