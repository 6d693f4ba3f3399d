package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/worksite/progress/core/project"
)

type itemRepository struct {
	db *DB
}

var _ project.ItemRepository = (*itemRepository)(nil) // interface compliance check

func NewItemRepository(db *DB) *itemRepository {
	return &itemRepository{db: db}
}

func (repo *itemRepository) CreateItem(ctx context.Context, itm project.WorkItem) (project.WorkItem, error) {
	repo.db.items.Lock()
	defer repo.db.items.Unlock()

	itm.ID = uuid.New().String()
	repo.db.items.table[itm.ID] = &itm
	return itm, nil
}

func (repo *itemRepository) GetItemByID(ctx context.Context, id string) (project.WorkItem, error) {
	repo.db.items.RLock()
	defer repo.db.items.RUnlock()

	if itm, ok := repo.db.items.table[id]; ok {
		return *itm, nil
	}
	return project.WorkItem{}, project.ErrItemNotFound
}

func (repo *itemRepository) QueryItemsBySection(ctx context.Context, sectionID string) ([]project.WorkItem, error) {
	repo.db.items.RLock()
	defer repo.db.items.RUnlock()

	var items []project.WorkItem
	for _, itm := range repo.db.items.table {
		if itm.SectionID == sectionID {
			items = append(items, *itm)
		}
	}
	sortItems(items)
	return items, nil
}

func (repo *itemRepository) QueryItemsByProject(ctx context.Context, projectID string) ([]project.WorkItem, error) {
	repo.db.sections.RLock()
	secPos := make(map[string]int)
	for _, sec := range repo.db.sections.table {
		if sec.ProjectID == projectID {
			secPos[sec.ID] = sec.Position
		}
	}
	repo.db.sections.RUnlock()

	repo.db.items.RLock()
	defer repo.db.items.RUnlock()

	var items []project.WorkItem
	for _, itm := range repo.db.items.table {
		if _, ok := secPos[itm.SectionID]; ok {
			items = append(items, *itm)
		}
	}
	// section position first, matching the SQL repository's ordering
	sort.Slice(items, func(i, j int) bool {
		if secPos[items[i].SectionID] != secPos[items[j].SectionID] {
			return secPos[items[i].SectionID] < secPos[items[j].SectionID]
		}
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (repo *itemRepository) UpdateItem(ctx context.Context, itm project.WorkItem) (project.WorkItem, error) {
	repo.db.items.Lock()
	defer repo.db.items.Unlock()

	if _, ok := repo.db.items.table[itm.ID]; !ok {
		return project.WorkItem{}, project.ErrItemNotFound
	}
	repo.db.items.table[itm.ID] = &itm
	return itm, nil
}

func (repo *itemRepository) UpdateItemDates(ctx context.Context, itemID string, actualStart, actualEnd null.Time) error {
	repo.db.items.Lock()
	defer repo.db.items.Unlock()

	itm, ok := repo.db.items.table[itemID]
	if !ok {
		return project.ErrItemNotFound
	}
	itm.ActualStart = actualStart
	itm.ActualEnd = actualEnd
	return nil
}

func (repo *itemRepository) DeleteItemsByID(ctx context.Context, ids ...string) error {
	repo.db.items.Lock()
	for _, id := range ids {
		delete(repo.db.items.table, id)
	}
	repo.db.items.Unlock()

	dropItemEntries(repo.db, ids...)
	return nil
}

func sortItems(items []project.WorkItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return items[i].ID < items[j].ID
	})
}
