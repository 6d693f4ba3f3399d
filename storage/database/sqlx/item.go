package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/worksite/progress/core"
	"github.com/worksite/progress/core/project"
)

type itemRow struct {
	ID            string       `db:"id"`
	SectionID     string       `db:"section_id"`
	Description   string       `db:"description"`
	Unit          string       `db:"unit"`
	Scope         null.Float64 `db:"scope"`
	Position      int          `db:"position"`
	TargetedStart null.Time    `db:"targeted_start"`
	TargetedEnd   null.Time    `db:"targeted_end"`
	ActualStart   null.Time    `db:"actual_start"`
	ActualEnd     null.Time    `db:"actual_end"`
}

// unpack re-normalizes DATE columns; lib/pq scans them in the session timezone.
func (row itemRow) unpack() project.WorkItem {
	return project.WorkItem{
		ID:            row.ID,
		SectionID:     row.SectionID,
		Description:   row.Description,
		Unit:          row.Unit,
		Scope:         row.Scope,
		Position:      row.Position,
		TargetedStart: normDate(row.TargetedStart),
		TargetedEnd:   normDate(row.TargetedEnd),
		ActualStart:   normDate(row.ActualStart),
		ActualEnd:     normDate(row.ActualEnd),
	}
}

func normDate(t null.Time) null.Time {
	if !t.Valid {
		return t
	}
	return null.TimeFrom(core.Date(t.Time))
}

type itemRepository struct {
	db core.DBExecutor
}

var _ project.ItemRepository = (*itemRepository)(nil) // interface compliance check

func NewItemRepository(db core.DBExecutor) *itemRepository {
	return &itemRepository{db: db}
}

func (repo itemRepository) CreateItem(ctx context.Context, itm project.WorkItem) (project.WorkItem, error) {
	itm.ID = uuid.New().String()

	const q = `
INSERT INTO work_item (id, section_id, description, unit, scope, position, targeted_start, targeted_end, actual_start, actual_end)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.ExecContext(ctx, q,
		itm.ID, itm.SectionID, itm.Description, itm.Unit, itm.Scope, itm.Position,
		itm.TargetedStart, itm.TargetedEnd, itm.ActualStart, itm.ActualEnd,
	)
	if err != nil {
		return project.WorkItem{}, errors.Wrap(err, "inserting work item")
	}
	return itm, nil
}

func (repo itemRepository) GetItemByID(ctx context.Context, id string) (project.WorkItem, error) {
	var row itemRow
	const q = `SELECT * FROM work_item WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return project.WorkItem{}, project.ErrItemNotFound
		}
		return project.WorkItem{}, errors.Wrap(err, "getting work item")
	}
	return row.unpack(), nil
}

func (repo itemRepository) QueryItemsBySection(ctx context.Context, sectionID string) ([]project.WorkItem, error) {
	var rows []itemRow
	const q = `SELECT * FROM work_item WHERE section_id = $1 ORDER BY position, id`
	if err := repo.db.SelectContext(ctx, &rows, q, sectionID); err != nil {
		return nil, errors.Wrap(err, "querying work items")
	}
	return unpackItems(rows), nil
}

func (repo itemRepository) QueryItemsByProject(ctx context.Context, projectID string) ([]project.WorkItem, error) {
	var rows []itemRow
	const q = `
SELECT wi.*
FROM work_item wi
JOIN section s ON s.id = wi.section_id
WHERE s.project_id = $1
ORDER BY s.position, wi.position, wi.id`
	if err := repo.db.SelectContext(ctx, &rows, q, projectID); err != nil {
		return nil, errors.Wrap(err, "querying work items")
	}
	return unpackItems(rows), nil
}

func unpackItems(rows []itemRow) []project.WorkItem {
	items := make([]project.WorkItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.unpack())
	}
	return items
}

func (repo itemRepository) UpdateItem(ctx context.Context, itm project.WorkItem) (project.WorkItem, error) {
	const q = `
UPDATE work_item
SET section_id = $2, description = $3, unit = $4, scope = $5, position = $6, targeted_start = $7, targeted_end = $8
WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q,
		itm.ID, itm.SectionID, itm.Description, itm.Unit, itm.Scope, itm.Position, itm.TargetedStart, itm.TargetedEnd,
	)
	if err != nil {
		return project.WorkItem{}, errors.Wrap(err, "updating work item")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return project.WorkItem{}, project.ErrItemNotFound
	}
	return repo.GetItemByID(ctx, itm.ID)
}

func (repo itemRepository) UpdateItemDates(ctx context.Context, itemID string, actualStart, actualEnd null.Time) error {
	const q = `
UPDATE work_item
SET actual_start = $2, actual_end = $3
WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, itemID, actualStart, actualEnd)
	if err != nil {
		return errors.Wrap(err, "updating work item dates")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return project.ErrItemNotFound
	}
	return nil
}

func (repo itemRepository) DeleteItemsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	q, args, err := sqlx.In(`DELETE FROM work_item WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building work item deletion query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting work items")
	}
	return nil
}
