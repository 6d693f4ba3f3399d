package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/worksite/progress/core"
	"github.com/worksite/progress/core/project"
)

type entryRow struct {
	ID       int64     `db:"id"`
	ItemID   string    `db:"item_id"`
	Username string    `db:"username"`
	Date     time.Time `db:"entry_date"`
	Quantity float64   `db:"quantity"`
}

func (row entryRow) unpack() project.ProgressEntry {
	return project.ProgressEntry{
		ID:       row.ID,
		ItemID:   row.ItemID,
		Username: row.Username,
		Date:     core.Date(row.Date),
		Quantity: row.Quantity,
	}
}

type entryRepository struct {
	db core.DBExecutor
}

var _ project.EntryRepository = (*entryRepository)(nil) // interface compliance check

func NewEntryRepository(db core.DBExecutor) *entryRepository {
	return &entryRepository{db: db}
}

// UpsertEntry relies on the UNIQUE (item_id, username, entry_date) constraint;
// concurrent submissions for the same key serialize on the conflict target.
func (repo entryRepository) UpsertEntry(ctx context.Context, entry project.ProgressEntry) (project.ProgressEntry, error) {
	if entry.Quantity < 0 {
		return project.ProgressEntry{}, project.ErrInvalidQuantity
	}
	entry.Date = core.Date(entry.Date)

	var row entryRow
	const q = `
INSERT INTO progress_entry (item_id, username, entry_date, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (item_id, username, entry_date) DO UPDATE SET quantity = EXCLUDED.quantity
RETURNING *`
	if err := repo.db.GetContext(ctx, &row, q, entry.ItemID, entry.Username, entry.Date, entry.Quantity); err != nil {
		return project.ProgressEntry{}, errors.Wrap(err, "upserting progress entry")
	}
	return row.unpack(), nil
}

// entryWhere builds the WHERE clause for a filter; positional args start at $1.
func entryWhere(filter project.EntryFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ItemID != "" {
		conds = append(conds, "item_id = "+arg(filter.ItemID))
	}
	if filter.Username != "" {
		conds = append(conds, "username = "+arg(filter.Username))
	}
	if !filter.DateLT.IsZero() {
		conds = append(conds, "entry_date < "+arg(core.Date(filter.DateLT)))
	}
	if !filter.DateEQ.IsZero() {
		conds = append(conds, "entry_date = "+arg(core.Date(filter.DateEQ)))
	}
	if !filter.ExcludeDate.IsZero() {
		conds = append(conds, "entry_date <> "+arg(core.Date(filter.ExcludeDate)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (repo entryRepository) SumEntries(ctx context.Context, filter project.EntryFilter) (float64, error) {
	where, args := entryWhere(filter)

	var total float64
	q := `SELECT COALESCE(SUM(quantity), 0) FROM progress_entry` + where
	if err := repo.db.GetContext(ctx, &total, q, args...); err != nil {
		return 0, errors.Wrap(err, "summing progress entries")
	}
	return total, nil
}

func (repo entryRepository) EntriesOn(ctx context.Context, itemID, username string, date time.Time) ([]project.ProgressEntry, error) {
	where, args := entryWhere(project.EntryFilter{ItemID: itemID, Username: username, DateEQ: date})

	var rows []entryRow
	q := `SELECT * FROM progress_entry` + where + ` ORDER BY id DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying progress entries")
	}

	entries := make([]project.ProgressEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.unpack())
	}
	return entries, nil
}

func (repo entryRepository) EarliestEntry(ctx context.Context, itemID, username string) (project.ProgressEntry, error) {
	return repo.boundaryEntry(ctx, itemID, username, "ASC")
}

func (repo entryRepository) LatestEntry(ctx context.Context, itemID, username string) (project.ProgressEntry, error) {
	return repo.boundaryEntry(ctx, itemID, username, "DESC")
}

func (repo entryRepository) boundaryEntry(ctx context.Context, itemID, username, dir string) (project.ProgressEntry, error) {
	where, args := entryWhere(project.EntryFilter{ItemID: itemID, Username: username})

	var row entryRow
	q := `SELECT * FROM progress_entry` + where + fmt.Sprintf(` ORDER BY entry_date %s, id %s LIMIT 1`, dir, dir)
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return project.ProgressEntry{}, project.ErrNoEntries
		}
		return project.ProgressEntry{}, errors.Wrap(err, "querying progress entries")
	}
	return row.unpack(), nil
}
