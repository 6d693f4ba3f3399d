package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/worksite/progress/core"
	"github.com/worksite/progress/core/project"
)

func day(d int) time.Time {
	return core.NewDate(2021, time.March, d)
}

// recordingExecutor captures the statements a repository issues.
type recordingExecutor struct {
	queries []string
	args    [][]interface{}
	getRow  itemRow
}

func (rec *recordingExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	rec.queries = append(rec.queries, query)
	rec.args = append(rec.args, args)
	return oneRowResult{}, nil
}

func (rec *recordingExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	rec.queries = append(rec.queries, query)
	rec.args = append(rec.args, args)
	if row, ok := dest.(*itemRow); ok {
		*row = rec.getRow
	}
	return nil
}

func (rec *recordingExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	rec.queries = append(rec.queries, query)
	rec.args = append(rec.args, args)
	return nil
}

func (rec *recordingExecutor) Rebind(query string) string { return query }

type oneRowResult struct{}

func (oneRowResult) LastInsertId() (int64, error) { return 0, nil }
func (oneRowResult) RowsAffected() (int64, error) { return 1, nil }

func TestItemRepository_UpdateItem_persistsSectionMove(t *testing.T) {
	rec := &recordingExecutor{getRow: itemRow{ID: "itm", SectionID: "mechanical"}}
	repo := NewItemRepository(rec)

	itm := project.WorkItem{
		ID:          "itm",
		SectionID:   "mechanical", // moved from another section
		Description: "trackers",
		Unit:        "pcs",
		Scope:       null.Float64From(100),
		Position:    2,
	}
	updated, err := repo.UpdateItem(context.Background(), itm)
	assert.NoError(t, err)
	assert.Equal(t, "mechanical", updated.SectionID)

	if assert.NotEmpty(t, rec.queries) {
		update := rec.queries[0]
		assert.True(t, strings.Contains(update, "section_id ="), "UPDATE must write section_id: %s", update)
		assert.Equal(t, "mechanical", rec.args[0][1])
	}
}

func TestItemRepository_UpdateItem_keepsActualDates(t *testing.T) {
	rec := &recordingExecutor{getRow: itemRow{ID: "itm"}}
	repo := NewItemRepository(rec)

	_, err := repo.UpdateItem(context.Background(), project.WorkItem{ID: "itm", ActualStart: null.TimeFrom(day(2))})
	assert.NoError(t, err)

	// actual dates belong to UpdateItemDates only
	update := rec.queries[0]
	assert.False(t, strings.Contains(update, "actual_start"), "UPDATE must not touch actual dates: %s", update)
	assert.False(t, strings.Contains(update, "actual_end"), "UPDATE must not touch actual dates: %s", update)
}
