package project

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
)

var (
	// errors
	ErrProjectNotFound = errors.New("project not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrItemNotFound    = errors.New("work item not found")
	ErrNoEntries       = errors.New("no progress entries")
	ErrInvalidQuantity = errors.New("progress quantity cannot be negative")
)

// EntryFilter narrows ledger queries. Zero-valued fields are unrestricted;
// an empty Username means all users combined.
type EntryFilter struct {
	ItemID      string
	Username    string
	DateLT      time.Time // entries strictly before this date
	DateEQ      time.Time // entries on this date
	ExcludeDate time.Time // entries on any other date
}

type (
	ProjectRepository interface {
		CreateProject(ctx context.Context, prj Project) (Project, error)
		QueryAllProjects(ctx context.Context) ([]Project, error)
		GetProjectByID(ctx context.Context, id string) (Project, error)
		UpdateProject(ctx context.Context, prj Project) (Project, error)
		DeleteProjectsByID(ctx context.Context, ids ...string) error
	}

	SectionRepository interface {
		CreateSection(ctx context.Context, sec Section) (Section, error)
		QuerySectionsByProject(ctx context.Context, projectID string) ([]Section, error)
		UpdateSection(ctx context.Context, sec Section) (Section, error)
		DeleteSectionsByID(ctx context.Context, ids ...string) error
	}

	ItemRepository interface {
		CreateItem(ctx context.Context, itm WorkItem) (WorkItem, error)
		GetItemByID(ctx context.Context, id string) (WorkItem, error)
		QueryItemsBySection(ctx context.Context, sectionID string) ([]WorkItem, error)
		QueryItemsByProject(ctx context.Context, projectID string) ([]WorkItem, error)
		UpdateItem(ctx context.Context, itm WorkItem) (WorkItem, error)
		// UpdateItemDates persists only the derived dates; the auto-assignment
		// rule is its sole caller.
		UpdateItemDates(ctx context.Context, itemID string, actualStart, actualEnd null.Time) error
		DeleteItemsByID(ctx context.Context, ids ...string) error
	}

	// EntryRepository is the progress ledger. Implementations must guarantee
	// (item, username, date) uniqueness and make UpsertEntry atomic: two
	// concurrent submissions for the same key serialize, they never produce
	// duplicate rows.
	EntryRepository interface {
		UpsertEntry(ctx context.Context, entry ProgressEntry) (ProgressEntry, error)
		// SumEntries returns 0 when nothing matches, never an absent value.
		SumEntries(ctx context.Context, filter EntryFilter) (float64, error)
		// EntriesOn returns all rows for (item, [username], date) ordered by
		// descending ID. More than one row is a data-integrity fault that
		// callers must surface.
		EntriesOn(ctx context.Context, itemID, username string, date time.Time) ([]ProgressEntry, error)
		EarliestEntry(ctx context.Context, itemID, username string) (ProgressEntry, error)
		LatestEntry(ctx context.Context, itemID, username string) (ProgressEntry, error)
	}
)
