package project_test

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/worksite/progress/core"
	"github.com/worksite/progress/core/project"
	inmemdb "github.com/worksite/progress/storage/database/inmem"
)

type testEnv struct {
	svc      *project.Service
	projects project.ProjectRepository
	sections project.SectionRepository
	items    project.ItemRepository
	entries  project.EntryRepository

	// keep display order deterministic
	itemCount    int
	sectionCount int
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatal(err)
	}
	env := &testEnv{
		projects: inmemdb.NewProjectRepository(db),
		sections: inmemdb.NewSectionRepository(db),
		items:    inmemdb.NewItemRepository(db),
		entries:  inmemdb.NewEntryRepository(db),
	}
	env.svc = project.NewService(env.projects, env.sections, env.items, env.entries, core.NopLogger{})
	return env
}

func (env *testEnv) createProject(t *testing.T, name string) project.Project {
	t.Helper()
	prj, err := env.svc.CreateProject(context.Background(), project.NewProject{
		Name:       name,
		Location:   "test site",
		Kind:       project.KindGroundMount,
		AssignedTo: "reporter",
	})
	if err != nil {
		t.Fatal(err)
	}
	return prj
}

func (env *testEnv) createSection(t *testing.T, projectID, title string) project.Section {
	t.Helper()
	env.sectionCount++
	sec, err := env.sections.CreateSection(context.Background(), project.Section{ProjectID: projectID, Title: title, Position: env.sectionCount})
	if err != nil {
		t.Fatal(err)
	}
	return sec
}

// createItem schedules an item with the given scope and target dates; blank
// dates leave the item unscheduled.
func (env *testEnv) createItem(t *testing.T, sectionID, desc string, scope null.Float64, start, end string) project.WorkItem {
	t.Helper()
	env.itemCount++
	itm := project.WorkItem{SectionID: sectionID, Description: desc, Unit: "units", Scope: scope, Position: env.itemCount}
	if start != "" {
		itm.TargetedStart = null.TimeFrom(date(t, start))
	}
	if end != "" {
		itm.TargetedEnd = null.TimeFrom(date(t, end))
	}
	itm, err := env.items.CreateItem(context.Background(), itm)
	if err != nil {
		t.Fatal(err)
	}
	return itm
}

func (env *testEnv) addEntry(t *testing.T, itemID, username, day string, qty float64) project.ProgressEntry {
	t.Helper()
	entry, err := env.entries.UpsertEntry(context.Background(), project.ProgressEntry{
		ItemID:   itemID,
		Username: username,
		Date:     date(t, day),
		Quantity: qty,
	})
	if err != nil {
		t.Fatal(err)
	}
	return entry
}

func (env *testEnv) getItem(t *testing.T, id string) project.WorkItem {
	t.Helper()
	itm, err := env.items.GetItemByID(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return itm
}

func (env *testEnv) submit(t *testing.T, projectID, username, day string, reports ...project.ProgressReport) []project.Fault {
	t.Helper()
	faults, err := env.svc.SubmitProgress(context.Background(), projectID, username, date(t, day), reports)
	if err != nil {
		t.Fatal(err)
	}
	return faults
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
