// Package inmemdb provides map-backed repositories for tests and local
// development. It enforces the same invariants as the SQL layer: cascading
// deletes down the ownership chain and at most one ledger row per
// (item, username, date).
package inmemdb

import (
	"sync"
	"time"

	"github.com/worksite/progress/core/project"
)

type (
	DB struct {
		projects *projectTable
		sections *sectionTable
		items    *itemTable
		entries  *entryTable
	}

	projectTable struct {
		sync.RWMutex
		table map[string]*project.Project
	}

	sectionTable struct {
		sync.RWMutex
		table map[string]*project.Section
	}

	itemTable struct {
		sync.RWMutex
		table map[string]*project.WorkItem
	}

	entryKey struct {
		itemID   string
		username string
		date     string
	}

	entryTable struct {
		sync.Mutex
		pkCount int64
		table   map[int64]*project.ProgressEntry
		byKey   map[entryKey]int64
	}
)

func Open() (*DB, error) {
	db := &DB{
		projects: &projectTable{table: make(map[string]*project.Project)},
		sections: &sectionTable{table: make(map[string]*project.Section)},
		items:    &itemTable{table: make(map[string]*project.WorkItem)},
		entries: &entryTable{
			table: make(map[int64]*project.ProgressEntry),
			byKey: make(map[entryKey]int64),
		},
	}
	return db, nil
}

func keyOf(itemID, username string, date time.Time) entryKey {
	return entryKey{itemID: itemID, username: username, date: date.Format("2006-01-02")}
}
