package project

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/worksite/progress/core"
)

type (
	// ServiceInterface is what the transport layer consumes.
	ServiceInterface interface {
		CreateProject(ctx context.Context, np NewProject) (Project, error)
		QueryAllProjects(ctx context.Context) ([]Project, error)
		GetProjectByID(ctx context.Context, id string) (Project, error)
		UpdateProject(ctx context.Context, id string, up UpdateProject) (Project, error)
		DeleteProjectsByID(ctx context.Context, ids ...string) error
		RedefineSections(ctx context.Context, projectID string, defs []SectionDefinition) ([]Section, error)
		ProjectBoard(ctx context.Context, projectID string, p Perspective, today time.Time) ([]SectionBoard, error)
		SubmitProgress(ctx context.Context, projectID, username string, today time.Time, reports []ProgressReport) ([]Fault, error)
		Dashboard(ctx context.Context, projectID string, today time.Time) (Dashboard, error)
		Overview(ctx context.Context, today time.Time) ([]Dashboard, error)
		BackfillProjectDates(ctx context.Context, projectID string) error
	}

	Service struct {
		projects ProjectRepository
		sections SectionRepository
		items    ItemRepository
		entries  EntryRepository
		log      core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil) // interface compliance check

func NewService(
	projects ProjectRepository,
	sections SectionRepository,
	items ItemRepository,
	entries EntryRepository,
	log core.Logger,
) *Service {
	return &Service{
		projects: projects,
		sections: sections,
		items:    items,
		entries:  entries,
		log:      log,
	}
}

func (svc *Service) CreateProject(ctx context.Context, np NewProject) (Project, error) {
	now := time.Now().UTC()
	prj := Project{
		Name:       np.Name,
		Location:   np.Location,
		Kind:       np.Kind,
		AssignedTo: np.AssignedTo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.projects.CreateProject(ctx, prj)
}

func (svc *Service) QueryAllProjects(ctx context.Context) ([]Project, error) {
	return svc.projects.QueryAllProjects(ctx)
}

func (svc *Service) GetProjectByID(ctx context.Context, id string) (Project, error) {
	return svc.projects.GetProjectByID(ctx, id)
}

func (svc *Service) UpdateProject(ctx context.Context, id string, up UpdateProject) (Project, error) {
	prj := Project{
		ID:         id,
		Name:       up.Name,
		Location:   up.Location,
		Kind:       up.Kind,
		AssignedTo: up.AssignedTo,
		UpdatedAt:  time.Now().UTC(),
	}
	return svc.projects.UpdateProject(ctx, prj)
}

func (svc *Service) DeleteProjectsByID(ctx context.Context, ids ...string) error {
	return svc.projects.DeleteProjectsByID(ctx, ids...)
}

// RedefineSections replaces a project's work breakdown structure with the
// submitted one: definitions carrying an ID update the existing row, the rest
// are created, and any section or item not resubmitted is deleted along with
// its ledger history. Positions follow submission order.
func (svc *Service) RedefineSections(ctx context.Context, projectID string, defs []SectionDefinition) ([]Section, error) {
	if _, err := svc.projects.GetProjectByID(ctx, projectID); err != nil {
		return nil, err
	}

	existingSecs, err := svc.sections.QuerySectionsByProject(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying sections")
	}
	secByID := make(map[string]Section, len(existingSecs))
	for _, sec := range existingSecs {
		secByID[sec.ID] = sec
	}
	existingItems, err := svc.items.QueryItemsByProject(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying items")
	}
	itemByID := make(map[string]WorkItem, len(existingItems))
	for _, itm := range existingItems {
		itemByID[itm.ID] = itm
	}

	keepSecs := make(map[string]bool, len(defs))
	keepItems := make(map[string]bool)
	result := make([]Section, 0, len(defs))

	for pos, def := range defs {
		var sec Section
		if def.ID != "" {
			orig, ok := secByID[def.ID]
			if !ok {
				return nil, ErrSectionNotFound
			}
			orig.Title = def.Title
			orig.Position = pos
			if sec, err = svc.sections.UpdateSection(ctx, orig); err != nil {
				return nil, errors.Wrap(err, "updating section")
			}
		} else {
			sec, err = svc.sections.CreateSection(ctx, Section{ProjectID: projectID, Title: def.Title, Position: pos})
			if err != nil {
				return nil, errors.Wrap(err, "creating section")
			}
		}
		keepSecs[sec.ID] = true
		result = append(result, sec)

		for itemPos, idf := range def.Items {
			start, end := idf.targetedDates()
			if idf.ID != "" {
				orig, ok := itemByID[idf.ID]
				if !ok {
					return nil, ErrItemNotFound
				}
				orig.SectionID = sec.ID
				orig.Description = idf.Description
				orig.Unit = idf.Unit
				orig.Scope = idf.Scope
				orig.Position = itemPos
				orig.TargetedStart = start
				orig.TargetedEnd = end
				if _, err = svc.items.UpdateItem(ctx, orig); err != nil {
					return nil, errors.Wrap(err, "updating item")
				}
				keepItems[orig.ID] = true
			} else {
				itm := WorkItem{
					SectionID:     sec.ID,
					Description:   idf.Description,
					Unit:          idf.Unit,
					Scope:         idf.Scope,
					Position:      itemPos,
					TargetedStart: start,
					TargetedEnd:   end,
				}
				if itm, err = svc.items.CreateItem(ctx, itm); err != nil {
					return nil, errors.Wrap(err, "creating item")
				}
				keepItems[itm.ID] = true
			}
		}
	}

	var dropItems []string
	for _, itm := range existingItems {
		if !keepItems[itm.ID] {
			dropItems = append(dropItems, itm.ID)
		}
	}
	if len(dropItems) > 0 {
		if err = svc.items.DeleteItemsByID(ctx, dropItems...); err != nil {
			return nil, errors.Wrap(err, "deleting items")
		}
	}
	var dropSecs []string
	for _, sec := range existingSecs {
		if !keepSecs[sec.ID] {
			dropSecs = append(dropSecs, sec.ID)
		}
	}
	if len(dropSecs) > 0 {
		if err = svc.sections.DeleteSectionsByID(ctx, dropSecs...); err != nil {
			return nil, errors.Wrap(err, "deleting sections")
		}
	}

	return result, nil
}

// SectionBoard is one section with its items' snapshots, in display order.
type SectionBoard struct {
	Section Section        `json:"section"`
	Items   []ItemSnapshot `json:"items"`
}

// ProjectBoard renders a project's full structure under the given perspective
// at the given reference date.
func (svc *Service) ProjectBoard(ctx context.Context, projectID string, p Perspective, today time.Time) ([]SectionBoard, error) {
	if _, err := svc.projects.GetProjectByID(ctx, projectID); err != nil {
		return nil, err
	}
	secs, err := svc.sections.QuerySectionsByProject(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying sections")
	}

	boards := make([]SectionBoard, 0, len(secs))
	for _, sec := range secs {
		items, err := svc.items.QueryItemsBySection(ctx, sec.ID)
		if err != nil {
			return nil, errors.Wrap(err, "querying section items")
		}
		board := SectionBoard{Section: sec, Items: make([]ItemSnapshot, 0, len(items))}
		for _, itm := range items {
			snap, err := svc.Snapshot(ctx, itm, p, today)
			if err != nil {
				return nil, err
			}
			board.Items = append(board.Items, snap)
		}
		boards = append(boards, board)
	}
	return boards, nil
}

// SubmitProgress processes one user's batch of dated quantity reports against
// a project. Items are independent: a bad report yields a fault for that item
// and processing continues. Successful reports upsert the (item, user, date)
// ledger row and run the date auto-assignment rule.
func (svc *Service) SubmitProgress(
	ctx context.Context,
	projectID, username string,
	today time.Time,
	reports []ProgressReport,
) ([]Fault, error) {
	username = core.CleanString(username, true /* lower */)
	today = core.Date(today)

	if _, err := svc.projects.GetProjectByID(ctx, projectID); err != nil {
		return nil, err
	}
	items, err := svc.items.QueryItemsByProject(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying project items")
	}
	itemByID := make(map[string]WorkItem, len(items))
	for _, itm := range items {
		itemByID[itm.ID] = itm
	}

	var faults []Fault
	for _, rep := range reports {
		itm, ok := itemByID[rep.ItemID]
		if !ok {
			return faults, ErrItemNotFound
		}

		raw := strings.TrimSpace(rep.Quantity)
		if raw == "" {
			continue
		}
		if !itm.SchedulingReady() {
			faults = append(faults, preconditionFault(itm))
			continue
		}

		qty, convErr := strconv.ParseFloat(raw, 64)
		if convErr != nil {
			faults = append(faults, invalidQuantityFault(itm, "non-numeric"))
			continue
		}
		if qty < 0 {
			faults = append(faults, invalidQuantityFault(itm, "negative"))
			continue
		}

		// a corrupted ledger key cannot be upserted over safely
		existing, err := svc.entries.EntriesOn(ctx, itm.ID, username, today)
		if err != nil {
			return faults, errors.Wrap(err, "reading existing progress")
		}
		if len(existing) > 1 {
			svc.log.Error("duplicate ledger rows", map[string]interface{}{
				"item_id": itm.ID, "username": username, "date": today.Format(core.DateFormat),
			})
			faults = append(faults, dataIntegrityFault(itm))
			continue
		}

		// the user's own history decides the remaining allowance
		doneSoFar, err := svc.entries.SumEntries(ctx, EntryFilter{ItemID: itm.ID, Username: username, DateLT: today})
		if err != nil {
			return faults, errors.Wrap(err, "summing past progress")
		}
		if doneSoFar+qty > itm.Scope.Float64 {
			faults = append(faults, scopeExceededFault(itm, itm.Scope.Float64-doneSoFar))
			continue
		}

		if _, err = svc.entries.UpsertEntry(ctx, ProgressEntry{
			ItemID:   itm.ID,
			Username: username,
			Date:     today,
			Quantity: qty,
		}); err != nil {
			return faults, errors.Wrap(err, "upserting progress entry")
		}

		if itm, err = svc.applyDateRule(ctx, itm, today, qty); err != nil {
			return faults, err
		}
		itemByID[itm.ID] = itm
	}

	return faults, nil
}
