package project

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/worksite/progress/core"
)

// Project kinds
const (
	KindGroundMount = "ground mount"
	KindRoofTop     = "roof top"
	KindBESS        = "bess"
)

var AllKinds = []string{KindGroundMount, KindRoofTop, KindBESS}

// Status is the three-valued schedule state of a work item. Every item is in
// exactly one of these at any reference date.
type Status string

const (
	StatusOntime       Status = "Ontime"
	StatusDelay        Status = "Delay"
	StatusMissingDates Status = "Missing Dates"
)

type (
	// Project is assigned to a single reporting user and owns Sections.
	// It carries no scheduling state of its own.
	Project struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		Location   string    `json:"location"`
		Kind       string    `json:"kind"`
		AssignedTo string    `json:"assigned_to"`
		CreatedAt  time.Time `json:"created_at"` // UTC
		UpdatedAt  time.Time `json:"updated_at"` // UTC
	}

	// Section groups WorkItems for display; a pass-through aggregation boundary.
	Section struct {
		ID        string `json:"id"`
		ProjectID string `json:"project_id"`
		Title     string `json:"title"`
		Position  int    `json:"position"`
	}

	// WorkItem is a schedulable unit of deliverable quantity.
	//
	// Scope and the four dates are all nullable: an item may exist before the
	// admin has sized or scheduled it. ActualStart and ActualEnd are derived
	// by the date auto-assignment rule, never set directly.
	WorkItem struct {
		ID            string       `json:"id"`
		SectionID     string       `json:"section_id"`
		Description   string       `json:"description"`
		Unit          string       `json:"unit"`
		Scope         null.Float64 `json:"scope"`
		Position      int          `json:"position"`
		TargetedStart null.Time    `json:"targeted_start"`
		TargetedEnd   null.Time    `json:"targeted_end"`
		ActualStart   null.Time    `json:"actual_start"`
		ActualEnd     null.Time    `json:"actual_end"`
	}

	// ProgressEntry is one user's reported quantity for one item on one
	// calendar date. At most one row exists per (item, username, date);
	// resubmission replaces the quantity in place.
	ProgressEntry struct {
		ID       int64     `json:"id"`
		ItemID   string    `json:"item_id"`
		Username string    `json:"username"`
		Date     time.Time `json:"date"`
		Quantity float64   `json:"quantity"`
	}
)

// SchedulingReady reports whether the item has everything the calculator
// needs: both target dates and a scope.
func (itm WorkItem) SchedulingReady() bool {
	return itm.TargetedStart.Valid && itm.TargetedEnd.Valid && itm.Scope.Valid
}

// Perspective selects whose entries scheduling math reads: a single user's
// (Username set) or everyone's combined (zero value).
type Perspective struct {
	Username string
}

// AllUsers is the admin/aggregate perspective.
var AllUsers = Perspective{}

// NewProject contains information needed to create a new Project.
type NewProject struct {
	Name       string `json:"name" validate:"required"`
	Location   string `json:"location" validate:"required"`
	Kind       string `json:"kind" validate:"required,projectkind"`
	AssignedTo string `json:"assigned_to" validate:"required"`
}

func (np *NewProject) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	np.Location = core.CleanString(np.Location)
	np.Kind = core.CleanString(np.Kind, true /* lower */)
	np.AssignedTo = core.CleanString(np.AssignedTo, true /* lower */)
	return validate.Struct(np)
}

// UpdateProject defines what information may be provided to modify an existing
// Project. Empty fields keep their current value.
type UpdateProject struct {
	Name       string `json:"name"`
	Location   string `json:"location"`
	Kind       string `json:"kind" validate:"omitempty,projectkind"`
	AssignedTo string `json:"assigned_to"`
}

func (up *UpdateProject) Validate(orig Project, validate *validator.Validate) error {
	if name := core.CleanString(up.Name); name != "" {
		up.Name = name
	} else {
		up.Name = orig.Name
	}
	if loc := core.CleanString(up.Location); loc != "" {
		up.Location = loc
	} else {
		up.Location = orig.Location
	}
	if kind := core.CleanString(up.Kind, true); kind != "" {
		up.Kind = kind
	} else {
		up.Kind = orig.Kind
	}
	if assignee := core.CleanString(up.AssignedTo, true); assignee != "" {
		up.AssignedTo = assignee
	} else {
		up.AssignedTo = orig.AssignedTo
	}
	return validate.Struct(up)
}

type (
	// SectionDefinition is one section of a bulk structure redefinition
	// (RedefineSections). Sections and items carrying an ID are updated;
	// the rest are created; anything not resubmitted is deleted.
	SectionDefinition struct {
		ID    string           `json:"id"`
		Title string           `json:"title" validate:"required"`
		Items []ItemDefinition `json:"items" validate:"dive"`
	}

	// ItemDefinition carries dates as YYYY-MM-DD strings; blank means unset.
	ItemDefinition struct {
		ID            string       `json:"id"`
		Description   string       `json:"description" validate:"required"`
		Unit          string       `json:"unit"`
		Scope         null.Float64 `json:"scope"`
		TargetedStart string       `json:"targeted_start" validate:"omitempty,datetime=2006-01-02"`
		TargetedEnd   string       `json:"targeted_end" validate:"omitempty,datetime=2006-01-02"`
	}
)

func (sd *SectionDefinition) Validate(validate *validator.Validate) error {
	sd.Title = core.CleanString(sd.Title)
	for i := range sd.Items {
		sd.Items[i].Description = core.CleanString(sd.Items[i].Description)
		sd.Items[i].Unit = core.CleanString(sd.Items[i].Unit)
	}
	if err := validate.Struct(sd); err != nil {
		return err
	}
	for _, itm := range sd.Items {
		if itm.Scope.Valid && itm.Scope.Float64 < 0 {
			return core.NewValidationError(nil, core.FieldError{Field: "scope", Error: "scope cannot be negative"})
		}
	}
	return nil
}

// targetedDates parses the definition's date strings; Validate has already
// vetted the format.
func (id ItemDefinition) targetedDates() (start, end null.Time) {
	if id.TargetedStart != "" {
		if d, err := core.ParseDate(id.TargetedStart); err == nil {
			start = null.TimeFrom(d)
		}
	}
	if id.TargetedEnd != "" {
		if d, err := core.ParseDate(id.TargetedEnd); err == nil {
			end = null.TimeFrom(d)
		}
	}
	return start, end
}

// ProgressReport is one item's raw submission within a batch; quantity stays a
// string so that parse failures become per-item faults instead of rejecting
// the whole batch.
type ProgressReport struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity string `json:"quantity"`
}
