package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/worksite/progress/core"
	"github.com/worksite/progress/core/project"
)

type projectApi struct {
	service  project.ServiceInterface
	validate *validator.Validate
}

func registerProjectAPI(g *echo.Group, svc project.ServiceInterface, validate *validator.Validate) {
	api := projectApi{service: svc, validate: validate}

	pg := g.Group("/projects")
	pg.POST("", api.projectCreate)
	pg.GET("", api.projectQuery)

	dg := pg.Group("/:id")
	dg.GET("", api.projectRetrieve)
	dg.PUT("", api.projectUpdate)
	dg.DELETE("", api.projectDestroy)
	dg.GET("/sections", api.projectBoard)
	dg.PUT("/sections", api.projectRedefineSections)
	dg.POST("/progress", api.projectSubmitProgress)
	dg.GET("/dashboard", api.projectDashboard)

	g.GET("/dashboard", api.overview)
}

// Bindings

type (
	// SectionsUpdate replaces a project's whole structure in one call.
	SectionsUpdate struct {
		Sections []project.SectionDefinition `json:"sections" validate:"dive"`
	}

	// ProgressSubmission is one user's batch of quantity reports. Date is
	// optional; it defaults to the current date.
	ProgressSubmission struct {
		Username string                   `json:"username" validate:"required"`
		Date     string                   `json:"date" validate:"omitempty,datetime=2006-01-02"`
		Reports  []project.ProgressReport `json:"reports" validate:"required,dive"`
	}

	SubmissionResult struct {
		Faults []project.Fault `json:"faults"`
	}
)

func (su *SectionsUpdate) Validate(validate *validator.Validate) error {
	for i := range su.Sections {
		if err := su.Sections[i].Validate(validate); err != nil {
			return err
		}
	}
	return nil
}

func (ps *ProgressSubmission) Validate(validate *validator.Validate) error {
	ps.Username = core.CleanString(ps.Username, true /* lower */)
	return validate.Struct(ps)
}

// refDate resolves the optional "date" query param; defaults to today.
func refDate(ctx echo.Context) (time.Time, error) {
	raw := ctx.QueryParam("date")
	if raw == "" {
		return core.Today(), nil
	}
	date, err := core.ParseDate(raw)
	if err != nil {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: "date", Error: "must be a valid date in YYYY-MM-DD format"})
	}
	return date, nil
}

// perspective resolves the optional "user" query param; empty means all users.
func perspective(ctx echo.Context) project.Perspective {
	if usr := core.CleanString(ctx.QueryParam("user"), true /* lower */); usr != "" {
		return project.Perspective{Username: usr}
	}
	return project.AllUsers
}

// Handlers

func (api *projectApi) projectCreate(ctx echo.Context) error {
	data := new(project.NewProject)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	prj, err := api.service.CreateProject(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, prj)
}

func (api *projectApi) projectQuery(ctx echo.Context) error {
	prjs, err := api.service.QueryAllProjects(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prjs)
}

func (api *projectApi) projectRetrieve(ctx echo.Context) error {
	prj, err := api.service.GetProjectByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prj)
}

func (api *projectApi) projectUpdate(ctx echo.Context) error {
	data := new(project.UpdateProject)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	orig, err := api.service.GetProjectByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if err = data.Validate(orig, api.validate); err != nil {
		return err
	}

	prj, err := api.service.UpdateProject(ctx.Request().Context(), orig.ID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prj)
}

func (api *projectApi) projectDestroy(ctx echo.Context) error {
	if err := api.service.DeleteProjectsByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *projectApi) projectBoard(ctx echo.Context) error {
	today, err := refDate(ctx)
	if err != nil {
		return err
	}

	board, err := api.service.ProjectBoard(ctx.Request().Context(), ctx.Param("id"), perspective(ctx), today)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, board)
}

func (api *projectApi) projectRedefineSections(ctx echo.Context) error {
	data := new(SectionsUpdate)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	secs, err := api.service.RedefineSections(ctx.Request().Context(), ctx.Param("id"), data.Sections)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, secs)
}

func (api *projectApi) projectSubmitProgress(ctx echo.Context) error {
	data := new(ProgressSubmission)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	today := core.Today()
	if data.Date != "" {
		today, _ = core.ParseDate(data.Date) // format vetted by Validate
	}

	faults, err := api.service.SubmitProgress(ctx.Request().Context(), ctx.Param("id"), data.Username, today, data.Reports)
	if err != nil {
		return err
	}
	if faults == nil {
		faults = []project.Fault{}
	}
	return ctx.JSON(http.StatusOK, SubmissionResult{Faults: faults})
}

func (api *projectApi) projectDashboard(ctx echo.Context) error {
	today, err := refDate(ctx)
	if err != nil {
		return err
	}

	dash, err := api.service.Dashboard(ctx.Request().Context(), ctx.Param("id"), today)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *projectApi) overview(ctx echo.Context) error {
	today, err := refDate(ctx)
	if err != nil {
		return err
	}

	dashes, err := api.service.Overview(ctx.Request().Context(), today)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dashes)
}
