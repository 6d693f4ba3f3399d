package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/worksite/progress/core"
	"github.com/worksite/progress/core/project"
)

type projectRow struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Location   string    `db:"location"`
	Kind       string    `db:"kind"`
	AssignedTo string    `db:"assigned_to"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (row projectRow) unpack() project.Project {
	return project.Project{
		ID:         row.ID,
		Name:       row.Name,
		Location:   row.Location,
		Kind:       row.Kind,
		AssignedTo: row.AssignedTo,
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}

type projectRepository struct {
	db core.DBExecutor
}

var _ project.ProjectRepository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db core.DBExecutor) *projectRepository {
	return &projectRepository{db: db}
}

func (repo projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	prj.ID = uuid.New().String()
	now := time.Now().UTC()
	prj.CreatedAt = now
	prj.UpdatedAt = now

	const q = `
INSERT INTO project (id, name, location, kind, assigned_to, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := repo.db.ExecContext(ctx, q, prj.ID, prj.Name, prj.Location, prj.Kind, prj.AssignedTo, prj.CreatedAt, prj.UpdatedAt); err != nil {
		return project.Project{}, errors.Wrap(err, "inserting project")
	}
	return prj, nil
}

func (repo projectRepository) QueryAllProjects(ctx context.Context) ([]project.Project, error) {
	var rows []projectRow
	const q = `SELECT * FROM project ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}

	prjs := make([]project.Project, 0, len(rows))
	for _, row := range rows {
		prjs = append(prjs, row.unpack())
	}
	return prjs, nil
}

func (repo projectRepository) GetProjectByID(ctx context.Context, id string) (project.Project, error) {
	var row projectRow
	const q = `SELECT * FROM project WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return project.Project{}, project.ErrProjectNotFound
		}
		return project.Project{}, errors.Wrap(err, "getting project")
	}
	return row.unpack(), nil
}

func (repo projectRepository) UpdateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	prj.UpdatedAt = time.Now().UTC()

	const q = `
UPDATE project
SET name = $2, location = $3, kind = $4, assigned_to = $5, updated_at = $6
WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, prj.ID, prj.Name, prj.Location, prj.Kind, prj.AssignedTo, prj.UpdatedAt)
	if err != nil {
		return project.Project{}, errors.Wrap(err, "updating project")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return project.Project{}, project.ErrProjectNotFound
	}
	return repo.GetProjectByID(ctx, prj.ID)
}

func (repo projectRepository) DeleteProjectsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	q, args, err := sqlx.In(`DELETE FROM project WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building project deletion query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting projects")
	}
	return nil
}
