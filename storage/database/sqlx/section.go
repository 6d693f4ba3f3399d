package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/worksite/progress/core"
	"github.com/worksite/progress/core/project"
)

type sectionRow struct {
	ID        string `db:"id"`
	ProjectID string `db:"project_id"`
	Title     string `db:"title"`
	Position  int    `db:"position"`
}

func (row sectionRow) unpack() project.Section {
	return project.Section{
		ID:        row.ID,
		ProjectID: row.ProjectID,
		Title:     row.Title,
		Position:  row.Position,
	}
}

type sectionRepository struct {
	db core.DBExecutor
}

var _ project.SectionRepository = (*sectionRepository)(nil) // interface compliance check

func NewSectionRepository(db core.DBExecutor) *sectionRepository {
	return &sectionRepository{db: db}
}

func (repo sectionRepository) CreateSection(ctx context.Context, sec project.Section) (project.Section, error) {
	sec.ID = uuid.New().String()

	const q = `
INSERT INTO section (id, project_id, title, position)
VALUES ($1, $2, $3, $4)`
	if _, err := repo.db.ExecContext(ctx, q, sec.ID, sec.ProjectID, sec.Title, sec.Position); err != nil {
		return project.Section{}, errors.Wrap(err, "inserting section")
	}
	return sec, nil
}

func (repo sectionRepository) QuerySectionsByProject(ctx context.Context, projectID string) ([]project.Section, error) {
	var rows []sectionRow
	const q = `SELECT * FROM section WHERE project_id = $1 ORDER BY position, id`
	if err := repo.db.SelectContext(ctx, &rows, q, projectID); err != nil {
		return nil, errors.Wrap(err, "querying sections")
	}

	secs := make([]project.Section, 0, len(rows))
	for _, row := range rows {
		secs = append(secs, row.unpack())
	}
	return secs, nil
}

func (repo sectionRepository) UpdateSection(ctx context.Context, sec project.Section) (project.Section, error) {
	const q = `
UPDATE section
SET title = $2, position = $3
WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, sec.ID, sec.Title, sec.Position)
	if err != nil {
		return project.Section{}, errors.Wrap(err, "updating section")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return project.Section{}, project.ErrSectionNotFound
	}

	var row sectionRow
	if err = repo.db.GetContext(ctx, &row, `SELECT * FROM section WHERE id = $1`, sec.ID); err != nil {
		return project.Section{}, errors.Wrap(err, "getting section")
	}
	return row.unpack(), nil
}

func (repo sectionRepository) DeleteSectionsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	q, args, err := sqlx.In(`DELETE FROM section WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building section deletion query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting sections")
	}
	return nil
}
