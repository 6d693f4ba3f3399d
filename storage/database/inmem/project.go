package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/worksite/progress/core/project"
)

type projectRepository struct {
	db *DB
}

var _ project.ProjectRepository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *DB) *projectRepository {
	return &projectRepository{db: db}
}

func (repo *projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	repo.db.projects.Lock()
	defer repo.db.projects.Unlock()

	prj.ID = uuid.New().String()
	repo.db.projects.table[prj.ID] = &prj
	return prj, nil
}

func (repo *projectRepository) QueryAllProjects(ctx context.Context) ([]project.Project, error) {
	repo.db.projects.RLock()
	defer repo.db.projects.RUnlock()

	projects := make([]project.Project, 0, len(repo.db.projects.table))
	for _, prj := range repo.db.projects.table {
		projects = append(projects, *prj)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.Before(projects[j].CreatedAt) })
	return projects, nil
}

func (repo *projectRepository) GetProjectByID(ctx context.Context, id string) (project.Project, error) {
	repo.db.projects.RLock()
	defer repo.db.projects.RUnlock()

	if prj, ok := repo.db.projects.table[id]; ok {
		return *prj, nil
	}
	return project.Project{}, project.ErrProjectNotFound
}

func (repo *projectRepository) UpdateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	repo.db.projects.Lock()
	defer repo.db.projects.Unlock()

	orig, ok := repo.db.projects.table[prj.ID]
	if !ok {
		return project.Project{}, project.ErrProjectNotFound
	}
	prj.CreatedAt = orig.CreatedAt
	repo.db.projects.table[prj.ID] = &prj
	return prj, nil
}

func (repo *projectRepository) DeleteProjectsByID(ctx context.Context, ids ...string) error {
	repo.db.projects.Lock()
	defer repo.db.projects.Unlock()

	for _, id := range ids {
		delete(repo.db.projects.table, id)

		// emulate FK cascades
		var secIDs []string
		repo.db.sections.Lock()
		for secID, sec := range repo.db.sections.table {
			if sec.ProjectID == id {
				secIDs = append(secIDs, secID)
				delete(repo.db.sections.table, secID)
			}
		}
		repo.db.sections.Unlock()
		dropSectionItems(repo.db, secIDs...)
	}
	return nil
}
