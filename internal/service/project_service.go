package service

import (
	"errors"
	"time"

	"auren-studio/internal/domain"
	"auren-studio/internal/repository"

	"github.com/google/uuid"
)

type ProjectService struct {
	repo repository.ProjectRepository
}

func NewProjectService(repo repository.ProjectRepository) *ProjectService {
	return &ProjectService{repo: repo}
}

func (s *ProjectService) Create(ownerID string, req *domain.CreateProjectRequest) (*domain.Project, error) {
	owner := req.OwnerID
	if owner == "" {
		owner = ownerID
	}

	project := &domain.Project{
		ID:        "project-" + uuid.New().String(),
		Name:      req.Name,
		OwnerID:   owner,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(project); err != nil {
		return nil, err
	}

	return project, nil
}

func (s *ProjectService) Get(id string) (*domain.Project, error) {
	project, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) List() ([]*domain.Project, error) {
	return s.repo.List()
}
