package service

import (
	"errors"
	"sync"
	"time"

	"auren-studio/internal/domain"
	"auren-studio/internal/repository"
	"auren-studio/internal/websocket"
	"auren-studio/pkg/etag"

	"github.com/google/uuid"
)

type ComponentService struct {
	repo     repository.ComponentRepository
	projects repository.ProjectRepository
	ws       *websocket.Manager

	// Serializes conditional writes so the token check and the update are
	// atomic: a stale If-Match always loses, never races.
	writeMu sync.Mutex
}

func NewComponentService(
	repo repository.ComponentRepository,
	projects repository.ProjectRepository,
	ws *websocket.Manager,
) *ComponentService {
	return &ComponentService{
		repo:     repo,
		projects: projects,
		ws:       ws,
	}
}

func (s *ComponentService) Create(projectID, createdBy string, req *domain.ComponentPayload) (*domain.Component, error) {
	if _, err := s.projects.FindByID(projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	component := &domain.Component{
		ID:        "component-" + uuid.New().String(),
		ProjectID: projectID,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.Apply(component)

	if err := s.repo.Create(component); err != nil {
		return nil, err
	}

	s.broadcast(websocket.EventComponentUpdated, component)

	return component, nil
}

func (s *ComponentService) Get(projectID, componentID string) (*domain.Component, error) {
	component, err := s.repo.FindByID(projectID, componentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return component, nil
}

func (s *ComponentService) List(projectID string) ([]*domain.Component, error) {
	return s.repo.ListByProject(projectID)
}

// Update replaces a component's editable fields. A non-empty ifMatch token is
// a precondition: when it does not equal the token of the stored revision the
// update is rejected with a ConflictError carrying the current entity. An
// empty token skips the check entirely (forced overwrite).
func (s *ComponentService) Update(projectID, componentID string, req *domain.ComponentPayload, ifMatch etag.Token) (*domain.Component, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.repo.FindByID(projectID, componentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !ifMatch.IsZero() && ifMatch != etag.FromTime(current.UpdatedAt) {
		return nil, &ConflictError{Latest: current}
	}

	req.Apply(current)
	current.UpdatedAt = nextRevisionTime(current.UpdatedAt)

	if err := s.repo.Update(current); err != nil {
		return nil, err
	}

	s.broadcast(websocket.EventComponentUpdated, current)

	return current, nil
}

func (s *ComponentService) Delete(projectID, componentID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	component, err := s.repo.FindByID(projectID, componentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.repo.Delete(projectID, componentID); err != nil {
		return err
	}

	s.broadcast(websocket.EventComponentDeleted, component)

	return nil
}

func (s *ComponentService) broadcast(eventType string, component *domain.Component) {
	if s.ws == nil {
		return
	}
	s.ws.BroadcastComponentEvent(&websocket.ComponentEvent{
		Type:        eventType,
		ComponentID: component.ID,
		ProjectID:   component.ProjectID,
		ETag:        etag.FromTime(component.UpdatedAt).String(),
		UpdatedAt:   component.UpdatedAt,
	})
}

// nextRevisionTime yields the updatedAt for a freshly accepted write. It must
// strictly advance past the previous revision even on coarse clocks, or two
// revisions would mint the same version token.
func nextRevisionTime(prev time.Time) time.Time {
	now := time.Now().UTC()
	if !now.After(prev) {
		return prev.Add(time.Millisecond)
	}
	return now
}
