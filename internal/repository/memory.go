package repository

import (
	"sync"

	"auren-studio/internal/domain"
)

// In-memory implementations backing the mock mode of the server (and the test
// suites). They hand out copies so callers can never mutate stored state
// behind the repository's back; the conditional-update check depends on the
// stored updatedAt being exactly what the last accepted write installed.

type MemoryComponentRepository struct {
	mu         sync.RWMutex
	components map[string]*domain.Component
}

func NewMemoryComponentRepository() *MemoryComponentRepository {
	return &MemoryComponentRepository{components: make(map[string]*domain.Component)}
}

func cloneComponent(c *domain.Component) *domain.Component {
	out := *c
	if c.Config != nil {
		out.Config = make(map[string]interface{}, len(c.Config))
		for k, v := range c.Config {
			out.Config[k] = v
		}
	}
	if c.Metadata != nil {
		out.Metadata = make(map[string]interface{}, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	if c.Fields != nil {
		out.Fields = append([]domain.FieldDef(nil), c.Fields...)
	}
	return &out
}

func (m *MemoryComponentRepository) Create(component *domain.Component) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components[component.ID] = cloneComponent(component)
	return nil
}

func (m *MemoryComponentRepository) FindByID(projectID, id string) (*domain.Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.components[id]
	if !ok || c.ProjectID != projectID {
		return nil, ErrNotFound
	}
	return cloneComponent(c), nil
}

func (m *MemoryComponentRepository) ListByProject(projectID string) ([]*domain.Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var components []*domain.Component
	for _, c := range m.components {
		if c.ProjectID == projectID {
			components = append(components, cloneComponent(c))
		}
	}
	return components, nil
}

func (m *MemoryComponentRepository) Update(component *domain.Component) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.components[component.ID]; !ok {
		return ErrNotFound
	}
	m.components[component.ID] = cloneComponent(component)
	return nil
}

func (m *MemoryComponentRepository) Delete(projectID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.components[id]
	if !ok || c.ProjectID != projectID {
		return ErrNotFound
	}
	delete(m.components, id)
	return nil
}

type MemoryProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]*domain.Project
}

func NewMemoryProjectRepository() *MemoryProjectRepository {
	return &MemoryProjectRepository{projects: make(map[string]*domain.Project)}
}

func (m *MemoryProjectRepository) Create(project *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := *project
	m.projects[project.ID] = &p
	return nil
}

func (m *MemoryProjectRepository) FindByID(id string) (*domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *p
	return &out, nil
}

func (m *MemoryProjectRepository) List() ([]*domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var projects []*domain.Project
	for _, p := range m.projects {
		out := *p
		projects = append(projects, &out)
	}
	return projects, nil
}

type MemoryRecordRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.Record
}

func NewMemoryRecordRepository() *MemoryRecordRepository {
	return &MemoryRecordRepository{records: make(map[string]*domain.Record)}
}

func cloneRecord(r *domain.Record) *domain.Record {
	out := *r
	if r.Data != nil {
		out.Data = make(map[string]interface{}, len(r.Data))
		for k, v := range r.Data {
			out.Data[k] = v
		}
	}
	return &out
}

func (m *MemoryRecordRepository) Create(record *domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = cloneRecord(record)
	return nil
}

func (m *MemoryRecordRepository) FindByID(id string) (*domain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(r), nil
}

func (m *MemoryRecordRepository) List(componentID string) ([]*domain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var records []*domain.Record
	for _, r := range m.records {
		if componentID == "" || r.ComponentID == componentID {
			records = append(records, cloneRecord(r))
		}
	}
	return records, nil
}

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User // keyed by email
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*domain.User)}
}

func (m *MemoryUserRepository) Create(user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *user
	m.users[user.Email] = &u
	return nil
}

func (m *MemoryUserRepository) FindByEmail(email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *MemoryUserRepository) EmailExists(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[email]
	return ok, nil
}
