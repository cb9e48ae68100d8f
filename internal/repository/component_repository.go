package repository

import (
	"context"
	"fmt"
	"net/http"

	"auren-studio/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type ComponentRepository interface {
	Create(component *domain.Component) error
	FindByID(projectID, id string) (*domain.Component, error)
	ListByProject(projectID string) ([]*domain.Component, error)
	Update(component *domain.Component) error
	Delete(projectID, id string) error
}

type componentRepository struct {
	client *kivik.Client
	dbName string
}

func NewComponentRepository(client *kivik.Client, dbName string) ComponentRepository {
	return &componentRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *componentRepository) Create(component *domain.Component) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("component:%s", component.ID)
	_, err := db.Put(context.Background(), docID, component)
	if err != nil {
		return fmt.Errorf("failed to create component: %w", err)
	}

	return nil
}

func (r *componentRepository) FindByID(projectID, id string) (*domain.Component, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("component:%s", id)
	row := db.Get(context.Background(), docID)

	var component domain.Component
	if err := row.ScanDoc(&component); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find component: %w", err)
	}

	if component.ProjectID != projectID {
		return nil, ErrNotFound
	}

	return &component, nil
}

func (r *componentRepository) ListByProject(projectID string) ([]*domain.Component, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"projectId": projectID,
			"type":      map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	defer rows.Close()

	var components []*domain.Component
	for rows.Next() {
		var component domain.Component
		if err := rows.ScanDoc(&component); err != nil {
			continue
		}
		components = append(components, &component)
	}

	return components, nil
}

func (r *componentRepository) Update(component *domain.Component) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("component:%s", component.ID)

	// Refetch for the current _rev, then replace the editable fields.
	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch existing component for update: %w", err)
	}

	existingDoc["name"] = component.Name
	existingDoc["description"] = component.Description
	existingDoc["type"] = component.Type
	existingDoc["status"] = component.Status
	existingDoc["config"] = component.Config
	existingDoc["metadata"] = component.Metadata
	existingDoc["fields"] = component.Fields
	existingDoc["updatedAt"] = component.UpdatedAt

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to update component: %w", err)
	}

	return nil
}

func (r *componentRepository) Delete(projectID, id string) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("component:%s", id)

	row := db.Get(context.Background(), docID)

	var component domain.Component
	if err := row.ScanDoc(&component); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch component for delete: %w", err)
	}

	if component.ProjectID != projectID {
		return ErrNotFound
	}

	rev, err := db.GetRev(context.Background(), docID)
	if err != nil {
		return fmt.Errorf("failed to resolve component revision: %w", err)
	}

	if _, err := db.Delete(context.Background(), docID, rev); err != nil {
		return fmt.Errorf("failed to delete component: %w", err)
	}

	return nil
}
