package repository

import (
	"context"
	"fmt"
	"net/http"

	"auren-studio/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type RecordRepository interface {
	Create(record *domain.Record) error
	FindByID(id string) (*domain.Record, error)
	List(componentID string) ([]*domain.Record, error)
}

type recordRepository struct {
	client *kivik.Client
	dbName string
}

func NewRecordRepository(client *kivik.Client, dbName string) RecordRepository {
	return &recordRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *recordRepository) Create(record *domain.Record) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("record:%s", record.ID)
	_, err := db.Put(context.Background(), docID, record)
	if err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}

	return nil
}

func (r *recordRepository) FindByID(id string) (*domain.Record, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("record:%s", id)
	row := db.Get(context.Background(), docID)

	var record domain.Record
	if err := row.ScanDoc(&record); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find record: %w", err)
	}

	return &record, nil
}

// List returns all records, or only those of one component when componentID
// is non-empty.
func (r *recordRepository) List(componentID string) ([]*domain.Record, error) {
	db := r.client.DB(r.dbName)

	selector := map[string]interface{}{
		"componentId": map[string]interface{}{"$exists": true},
	}
	if componentID != "" {
		selector["componentId"] = componentID
	}

	rows := db.Find(context.Background(), map[string]interface{}{"selector": selector})
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*domain.Record
	for rows.Next() {
		var record domain.Record
		if err := rows.ScanDoc(&record); err != nil {
			continue
		}
		records = append(records, &record)
	}

	return records, nil
}
