package domain

import "time"

// Record is a data row captured against a component's field definitions.
// Records are plain CRUD: no version tokens, no conditional updates.
type Record struct {
	ID          string                 `json:"id"`
	ComponentID string                 `json:"componentId"`
	Data        map[string]interface{} `json:"data"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

type CreateRecordRequest struct {
	ComponentID string                 `json:"componentId" validate:"required"`
	Data        map[string]interface{} `json:"data"`
}
