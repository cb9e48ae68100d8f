package domain

import "time"

type ComponentType string

const (
	ComponentTypeService   ComponentType = "service"
	ComponentTypeDatabase  ComponentType = "database"
	ComponentTypeQueue     ComponentType = "queue"
	ComponentTypeCache     ComponentType = "cache"
	ComponentTypeStorage   ComponentType = "storage"
	ComponentTypeAPI       ComponentType = "api"
	ComponentTypeWorker    ComponentType = "worker"
	ComponentTypeScheduler ComponentType = "scheduler"
)

type ComponentStatus string

const (
	ComponentStatusActive    ComponentStatus = "active"
	ComponentStatusInactive  ComponentStatus = "inactive"
	ComponentStatusDeploying ComponentStatus = "deploying"
	ComponentStatusFailed    ComponentStatus = "failed"
	ComponentStatusPending   ComponentStatus = "pending"
)

// FieldDef is one entry of a component's ordered field definition list.
type FieldDef struct {
	Name     string `json:"name" validate:"required"`
	Label    string `json:"label,omitempty"`
	Type     string `json:"type" validate:"required"`
	Required bool   `json:"required"`
}

// Component is the versioned entity of the studio. UpdatedAt is maintained by
// the server and is the source of the entity's version token: every accepted
// write advances it, so two revisions never share a token.
type Component struct {
	ID          string                 `json:"id"`
	ProjectID   string                 `json:"projectId"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Type        ComponentType          `json:"type"`
	Status      ComponentStatus        `json:"status"`
	Config      map[string]interface{} `json:"config"`
	Metadata    map[string]interface{} `json:"metadata"`
	Fields      []FieldDef             `json:"fields"`
	CreatedBy   string                 `json:"createdBy,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// ComponentPayload is the editable field set of a component: the body of both
// POST (create) and PUT (replace) requests, and the shape a client-side draft
// edits. Identity and timestamps never appear here.
type ComponentPayload struct {
	Name        string                 `json:"name" validate:"required"`
	Description string                 `json:"description"`
	Type        ComponentType          `json:"type" validate:"required,oneof=service database queue cache storage api worker scheduler"`
	Status      ComponentStatus        `json:"status" validate:"required,oneof=active inactive deploying failed pending"`
	Config      map[string]interface{} `json:"config"`
	Metadata    map[string]interface{} `json:"metadata"`
	Fields      []FieldDef             `json:"fields" validate:"dive"`
}

// PayloadFromComponent extracts the editable fields of c.
func PayloadFromComponent(c *Component) *ComponentPayload {
	return &ComponentPayload{
		Name:        c.Name,
		Description: c.Description,
		Type:        c.Type,
		Status:      c.Status,
		Config:      c.Config,
		Metadata:    c.Metadata,
		Fields:      c.Fields,
	}
}

// Apply replaces the editable fields of c with the payload's values.
func (p *ComponentPayload) Apply(c *Component) {
	c.Name = p.Name
	c.Description = p.Description
	c.Type = p.Type
	c.Status = p.Status
	c.Config = p.Config
	c.Metadata = p.Metadata
	c.Fields = p.Fields
}
