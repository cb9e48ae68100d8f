package domain

import "time"

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateProjectRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=120"`
	OwnerID string `json:"ownerId"`
}
