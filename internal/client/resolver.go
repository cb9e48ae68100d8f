package client

import (
	"context"
	"fmt"

	"auren-studio/internal/domain"
	"auren-studio/pkg/etag"
)

// ConflictState holds both sides of a detected conflict while the user
// decides. It exists only between a 409 and the resolution choice.
type ConflictState struct {
	Latest      *domain.Component
	LatestToken etag.Token
	YourDraft   *Draft
}

// Resolver mediates the decision after a conditional update came back 409.
// Neither resolution retries: a failed resolution is a plain error and the
// user starts over, which keeps resolution loops bounded.
type Resolver struct {
	client *Client
}

func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

// BeginResolution fetches the latest server revision so it can be shown next
// to the user's draft. A failed fetch is a plain error: without the latest
// entity there is no comparison to offer, so the save just failed.
func (r *Resolver) BeginResolution(ctx context.Context, projectID, componentID string, yourDraft *Draft) (*ConflictState, error) {
	latest, token, err := r.client.GetComponent(ctx, projectID, componentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest version: %w", err)
	}

	return &ConflictState{
		Latest:      latest,
		LatestToken: token,
		YourDraft:   yourDraft,
	}, nil
}

// ResolveOverwrite writes the user's draft unconditionally, with no If-Match
// at all, discarding whatever the server holds. The UI must have collected an
// explicit confirmation before calling this.
func (r *Resolver) ResolveOverwrite(ctx context.Context, projectID, componentID string, yourDraft *Draft) (*domain.Component, error) {
	return r.client.UpdateComponent(ctx, projectID, componentID, yourDraft, etag.None)
}

// ResolveAdoptLatest discards the user's draft in favor of the server's
// revision: a fresh draft seeded from the latest entity, and the token that
// makes a subsequent conditional save valid against it.
func (r *Resolver) ResolveAdoptLatest(state *ConflictState) (*Draft, etag.Token) {
	return DraftFromComponent(state.Latest), state.LatestToken
}
