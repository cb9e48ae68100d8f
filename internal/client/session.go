package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"auren-studio/internal/domain"
	"auren-studio/pkg/etag"
)

type SessionState int

const (
	// StateIdle: the session holds a base entity and token (or neither, for
	// a brand-new entity) and an editable draft. Submit is allowed.
	StateIdle SessionState = iota
	// StateSubmitting: a save or overwrite is in flight. Exclusive; further
	// submits are rejected without touching the network.
	StateSubmitting
	// StateConflict: a conditional update was rejected and both sides of the
	// conflict are held for the user's decision. No timeout; the state
	// persists until Overwrite, AdoptLatest, or Close.
	StateConflict
	// StateClosed: the session is over and all local state is discarded.
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateConflict:
		return "conflict"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	ErrSaveInFlight       = errors.New("a save is already in flight")
	ErrUnresolvedConflict = errors.New("session has an unresolved conflict")
	ErrNoConflict         = errors.New("session has no conflict to resolve")
	ErrSessionClosed      = errors.New("session is closed")
)

// Session is the state machine for one edit of one component. It binds the
// loaded base entity and its version token to a draft, runs save attempts
// through the conditional-update client, and parks in StateConflict when the
// server reports the entity changed underneath it.
//
// The version token is only ever the one minted by the server response the
// base entity came from; it is never advanced before the server confirms a
// write. A stale token therefore always means genuine staleness.
type Session struct {
	mu sync.Mutex

	client   *Client
	resolver *Resolver

	projectID   string
	componentID string
	base        *domain.Component
	token       etag.Token
	draft       *Draft
	state       SessionState
	conflict    *ConflictState
}

// NewSession opens an edit of an existing entity. The caller supplies the
// entity and the token from the fetch that loaded it (GetComponent, or an
// earlier save's response).
func NewSession(c *Client, projectID string, base *domain.Component, token etag.Token) *Session {
	return &Session{
		client:      c,
		resolver:    NewResolver(c),
		projectID:   projectID,
		componentID: base.ID,
		base:        base,
		token:       token,
		draft:       DraftFromComponent(base),
		state:       StateIdle,
	}
}

// NewDraftSession opens an edit of a brand-new entity: no base, no token.
// The first successful Submit creates it and installs its identity and token.
func NewDraftSession(c *Client, projectID string) *Session {
	return &Session{
		client:    c,
		resolver:  NewResolver(c),
		projectID: projectID,
		draft:     NewDraft(),
		state:     StateIdle,
	}
}

// Draft returns the live draft for editing between submits.
func (s *Session) Draft() *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the draft, e.g. after a round trip through the YAML
// editing surface.
func (s *Session) SetDraft(d *Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the version token the next conditional save will present.
func (s *Session) Token() etag.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Conflict returns both sides of the pending conflict, or nil outside
// StateConflict.
func (s *Session) Conflict() *ConflictState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conflict
}

// Submit saves the draft. For an existing entity it issues a conditional
// update with the session's current token; for a new one it issues a create.
// An unchanged draft is submitted like any other; no-op saves are not
// special-cased.
//
// Outcomes:
//   - success: the new token is installed, the session returns to StateIdle,
//     and the saved entity is returned;
//   - conflict: the latest revision is fetched and the session parks in
//     StateConflict; the returned error satisfies IsConflict;
//   - validation failure: *ValidationError before any network call;
//   - anything else: the error is returned with draft and token untouched,
//     so the same submit can simply be retried.
func (s *Session) Submit(ctx context.Context) (*domain.Component, error) {
	s.mu.Lock()
	switch s.state {
	case StateSubmitting:
		s.mu.Unlock()
		return nil, ErrSaveInFlight
	case StateConflict:
		s.mu.Unlock()
		return nil, ErrUnresolvedConflict
	case StateClosed:
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}

	if err := s.draft.Validate(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	// Snapshot under the lock: the request must carry the token that was
	// valid when submission began, whatever happens to the session later.
	draft := s.draft.Clone()
	token := s.token
	componentID := s.componentID
	isNew := s.base == nil && componentID == ""
	s.state = StateSubmitting
	s.mu.Unlock()

	var saved *domain.Component
	var err error
	if isNew {
		saved, err = s.client.CreateComponent(ctx, s.projectID, draft)
	} else {
		saved, err = s.client.UpdateComponent(ctx, s.projectID, componentID, draft, token)
	}

	if err == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state == StateClosed {
			return nil, ErrSessionClosed
		}
		s.base = saved
		s.componentID = saved.ID
		s.token = etag.FromTime(saved.UpdatedAt)
		s.state = StateIdle
		return saved, nil
	}

	if IsConflict(err) && !isNew {
		conflict, resErr := s.resolver.BeginResolution(ctx, s.projectID, componentID, draft)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state == StateClosed {
			return nil, ErrSessionClosed
		}
		s.state = StateIdle
		if resErr != nil {
			// Conflict detected but the comparison can't be shown; surface
			// it as a plain save failure.
			return nil, resErr
		}
		s.conflict = conflict
		s.state = StateConflict
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil, ErrSessionClosed
	}
	s.state = StateIdle
	return nil, err
}

// Overwrite resolves the pending conflict by force: the draft held at
// conflict time is written with no precondition at all, last write wins.
// Call it only after the user explicitly confirmed. If the forced write
// itself fails the session returns to StateIdle with a plain error, never a
// nested conflict, and the user must re-initiate the save.
func (s *Session) Overwrite(ctx context.Context) (*domain.Component, error) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.state != StateConflict {
		s.mu.Unlock()
		return nil, ErrNoConflict
	}
	draft := s.conflict.YourDraft.Clone()
	componentID := s.componentID
	s.state = StateSubmitting
	s.mu.Unlock()

	saved, err := s.resolver.ResolveOverwrite(ctx, s.projectID, componentID, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil, ErrSessionClosed
	}
	s.conflict = nil
	s.draft = draft
	s.state = StateIdle
	if err != nil {
		return nil, err
	}

	s.base = saved
	s.token = etag.FromTime(saved.UpdatedAt)
	return saved, nil
}

// AdoptLatest resolves the pending conflict by discarding the user's draft:
// the draft becomes the latest server revision's fields and the token becomes
// the latest revision's token, so the next conditional save is conditioned on
// what the server holds now.
func (s *Session) AdoptLatest() (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil, ErrSessionClosed
	}
	if s.state != StateConflict {
		return nil, ErrNoConflict
	}

	draft, token := s.resolver.ResolveAdoptLatest(s.conflict)
	s.base = s.conflict.Latest
	s.componentID = s.conflict.Latest.ID
	s.token = token
	s.draft = draft
	s.conflict = nil
	s.state = StateIdle
	return draft, nil
}

// Close discards the session at any point. An in-flight request is not
// aborted, but its result is ignored when it lands.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
	s.draft = nil
	s.conflict = nil
}
