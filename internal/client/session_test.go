package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"auren-studio/internal/domain"
	"auren-studio/pkg/etag"
)

// seedComponent creates a component through the API and returns it with its
// freshly minted token, ready to hand to NewSession.
func seedComponent(t *testing.T, env *testEnv, name string) (*domain.Component, etag.Token) {
	t.Helper()
	created, err := env.client.CreateComponent(context.Background(), env.projectID, namedDraft(name))
	if err != nil {
		t.Fatalf("seed component: %v", err)
	}
	return created, etag.FromTime(created.UpdatedAt)
}

func TestDraftSessionCreateThenEdit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session := NewDraftSession(env.client, env.projectID)
	session.Draft().Name = "billing-service"

	saved, err := session.Submit(ctx)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("create did not assign an id")
	}
	if session.State() != StateIdle {
		t.Errorf("state after create = %v, want idle", session.State())
	}
	if session.Token() != etag.FromTime(saved.UpdatedAt) {
		t.Errorf("token after create = %s, want %s", session.Token(), etag.FromTime(saved.UpdatedAt))
	}

	// The session is now bound to the created entity; the next submit must be
	// a conditional update, not another create.
	firstToken := session.Token()
	session.Draft().Description = "handles invoices"

	updated, err := session.Submit(ctx)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if updated.ID != saved.ID {
		t.Errorf("second submit created a new entity: %s vs %s", updated.ID, saved.ID)
	}
	if session.Token() == firstToken {
		t.Error("token did not advance after the second save")
	}

	writes := 0
	for _, r := range env.recorded() {
		switch r.Method {
		case http.MethodPost:
			writes++
		case http.MethodPut:
			writes++
			if r.IfMatch != string(firstToken) {
				t.Errorf("conditional update sent If-Match %q, want %q", r.IfMatch, firstToken)
			}
		}
	}
	if writes != 2 {
		t.Errorf("expected exactly 2 writes, saw %d", writes)
	}
}

func TestConcurrentSessionsConflictAndAdopt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base, t0 := seedComponent(t, env, "original")

	sessionA := NewSession(env.client, env.projectID, base, t0)
	sessionB := NewSession(env.client, env.projectID, base, t0)

	// A edits and saves first.
	sessionA.Draft().Name = "X"
	savedA, err := sessionA.Submit(ctx)
	if err != nil {
		t.Fatalf("session A submit: %v", err)
	}
	t1 := etag.FromTime(savedA.UpdatedAt)

	// B, still holding the original token, edits a different field and saves.
	sessionB.Draft().Description = "B's notes"
	_, err = sessionB.Submit(ctx)
	if !IsConflict(err) {
		t.Fatalf("session B submit: expected conflict, got %v", err)
	}

	if sessionB.State() != StateConflict {
		t.Fatalf("session B state = %v, want conflict", sessionB.State())
	}
	conflict := sessionB.Conflict()
	if conflict == nil {
		t.Fatal("session B has no conflict state")
	}
	if conflict.Latest.Name != "X" {
		t.Errorf("latest revision name = %q, want %q", conflict.Latest.Name, "X")
	}
	if conflict.LatestToken != t1 {
		t.Errorf("latest token = %s, want %s", conflict.LatestToken, t1)
	}
	if conflict.YourDraft.Description != "B's notes" {
		t.Errorf("conflicted draft lost B's edit: %q", conflict.YourDraft.Description)
	}

	// While parked in conflict, submit is refused outright.
	if _, err := sessionB.Submit(ctx); !errors.Is(err, ErrUnresolvedConflict) {
		t.Errorf("submit during conflict: got %v, want ErrUnresolvedConflict", err)
	}

	// B adopts the latest revision, re-applies the edit and saves cleanly.
	draft, err := sessionB.AdoptLatest()
	if err != nil {
		t.Fatalf("AdoptLatest: %v", err)
	}
	if draft.Name != "X" {
		t.Errorf("adopted draft name = %q, want %q", draft.Name, "X")
	}
	if sessionB.Token() != t1 {
		t.Errorf("token after adopt = %s, want %s", sessionB.Token(), t1)
	}
	if sessionB.State() != StateIdle {
		t.Errorf("state after adopt = %v, want idle", sessionB.State())
	}

	draft.Description = "B's notes"
	savedB, err := sessionB.Submit(ctx)
	if err != nil {
		t.Fatalf("session B resubmit: %v", err)
	}
	if savedB.Name != "X" || savedB.Description != "B's notes" {
		t.Errorf("final entity = (%q, %q), want (%q, %q)", savedB.Name, savedB.Description, "X", "B's notes")
	}
	if etag.FromTime(savedB.UpdatedAt) == t1 {
		t.Error("token did not advance past the adopted revision")
	}
}

func TestOverwriteSendsNoPrecondition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base, t0 := seedComponent(t, env, "original")

	winner := NewSession(env.client, env.projectID, base, t0)
	winner.Draft().Name = "winner"
	if _, err := winner.Submit(ctx); err != nil {
		t.Fatalf("winning submit: %v", err)
	}

	loser := NewSession(env.client, env.projectID, base, t0)
	loser.Draft().Name = "loser"
	if _, err := loser.Submit(ctx); !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	saved, err := loser.Overwrite(ctx)
	if err != nil {
		t.Fatalf("Overwrite: %v", err)
	}
	if saved.Name != "loser" {
		t.Errorf("overwrite result name = %q, want %q", saved.Name, "loser")
	}
	if loser.State() != StateIdle {
		t.Errorf("state after overwrite = %v, want idle", loser.State())
	}
	if loser.Token() != etag.FromTime(saved.UpdatedAt) {
		t.Error("overwrite did not install the new token")
	}

	// The forced write must carry no If-Match at all.
	recorded := env.recorded()
	last := recorded[len(recorded)-1]
	if last.Method != http.MethodPut {
		t.Fatalf("last request = %s %s, want the overwrite PUT", last.Method, last.Path)
	}
	if last.IfMatch != "" {
		t.Errorf("overwrite sent If-Match %q, want none", last.IfMatch)
	}
}

func TestValidationFailsBeforeNetwork(t *testing.T) {
	env := newTestEnv(t)

	session := NewDraftSession(env.client, env.projectID)
	// Name left empty: invalid.

	_, err := session.Submit(context.Background())
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if session.State() != StateIdle {
		t.Errorf("state = %v, want idle", session.State())
	}
	if n := env.countWrites(); n != 0 {
		t.Errorf("invalid draft reached the server: %d writes", n)
	}
}

// stubComponentJSON is what the stub servers below answer with.
func stubComponentJSON(t *testing.T, id string, updatedAt time.Time) []byte {
	t.Helper()
	body, err := json.Marshal(&domain.Component{
		ID:        id,
		ProjectID: "project-stub",
		Name:      "stub",
		Type:      domain.ComponentTypeAPI,
		Status:    domain.ComponentStatusActive,
		UpdatedAt: updatedAt,
	})
	if err != nil {
		t.Fatalf("marshal stub component: %v", err)
	}
	return body
}

func stubBase() (*domain.Component, etag.Token) {
	base := &domain.Component{
		ID:        "component-stub",
		ProjectID: "project-stub",
		Name:      "stub",
		Type:      domain.ComponentTypeAPI,
		Status:    domain.ComponentStatusActive,
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	return base, etag.FromTime(base.UpdatedAt)
}

func TestSubmitIsExclusive(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var puts int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			http.Error(w, "unexpected", http.StatusBadRequest)
			return
		}
		atomic.AddInt32(&puts, 1)
		entered <- struct{}{}
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.Write(stubComponentJSON(t, "component-stub", time.Now().UTC()))
	}))
	defer srv.Close()

	base, token := stubBase()
	session := NewSession(NewClient(srv.URL, nil), "project-stub", base, token)
	session.Draft().Description = "slow save"

	done := make(chan error, 1)
	go func() {
		_, err := session.Submit(context.Background())
		done <- err
	}()

	<-entered
	if session.State() != StateSubmitting {
		t.Errorf("state during flight = %v, want submitting", session.State())
	}
	if _, err := session.Submit(context.Background()); !errors.Is(err, ErrSaveInFlight) {
		t.Errorf("second submit: got %v, want ErrSaveInFlight", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if n := atomic.LoadInt32(&puts); n != 1 {
		t.Errorf("server saw %d PUTs, want 1", n)
	}
	if session.State() != StateIdle {
		t.Errorf("state after flight = %v, want idle", session.State())
	}
}

func TestCloseDuringFlightDiscardsResult(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-release
		w.Header().Set("Content-Type", "application/json")
		w.Write(stubComponentJSON(t, "component-stub", time.Now().UTC()))
	}))
	defer srv.Close()

	base, token := stubBase()
	session := NewSession(NewClient(srv.URL, nil), "project-stub", base, token)

	done := make(chan error, 1)
	go func() {
		_, err := session.Submit(context.Background())
		done <- err
	}()

	<-entered
	session.Close()
	close(release)

	if err := <-done; !errors.Is(err, ErrSessionClosed) {
		t.Errorf("submit after close: got %v, want ErrSessionClosed", err)
	}
	if session.State() != StateClosed {
		t.Errorf("state = %v, want closed", session.State())
	}
	if _, err := session.Submit(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("submit on closed session: got %v, want ErrSessionClosed", err)
	}
}

func TestGenericFailureKeepsDraftAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "database unavailable"}`))
	}))
	defer srv.Close()

	base, token := stubBase()
	session := NewSession(NewClient(srv.URL, nil), "project-stub", base, token)
	session.Draft().Description = "doomed edit"

	_, err := session.Submit(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if IsConflict(err) {
		t.Fatalf("a 500 must not look like a conflict: %v", err)
	}

	// Nothing is lost; the user can retry the same save as-is.
	if session.State() != StateIdle {
		t.Errorf("state = %v, want idle", session.State())
	}
	if session.Token() != token {
		t.Errorf("token changed on failure: %s -> %s", token, session.Token())
	}
	if session.Draft().Description != "doomed edit" {
		t.Errorf("draft changed on failure: %q", session.Draft().Description)
	}
}

func TestOverwriteFailureReturnsToIdle(t *testing.T) {
	var puts int32
	var forcedIfMatch atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPut:
			switch atomic.AddInt32(&puts, 1) {
			case 1:
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(`{"error": "Conflict: Component was modified by another user", "status": 409}`))
			default:
				// The forced write fails too.
				forcedIfMatch.Store(r.Header.Get("If-Match"))
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error": "database unavailable"}`))
			}
		case http.MethodGet:
			latest := time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC)
			w.Header().Set("ETag", etag.FromTime(latest).String())
			w.Write(stubComponentJSON(t, "component-stub", latest))
		}
	}))
	defer srv.Close()

	base, token := stubBase()
	session := NewSession(NewClient(srv.URL, nil), "project-stub", base, token)
	session.Draft().Description = "contested edit"

	if _, err := session.Submit(context.Background()); !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	_, err := session.Overwrite(context.Background())
	if err == nil {
		t.Fatal("expected the forced write to fail")
	}
	if IsConflict(err) {
		t.Fatalf("a failed overwrite must not look like a new conflict: %v", err)
	}

	// The conflict is consumed either way; the user re-initiates the save.
	if session.State() != StateIdle {
		t.Errorf("state = %v, want idle", session.State())
	}
	if session.Conflict() != nil {
		t.Error("conflict state must be cleared after a resolution attempt")
	}
	if session.Draft() == nil || session.Draft().Description != "contested edit" {
		t.Errorf("failed overwrite lost the draft: %+v", session.Draft())
	}
	if session.Token() != token {
		t.Errorf("token changed on failure: %s -> %s", token, session.Token())
	}
	if got, _ := forcedIfMatch.Load().(string); got != "" {
		t.Errorf("forced write sent If-Match %q, want none", got)
	}
}

func TestConflictWithUnreachableLatestFallsBackToPlainError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPut:
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error": "Conflict: Component was modified by another user", "status": 409}`))
		case http.MethodGet:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "database unavailable"}`))
		}
	}))
	defer srv.Close()

	base, token := stubBase()
	session := NewSession(NewClient(srv.URL, nil), "project-stub", base, token)
	session.Draft().Description = "contested edit"

	_, err := session.Submit(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if IsConflict(err) {
		t.Fatalf("conflict without a fetchable latest must surface as a plain failure: %v", err)
	}
	if session.State() != StateIdle {
		t.Errorf("state = %v, want idle", session.State())
	}
	if session.Conflict() != nil {
		t.Error("conflict state must not be set when the latest could not be fetched")
	}
}

func TestResolutionOutsideConflictIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base, token := seedComponent(t, env, "calm")
	session := NewSession(env.client, env.projectID, base, token)

	if _, err := session.Overwrite(ctx); !errors.Is(err, ErrNoConflict) {
		t.Errorf("Overwrite outside conflict: got %v, want ErrNoConflict", err)
	}
	if _, err := session.AdoptLatest(); !errors.Is(err, ErrNoConflict) {
		t.Errorf("AdoptLatest outside conflict: got %v, want ErrNoConflict", err)
	}
}
