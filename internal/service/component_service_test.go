package service

import (
	"errors"
	"testing"
	"time"

	"auren-studio/internal/domain"
	"auren-studio/internal/repository"
	"auren-studio/pkg/etag"
)

func newComponentServiceForTest(t *testing.T) (*ComponentService, string) {
	t.Helper()

	projectRepo := repository.NewMemoryProjectRepository()
	project := &domain.Project{
		ID:        "project-test",
		Name:      "Test Project",
		OwnerID:   "user-1",
		CreatedAt: time.Now().UTC(),
	}
	if err := projectRepo.Create(project); err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}

	service := NewComponentService(repository.NewMemoryComponentRepository(), projectRepo, nil)
	return service, project.ID
}

func testPayload(name string) *domain.ComponentPayload {
	return &domain.ComponentPayload{
		Name:   name,
		Type:   domain.ComponentTypeService,
		Status: domain.ComponentStatusActive,
	}
}

func TestCreateComponentAssignsIdentity(t *testing.T) {
	service, projectID := newComponentServiceForTest(t)

	created, err := service.Create(projectID, "user-1", testPayload("auth"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.ID == "" {
		t.Error("expected a generated id")
	}
	if created.ProjectID != projectID {
		t.Errorf("projectId = %q, want %q", created.ProjectID, projectID)
	}
	if created.CreatedBy != "user-1" {
		t.Errorf("createdBy = %q, want %q", created.CreatedBy, "user-1")
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Error("a fresh component must have createdAt == updatedAt")
	}
}

func TestCreateComponentUnknownProject(t *testing.T) {
	service, _ := newComponentServiceForTest(t)

	_, err := service.Create("project-missing", "user-1", testPayload("orphan"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestUpdateWithMatchingTokenAdvancesRevision(t *testing.T) {
	service, projectID := newComponentServiceForTest(t)

	created, err := service.Create(projectID, "user-1", testPayload("cache"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	token := etag.FromTime(created.UpdatedAt)

	payload := testPayload("cache")
	payload.Description = "hot keys"

	updated, err := service.Update(projectID, created.ID, payload, token)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Description != "hot keys" {
		t.Errorf("description = %q, want %q", updated.Description, "hot keys")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("updatedAt must strictly advance on every accepted write")
	}
	if etag.FromTime(updated.UpdatedAt) == token {
		t.Error("two revisions minted the same token")
	}
}

func TestUpdateWithStaleTokenConflicts(t *testing.T) {
	service, projectID := newComponentServiceForTest(t)

	created, err := service.Create(projectID, "user-1", testPayload("queue"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	stale := etag.FromTime(created.UpdatedAt)

	winning := testPayload("queue")
	winning.Description = "first writer"
	won, err := service.Update(projectID, created.ID, winning, stale)
	if err != nil {
		t.Fatalf("first update: %v", err)
	}

	losing := testPayload("queue")
	losing.Description = "second writer"
	_, err = service.Update(projectID, created.ID, losing, stale)

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("got %v, want ConflictError", err)
	}
	if conflict.Latest == nil {
		t.Fatal("conflict must carry the current revision")
	}
	if conflict.Latest.Description != "first writer" {
		t.Errorf("conflict latest = %q, want the winning write", conflict.Latest.Description)
	}
	if etag.FromTime(conflict.Latest.UpdatedAt) != etag.FromTime(won.UpdatedAt) {
		t.Error("conflict latest token does not match the stored revision")
	}

	// The losing write must not have touched the stored entity.
	stored, err := service.Get(projectID, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Description != "first writer" {
		t.Errorf("rejected write leaked into storage: %q", stored.Description)
	}
}

func TestUpdateWithoutTokenIsUnconditional(t *testing.T) {
	service, projectID := newComponentServiceForTest(t)

	created, err := service.Create(projectID, "user-1", testPayload("worker"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Advance the revision so any stored token check would fail.
	if _, err := service.Update(projectID, created.ID, testPayload("worker"), etag.None); err != nil {
		t.Fatalf("first unconditional update: %v", err)
	}

	forced := testPayload("worker")
	forced.Description = "forced"
	updated, err := service.Update(projectID, created.ID, forced, etag.None)
	if err != nil {
		t.Fatalf("unconditional update: %v", err)
	}
	if updated.Description != "forced" {
		t.Errorf("description = %q, want %q", updated.Description, "forced")
	}
}

func TestUpdateUnknownComponent(t *testing.T) {
	service, projectID := newComponentServiceForTest(t)

	_, err := service.Update(projectID, "component-missing", testPayload("ghost"), etag.None)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteComponent(t *testing.T) {
	service, projectID := newComponentServiceForTest(t)

	created, err := service.Create(projectID, "user-1", testPayload("temp"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := service.Delete(projectID, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := service.Get(projectID, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound after delete", err)
	}
	if err := service.Delete(projectID, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete: got %v, want ErrNotFound", err)
	}
}

func TestNextRevisionTimeIsMonotonic(t *testing.T) {
	// A previous revision in the future (coarse or skewed clock) must still
	// yield a strictly later timestamp.
	prev := time.Now().UTC().Add(time.Hour)
	next := nextRevisionTime(prev)
	if !next.After(prev) {
		t.Errorf("nextRevisionTime(%v) = %v, not strictly after", prev, next)
	}
}
