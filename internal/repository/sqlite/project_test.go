package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/ide-server/internal/apperror"
	"github.com/sakif/ide-server/internal/model"
	"github.com/sakif/ide-server/internal/repository"
)

func newProject(id, name string, at time.Time) *model.Project {
	return &model.Project{
		ID:        id,
		Name:      name,
		Path:      "/tmp/" + name,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestProjectCreate_RoundTrip(t *testing.T) {
	repo := newTestDB(t).Projects()
	ctx := context.Background()

	original := newProject("p1", "demo", baseTime)
	original.Description = strPtr("first project")

	if err := repo.Create(ctx, original); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if found.Name != "demo" || found.Path != "/tmp/demo" {
		t.Errorf("got name=%q path=%q, want demo /tmp/demo", found.Name, found.Path)
	}
	if found.Description == nil || *found.Description != "first project" {
		t.Errorf("Description = %v, want %q", found.Description, "first project")
	}
	if !found.CreatedAt.Equal(baseTime) || !found.UpdatedAt.Equal(baseTime) {
		t.Errorf("timestamps = %v / %v, want %v", found.CreatedAt, found.UpdatedAt, baseTime)
	}
}

func TestProjectCreate_NilDescription(t *testing.T) {
	repo := newTestDB(t).Projects()
	ctx := context.Background()

	if err := repo.Create(ctx, newProject("p1", "demo", baseTime)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Description != nil {
		t.Errorf("Description = %q, want nil", *found.Description)
	}
}

func TestProjectCreate_DuplicateID(t *testing.T) {
	repo := newTestDB(t).Projects()
	ctx := context.Background()

	if err := repo.Create(ctx, newProject("dup", "a", baseTime)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	err := repo.Create(ctx, newProject("dup", "b", baseTime))
	if !errors.Is(err, repository.ErrDuplicateID) {
		t.Fatalf("Create() error = %v, want ErrDuplicateID", err)
	}
	if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrValidation) {
		t.Errorf("duplicate id should be a storage error, got %v", err)
	}
}

func TestProjectGetByID_NotFound(t *testing.T) {
	repo := newTestDB(t).Projects()

	_, err := repo.GetByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestProjectList_Empty(t *testing.T) {
	repo := newTestDB(t).Projects()

	projects, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if projects == nil || len(projects) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", projects)
	}
}

func TestProjectList_OrderedByUpdatedAtDesc(t *testing.T) {
	repo := newTestDB(t).Projects()
	ctx := context.Background()

	// Inserted out of order on purpose.
	for _, p := range []*model.Project{
		newProject("middle", "middle", baseTime.Add(time.Minute)),
		newProject("oldest", "oldest", baseTime),
		newProject("newest", "newest", baseTime.Add(2*time.Minute)),
	} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create(%s) error = %v", p.ID, err)
		}
	}

	// Touching the oldest one moves it to the front.
	oldest, err := repo.GetByID(ctx, "oldest")
	if err != nil {
		t.Fatal(err)
	}
	oldest.UpdatedAt = baseTime.Add(time.Hour)
	if err := repo.Update(ctx, oldest); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	projects, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{"oldest", "newest", "middle"}
	if len(projects) != len(want) {
		t.Fatalf("List() returned %d projects, want %d", len(projects), len(want))
	}
	for i, id := range want {
		if projects[i].ID != id {
			t.Errorf("projects[%d].ID = %q, want %q", i, projects[i].ID, id)
		}
	}
}

func TestProjectUpdate(t *testing.T) {
	repo := newTestDB(t).Projects()
	ctx := context.Background()

	if err := repo.Create(ctx, newProject("p1", "before", baseTime)); err != nil {
		t.Fatal(err)
	}

	updated := newProject("p1", "after", baseTime)
	updated.Path = "/should/not/change"
	updated.Description = strPtr("now described")
	updated.UpdatedAt = baseTime.Add(time.Second)

	if err := repo.Update(ctx, updated); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := repo.GetByID(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if found.Name != "after" {
		t.Errorf("Name = %q, want %q", found.Name, "after")
	}
	if found.Path != "/tmp/before" {
		t.Errorf("Path = %q, Update must not touch path", found.Path)
	}
	if found.Description == nil || *found.Description != "now described" {
		t.Errorf("Description = %v, want %q", found.Description, "now described")
	}
	if !found.UpdatedAt.After(found.CreatedAt) {
		t.Errorf("UpdatedAt %v should be after CreatedAt %v", found.UpdatedAt, found.CreatedAt)
	}
}

func TestProjectUpdate_NotFound(t *testing.T) {
	repo := newTestDB(t).Projects()

	err := repo.Update(context.Background(), newProject("ghost", "x", baseTime))
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestProjectDelete(t *testing.T) {
	repo := newTestDB(t).Projects()
	ctx := context.Background()

	if err := repo.Create(ctx, newProject("p1", "bye", baseTime)); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := repo.GetByID(ctx, "p1")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete: error = %v, want ErrNotFound", err)
	}
}

func TestProjectDelete_UnknownIDIsNoOp(t *testing.T) {
	repo := newTestDB(t).Projects()

	if err := repo.Delete(context.Background(), "nonexistent-id"); err != nil {
		t.Errorf("Delete() of unknown id error = %v, want nil", err)
	}
}
