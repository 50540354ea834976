package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/sakif/ide-server/internal/apperror"
	"github.com/sakif/ide-server/internal/model"
)

func newTestSnippetService(t *testing.T) (*SnippetService, *mockSnippetRepo) {
	t.Helper()
	repo := newMockSnippetRepo()
	svc := NewSnippetService(repo, discardLogger())
	svc.now = fixedClock(t0, time.Second)
	return svc, repo
}

func TestSnippetCreate_Success(t *testing.T) {
	svc, repo := newTestSnippetService(t)

	s, err := svc.Create(context.Background(), model.CreateSnippet{
		Title:       "hello world",
		Language:    "python",
		Code:        strPtr("print('hi')"),
		Description: strPtr("a test"),
		Tags:        []string{"a,b", "c"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if s.ID == "" {
		t.Error("expected snippet to have an ID")
	}
	if s.Title != "hello world" || s.Language != "python" || s.Code != "print('hi')" {
		t.Errorf("unexpected snippet %+v", s)
	}
	if !reflect.DeepEqual(s.Tags, []string{"a,b", "c"}) {
		t.Errorf("Tags = %q, want exact input", s.Tags)
	}
	if !s.CreatedAt.Equal(s.UpdatedAt) {
		t.Errorf("CreatedAt %v != UpdatedAt %v", s.CreatedAt, s.UpdatedAt)
	}
	if _, ok := repo.snippets[s.ID]; !ok {
		t.Error("snippet was not persisted")
	}
}

func TestSnippetCreate_NilTagsBecomeEmpty(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	s, err := svc.Create(context.Background(), model.CreateSnippet{Title: "t", Language: "go", Code: strPtr("")})
	if err != nil {
		t.Fatal(err)
	}
	if s.Tags == nil || len(s.Tags) != 0 {
		t.Errorf("Tags = %#v, want empty non-nil slice", s.Tags)
	}
	if s.Code != "" {
		t.Errorf("Code = %q, want empty", s.Code)
	}
}

func TestSnippetCreate_Validation(t *testing.T) {
	tests := []struct {
		name      string
		in        model.CreateSnippet
		wantField string
	}{
		{"missing title", model.CreateSnippet{Language: "go", Code: strPtr("x")}, "title"},
		{"blank title", model.CreateSnippet{Title: "  ", Language: "go", Code: strPtr("")}, "title"},
		{"missing language", model.CreateSnippet{Title: "t", Code: strPtr("x")}, "language"},
		{"missing code", model.CreateSnippet{Title: "t", Language: "go"}, "code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestSnippetService(t)

			_, err := svc.Create(context.Background(), tt.in)
			assertValidation(t, err)
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.wantField)
			}
			if len(repo.snippets) != 0 {
				t.Error("invalid input must not reach the repository")
			}
		})
	}
}

func TestSnippetCreate_RepositoryError(t *testing.T) {
	svc, repo := newTestSnippetService(t)
	repo.createErr = errStorage

	_, err := svc.Create(context.Background(), model.CreateSnippet{Title: "t", Language: "go", Code: strPtr("")})
	if !errors.Is(err, errStorage) {
		t.Errorf("error = %v, want wrapped errStorage", err)
	}
}

func TestSnippetGetAndDelete(t *testing.T) {
	svc, _ := newTestSnippetService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx, model.CreateSnippet{Title: "t", Language: "go", Code: strPtr("")})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetByID(ctx, s.ID); err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if err := svc.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err = svc.GetByID(ctx, s.ID)
	assertNotFound(t, err)

	// Deleting again is still fine.
	if err := svc.Delete(ctx, s.ID); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}
}

func TestSnippetList(t *testing.T) {
	svc, _ := newTestSnippetService(t)
	ctx := context.Background()

	empty, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("List() on empty repo returned %d", len(empty))
	}

	if _, err := svc.Create(ctx, model.CreateSnippet{Title: "t", Language: "go", Code: strPtr("")}); err != nil {
		t.Fatal(err)
	}
	all, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("List() returned %d, want 1", len(all))
	}
}
