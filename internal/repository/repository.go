// Package repository declares the storage interfaces the service layer
// depends on. The sqlite sub-package is the production implementation.
//
// Each resource has its own interface because the operation sets differ:
// snippets cannot be updated, and only file deletes report a missing row.
package repository

import (
	"context"
	"errors"

	"github.com/sakif/ide-server/internal/model"
)

// ErrDuplicateID is returned by Create when a row with the same primary key
// already exists. Ids are generated server-side, so this means a generator
// collision, not bad input.
var ErrDuplicateID = errors.New("duplicate id")

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	// List returns every project, most recently updated first.
	List(ctx context.Context) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
}

type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	// List returns every snippet, most recently updated first.
	List(ctx context.Context) ([]model.Snippet, error)
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
}

type FileRepository interface {
	Create(ctx context.Context, file *model.FileRecord) error
	GetByID(ctx context.Context, id string) (*model.FileRecord, error)
	// List returns every file record, most recently created first.
	List(ctx context.Context) ([]model.FileRecord, error)
	// Delete returns apperror.ErrNotFound for unknown ids.
	Delete(ctx context.Context, id string) error
}
