// Package service contains the layer between HTTP handlers and storage.
//
//	Handler (HTTP)  → parses requests, writes responses
//	Service         → validates input, assigns ids and timestamps
//	Repository      → reads/writes one table
//
// Services accept plain Go values and return domain errors from apperror;
// they never see an *http.Request or a status code. Each service depends on a
// repository interface, so tests can hand it an in-memory fake.
//
// There is no cross-resource logic: each service owns exactly one resource
// and its own capability set (snippets have no Update, only files report a
// missing row on Delete).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/ide-server/internal/apperror"
	"github.com/sakif/ide-server/internal/model"
	"github.com/sakif/ide-server/internal/repository"
)

// ProjectService handles create/read/update/delete for projects.
type ProjectService struct {
	repo   repository.ProjectRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewProjectService(repo repository.ProjectRepository, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Create validates the input, assigns an xid and equal created/updated
// timestamps, and stores the project. name must be non-blank; path must be
// present but may be "".
func (s *ProjectService) Create(ctx context.Context, in model.CreateProject) (*model.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "project name is required")
	}
	if in.Path == nil {
		return nil, apperror.ValidationFailed("path", "project path is required")
	}

	now := s.now().UTC()
	project := &model.Project{
		ID:          xid.New().String(),
		Name:        name,
		Description: in.Description,
		Path:        *in.Path,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		msg := "failed to create project"
		if errors.Is(err, repository.ErrDuplicateID) {
			msg = "project id collision"
		}
		s.logger.Error(msg,
			slog.String("id", project.ID),
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.logger.Info("project created",
		slog.String("id", project.ID),
		slog.String("name", project.Name),
	)
	return project, nil
}

// GetByID returns apperror.ErrNotFound if the project doesn't exist.
func (s *ProjectService) GetByID(ctx context.Context, id string) (*model.Project, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "project ID is required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *ProjectService) List(ctx context.Context) ([]model.Project, error) {
	projects, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list projects", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// Update applies the fields present in the input and leaves the rest alone.
//
// STRATEGY: fetch, merge, write.
// A blind UPDATE would overwrite omitted fields, so the current row is read
// first and only the non-nil inputs are merged in. updated_at is refreshed
// even when nothing else changed.
//
// The read and the write are not in one transaction. Two concurrent updates
// of the same project can interleave and the last write wins.
func (s *ProjectService) Update(ctx context.Context, id string, in model.UpdateProject) (*model.Project, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "project ID is required")
	}

	var name string
	if in.Name != nil {
		if name = strings.TrimSpace(*in.Name); name == "" {
			return nil, apperror.ValidationFailed("name", "project name cannot be empty")
		}
	}

	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		project.Name = name
	}
	if in.Description != nil {
		project.Description = in.Description
	}

	// updated_at must move forward even if the clock hasn't ticked since
	// the last write (coarse clocks, back-to-back requests).
	now := s.now().UTC()
	if !now.After(project.UpdatedAt) {
		now = project.UpdatedAt.Add(time.Nanosecond)
	}
	project.UpdatedAt = now

	if err := s.repo.Update(ctx, project); err != nil {
		s.logger.Error("failed to update project",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating project: %w", err)
	}

	s.logger.Info("project updated",
		slog.String("id", project.ID),
		slog.String("name", project.Name),
	)
	return project, nil
}

// Delete removes the project. Deleting an unknown id succeeds.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "project ID is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete project",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting project: %w", err)
	}

	s.logger.Info("project deleted", slog.String("id", id))
	return nil
}
