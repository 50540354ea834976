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

// SnippetService handles create/read/delete for code snippets.
// Snippets are immutable once created; there is no Update.
type SnippetService struct {
	repo   repository.SnippetRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewSnippetService(repo repository.SnippetRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Create validates and saves a new snippet.
//
// title and language are required. language is a free-form label
// ("go", "Python 3", "sql") and is not checked against any list.
// code must be present but may be empty. Tags are kept exactly as given, in order.
func (s *SnippetService) Create(ctx context.Context, in model.CreateSnippet) (*model.Snippet, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "snippet title is required")
	}
	language := strings.TrimSpace(in.Language)
	if language == "" {
		return nil, apperror.ValidationFailed("language", "snippet language is required")
	}
	if in.Code == nil {
		return nil, apperror.ValidationFailed("code", "snippet code is required")
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	now := s.now().UTC()
	snippet := &model.Snippet{
		ID:          xid.New().String(),
		Title:       title,
		Language:    language,
		Code:        *in.Code,
		Description: in.Description,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, snippet); err != nil {
		msg := "failed to create snippet"
		if errors.Is(err, repository.ErrDuplicateID) {
			msg = "snippet id collision"
		}
		s.logger.Error(msg,
			slog.String("id", snippet.ID),
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("title", snippet.Title),
		slog.Int("tags", len(snippet.Tags)),
	)
	return snippet, nil
}

// GetByID returns apperror.ErrNotFound if the snippet doesn't exist.
func (s *SnippetService) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *SnippetService) List(ctx context.Context) ([]model.Snippet, error) {
	snippets, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}
	return snippets, nil
}

// Delete removes a snippet by its ID. Deleting an unknown id succeeds.
func (s *SnippetService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "snippet ID is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting snippet: %w", err)
	}

	s.logger.Info("snippet deleted", slog.String("id", id))
	return nil
}
