package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/ide-server/internal/apperror"
	"github.com/sakif/ide-server/internal/blobstore"
	"github.com/sakif/ide-server/internal/model"
	"github.com/sakif/ide-server/internal/repository"
)

// FileService ties the files table to the blob store.
//
// ORDERING BETWEEN THE TWO STORES:
// There is no transaction spanning SQLite and the filesystem, so each
// operation is ordered to leave, at worst, an orphaned blob and never a row
// pointing at nothing:
//
//	Upload: write blob → insert row   (insert fails → remove blob, best effort)
//	Delete: delete row → remove blob  (remove fails → logged, request succeeds)
type FileService struct {
	repo     repository.FileRepository
	blobs    blobstore.Store
	mimeType string
	logger   *slog.Logger
	now      func() time.Time
}

// NewFileService creates a FileService. mimeType is recorded on every upload.
func NewFileService(repo repository.FileRepository, blobs blobstore.Store, mimeType string, logger *slog.Logger) *FileService {
	return &FileService{
		repo:     repo,
		blobs:    blobs,
		mimeType: mimeType,
		logger:   logger,
		now:      time.Now,
	}
}

// Upload stores data as a new blob and records its metadata.
// filename is metadata only; the blob is named by its generated id.
func (s *FileService) Upload(ctx context.Context, filename string, data []byte) (*model.FileRecord, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, apperror.ValidationFailed("filename", "file name is required")
	}

	id, path, err := s.blobs.Put(data)
	if err != nil {
		s.logger.Error("failed to store blob",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("storing file contents: %w", err)
	}

	file := &model.FileRecord{
		ID:        id,
		Filename:  filename,
		Filepath:  path,
		Size:      int64(len(data)),
		MimeType:  s.mimeType,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, file); err != nil {
		msg := "failed to record file"
		if errors.Is(err, repository.ErrDuplicateID) {
			msg = "file id collision"
		}
		s.logger.Error(msg,
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		if rmErr := s.blobs.Delete(path); rmErr != nil {
			s.logger.Warn("orphaned blob left behind",
				slog.String("path", path),
				slog.String("error", rmErr.Error()),
			)
		}
		return nil, fmt.Errorf("recording file: %w", err)
	}

	s.logger.Info("file uploaded",
		slog.String("id", file.ID),
		slog.String("filename", file.Filename),
		slog.Int64("size", file.Size),
	)
	return file, nil
}

// Open returns the metadata and full contents of a stored file.
//
// An unknown id is apperror.ErrNotFound. A row whose blob cannot be read is
// a storage failure, not a 404: the row says the file should exist.
func (s *FileService) Open(ctx context.Context, id string) (*model.FileRecord, []byte, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil, apperror.ValidationFailed("id", "file ID is required")
	}

	file, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.blobs.Get(file.Filepath)
	if err != nil {
		s.logger.Error("failed to read blob",
			slog.String("id", id),
			slog.String("path", file.Filepath),
			slog.String("error", err.Error()),
		)
		return nil, nil, fmt.Errorf("reading file %s: %w", id, err)
	}

	return file, data, nil
}

func (s *FileService) List(ctx context.Context) ([]model.FileRecord, error) {
	files, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list files", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return files, nil
}

// Delete removes the row and then the blob.
// Returns apperror.ErrNotFound if no such file exists.
func (s *FileService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "file ID is required")
	}

	file, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to delete file record",
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
		}
		return fmt.Errorf("deleting file: %w", err)
	}

	if err := s.blobs.Delete(file.Filepath); err != nil {
		s.logger.Warn("file record deleted but blob removal failed",
			slog.String("id", id),
			slog.String("path", file.Filepath),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("file deleted", slog.String("id", id))
	return nil
}
