package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/ide-server/internal/apperror"
	"github.com/sakif/ide-server/internal/model"
	"github.com/sakif/ide-server/internal/repository"
)

// compile-time check that *FileDB implements repository.FileRepository
var _ repository.FileRepository = (*FileDB)(nil)

// FileDB is the files metadata table. The blobs themselves live in the
// blobstore package. Obtain one with DB.Files().
type FileDB struct {
	conn *sql.DB
}

const fileColumns = `id, filename, filepath, size, mime_type, project_id, created_at`

func (f *FileDB) Create(ctx context.Context, file *model.FileRecord) error {
	_, err := f.conn.ExecContext(ctx,
		`INSERT INTO files (`+fileColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		file.ID,
		file.Filename,
		file.Filepath,
		file.Size,
		file.MimeType,
		nullString(file.ProjectID),
		formatTime(file.CreatedAt),
	)
	if err != nil {
		return insertError("file record", file.ID, err)
	}
	return nil
}

// GetByID returns apperror.ErrNotFound when no row matches.
func (f *FileDB) GetByID(ctx context.Context, id string) (*model.FileRecord, error) {
	row := f.conn.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = ?`, id)

	file, err := scanFile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("file", id)
		}
		return nil, fmt.Errorf("sqlite: getting file %s: %w", id, err)
	}
	return file, nil
}

// List returns all file records, newest created_at first. Files are never
// updated, so creation time is the recency column here.
func (f *FileDB) List(ctx context.Context) ([]model.FileRecord, error) {
	rows, err := f.conn.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM files
		 ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing files: %w", err)
	}
	defer rows.Close()

	files := make([]model.FileRecord, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning file row: %w", err)
		}
		files = append(files, *file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating files: %w", err)
	}

	return files, nil
}

// Delete removes the row. Unlike projects and snippets, a missing row is
// reported as apperror.ErrNotFound.
func (f *FileDB) Delete(ctx context.Context, id string) error {
	result, err := f.conn.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting file %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("file", id)
	}
	return nil
}

func scanFile(row rowScanner) (*model.FileRecord, error) {
	var (
		file      model.FileRecord
		projectID sql.NullString
		createdAt string
	)
	if err := row.Scan(
		&file.ID,
		&file.Filename,
		&file.Filepath,
		&file.Size,
		&file.MimeType,
		&projectID,
		&createdAt,
	); err != nil {
		return nil, err
	}

	var err error
	if file.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	file.ProjectID = stringPtr(projectID)
	return &file, nil
}
