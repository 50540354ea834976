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

// compile-time check that *ProjectDB implements repository.ProjectRepository
var _ repository.ProjectRepository = (*ProjectDB)(nil)

// ProjectDB is the projects table. Obtain one with DB.Projects().
type ProjectDB struct {
	conn *sql.DB
}

const projectColumns = `id, name, description, path, created_at, updated_at`

// Create inserts a project. The caller has already set ID and both
// timestamps; nothing is generated here.
func (p *ProjectDB) Create(ctx context.Context, project *model.Project) error {
	_, err := p.conn.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.Name,
		nullString(project.Description),
		project.Path,
		formatTime(project.CreatedAt),
		formatTime(project.UpdatedAt),
	)
	if err != nil {
		return insertError("project", project.ID, err)
	}
	return nil
}

// GetByID returns apperror.ErrNotFound when no row matches.
func (p *ProjectDB) GetByID(ctx context.Context, id string) (*model.Project, error) {
	row := p.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)

	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("sqlite: getting project %s: %w", id, err)
	}
	return project, nil
}

// List returns all projects, newest updated_at first. Rows with identical
// timestamps come back in reverse insertion order.
func (p *ProjectDB) List(ctx context.Context) ([]model.Project, error) {
	rows, err := p.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects
		 ORDER BY updated_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}

	return projects, nil
}

// Update writes the mutable columns (name, description, updated_at).
// id, path and created_at are never touched.
func (p *ProjectDB) Update(ctx context.Context, project *model.Project) error {
	result, err := p.conn.ExecContext(ctx,
		`UPDATE projects
		 SET name = ?, description = ?, updated_at = ?
		 WHERE id = ?`,
		project.Name,
		nullString(project.Description),
		formatTime(project.UpdatedAt),
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", project.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("project", project.ID)
	}
	return nil
}

// Delete removes the project. Unknown ids are not an error.
func (p *ProjectDB) Delete(ctx context.Context, id string) error {
	if _, err := p.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting project %s: %w", id, err)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*model.Project, error) {
	var (
		project              model.Project
		description          sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&project.ID,
		&project.Name,
		&description,
		&project.Path,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if project.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if project.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	project.Description = stringPtr(description)
	return &project, nil
}
