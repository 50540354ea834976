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

// compile-time check that *SnippetDB implements repository.SnippetRepository
var _ repository.SnippetRepository = (*SnippetDB)(nil)

// SnippetDB is the snippets table plus its snippet_tags child table.
// Obtain one with DB.Snippets().
type SnippetDB struct {
	conn *sql.DB
}

const snippetColumns = `id, title, language, code, description, created_at, updated_at`

// Create inserts the snippet row and its tags in one transaction, so a
// snippet is never visible without its tags.
//
// TRANSACTIONS:
// BeginTx hands out one connection for the lifetime of the transaction.
// Every statement inside must go through tx, not p.conn; otherwise it would
// run on a different connection, outside the transaction. The deferred
// Rollback is a no-op once Commit has succeeded.
func (p *SnippetDB) Create(ctx context.Context, snippet *model.Snippet) error {
	tx, err := p.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning snippet insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snippets (`+snippetColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.Title,
		snippet.Language,
		snippet.Code,
		nullString(snippet.Description),
		formatTime(snippet.CreatedAt),
		formatTime(snippet.UpdatedAt),
	)
	if err != nil {
		return insertError("snippet", snippet.ID, err)
	}

	for i, tag := range snippet.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO snippet_tags (snippet_id, position, tag) VALUES (?, ?, ?)`,
			snippet.ID, i, tag,
		); err != nil {
			return fmt.Errorf("sqlite: adding tag %d to snippet %s: %w", i, snippet.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing snippet %s: %w", snippet.ID, err)
	}
	return nil
}

// GetByID returns apperror.ErrNotFound when no row matches.
func (p *SnippetDB) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	row := p.conn.QueryRowContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE id = ?`, id)

	snippet, err := scanSnippet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}

	tags, err := p.tagsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	snippet.Tags = tags[id]
	if snippet.Tags == nil {
		snippet.Tags = []string{}
	}

	return snippet, nil
}

// List returns all snippets, newest updated_at first.
//
// Tags are fetched with a second query after the first result set is closed,
// rather than one query per snippet.
func (p *SnippetDB) List(ctx context.Context) ([]model.Snippet, error) {
	rows, err := p.conn.QueryContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets
		 ORDER BY updated_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}

	snippets := make([]model.Snippet, 0)
	for rows.Next() {
		snippet, err := scanSnippet(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, *snippet)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}
	rows.Close()

	if len(snippets) == 0 {
		return snippets, nil
	}

	tags, err := p.tagsFor(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range snippets {
		snippets[i].Tags = tags[snippets[i].ID]
		if snippets[i].Tags == nil {
			snippets[i].Tags = []string{}
		}
	}

	return snippets, nil
}

// Delete removes the snippet and its tags. Unknown ids are not an error.
func (p *SnippetDB) Delete(ctx context.Context, id string) error {
	tx, err := p.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning snippet delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snippet_tags WHERE snippet_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting tags of snippet %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete of snippet %s: %w", id, err)
	}
	return nil
}

// tagsFor loads tags keyed by snippet id, each list in position order.
// An empty id loads the tags of every snippet.
func (p *SnippetDB) tagsFor(ctx context.Context, id string) (map[string][]string, error) {
	query := `SELECT snippet_id, tag FROM snippet_tags ORDER BY snippet_id, position`
	var args []any
	if id != "" {
		query = `SELECT snippet_id, tag FROM snippet_tags WHERE snippet_id = ? ORDER BY position`
		args = append(args, id)
	}

	rows, err := p.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading snippet tags: %w", err)
	}
	defer rows.Close()

	tags := make(map[string][]string)
	for rows.Next() {
		var snippetID, tag string
		if err := rows.Scan(&snippetID, &tag); err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet tag: %w", err)
		}
		tags[snippetID] = append(tags[snippetID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippet tags: %w", err)
	}

	return tags, nil
}

func scanSnippet(row rowScanner) (*model.Snippet, error) {
	var (
		snippet              model.Snippet
		description          sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&snippet.ID,
		&snippet.Title,
		&snippet.Language,
		&snippet.Code,
		&description,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if snippet.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if snippet.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	snippet.Description = stringPtr(description)
	return &snippet, nil
}
