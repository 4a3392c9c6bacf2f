package creations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres. Likes are a text[] column;
// they cross database/sql as JSON via array_to_json.
type PGRepo struct {
	DB *sql.DB
}

const creationColumns = `id, user_id, prompt, content, type, publish, array_to_json(likes)::text, created_at`

// Create inserts a new creation row.
func (r *PGRepo) Create(ctx context.Context, creation Creation) error {
	const query = `
INSERT INTO creations (id, user_id, prompt, content, type, publish, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		creation.ID,
		creation.UserID,
		creation.Prompt,
		creation.Content,
		string(creation.Type),
		creation.Publish,
		creation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert creation: %w", err)
	}
	return nil
}

// GetByID fetches a creation by ID.
func (r *PGRepo) GetByID(ctx context.Context, creationID string) (Creation, error) {
	query := `
SELECT ` + creationColumns + `
FROM creations
WHERE id = $1
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, creationID)
	creation, err := scanCreation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Creation{}, ErrNotFound
		}
		return Creation{}, err
	}
	return creation, nil
}

// ListByUser returns the user's creations, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Creation, error) {
	query := `
SELECT ` + creationColumns + `
FROM creations
WHERE user_id = $1
ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListPublished returns published image creations, newest first.
func (r *PGRepo) ListPublished(ctx context.Context) ([]Creation, error) {
	query := `
SELECT ` + creationColumns + `
FROM creations
WHERE publish = true AND type = 'image'
ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// ToggleLike flips the user's membership in the like set in one statement,
// so concurrent toggles cannot double-count. RETURNING evaluates against
// the updated row.
func (r *PGRepo) ToggleLike(ctx context.Context, creationID, userID string) (bool, error) {
	const query = `
UPDATE creations
SET likes = CASE
    WHEN $2 = ANY(likes) THEN array_remove(likes, $2)
    ELSE array_append(likes, $2)
END
WHERE id = $1
RETURNING $2 = ANY(likes)`

	var liked bool
	err := r.DB.QueryRowContext(ctx, query, creationID, userID).Scan(&liked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("toggle like: %w", err)
	}
	return liked, nil
}

// SetPublish updates the publish flag.
func (r *PGRepo) SetPublish(ctx context.Context, creationID string, publish bool) error {
	const query = `UPDATE creations SET publish = $2 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, creationID, publish)
	if err != nil {
		return fmt.Errorf("set publish: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) list(ctx context.Context, query string, args ...any) ([]Creation, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Creation
	for rows.Next() {
		creation, err := scanCreation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, creation)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCreation(row rowScanner) (Creation, error) {
	var creation Creation
	var creationType string
	var likesJSON sql.NullString
	if err := row.Scan(
		&creation.ID,
		&creation.UserID,
		&creation.Prompt,
		&creation.Content,
		&creationType,
		&creation.Publish,
		&likesJSON,
		&creation.CreatedAt,
	); err != nil {
		return Creation{}, err
	}
	creation.Type = Type(creationType)
	creation.Likes = []string{}
	if likesJSON.Valid && likesJSON.String != "" {
		if err := json.Unmarshal([]byte(likesJSON.String), &creation.Likes); err != nil {
			return Creation{}, fmt.Errorf("decode likes: %w", err)
		}
	}
	return creation, nil
}

var _ Repo = (*PGRepo)(nil)
