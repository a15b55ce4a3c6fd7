package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/msbatch/internal/errors"
)

// TemplateRow is one stored template. Body is the template's JSON encoding.
type TemplateRow struct {
	ID        string
	Name      string
	Body      string
	CreatedAt int64
	UpdatedAt int64
}

// UpsertTemplate stores body under name, keeping the row ID and created_at of
// an existing row.
func UpsertTemplate(ctx context.Context, db *sql.DB, name, body string) error {
	now := time.Now()
	id, err := ulid.New(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO templates (id, name, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, id.String(), name, body, now.Unix(), now.Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetTemplate retrieves a template row by exact name.
func GetTemplate(ctx context.Context, db *sql.DB, name string) (*TemplateRow, error) {
	query := `
		SELECT id, name, body, created_at, updated_at
		FROM templates
		WHERE name = ?
	`
	var r TemplateRow
	err := db.QueryRowContext(ctx, query, name).Scan(&r.ID, &r.Name, &r.Body, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(name)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &r, nil
}

// ListTemplates returns every template row ordered by name.
func ListTemplates(ctx context.Context, db *sql.DB) ([]TemplateRow, error) {
	query := `
		SELECT id, name, body, created_at, updated_at
		FROM templates
		ORDER BY name
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []TemplateRow
	for rows.Next() {
		var r TemplateRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Body, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// DeleteTemplate removes the row called name and reports whether one existed.
func DeleteTemplate(ctx context.Context, db *sql.DB, name string) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM templates WHERE name = ?`, name)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return rowsAffected > 0, nil
}
