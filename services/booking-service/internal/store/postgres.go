package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tutorme-app/tutorme/libs/db"
)

// Postgres stores documents in a single jsonb table. The parent column is
// derived from the path on write so that collection reads and equality
// queries stay index-friendly.
type Postgres struct {
	pool *db.Pool
}

func NewPostgres(pool *db.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the documents table and its indexes when missing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			path text PRIMARY KEY,
			parent text NOT NULL,
			doc jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS documents_parent_idx ON documents (parent);
	`)
	return err
}

func (s *Postgres) Get(ctx context.Context, path string) (json.RawMessage, error) {
	var doc json.RawMessage
	err := s.pool.QueryRow(ctx, `
		SELECT doc FROM documents WHERE path = $1
	`, path).Scan(&doc)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	children, err := s.children(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, ErrNotFound
	}
	return json.Marshal(children)
}

func (s *Postgres) Query(ctx context.Context, path, field, value string) (map[string]json.RawMessage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT path, doc FROM documents
		WHERE parent = $1 AND doc->>$2 = $3
	`, path, field, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectChildren(rows, path)
}

func (s *Postgres) Set(ctx context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (path, parent, doc)
		VALUES ($1, $2, $3)
		ON CONFLICT (path) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, path, parentOf(path), raw)
	return err
}

func (s *Postgres) Update(ctx context.Context, path string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE documents
		SET doc = doc || $2::jsonb, updated_at = now()
		WHERE path = $1
	`, path, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, path string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE path = $1`, path)
	return err
}

func (s *Postgres) GenerateID(_ context.Context, _ string) (string, error) {
	return uuid.NewString(), nil
}

func (s *Postgres) children(ctx context.Context, path string) (map[string]json.RawMessage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT path, doc FROM documents WHERE parent = $1
	`, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectChildren(rows, path)
}

func collectChildren(rows pgx.Rows, parent string) (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	for rows.Next() {
		var path string
		var doc json.RawMessage
		if err := rows.Scan(&path, &doc); err != nil {
			return nil, err
		}
		out[path[len(parent)+1:]] = doc
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
