package repository

import (
	"context"
	"database/sql"
	"strings"
)

// Genre mirrors the 'genres' table. Name is the natural key.
type Genre struct {
	ID   uint64
	Name string
}

type GenreRepo struct{ DB *sql.DB }

func NewGenreRepo(db *sql.DB) *GenreRepo { return &GenreRepo{DB: db} }

// Resolve maps a genre name to its id, creating the genre on first sight.
// The lookup and the create are a single statement: on a duplicate name the
// ON DUPLICATE KEY UPDATE arm rewrites id to itself through LAST_INSERT_ID,
// which makes the existing id visible to LastInsertId without a second
// round-trip and without a check-then-insert race. Names are trimmed before
// resolution; an empty name resolves to id 0 with no error and no row.
func (r *GenreRepo) Resolve(ctx context.Context, name string) (uint64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, nil
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO genres (name) VALUES (?)
		 ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`, name)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByName fetches a genre by its exact name.
func (r *GenreRepo) GetByName(ctx context.Context, name string) (Genre, error) {
	var g Genre
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name FROM genres WHERE name = ? LIMIT 1`,
		strings.TrimSpace(name)).Scan(&g.ID, &g.Name)
	return g, err
}

// List returns all genres ordered by name.
func (r *GenreRepo) List(ctx context.Context) ([]Genre, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name FROM genres ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Genre
	for rows.Next() {
		var g Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
