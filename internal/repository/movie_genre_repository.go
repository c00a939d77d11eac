package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// MovieGenreRepo manages the movie↔genre association. The pair is the whole
// record; there are no attributes to update, so linking twice is a no-op.
type MovieGenreRepo struct{ DB *sql.DB }

func NewMovieGenreRepo(db *sql.DB) *MovieGenreRepo { return &MovieGenreRepo{DB: db} }

// Link associates a movie with a genre. INSERT IGNORE makes the call
// idempotent: a duplicate pair affects zero rows instead of failing, within a
// run and across re-runs alike. Linked reports whether a new association was
// actually created. A foreign-key failure means the caller wrote the link
// before its movie or genre existed and is returned as ErrReferentialViolation
// with the offending pair.
func (r *MovieGenreRepo) Link(ctx context.Context, movieID, genreID uint64) (linked bool, err error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT IGNORE INTO movie_genres (movie_id, genre_id) VALUES (?,?)`,
		movieID, genreID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("link movie=%d genre=%d: %w", movieID, genreID, ErrReferentialViolation)
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GenreIDs returns the ids of all genres linked to a movie.
func (r *MovieGenreRepo) GenreIDs(ctx context.Context, movieID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT genre_id FROM movie_genres WHERE movie_id = ?`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
