package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Rating mirrors the 'user_ratings' table, keyed by the (user, movie) pair.
type Rating struct {
	ID      uint64
	UserID  uint64
	MovieID uint64
	Rating  float64
	RatedAt time.Time
}

type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

// Upsert records a rating for a (user, movie) pair. A first rating inserts a
// row; a re-rating overwrites the value and the rated_at stamp on the
// existing row, never adding a second one. Both users and movies must already
// exist — a foreign-key failure surfaces as ErrReferentialViolation naming
// the pair, since it means the caller broke the entity-before-fact ordering.
func (r *RatingRepo) Upsert(ctx context.Context, userID, movieID uint64, rating float64) (UpsertOutcome, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO user_ratings (user_id, movie_id, rating) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE rating = VALUES(rating), rated_at = CURRENT_TIMESTAMP`,
		userID, movieID, rating)
	if err != nil {
		if isForeignKeyViolation(err) {
			return OutcomeUnchanged, fmt.Errorf("rate user=%d movie=%d: %w", userID, movieID, ErrReferentialViolation)
		}
		return OutcomeUnchanged, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return OutcomeUnchanged, err
	}
	return outcomeFromRows(n), nil
}

// GetByPair fetches the rating a user gave a movie.
func (r *RatingRepo) GetByPair(ctx context.Context, userID, movieID uint64) (Rating, error) {
	var rt Rating
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, movie_id, rating, rated_at
		 FROM user_ratings WHERE user_id = ? AND movie_id = ? LIMIT 1`,
		userID, movieID).
		Scan(&rt.ID, &rt.UserID, &rt.MovieID, &rt.Rating, &rt.RatedAt)
	return rt, err
}

// CountForMovie returns how many ratings a movie has received.
func (r *RatingRepo) CountForMovie(ctx context.Context, movieID uint64) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_ratings WHERE movie_id = ?`, movieID).Scan(&n)
	return n, err
}
