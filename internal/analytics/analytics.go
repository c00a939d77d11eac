// Package analytics issues read-only aggregate queries against the catalog.
// It is a consumer of the store the ingestion pipeline produces: it never
// calls ingestion code and never writes, so reports can run concurrently
// with a load without affecting its invariants. Results are cached in Redis
// when a client is available.
package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Service bundles the store handle and the optional result cache.
type Service struct {
	DB    *sql.DB
	Cache *redis.Client // nil disables caching
	TTL   time.Duration // cache entry lifetime, default 5 minutes
}

func New(db *sql.DB, cache *redis.Client) *Service {
	return &Service{DB: db, Cache: cache, TTL: 5 * time.Minute}
}

// RankedMovie is one row of the top-rated report. WeightedRating is the
// store-derived Bayesian estimate: a movie's own average shrunk toward the
// catalog mean in proportion to how few votes it has.
type RankedMovie struct {
	ID             uint64  `json:"id"`
	Title          string  `json:"title"`
	ReleaseYear    *int64  `json:"release_year"`
	VoteAverage    float64 `json:"vote_average"`
	VoteCount      int64   `json:"vote_count"`
	Popularity     float64 `json:"popularity"`
	WeightedRating float64 `json:"weighted_rating"`
}

// GenreYearStats aggregates one genre's movies for one release year.
type GenreYearStats struct {
	Genre         string  `json:"genre"`
	Year          int64   `json:"year"`
	MovieCount    int64   `json:"movie_count"`
	AvgRating     float64 `json:"avg_rating"`
	AvgPopularity float64 `json:"avg_popularity"`
}

// YearStats aggregates all movies released in one year.
type YearStats struct {
	Year          int64   `json:"year"`
	MovieCount    int64   `json:"movie_count"`
	AvgRating     float64 `json:"avg_rating"`
	AvgPopularity float64 `json:"avg_popularity"`
}

// ActiveUser is one row of the most-active-raters report.
type ActiveUser struct {
	UserID      uint64  `json:"user_id"`
	Username    string  `json:"username"`
	RatingCount int64   `json:"rating_count"`
	AvgRating   float64 `json:"avg_rating"`
}

// RatingBin is one bucket of the user rating histogram.
type RatingBin struct {
	Bin   int64 `json:"rating_bin"`
	Count int64 `json:"count"`
}

// TopRatedMovies returns the highest weighted-rated movies with more than
// minVotes votes.
func (s *Service) TopRatedMovies(ctx context.Context, minVotes, limit int) ([]RankedMovie, error) {
	key := fmt.Sprintf("reports:top:%d:%d", minVotes, limit)
	var out []RankedMovie
	if s.fromCache(ctx, key, &out) {
		return out, nil
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, title, release_year, vote_average, vote_count, popularity,
		        (vote_count / (vote_count + ?)) * vote_average
		        + (? / (vote_count + ?)) * (SELECT AVG(vote_average) FROM movies WHERE vote_average IS NOT NULL)
		        AS weighted_rating
		 FROM movies
		 WHERE vote_count > ? AND vote_average IS NOT NULL
		 ORDER BY weighted_rating DESC
		 LIMIT ?`,
		minVotes, minVotes, minVotes, minVotes, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m RankedMovie
		var year sql.NullInt64
		if err := rows.Scan(&m.ID, &m.Title, &year, &m.VoteAverage,
			&m.VoteCount, &m.Popularity, &m.WeightedRating); err != nil {
			return nil, err
		}
		if year.Valid {
			m.ReleaseYear = &year.Int64
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.toCache(ctx, key, out)
	return out, nil
}

// GenrePopularity breaks movie counts, ratings and popularity down by genre
// and release year, for movies released in or after sinceYear.
func (s *Service) GenrePopularity(ctx context.Context, sinceYear int) ([]GenreYearStats, error) {
	key := fmt.Sprintf("reports:genres:%d", sinceYear)
	var out []GenreYearStats
	if s.fromCache(ctx, key, &out) {
		return out, nil
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT g.name, m.release_year, COUNT(*),
		        AVG(m.vote_average), AVG(m.popularity)
		 FROM genres g
		 JOIN movie_genres mg ON g.id = mg.genre_id
		 JOIN movies m ON mg.movie_id = m.id
		 WHERE m.release_year IS NOT NULL AND m.release_year >= ?
		 GROUP BY g.name, m.release_year
		 ORDER BY g.name, m.release_year`, sinceYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var g GenreYearStats
		var avgRating, avgPop sql.NullFloat64
		if err := rows.Scan(&g.Genre, &g.Year, &g.MovieCount, &avgRating, &avgPop); err != nil {
			return nil, err
		}
		g.AvgRating = avgRating.Float64
		g.AvgPopularity = avgPop.Float64
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.toCache(ctx, key, out)
	return out, nil
}

// ReleaseTrends aggregates movie counts and average ratings per release year
// from sinceYear onward.
func (s *Service) ReleaseTrends(ctx context.Context, sinceYear int) ([]YearStats, error) {
	key := fmt.Sprintf("reports:trends:%d", sinceYear)
	var out []YearStats
	if s.fromCache(ctx, key, &out) {
		return out, nil
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT release_year, COUNT(*), AVG(vote_average), AVG(popularity)
		 FROM movies
		 WHERE release_year IS NOT NULL AND release_year >= ?
		 GROUP BY release_year
		 ORDER BY release_year`, sinceYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var y YearStats
		var avgRating, avgPop sql.NullFloat64
		if err := rows.Scan(&y.Year, &y.MovieCount, &avgRating, &avgPop); err != nil {
			return nil, err
		}
		y.AvgRating = avgRating.Float64
		y.AvgPopularity = avgPop.Float64
		out = append(out, y)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.toCache(ctx, key, out)
	return out, nil
}

// MostActiveUsers returns the users who submitted the most ratings.
func (s *Service) MostActiveUsers(ctx context.Context, limit int) ([]ActiveUser, error) {
	key := fmt.Sprintf("reports:active-users:%d", limit)
	var out []ActiveUser
	if s.fromCache(ctx, key, &out) {
		return out, nil
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT u.id, u.username, COUNT(*) AS rating_count, AVG(r.rating)
		 FROM users u
		 JOIN user_ratings r ON u.id = r.user_id
		 GROUP BY u.id, u.username
		 ORDER BY rating_count DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a ActiveUser
		if err := rows.Scan(&a.UserID, &a.Username, &a.RatingCount, &a.AvgRating); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.toCache(ctx, key, out)
	return out, nil
}

// RatingDistribution buckets user ratings into whole-number bins.
func (s *Service) RatingDistribution(ctx context.Context) ([]RatingBin, error) {
	const key = "reports:rating-dist"
	var out []RatingBin
	if s.fromCache(ctx, key, &out) {
		return out, nil
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT ROUND(rating, 0) AS rating_bin, COUNT(*)
		 FROM user_ratings
		 GROUP BY rating_bin
		 ORDER BY rating_bin`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var b RatingBin
		if err := rows.Scan(&b.Bin, &b.Count); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.toCache(ctx, key, out)
	return out, nil
}

// fromCache loads a cached report into dest; any cache failure just means a
// cache miss.
func (s *Service) fromCache(ctx context.Context, key string, dest interface{}) bool {
	if s.Cache == nil {
		return false
	}
	raw, err := s.Cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// toCache stores a report result; failures are ignored, the store remains
// the source of truth.
func (s *Service) toCache(ctx context.Context, key string, v interface{}) {
	if s.Cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	_ = s.Cache.Set(ctx, key, raw, ttl).Err()
}
