package repository

import (
	"context"
	"database/sql"
	"time"
)

// Movie mirrors the 'movies' table. Nullable columns use sql.Null* so the
// coercion layer can record "absent" without inventing sentinel values.
type Movie struct {
	ID            uint64
	Title         string
	OriginalTitle string
	ReleaseYear   sql.NullInt64
	Overview      string
	Popularity    float64
	VoteAverage   sql.NullFloat64
	VoteCount     int64
	Runtime       sql.NullInt64
	Budget        int64
	Revenue       int64
	Language      string
	PosterPath    string
	BackdropPath  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type MovieRepo struct{ DB *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{DB: db} }

const movieUpsertStmt = `INSERT INTO movies
	(id, title, original_title, release_year, overview, popularity,
	 vote_average, vote_count, runtime, budget, revenue, language,
	 poster_path, backdrop_path)
	VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	ON DUPLICATE KEY UPDATE
	 title = VALUES(title),
	 original_title = VALUES(original_title),
	 release_year = VALUES(release_year),
	 overview = VALUES(overview),
	 popularity = VALUES(popularity),
	 vote_average = VALUES(vote_average),
	 vote_count = VALUES(vote_count),
	 runtime = VALUES(runtime),
	 budget = VALUES(budget),
	 revenue = VALUES(revenue),
	 language = VALUES(language),
	 poster_path = VALUES(poster_path),
	 backdrop_path = VALUES(backdrop_path),
	 updated_at = CURRENT_TIMESTAMP`

// Upsert writes a movie keyed by its explicit id: insert when the id is new,
// full attribute overwrite plus updated_at stamp when it already exists. The
// whole operation is one statement, so concurrent loaders hitting the same id
// end with exactly one row. When m.ID is zero the source row carried no id
// and the movie is inserted with a store-assigned one (m.ID is populated).
func (r *MovieRepo) Upsert(ctx context.Context, m *Movie) (UpsertOutcome, error) {
	if m.ID == 0 {
		res, err := r.DB.ExecContext(ctx,
			`INSERT INTO movies
			 (title, original_title, release_year, overview, popularity,
			  vote_average, vote_count, runtime, budget, revenue, language,
			  poster_path, backdrop_path)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			m.Title, m.OriginalTitle, m.ReleaseYear, m.Overview, m.Popularity,
			m.VoteAverage, m.VoteCount, m.Runtime, m.Budget, m.Revenue,
			m.Language, m.PosterPath, m.BackdropPath)
		if err != nil {
			return OutcomeUnchanged, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return OutcomeUnchanged, err
		}
		m.ID = uint64(id)
		return OutcomeInserted, nil
	}

	res, err := r.DB.ExecContext(ctx, movieUpsertStmt,
		m.ID, m.Title, m.OriginalTitle, m.ReleaseYear, m.Overview, m.Popularity,
		m.VoteAverage, m.VoteCount, m.Runtime, m.Budget, m.Revenue,
		m.Language, m.PosterPath, m.BackdropPath)
	if err != nil {
		return OutcomeUnchanged, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return OutcomeUnchanged, err
	}
	return outcomeFromRows(n), nil
}

// GetByID fetches a movie by id.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (Movie, error) {
	var m Movie
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, title, original_title, release_year, overview, popularity,
		        vote_average, vote_count, runtime, budget, revenue, language,
		        poster_path, backdrop_path, created_at, updated_at
		 FROM movies WHERE id = ? LIMIT 1`, id).
		Scan(&m.ID, &m.Title, &m.OriginalTitle, &m.ReleaseYear, &m.Overview,
			&m.Popularity, &m.VoteAverage, &m.VoteCount, &m.Runtime,
			&m.Budget, &m.Revenue, &m.Language, &m.PosterPath,
			&m.BackdropPath, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// ListIDs returns every movie id. The synthetic rating generator uses this to
// constrain the ids it draws so generated ratings never dangle.
func (r *MovieRepo) ListIDs(ctx context.Context) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM movies`)
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
