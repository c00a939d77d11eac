package ingest

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-analytics/internal/queue"
	"github.com/iliyamo/movie-analytics/internal/repository"
)

func newTestLoader(t *testing.T) (*Loader, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &Loader{
		Movies:      repository.NewMovieRepo(db),
		Genres:      repository.NewGenreRepo(db),
		MovieGenres: repository.NewMovieGenreRepo(db),
		Users:       repository.NewUserRepo(db),
		Ratings:     repository.NewRatingRepo(db),
	}, mock
}

// threeRowCatalog is the canonical small input: two shared genres across the
// first two rows and none on the third.
func threeRowCatalog() []Record {
	return []Record{
		{"id": "1", "title": "First", "genres": "Action,Comedy"},
		{"id": "2", "title": "Second", "genres": "Comedy"},
		{"id": "3", "title": "Third", "genres": ""},
	}
}

func expectFirstRun(mock sqlmock.Sqlmock) {
	// Row 1: movie, then Action and Comedy created and linked.
	mock.ExpectExec("INSERT INTO movies").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO genres").WithArgs("Action").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT IGNORE INTO movie_genres").WithArgs(uint64(1), uint64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO genres").WithArgs("Comedy").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("INSERT IGNORE INTO movie_genres").WithArgs(uint64(1), uint64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	// Row 2: Comedy already exists, resolves to the same id.
	mock.ExpectExec("INSERT INTO movies").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO genres").WithArgs("Comedy").WillReturnResult(sqlmock.NewResult(2, 0))
	mock.ExpectExec("INSERT IGNORE INTO movie_genres").WithArgs(uint64(2), uint64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	// Row 3: no genres at all.
	mock.ExpectExec("INSERT INTO movies").WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestLoadMoviesEndToEnd(t *testing.T) {
	loader, mock := newTestLoader(t)
	expectFirstRun(mock)

	stats, err := loader.LoadMovies(context.Background(), "test", NewMemoryStream(threeRowCatalog()))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 3, stats.Inserted)
	assert.Equal(t, 3, stats.Linked, "two links for row one, one for row two, none for row three")
	assert.Zero(t, stats.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadMoviesRerunIsIdempotent(t *testing.T) {
	loader, mock := newTestLoader(t)

	stream := NewMemoryStream(threeRowCatalog())
	expectFirstRun(mock)

	// Second run: every movie rewrites to identical values (zero affected
	// rows), genres resolve to their existing ids, links are no-ops.
	mock.ExpectExec("INSERT INTO movies").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO genres").WithArgs("Action").WillReturnResult(sqlmock.NewResult(1, 0))
	mock.ExpectExec("INSERT IGNORE INTO movie_genres").WithArgs(uint64(1), uint64(1)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO genres").WithArgs("Comedy").WillReturnResult(sqlmock.NewResult(2, 0))
	mock.ExpectExec("INSERT IGNORE INTO movie_genres").WithArgs(uint64(1), uint64(2)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO movies").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO genres").WithArgs("Comedy").WillReturnResult(sqlmock.NewResult(2, 0))
	mock.ExpectExec("INSERT IGNORE INTO movie_genres").WithArgs(uint64(2), uint64(2)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO movies").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := loader.LoadMovies(context.Background(), "test", stream)
	require.NoError(t, err)

	stream.Rewind()
	stats, err := loader.LoadMovies(context.Background(), "test", stream)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Processed)
	assert.Zero(t, stats.Inserted, "replaying the same input creates nothing new")
	assert.Zero(t, stats.Updated)
	assert.Equal(t, 3, stats.Skipped)
	assert.Zero(t, stats.Linked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadMoviesFailedRecordDoesNotStopRun(t *testing.T) {
	loader, mock := newTestLoader(t)

	mock.ExpectExec("INSERT INTO movies").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO genres").WithArgs("Action").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT IGNORE INTO movie_genres").
		WillReturnError(errors.New("Error 1452 (23000): Cannot add or update a child row"))
	mock.ExpectExec("INSERT INTO movies").WillReturnResult(sqlmock.NewResult(0, 1))

	stats, err := loader.LoadMovies(context.Background(), "test", NewMemoryStream([]Record{
		{"id": "1", "title": "Broken", "genres": "Action"},
		{"id": "2", "title": "Fine"},
	}))
	require.NoError(t, err, "a constraint failure on one record does not abort the run")

	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 2, stats.Inserted)
	assert.Equal(t, 1, stats.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadMoviesAbortsWhenStoreIsGone(t *testing.T) {
	loader, mock := newTestLoader(t)

	mock.ExpectExec("INSERT INTO movies").
		WillReturnError(&net.OpError{Op: "read", Err: errors.New("connection reset by peer")})

	stats, err := loader.LoadMovies(context.Background(), "test", NewMemoryStream([]Record{
		{"id": "1", "title": "First"},
		{"id": "2", "title": "Never reached"},
	}))
	require.Error(t, err)
	assert.Equal(t, 1, stats.Processed, "the run stops at the first store-level failure")
}

func TestLoadUsersCountsSkipsSeparately(t *testing.T) {
	loader, mock := newTestLoader(t)

	mock.ExpectExec("INSERT IGNORE INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT IGNORE INTO users").WillReturnResult(sqlmock.NewResult(0, 0))

	stats, err := loader.LoadUsers(context.Background(), []repository.User{
		{Username: "user1", Email: "user1@example.com", PasswordHash: "h"},
		{Username: "user1", Email: "user1@example.com", PasswordHash: "h"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.Skipped, "a skipped duplicate never counts as inserted")
}

func TestLoadRatingsOverwrite(t *testing.T) {
	loader, mock := newTestLoader(t)

	mock.ExpectExec("INSERT INTO user_ratings").
		WithArgs(uint64(1), uint64(5), 7.5).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO user_ratings").
		WithArgs(uint64(1), uint64(5), 9.0).
		WillReturnResult(sqlmock.NewResult(1, 2))

	stats, err := loader.LoadRatings(context.Background(), []repository.Rating{
		{UserID: 1, MovieID: 5, Rating: 7.5},
		{UserID: 1, MovieID: 5, Rating: 9.0},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.Updated, "the second submission overwrote the first")
}

func TestLoaderEmitsProgressEvents(t *testing.T) {
	loader, mock := newTestLoader(t)
	loader.BatchSize = 1

	var events []queue.IngestProgressEvent
	loader.Notify = func(_ context.Context, ev queue.IngestProgressEvent) {
		events = append(events, ev)
	}

	mock.ExpectExec("INSERT INTO movies").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO movies").WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := loader.LoadMovies(context.Background(), "events", NewMemoryStream([]Record{
		{"id": "1", "title": "A"},
		{"id": "2", "title": "B"},
	}))
	require.NoError(t, err)

	require.Len(t, events, 3, "one event per batch plus the final one")
	assert.False(t, events[0].Done)
	assert.Equal(t, 1, events[0].Processed)
	last := events[len(events)-1]
	assert.True(t, last.Done)
	assert.Equal(t, 2, last.Processed)
	assert.Equal(t, "events", last.Source)
}
