package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkIsIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT IGNORE INTO movie_genres").
		WithArgs(uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT IGNORE INTO movie_genres").
		WithArgs(uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewMovieGenreRepo(db)
	linked, err := repo.Link(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, linked)

	linked, err = repo.Link(context.Background(), 1, 2)
	require.NoError(t, err, "relinking an existing pair is a silent no-op")
	assert.False(t, linked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkBeforeEntitiesExist(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT IGNORE INTO movie_genres").
		WillReturnError(errors.New("Error 1452 (23000): Cannot add or update a child row: a foreign key constraint fails"))

	_, err = NewMovieGenreRepo(db).Link(context.Background(), 7, 8)
	assert.ErrorIs(t, err, ErrReferentialViolation)
}
