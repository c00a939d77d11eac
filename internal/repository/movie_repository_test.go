package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovieUpsertInsertsNewID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO movies").
		WillReturnResult(sqlmock.NewResult(0, 1))

	m := Movie{ID: 10, Title: "New One"}
	outcome, err := NewMovieRepo(db).Upsert(context.Background(), &m)
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieUpsertOverwritesExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// MySQL reports two affected rows when the duplicate arm rewrote the row.
	mock.ExpectExec("INSERT INTO movies").
		WillReturnResult(sqlmock.NewResult(0, 2))

	m := Movie{ID: 10, Title: "Renamed"}
	outcome, err := NewMovieRepo(db).Upsert(context.Background(), &m)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)
}

func TestMovieUpsertIdenticalRowIsUnchanged(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO movies").
		WillReturnResult(sqlmock.NewResult(0, 0))

	m := Movie{ID: 10, Title: "Same"}
	outcome, err := NewMovieRepo(db).Upsert(context.Background(), &m)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
}

func TestMovieUpsertWithoutIDAssignsOne(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO movies").
		WillReturnResult(sqlmock.NewResult(77, 1))

	m := Movie{Title: "No ID", ReleaseYear: sql.NullInt64{Int64: 1999, Valid: true}}
	outcome, err := NewMovieRepo(db).Upsert(context.Background(), &m)
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, outcome)
	assert.Equal(t, uint64(77), m.ID, "store-assigned id is populated")
}
