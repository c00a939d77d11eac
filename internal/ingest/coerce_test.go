package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceMovieMalformedFieldsDegrade(t *testing.T) {
	row := CoerceMovie(Record{
		"id":           "42",
		"title":        "The Gala",
		"release_year": "abcd",
		"vote_average": "",
		"vote_count":   "not-a-number",
		"runtime":      "12.5",
		"budget":       "-100",
		"revenue":      "",
		"popularity":   "x",
	})

	m := row.Movie
	assert.Equal(t, uint64(42), m.ID)
	assert.Equal(t, "The Gala", m.Title)
	assert.False(t, m.ReleaseYear.Valid, "unparseable year stays NULL")
	assert.False(t, m.VoteAverage.Valid, "empty vote_average stays NULL")
	assert.False(t, m.Runtime.Valid, "decimal runtime is not all digits")
	assert.Zero(t, m.VoteCount)
	assert.Zero(t, m.Budget, "signed value fails the digits-only rule")
	assert.Zero(t, m.Revenue)
	assert.Zero(t, m.Popularity)
}

func TestCoerceMovieValidFields(t *testing.T) {
	row := CoerceMovie(Record{
		"id":             "7",
		"title":          "Seven",
		"original_title": "Se7en",
		"release_year":   "1995",
		"overview":       "A film.",
		"popularity":     "80.5",
		"vote_average":   "8.6",
		"vote_count":     "12000",
		"runtime":        "127",
		"budget":         "33000000",
		"revenue":        "327000000",
		"language":       "en",
		"genres":         "Thriller,Crime",
	})

	m := row.Movie
	assert.Equal(t, uint64(7), m.ID)
	assert.Equal(t, int64(1995), m.ReleaseYear.Int64)
	assert.True(t, m.ReleaseYear.Valid)
	assert.Equal(t, 8.6, m.VoteAverage.Float64)
	assert.Equal(t, int64(12000), m.VoteCount)
	assert.Equal(t, int64(127), m.Runtime.Int64)
	assert.Equal(t, int64(33000000), m.Budget)
	assert.Equal(t, 80.5, m.Popularity)
	assert.Equal(t, []string{"Thriller", "Crime"}, row.Genres)
}

func TestCoerceMovieAbsentFields(t *testing.T) {
	row := CoerceMovie(Record{"title": "Bare"})

	m := row.Movie
	assert.Zero(t, m.ID)
	assert.False(t, m.ReleaseYear.Valid)
	assert.False(t, m.VoteAverage.Valid)
	assert.False(t, m.Runtime.Valid)
	assert.Zero(t, m.VoteCount)
	assert.Nil(t, row.Genres)
}

func TestSplitGenres(t *testing.T) {
	assert.Equal(t, []string{"Action", "Comedy"}, SplitGenres("Action, Comedy"))
	assert.Equal(t, []string{"Drama"}, SplitGenres(" Drama ,, "))
	assert.Nil(t, SplitGenres(""))
	assert.Nil(t, SplitGenres("   "))
}
