// Package sample generates internally consistent random catalogs and rating
// workloads for load-testing ingestion and reporting. Generation never
// touches the store; it emits records for the ingestion path to consume, and
// it respects the same foreign-key constraints the pipeline must honor by
// only ever drawing ids the caller proved exist.
package sample

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"

	"github.com/iliyamo/movie-analytics/internal/ingest"
	"github.com/iliyamo/movie-analytics/internal/repository"
	"github.com/iliyamo/movie-analytics/internal/utils"
)

// genreVocabulary is the fixed set sample movies draw from.
var genreVocabulary = []string{
	"Action", "Comedy", "Drama", "Sci-Fi", "Horror", "Romance",
	"Adventure", "Fantasy", "Animation", "Thriller", "Mystery",
}

var languages = []string{"en", "es", "fr", "de", "ja", "ko", "zh", "it", "ru"}

// ErrNoReferents is returned when a rating workload is requested without any
// known user or movie ids to draw from.
var ErrNoReferents = errors.New("sample: no user or movie ids to reference")

// Movies generates n random movie records in the same field-map shape a CSV
// source produces, so they feed the loader through an ingest.MemoryStream.
// Ids run 1..n, years fall in [1980,2023], vote averages in [1.0,10.0], and
// each movie gets 1-3 distinct genres from the fixed vocabulary.
func Movies(n int) []ingest.Record {
	records := make([]ingest.Record, 0, n)
	for i := 1; i <= n; i++ {
		year := 1980 + rand.Intn(2023-1980+1)
		genres := pickGenres(1 + rand.Intn(3))
		records = append(records, ingest.Record{
			"id":             strconv.Itoa(i),
			"title":          fmt.Sprintf("Sample Movie %d", i),
			"original_title": fmt.Sprintf("Original Title %d", i),
			"release_year":   strconv.Itoa(year),
			"overview":       fmt.Sprintf("This is a sample overview for movie %d.", i),
			"popularity":     formatFloat(0.5 + rand.Float64()*(500.0-0.5)),
			"vote_average":   formatFloat(1.0 + rand.Float64()*9.0),
			"vote_count":     strconv.Itoa(10 + rand.Intn(9991)),
			"runtime":        strconv.Itoa(80 + rand.Intn(101)),
			"budget":         strconv.Itoa(1_000_000 + rand.Intn(199_000_001)),
			"revenue":        strconv.Itoa(rand.Intn(500_000_001)),
			"language":       languages[rand.Intn(len(languages))],
			"genres":         joinGenres(genres),
		})
	}
	return records
}

// Users generates n sample users named user1..userN. All sample users share
// one bcrypt hash computed once: hashing per user at a realistic cost would
// dominate generation time without making the workload any more real.
func Users(n, bcryptCost int) ([]repository.User, error) {
	hash, err := utils.HashPassword("sample-password", bcryptCost)
	if err != nil {
		return nil, err
	}
	users := make([]repository.User, 0, n)
	for i := 1; i <= n; i++ {
		users = append(users, repository.User{
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: hash,
		})
	}
	return users, nil
}

// Ratings generates n random ratings drawing user and movie ids only from
// the supplied sets; it cannot invent identifiers, so every generated rating
// has valid referents by construction. Values fall in [1.0,10.0], rounded to
// one decimal as a human rating would be.
func Ratings(n int, userIDs, movieIDs []uint64) ([]repository.Rating, error) {
	if len(userIDs) == 0 || len(movieIDs) == 0 {
		return nil, ErrNoReferents
	}
	ratings := make([]repository.Rating, 0, n)
	for i := 0; i < n; i++ {
		ratings = append(ratings, repository.Rating{
			UserID:  userIDs[rand.Intn(len(userIDs))],
			MovieID: movieIDs[rand.Intn(len(movieIDs))],
			Rating:  math.Round((1.0+rand.Float64()*9.0)*10) / 10,
		})
	}
	return ratings, nil
}

// WriteMoviesCSV renders generated movie records to a CSV file so the
// file-based ingestion path can be exercised end to end.
func WriteMoviesCSV(path string, records []ingest.Record) error {
	columns := []string{
		"id", "title", "original_title", "release_year", "overview",
		"popularity", "vote_average", "vote_count", "runtime",
		"budget", "revenue", "language", "genres",
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return err
	}
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = rec[col]
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// pickGenres draws k distinct names from the vocabulary.
func pickGenres(k int) []string {
	idx := rand.Perm(len(genreVocabulary))[:k]
	out := make([]string, k)
	for i, j := range idx {
		out[i] = genreVocabulary[j]
	}
	return out
}

func joinGenres(gs []string) string {
	s := ""
	for i, g := range gs {
		if i > 0 {
			s += ","
		}
		s += g
	}
	return s
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(math.Round(f*10)/10, 'f', 1, 64)
}
