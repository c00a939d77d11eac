// Package ingest turns untrusted tabular rows into catalog records and
// drives them through the repository layer. Coercion is applied per field so
// one malformed value degrades to a default or NULL instead of rejecting the
// whole row; the pipeline as a whole is idempotent and safe to re-run.
package ingest

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/iliyamo/movie-analytics/internal/repository"
)

// MovieRow is one coerced source row: the typed movie plus its genre names,
// split and trimmed but not yet resolved to ids.
type MovieRow struct {
	Movie  repository.Movie
	Genres []string
}

// CoerceMovie builds a typed movie from a raw field map. Every field is
// coerced independently and never errors:
//   - integer fields parse only when the raw value is all digits, otherwise
//     count/amount fields default (vote_count, budget, revenue → 0) and
//     nullable fields stay NULL (release_year, runtime)
//   - float fields parse when non-empty and numeric, otherwise popularity
//     defaults to 0 and vote_average stays NULL
//   - text fields pass through, absent keys becoming empty strings
func CoerceMovie(raw Record) MovieRow {
	m := repository.Movie{
		Title:         raw["title"],
		OriginalTitle: raw["original_title"],
		Overview:      raw["overview"],
		Language:      raw["language"],
		PosterPath:    raw["poster_path"],
		BackdropPath:  raw["backdrop_path"],
	}
	if id, ok := parseDigits(raw["id"]); ok {
		m.ID = uint64(id)
	}
	if y, ok := parseDigits(raw["release_year"]); ok {
		m.ReleaseYear = sql.NullInt64{Int64: y, Valid: true}
	}
	if v, ok := parseFloat(raw["vote_average"]); ok {
		m.VoteAverage = sql.NullFloat64{Float64: v, Valid: true}
	}
	if n, ok := parseDigits(raw["vote_count"]); ok {
		m.VoteCount = n
	}
	if rt, ok := parseDigits(raw["runtime"]); ok {
		m.Runtime = sql.NullInt64{Int64: rt, Valid: true}
	}
	if b, ok := parseDigits(raw["budget"]); ok {
		m.Budget = b
	}
	if rv, ok := parseDigits(raw["revenue"]); ok {
		m.Revenue = rv
	}
	if p, ok := parseFloat(raw["popularity"]); ok {
		m.Popularity = p
	}
	return MovieRow{Movie: m, Genres: SplitGenres(raw["genres"])}
}

// SplitGenres breaks a comma-separated genre list into trimmed names,
// dropping empties. An empty input yields nil.
func SplitGenres(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// parseDigits parses a non-empty all-digit string. Signs, decimal points and
// stray characters all fail, matching the "composed entirely of digits" rule.
func parseDigits(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
