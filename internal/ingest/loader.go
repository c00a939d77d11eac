package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/iliyamo/movie-analytics/internal/queue"
	"github.com/iliyamo/movie-analytics/internal/repository"
)

// Stats accumulates per-outcome counters for one ingestion run. Skipped
// counts rows whose key already existed with nothing to change (duplicate
// sample users, identical re-ingested movies); it is reported separately and
// never folded into Inserted.
type Stats struct {
	Processed int
	Inserted  int
	Updated   int
	Skipped   int
	Failed    int
	Linked    int
}

func (s Stats) String() string {
	return fmt.Sprintf("processed=%d inserted=%d updated=%d skipped=%d failed=%d linked=%d",
		s.Processed, s.Inserted, s.Updated, s.Skipped, s.Failed, s.Linked)
}

// Loader drives records through the upsert/resolve/link path. Each logical
// write is its own atomic statement; no multi-record transaction wraps a run,
// so an interrupted or partially failed run leaves every committed record
// individually valid and the whole input safe to replay.
type Loader struct {
	Movies      *repository.MovieRepo
	Genres      *repository.GenreRepo
	MovieGenres *repository.MovieGenreRepo
	Users       *repository.UserRepo
	Ratings     *repository.RatingRepo

	// BatchSize is the progress reporting interval in records (default 100).
	BatchSize int
	// Notify, when set, receives a progress event per batch and a final one
	// with Done=true. Publish failures are the callback's problem; the
	// loader never blocks ingestion on the broker.
	Notify func(context.Context, queue.IngestProgressEvent)
}

// LoadMovies ingests movie rows from a record stream. Within one row the
// movie is upserted before any of its genre links are written, so links can
// never dangle. A row that fails on a constraint is counted, logged with its
// key, and skipped; a store-level failure aborts the run with the stats
// accumulated so far.
func (l *Loader) LoadMovies(ctx context.Context, source string, stream RecordStream) (Stats, error) {
	var stats Stats
	for {
		raw, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read %s: %w", source, err)
		}

		row := CoerceMovie(raw)
		stats.Processed++

		outcome, err := l.Movies.Upsert(ctx, &row.Movie)
		if err != nil {
			if repository.IsUnavailable(err) {
				return stats, err
			}
			stats.Failed++
			log.Printf("ingest: movie id=%d title=%q: %v", row.Movie.ID, row.Movie.Title, err)
			continue
		}
		l.count(&stats, outcome)

		if err := l.linkGenres(ctx, &stats, row); err != nil {
			if repository.IsUnavailable(err) {
				return stats, err
			}
			stats.Failed++
			log.Printf("ingest: movie id=%d genres: %v", row.Movie.ID, err)
		}

		l.report(ctx, source, stats, false)
	}
	l.report(ctx, source, stats, true)
	return stats, nil
}

// linkGenres resolves each genre name and links it to the movie. Empty names
// resolve to id 0 and are skipped without creating anything.
func (l *Loader) linkGenres(ctx context.Context, stats *Stats, row MovieRow) error {
	for _, name := range row.Genres {
		genreID, err := l.Genres.Resolve(ctx, name)
		if err != nil {
			return fmt.Errorf("resolve genre %q: %w", name, err)
		}
		if genreID == 0 {
			continue
		}
		linked, err := l.MovieGenres.Link(ctx, row.Movie.ID, genreID)
		if err != nil {
			return err
		}
		if linked {
			stats.Linked++
		}
	}
	return nil
}

// LoadUsers inserts users, skipping any whose username is already taken.
func (l *Loader) LoadUsers(ctx context.Context, users []repository.User) (Stats, error) {
	var stats Stats
	for _, u := range users {
		stats.Processed++
		created, err := l.Users.CreateIfAbsent(ctx, u.Username, u.Email, u.PasswordHash)
		if err != nil {
			if repository.IsUnavailable(err) {
				return stats, err
			}
			stats.Failed++
			log.Printf("ingest: user %q: %v", u.Username, err)
			continue
		}
		if created {
			stats.Inserted++
		} else {
			stats.Skipped++
		}
		l.report(ctx, "users", stats, false)
	}
	l.report(ctx, "users", stats, true)
	return stats, nil
}

// LoadRatings upserts ratings; a repeated (user, movie) pair overwrites the
// existing rating instead of adding a row. Ratings referencing unknown ids
// fail individually with the offending pair and do not stop the run.
func (l *Loader) LoadRatings(ctx context.Context, ratings []repository.Rating) (Stats, error) {
	var stats Stats
	for _, rt := range ratings {
		stats.Processed++
		outcome, err := l.Ratings.Upsert(ctx, rt.UserID, rt.MovieID, rt.Rating)
		if err != nil {
			if repository.IsUnavailable(err) {
				return stats, err
			}
			stats.Failed++
			log.Printf("ingest: rating user=%d movie=%d: %v", rt.UserID, rt.MovieID, err)
			continue
		}
		l.count(&stats, outcome)
		l.report(ctx, "ratings", stats, false)
	}
	l.report(ctx, "ratings", stats, true)
	return stats, nil
}

func (l *Loader) count(stats *Stats, o repository.UpsertOutcome) {
	switch o {
	case repository.OutcomeInserted:
		stats.Inserted++
	case repository.OutcomeUpdated:
		stats.Updated++
	default:
		stats.Skipped++
	}
}

// report logs progress and emits a queue event at every batch boundary, plus
// a final event when done.
func (l *Loader) report(ctx context.Context, source string, stats Stats, done bool) {
	batch := l.BatchSize
	if batch <= 0 {
		batch = 100
	}
	if !done && stats.Processed%batch != 0 {
		return
	}
	if done {
		log.Printf("ingest: %s finished: %s", source, stats)
	} else {
		log.Printf("ingest: %s progress: %s", source, stats)
	}
	if l.Notify != nil {
		l.Notify(ctx, queue.IngestProgressEvent{
			Source:    source,
			Done:      done,
			Processed: stats.Processed,
			Inserted:  stats.Inserted,
			Updated:   stats.Updated,
			Skipped:   stats.Skipped,
			Failed:    stats.Failed,
			Linked:    stats.Linked,
			At:        time.Now().UTC().Format(time.RFC3339),
		})
	}
}
