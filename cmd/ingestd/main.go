// Command ingestd loads movie catalogs into MySQL and serves the reports API.
//
//	ingestd ingest <movies.csv>   run the idempotent ingestion over a CSV file
//	ingestd sample [flags]        generate and ingest a synthetic workload
//	ingestd serve                 start the HTTP API and the progress consumer
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-analytics/internal/analytics"
	"github.com/iliyamo/movie-analytics/internal/config"
	"github.com/iliyamo/movie-analytics/internal/database"
	"github.com/iliyamo/movie-analytics/internal/handler"
	"github.com/iliyamo/movie-analytics/internal/ingest"
	"github.com/iliyamo/movie-analytics/internal/queue"
	"github.com/iliyamo/movie-analytics/internal/repository"
	"github.com/iliyamo/movie-analytics/internal/router"
	"github.com/iliyamo/movie-analytics/internal/sample"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg := config.Load()
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate schema: %v", err)
	}

	loader := &ingest.Loader{
		Movies:      repository.NewMovieRepo(db),
		Genres:      repository.NewGenreRepo(db),
		MovieGenres: repository.NewMovieGenreRepo(db),
		Users:       repository.NewUserRepo(db),
		Ratings:     repository.NewRatingRepo(db),
		BatchSize:   cfg.BatchSize,
		Notify: func(ctx context.Context, ev queue.IngestProgressEvent) {
			_ = queue.PublishIngestProgress(ctx, ev) // broker failures never stall a run
		},
	}

	switch os.Args[1] {
	case "ingest":
		if len(os.Args) < 3 {
			usage()
		}
		runIngest(ctx, loader, os.Args[2])
	case "sample":
		runSample(ctx, cfg, loader, os.Args[2:])
	case "serve":
		runServe(cfg, db)
	default:
		usage()
	}
}

// runIngest replays a CSV source through the pipeline. Re-running over the
// same file is safe: existing movies are overwritten in place, genres and
// links are reused, nothing is duplicated.
func runIngest(ctx context.Context, loader *ingest.Loader, path string) {
	stream, err := ingest.OpenCSV(path)
	if err != nil {
		log.Fatalf("ingest: %v", err)
	}
	defer stream.Close()

	stats, err := loader.LoadMovies(ctx, stream.Name(), stream)
	if err != nil {
		log.Fatalf("ingest aborted (%s): %v", stats, err)
	}
}

// runSample generates a synthetic catalog, users, and ratings, and pushes
// them through the same upsert/resolve/link path as file ingestion.
func runSample(ctx context.Context, cfg config.Config, loader *ingest.Loader, args []string) {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	nMovies := fs.Int("movies", 100, "number of sample movies")
	nUsers := fs.Int("users", 100, "number of sample users")
	nRatings := fs.Int("ratings", 1000, "number of sample ratings")
	csvOut := fs.String("csv", "", "also write the generated movies to this CSV file")
	_ = fs.Parse(args)

	records := sample.Movies(*nMovies)
	if *csvOut != "" {
		if err := sample.WriteMoviesCSV(*csvOut, records); err != nil {
			log.Fatalf("sample: write csv: %v", err)
		}
		log.Printf("sample: wrote %d movies to %s", len(records), *csvOut)
	}

	if _, err := loader.LoadMovies(ctx, "sample-movies", ingest.NewMemoryStream(records)); err != nil {
		log.Fatalf("sample: load movies: %v", err)
	}

	users, err := sample.Users(*nUsers, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("sample: generate users: %v", err)
	}
	if _, err := loader.LoadUsers(ctx, users); err != nil {
		log.Fatalf("sample: load users: %v", err)
	}

	// Ratings may only reference ids that actually exist, so the id sets are
	// read back from the store rather than assumed from the generators.
	userIDs, err := loader.Users.ListIDs(ctx)
	if err != nil {
		log.Fatalf("sample: list user ids: %v", err)
	}
	movieIDs, err := loader.Movies.ListIDs(ctx)
	if err != nil {
		log.Fatalf("sample: list movie ids: %v", err)
	}
	ratings, err := sample.Ratings(*nRatings, userIDs, movieIDs)
	if err != nil {
		log.Fatalf("sample: generate ratings: %v", err)
	}
	if _, err := loader.LoadRatings(ctx, ratings); err != nil {
		log.Fatalf("sample: load ratings: %v", err)
	}
}

// runServe starts the HTTP API plus the background consumer that persists
// ingestion progress events to logs/ingest.log.
func runServe(cfg config.Config, db *sql.DB) {
	go func() {
		if err := queue.StartProgressConsumer(); err != nil {
			log.Printf("progress consumer stopped: %v", err)
		}
	}()

	reports := analytics.New(db, config.NewRedisClient())

	e := echo.New()
	router.RegisterRoutes(e,
		handler.NewAuthHandler(cfg, repository.NewUserRepo(db)),
		handler.NewRatingHandler(repository.NewRatingRepo(db), repository.NewMovieRepo(db)),
		handler.NewReportsHandler(reports),
		cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: ingestd <ingest csv-path | sample [flags] | serve>\n")
	os.Exit(2)
}
