package database

import (
	"context"
	"database/sql"
)

// Schema statements for the movie catalog. Uniqueness lives in the schema
// rather than in application code: genre names, usernames, and the
// (movie, genre) / (user, movie) pairs are enforced by unique keys, which is
// what makes the single-statement upserts in the repository layer safe under
// concurrent writers.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title          VARCHAR(512)    NOT NULL DEFAULT '',
		original_title VARCHAR(512)    NOT NULL DEFAULT '',
		release_year   INT             NULL,
		overview       TEXT,
		popularity     DOUBLE          NOT NULL DEFAULT 0,
		vote_average   DOUBLE          NULL,
		vote_count     INT UNSIGNED    NOT NULL DEFAULT 0,
		runtime        INT             NULL,
		budget         BIGINT UNSIGNED NOT NULL DEFAULT 0,
		revenue        BIGINT UNSIGNED NOT NULL DEFAULT 0,
		language       VARCHAR(16)     NOT NULL DEFAULT '',
		poster_path    VARCHAR(255)    NOT NULL DEFAULT '',
		backdrop_path  VARCHAR(255)    NOT NULL DEFAULT '',
		created_at     TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_movies_release_year (release_year)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS genres (
		id   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(128)    NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_genres_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS movie_genres (
		movie_id BIGINT UNSIGNED NOT NULL,
		genre_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (movie_id, genre_id),
		CONSTRAINT fk_mg_movie FOREIGN KEY (movie_id) REFERENCES movies (id),
		CONSTRAINT fk_mg_genre FOREIGN KEY (genre_id) REFERENCES genres (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		username      VARCHAR(64)     NOT NULL,
		email         VARCHAR(255)    NOT NULL DEFAULT '',
		password_hash VARCHAR(255)    NOT NULL,
		created_at    TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS user_ratings (
		id       BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id  BIGINT UNSIGNED NOT NULL,
		movie_id BIGINT UNSIGNED NOT NULL,
		rating   DOUBLE          NOT NULL,
		rated_at TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_ratings_user_movie (user_id, movie_id),
		CONSTRAINT fk_ur_user  FOREIGN KEY (user_id)  REFERENCES users (id),
		CONSTRAINT fk_ur_movie FOREIGN KEY (movie_id) REFERENCES movies (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the five catalog tables when they do not exist yet. Each
// statement runs on its own so a partially created schema from an interrupted
// run is completed rather than rolled back.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
