package app

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/Jason121485/StudyMate-AI/app/config"

	_ "github.com/lib/pq"
)

// PostgresStore implements Store on top of database/sql.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// MustOpenStore connects to Postgres, applies the schema, and panics/logs
// fatally on error.
func MustOpenStore(cfg *config.Config) *PostgresStore {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB.Username,
		cfg.DB.Password,
		cfg.DB.URL,
		cfg.DB.Port,
		cfg.DB.Name,
	)

	d, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("sql.Open: %v", err)
	}

	if err := d.Ping(); err != nil {
		log.Fatalf("db.Ping: %v", err)
	}

	store := NewPostgresStore(d)
	if err := store.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	log.Println("Connected to Postgres")
	return store
}

// Migrate creates the schema and applies forward-compatible column additions.
// Every statement is idempotent so startup can run it unconditionally.
func (s *PostgresStore) Migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			name TEXT,
			subscription TEXT NOT NULL DEFAULT 'free'
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id SERIAL PRIMARY KEY,
			user_id INTEGER REFERENCES users(id),
			name TEXT,
			subject TEXT,
			deadline TEXT,
			priority TEXT,
			completed BOOLEAN NOT NULL DEFAULT FALSE
		);`,
		`CREATE TABLE IF NOT EXISTS history (
			id SERIAL PRIMARY KEY,
			user_id INTEGER REFERENCES users(id),
			type TEXT,
			query TEXT,
			response TEXT,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		// Usage metering columns arrived after the first deploys.
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS request_count INTEGER NOT NULL DEFAULT 0;`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS last_request_date TEXT;`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
