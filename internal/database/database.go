package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to Postgres, applies pool limits and waits for a successful ping.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logTarget(dsn)

	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// logTarget logs host and database name only; the DSN may carry a password.
func logTarget(dsn string) {
	u, err := url.Parse(dsn)
	if err != nil {
		log.Printf("[database] configured (dsn parse error: %v)", err)
		return
	}
	log.Printf("[database] host=%s db=%s", u.Hostname(), strings.TrimPrefix(u.Path, "/"))
}
