package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var sqlFS embed.FS

// Up brings the points schema to the latest embedded version. A schema that
// is already current is not an error.
func Up(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	from := appliedVersion(m)
	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		log.Printf("[migrations] points schema current at version %d", from)
		return nil
	case err != nil:
		return fmt.Errorf("migrate points schema from version %d: %w", from, err)
	}
	log.Printf("[migrations] points schema migrated %d -> %d", from, appliedVersion(m))
	return nil
}

// appliedVersion returns 0 for a database that has never been migrated.
// migrate refuses to run from a dirty version, so that case is only logged.
func appliedVersion(m *migrate.Migrate) uint {
	v, dirty, err := m.Version()
	if err != nil {
		if !errors.Is(err, migrate.ErrNilVersion) {
			log.Printf("[migrations] reading schema version: %v", err)
		}
		return 0
	}
	if dirty {
		log.Printf("[migrations] schema version %d is dirty", v)
	}
	return v
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	target, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migrations: postgres driver: %w", err)
	}
	source, err := iofs.New(sqlFS, "sql")
	if err != nil {
		return nil, fmt.Errorf("migrations: embedded source: %w", err)
	}
	return migrate.NewWithInstance("iofs", source, "postgres", target)
}
