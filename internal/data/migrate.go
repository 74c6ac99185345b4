package data

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"tagcurator/internal/conf"
)

//go:embed migrations/*.sql
var migrations embed.FS

// RunMigrate brings the curated output tables up to date.
func RunMigrate(c *conf.Data, db *sql.DB) error {
	// Create an instance of the Postgres driver
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}
	// Migrations ship inside the binary
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	// Create the migrate instance
	m, err := migrate.NewWithInstance(
		"iofs",
		src,
		c.Database.Driver,
		driver,
	)
	if err != nil {
		return err
	}
	// Run the migrations
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
