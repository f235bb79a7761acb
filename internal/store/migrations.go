package store

import (
	"database/sql"

	assets "github.com/haatos/pipeline-composer"
	"github.com/haatos/pipeline-composer/internal"
	"github.com/haatos/pipeline-composer/internal/settings"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies the embedded migrations with the goose dialect of
// driver.
func RunMigrations(db *sql.DB, driver string) error {
	goose.SetBaseFS(assets.MigrationsFS)
	dialect := "sqlite"
	if driver == settings.DriverPostgres {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.Up(db, internal.MigrationsDir)
}
