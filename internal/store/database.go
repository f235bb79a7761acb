package store

import (
	"database/sql"
	"fmt"
	"runtime"

	"github.com/haatos/pipeline-composer/internal/settings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// InitDatabase opens the configured database. SQLite gets a single writer
// connection and a pool of read-only connections.
func InitDatabase(s *settings.AppSettings, readonly bool) (*sql.DB, error) {
	db, err := sql.Open(s.DBDriver, s.DSN(readonly))
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", s.DBDriver, err)
	}
	if s.DBDriver != settings.DriverSQLite {
		return db, nil
	}

	if readonly {
		db.SetMaxOpenConns(max(4, runtime.NumCPU()))
	} else {
		if _, err := db.Exec("PRAGMA temp_store=memory"); err != nil {
			db.Close()
			return nil, err
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, err
		}
		db.SetMaxOpenConns(1)
	}

	return db, nil
}
