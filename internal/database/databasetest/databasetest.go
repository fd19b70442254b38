// Package databasetest opens throwaway databases for tests.
package databasetest

import (
	"path/filepath"
	"testing"

	"github.com/emilythestrangee/yatube/internal/config"
	"github.com/emilythestrangee/yatube/internal/database"
)

// CreateTempDB opens a migrated SQLite database that lives in the test's temp
// dir. The database is closed when the test finishes and the file is
// removed together with the temp dir.
func CreateTempDB(t testing.TB) database.Service {
	t.Helper()
	cfg := config.Default()
	cfg.DebugMode = false
	cfg.DBDriver = config.DriverSQLite
	cfg.SQLiteFile = filepath.Join(t.TempDir(), "yatube.db")

	svc, err := database.New(cfg)
	if err != nil {
		t.Fatalf("cannot create temp DB: %v", err)
	}
	t.Cleanup(func() {
		_ = svc.Close()
	})
	return svc
}
