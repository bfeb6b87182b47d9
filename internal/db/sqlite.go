package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"modernc.org/sqlite"
)

// FoldFunc is the SQL function registered on every SQLite connection that
// Unicode case-folds its text argument. SQLite's own LIKE and lower() fold
// ASCII only, so "KØBENHAVN" would not match "København".
const FoldFunc = "fold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(FoldFunc, 1, fold)
}

func fold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return cases.Fold().String(v), nil
	case []byte:
		return cases.Fold().String(string(v)), nil
	default:
		return v, nil
	}
}

// SQLitePath extracts a file path from a DATABASE_URL value.
//
//	sqlite:///./ai_jobs.db  -> ./ai_jobs.db
//	sqlite:////var/jobs.db  -> /var/jobs.db
//	sqlite://:memory:       -> :memory:
//	./ai_jobs.db            -> ./ai_jobs.db
func SQLitePath(databaseURL string) string {
	rest, ok := strings.CutPrefix(databaseURL, "sqlite://")
	if !ok {
		return databaseURL
	}
	return strings.TrimPrefix(rest, "/")
}

// OpenSQLite opens (creating if needed) a SQLite database and verifies it.
// The pool is limited to one connection: SQLite has a single writer and
// every :memory: connection would otherwise see its own empty database.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: empty database path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("sqlite ping failed: %w", err)
	}
	return sqlDB, nil
}
