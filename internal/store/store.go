// Package store persists postings in a single jobs table.
//
// Two backends share one contract: Postgres (pgxpool) for deployments and
// SQLite (modernc.org/sqlite) for local runs and tests.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobmate/aggregator-service/internal/db"
	"jobmate/aggregator-service/internal/model"
)

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrDuplicateURL is returned by Insert when the url is already stored.
var ErrDuplicateURL = errors.New("job url already exists")

// ─── Contract ────────────────────────────────────────────────────────────────

// Field names a groupable column.
type Field string

const (
	FieldCompany  Field = "company"
	FieldLocation Field = "location"
	FieldJobType  Field = "job_type"
	FieldSource   Field = "source"
)

func (f Field) column() (string, error) {
	switch f {
	case FieldCompany, FieldLocation, FieldJobType, FieldSource:
		return string(f), nil
	}
	return "", fmt.Errorf("unknown field %q", string(f))
}

// ListFilter selects active postings. Zero values disable a filter.
type ListFilter struct {
	Limit    int
	Offset   int
	Location string // case-insensitive substring
	JobType  string // case-insensitive substring
	Since    *time.Time
}

// CountFilter selects rows for Count. ScrapedTo is exclusive.
type CountFilter struct {
	ActiveOnly  bool
	ScrapedFrom *time.Time
	ScrapedTo   *time.Time
}

// Store is the persistence contract used by ingestion and queries.
type Store interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	ExistsByURL(ctx context.Context, url string) (bool, error)
	// Insert stores p and sets p.ID. Returns ErrDuplicateURL on conflict.
	Insert(ctx context.Context, p *model.Posting) error
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f ListFilter) ([]model.Posting, error)
	Count(ctx context.Context, f CountFilter) (int64, error)
	// TopValues groups active rows by field, skipping NULL and empty values,
	// ordered by count desc then value asc. limit <= 0 returns every group.
	TopValues(ctx context.Context, field Field, limit int) ([]model.NamedCount, error)
	Close()
}

// Open picks a backend from the URL scheme: postgres:// and postgresql://
// use Postgres, sqlite:// or a bare file path use SQLite. The schema is
// migrated before returning.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		pool, perr := db.NewPostgresPool(ctx, databaseURL)
		if perr != nil {
			return nil, perr
		}
		s = NewPostgres(pool)
	default:
		sqlDB, serr := db.OpenSQLite(ctx, db.SQLitePath(databaseURL))
		if serr != nil {
			return nil, serr
		}
		s = NewSQLite(sqlDB)
	}

	if err = s.Migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}
