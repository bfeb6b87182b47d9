package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"jobmate/aggregator-service/internal/db"
	"jobmate/aggregator-service/internal/model"
)

// Timestamps are stored as unix milliseconds (UTC) so range filters compare
// numerically.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		title           TEXT    NOT NULL,
		company         TEXT    NOT NULL,
		location        TEXT,
		description     TEXT,
		requirements    TEXT,
		salary_min      REAL,
		salary_max      REAL,
		currency        TEXT    NOT NULL DEFAULT 'DKK',
		job_type        TEXT,
		remote_ok       INTEGER NOT NULL DEFAULT 0,
		url             TEXT    NOT NULL UNIQUE,
		source          TEXT    NOT NULL,
		posted_date     INTEGER,
		scraped_date    INTEGER NOT NULL,
		is_active       INTEGER NOT NULL DEFAULT 1,
		ai_keywords     TEXT,
		relevance_score REAL    NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_title    ON jobs(title)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_company  ON jobs(company)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_location ON jobs(location)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_job_type ON jobs(job_type)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_source   ON jobs(source)`,
}

var sqliteDialect = dialect{
	placeholder: func(int) string { return "?" },
	like:        "LIKE",
	trueLit:     "1",
	noLimit:     "-1",
	fold:        func(expr string) string { return db.FoldFunc + "(" + expr + ")" },
	timeArg:     func(t time.Time) any { return t.UnixMilli() },
}

// SQLite is the database/sql Store backed by modernc.org/sqlite. Text
// filters go through db.FoldFunc, since SQLite's LIKE folds ASCII case only.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an open handle from db.OpenSQLite.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Migrate(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() {
	s.db.Close()
}

func (s *SQLite) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM jobs WHERE url = ?)`, url,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: exists by url: %w", err)
	}
	return exists, nil
}

func (s *SQLite) Insert(ctx context.Context, p *model.Posting) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (url, title, company, location, description, requirements,
		                   salary_min, salary_max, currency, job_type, remote_ok, source,
		                   posted_date, scraped_date, is_active, ai_keywords, relevance_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.URL, p.Title, p.Company, strArg(p.Location), strArg(p.Description), strArg(p.Requirements),
		floatArg(p.SalaryMin), floatArg(p.SalaryMax), p.Currency, strArg(p.JobType), boolArg(p.RemoteOK), p.Source,
		millisArg(p.PostedDate), p.ScrapedDate.UnixMilli(), boolArg(p.IsActive), p.AIKeywords, p.RelevanceScore,
	)
	if err != nil {
		var sqlErr *sqlite.Error
		if errors.As(err, &sqlErr) && sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return ErrDuplicateURL
		}
		return fmt.Errorf("sqlite: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: last insert id: %w", err)
	}
	p.ID = id
	return nil
}

func (s *SQLite) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *SQLite) List(ctx context.Context, f ListFilter) ([]model.Posting, error) {
	query, args := sqliteDialect.listQuery(f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list query: %w", err)
	}
	defer rows.Close()

	postings := make([]model.Posting, 0)
	for rows.Next() {
		p, err := scanSQLitePosting(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: list scan: %w", err)
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

func (s *SQLite) Count(ctx context.Context, f CountFilter) (int64, error) {
	query, args := sqliteDialect.countQuery(f)
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count: %w", err)
	}
	return n, nil
}

func (s *SQLite) TopValues(ctx context.Context, field Field, limit int) ([]model.NamedCount, error) {
	query, args, err := sqliteDialect.topValuesQuery(field, limit)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: top %s: %w", field, err)
	}
	defer rows.Close()

	out := make([]model.NamedCount, 0)
	for rows.Next() {
		var nc model.NamedCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, fmt.Errorf("sqlite: top %s scan: %w", field, err)
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}

func scanSQLitePosting(rows *sql.Rows) (model.Posting, error) {
	var (
		p           model.Posting
		location    sql.NullString
		description sql.NullString
		reqs        sql.NullString
		jobType     sql.NullString
		keywords    sql.NullString
		salaryMin   sql.NullFloat64
		salaryMax   sql.NullFloat64
		posted      sql.NullInt64
		scraped     int64
	)
	err := rows.Scan(
		&p.ID, &p.URL, &p.Title, &p.Company, &location, &description, &reqs,
		&salaryMin, &salaryMax, &p.Currency, &jobType, &p.RemoteOK, &p.Source,
		&posted, &scraped, &p.IsActive, &keywords, &p.RelevanceScore,
	)
	if err != nil {
		return p, err
	}
	p.Location = nullString(location)
	p.Description = nullString(description)
	p.Requirements = nullString(reqs)
	p.JobType = nullString(jobType)
	p.AIKeywords = keywords.String
	p.SalaryMin = nullFloat(salaryMin)
	p.SalaryMax = nullFloat(salaryMax)
	if posted.Valid {
		t := time.UnixMilli(posted.Int64).UTC()
		p.PostedDate = &t
	}
	p.ScrapedDate = time.UnixMilli(scraped).UTC()
	return p, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

// The *Arg helpers turn optional fields into plain driver values.

func strArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func floatArg(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func millisArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func boolArg(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
