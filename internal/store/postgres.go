package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/aggregator-service/internal/model"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id              BIGSERIAL        PRIMARY KEY,
		title           VARCHAR(500)     NOT NULL,
		company         VARCHAR(200)     NOT NULL,
		location        VARCHAR(200),
		description     TEXT,
		requirements    TEXT,
		salary_min      DOUBLE PRECISION,
		salary_max      DOUBLE PRECISION,
		currency        VARCHAR(10)      NOT NULL DEFAULT 'DKK',
		job_type        VARCHAR(50),
		remote_ok       BOOLEAN          NOT NULL DEFAULT FALSE,
		url             VARCHAR(500)     NOT NULL UNIQUE,
		source          VARCHAR(100)     NOT NULL,
		posted_date     TIMESTAMPTZ,
		scraped_date    TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
		is_active       BOOLEAN          NOT NULL DEFAULT TRUE,
		ai_keywords     TEXT,
		relevance_score DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_title    ON jobs(title)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_company  ON jobs(company)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_location ON jobs(location)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_job_type ON jobs(job_type)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_source   ON jobs(source)`,
}

var postgresDialect = dialect{
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	like:        "ILIKE",
	trueLit:     "TRUE",
	noLimit:     "ALL",
	timeArg:     func(t time.Time) any { return t.UTC() },
}

// Postgres is the pgxpool-backed Store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an already-verified pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate: %w", err)
		}
	}
	return nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Postgres) Close() {
	s.pool.Close()
}

func (s *Postgres) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM jobs WHERE url = $1)`, url,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: exists by url: %w", err)
	}
	return exists, nil
}

func (s *Postgres) Insert(ctx context.Context, p *model.Posting) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO jobs (url, title, company, location, description, requirements,
		                   salary_min, salary_max, currency, job_type, remote_ok, source,
		                   posted_date, scraped_date, is_active, ai_keywords, relevance_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 RETURNING id`,
		p.URL, p.Title, p.Company, p.Location, p.Description, p.Requirements,
		p.SalaryMin, p.SalaryMax, p.Currency, p.JobType, p.RemoteOK, p.Source,
		p.PostedDate, p.ScrapedDate.UTC(), p.IsActive, p.AIKeywords, p.RelevanceScore,
	).Scan(&p.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateURL
		}
		return fmt.Errorf("postgres: insert: %w", err)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("postgres: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Postgres) List(ctx context.Context, f ListFilter) ([]model.Posting, error) {
	query, args := postgresDialect.listQuery(f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list query: %w", err)
	}
	defer rows.Close()

	postings := make([]model.Posting, 0)
	for rows.Next() {
		p, err := scanPostgresPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: list scan: %w", err)
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

func (s *Postgres) Count(ctx context.Context, f CountFilter) (int64, error) {
	query, args := postgresDialect.countQuery(f)
	var n int64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count: %w", err)
	}
	return n, nil
}

func (s *Postgres) TopValues(ctx context.Context, field Field, limit int) ([]model.NamedCount, error) {
	query, args, err := postgresDialect.topValuesQuery(field, limit)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: top %s: %w", field, err)
	}
	defer rows.Close()

	out := make([]model.NamedCount, 0)
	for rows.Next() {
		var nc model.NamedCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, fmt.Errorf("postgres: top %s scan: %w", field, err)
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}

func scanPostgresPosting(row pgx.Row) (model.Posting, error) {
	var (
		p        model.Posting
		keywords *string
	)
	err := row.Scan(
		&p.ID, &p.URL, &p.Title, &p.Company, &p.Location, &p.Description, &p.Requirements,
		&p.SalaryMin, &p.SalaryMax, &p.Currency, &p.JobType, &p.RemoteOK, &p.Source,
		&p.PostedDate, &p.ScrapedDate, &p.IsActive, &keywords, &p.RelevanceScore,
	)
	p.AIKeywords = model.Deref(keywords)
	return p, err
}
