package store

import (
	"fmt"
	"strings"
	"time"
)

const postingColumns = `id, url, title, company, location, description, requirements,
	salary_min, salary_max, currency, job_type, remote_ok, source,
	posted_date, scraped_date, is_active, ai_keywords, relevance_score`

// dialect captures what differs between the Postgres and SQLite SQL.
type dialect struct {
	placeholder func(n int) string
	like        string
	trueLit     string
	noLimit     string
	// fold wraps both sides of a case-insensitive match; nil leaves them as-is.
	fold        func(expr string) string
	// timeArg converts a timestamp into the column's storage representation.
	timeArg     func(t time.Time) any
}

// builder accumulates a WHERE clause and its positional arguments.
type builder struct {
	d     dialect
	where []string
	args  []any
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return b.d.placeholder(len(b.args))
}

func (b *builder) cond(format string, v any) {
	b.where = append(b.where, fmt.Sprintf(format, b.arg(v)))
}

func (b *builder) clause() string {
	if len(b.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.where, " AND ")
}

func (d dialect) listQuery(f ListFilter) (string, []any) {
	b := &builder{d: d}
	b.where = append(b.where, "is_active = "+d.trueLit)
	if f.Since != nil {
		b.cond("scraped_date >= %s", d.timeArg(*f.Since))
	}
	if f.Location != "" {
		b.cond(d.containsCond("location"), likePattern(f.Location))
	}
	if f.JobType != "" {
		b.cond(d.containsCond("job_type"), likePattern(f.JobType))
	}

	q := "SELECT " + postingColumns + " FROM jobs" + b.clause() +
		" ORDER BY relevance_score DESC, scraped_date DESC, id DESC"
	if f.Limit > 0 {
		q += " LIMIT " + b.arg(f.Limit)
	} else {
		q += " LIMIT " + d.noLimit
	}
	if f.Offset > 0 {
		q += " OFFSET " + b.arg(f.Offset)
	}
	return q, b.args
}

// containsCond returns a case-insensitive LIKE condition on col, with %s in
// place of the pattern argument.
func (d dialect) containsCond(col string) string {
	lhs, rhs := col, "%s"
	if d.fold != nil {
		lhs, rhs = d.fold(lhs), d.fold(rhs)
	}
	return lhs + " " + d.like + " " + rhs + " ESCAPE '\\'"
}

func (d dialect) countQuery(f CountFilter) (string, []any) {
	b := &builder{d: d}
	if f.ActiveOnly {
		b.where = append(b.where, "is_active = "+d.trueLit)
	}
	if f.ScrapedFrom != nil {
		b.cond("scraped_date >= %s", d.timeArg(*f.ScrapedFrom))
	}
	if f.ScrapedTo != nil {
		b.cond("scraped_date < %s", d.timeArg(*f.ScrapedTo))
	}
	return "SELECT COUNT(*) FROM jobs" + b.clause(), b.args
}

func (d dialect) topValuesQuery(field Field, limit int) (string, []any, error) {
	col, err := field.column()
	if err != nil {
		return "", nil, err
	}
	b := &builder{d: d}
	q := fmt.Sprintf(`SELECT %[1]s, COUNT(*) AS n FROM jobs
		WHERE is_active = %[2]s AND %[1]s IS NOT NULL AND %[1]s <> ''
		GROUP BY %[1]s
		ORDER BY n DESC, %[1]s ASC`, col, d.trueLit)
	if limit > 0 {
		q += " LIMIT " + b.arg(limit)
	}
	return q, b.args, nil
}

// likePattern wraps s in % wildcards, escaping LIKE metacharacters.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
