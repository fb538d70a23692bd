package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// pqErrorCode returns the SQLSTATE of err and its constraint, if it came from postgres.
func pqErrorCode(err error) (code string, constraint string, ok bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}
	return "", "", false
}

// queryBuilder accumulates WHERE clauses with numbered placeholders.
type queryBuilder struct {
	sb    strings.Builder
	args  []interface{}
	where int
}

func newQueryBuilder(base string) *queryBuilder {
	qb := &queryBuilder{}
	qb.sb.WriteString(base)
	return qb
}

func (qb *queryBuilder) placeholder(arg interface{}) string {
	qb.args = append(qb.args, arg)
	return "$" + strconv.Itoa(len(qb.args))
}

// and appends "cond" with every "?" replaced by the next placeholder.
func (qb *queryBuilder) and(cond string, args ...interface{}) {
	if qb.where == 0 {
		qb.sb.WriteString(" WHERE ")
	} else {
		qb.sb.WriteString(" AND ")
	}
	qb.where++
	for _, arg := range args {
		idx := strings.Index(cond, "?")
		if idx < 0 {
			break
		}
		qb.sb.WriteString(cond[:idx])
		qb.sb.WriteString(qb.placeholder(arg))
		cond = cond[idx+1:]
	}
	qb.sb.WriteString(cond)
}

func (qb *queryBuilder) page(limit, offset int) {
	if limit > 0 {
		qb.sb.WriteString(" LIMIT ")
		qb.sb.WriteString(qb.placeholder(limit))
	}
	if offset > 0 {
		qb.sb.WriteString(" OFFSET ")
		qb.sb.WriteString(qb.placeholder(offset))
	}
}

func (qb *queryBuilder) raw(s string) {
	qb.sb.WriteString(s)
}

func (qb *queryBuilder) String() string {
	return qb.sb.String()
}

func (qb *queryBuilder) Args() []interface{} {
	return qb.args
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
