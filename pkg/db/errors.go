package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique-constraint violation.
// Typed driver errors (pgx, lib/pq) are matched by SQLSTATE; anything else
// by message text, which also covers the sqlite backend used in repo tests.
// A non-empty name additionally requires the constraint or table name to
// appear in the error.
func IsUniqueViolation(err error, name string) bool {
	if err == nil {
		return false
	}

	var (
		pgxErr *pgconn.PgError
		pqErr  *pq.Error
		unique bool
	)
	switch {
	case errors.As(err, &pgxErr):
		unique = pgxErr.Code == pgUniqueViolation
	case errors.As(err, &pqErr):
		unique = string(pqErr.Code) == pgUniqueViolation
	default:
		msg := err.Error()
		unique = strings.Contains(msg, "duplicate key value") ||
			strings.Contains(msg, "UNIQUE constraint failed")
	}

	if !unique {
		return false
	}
	return name == "" || strings.Contains(err.Error(), name)
}
