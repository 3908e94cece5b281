package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	CodeUniqueViolation  = "23505"
	CodeLockNotAvailable = "55P03"
	CodeQueryCanceled    = "57014"
)

// Code returns the SQLSTATE carried by err, or "" when err is not a server error.
func Code(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports a 23505 on the named constraint; an empty
// constraint matches any.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != CodeUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// IsLockTimeout reports whether err came from lock_timeout or statement cancellation.
func IsLockTimeout(err error) bool {
	switch Code(err) {
	case CodeLockNotAvailable, CodeQueryCanceled:
		return true
	}
	return false
}
