package store

import (
	stderrors "errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
)

// isNoRows reports whether err is pgx's empty-result sentinel.
func isNoRows(err error) bool {
	return stderrors.Is(err, pgx.ErrNoRows)
}

// isUniqueViolation reports whether err is a unique-constraint violation,
// used to detect insert races resolved by retrying as an update.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}
