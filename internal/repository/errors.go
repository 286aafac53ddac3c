package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsDuplicate - signals that the error is a duplicate key violation.
func IsDuplicate(err error) bool {
	return hasCode(err, "23505")
}

// IsForeignKeyViolation - signals that a referenced row is missing or still referenced.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, "23503")
}

// IsCheckViolation - signals that a table CHECK constraint rejected the row.
func IsCheckViolation(err error) bool {
	return hasCode(err, "23514")
}

// IsNotFound - signals that the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func hasCode(err error, code string) bool {
	var pgerr *pgconn.PgError
	return errors.As(err, &pgerr) && pgerr.Code == code
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching q as a literal substring.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
