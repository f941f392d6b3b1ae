package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation    = pq.ErrorCode("23505")
	mysqlDuplicateEntry  = 1062
	mysqlDuplicateKeyMsg = "duplicate entry"
)

// IsUniqueViolation reports whether err is a unique constraint violation raised by
// PostgreSQL or MySQL. Driver-typed errors are checked first; the message fallback
// covers errors that were flattened by an intermediate layer.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, mysqlDuplicateKeyMsg)
}
