package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry is the MySQL error number for a unique-key violation.
const mysqlDuplicateEntry = 1062

// isDuplicateEntry reports whether err is a unique-constraint violation.
// The store's constraint is the authoritative uniqueness signal: even when
// an existence pre-check raced and passed, the insert surfaces here.
func isDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
