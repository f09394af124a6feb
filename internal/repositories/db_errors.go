package repositories

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// isDuplicateEntryError reports a MySQL/MariaDB unique-key violation.
// Uniqueness of offers, responses, chats and reviews is enforced by the
// database; this translation is the single source of truth for races —
// any application-side pre-check is only a latency optimization.
func isDuplicateEntryError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// isDuplicateKeyOn reports a unique-key violation on the named key.
// MySQL 1062 messages end with the violated key, e.g. "for key
// 'users.phone'".
func isDuplicateKeyOn(err error, key string) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != 1062 {
		return false
	}
	return strings.Contains(mysqlErr.Message, key)
}

// isForeignKeyConstraintError reports a MySQL/MariaDB foreign key
// failure, used to turn dangling references into clear client errors.
func isForeignKeyConstraintError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1452
}
