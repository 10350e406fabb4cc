package repository

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrStaleTask means the task no longer has the status the caller read,
	// so the guarded update matched nothing.
	ErrStaleTask = errors.New("task changed concurrently")

	// ErrActiveTaskExists means another task of the same user is in progress.
	ErrActiveTaskExists = errors.New("another task is in progress")

	ErrStaleUser = errors.New("user changed concurrently")

	ErrUsernameTaken = errors.New("username taken")
)

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
