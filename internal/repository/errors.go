// Package repository implements MySQL persistence for the platform. Errors
// reused across repositories live here so handlers and services can
// distinguish failure scenarios: ErrNotFound maps to 404 and ErrConflict
// (duplicate unique key, e.g. slug or login) maps to 409.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert or update violates a unique key,
// such as creating a second movie with an existing slug.
var ErrConflict = errors.New("conflict")

// isDuplicate reports whether err is a MySQL duplicate-entry error (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
