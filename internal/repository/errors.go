// Package repository contains the raw SQL data access layer.  This file
// defines sentinel errors shared across repositories so that higher layers
// can distinguish failure scenarios without inspecting driver error strings.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when a user insert violates the unique email key.
var ErrEmailExists = errors.New("email already exists")

// ErrStationNameExists is returned when a charging station insert or update
// violates the unique station_name key.
var ErrStationNameExists = errors.New("station name already exists")

// ErrNotFound is returned when a point lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrStationInUse is returned when a charging session cannot start because the
// station already hosts an active session.
var ErrStationInUse = errors.New("station already in use")

// isDuplicateKey reports whether err is a MySQL duplicate-entry violation
// (error 1062).  The driver does not expose a typed error for this, so the
// code is matched in the message.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
