// Package storage defines the sentinel errors shared by every persistence
// implementation so that engine code can classify failures without
// depending on a specific backend.
package storage

import "errors"

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a transaction lost a race with a concurrent
// modification. The operation is safe to retry.
var ErrConflict = errors.New("concurrent modification conflict")

// ErrInsufficient is returned when a guarded decrement would drive a balance negative.
var ErrInsufficient = errors.New("insufficient balance")
