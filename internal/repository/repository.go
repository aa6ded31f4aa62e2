// Package repository implements MongoDB-backed persistence for users and
// grocery items.
package repository

import "errors"

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("document already exists")
)
