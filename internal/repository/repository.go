// Package repository wraps the document store collections the bot works
// with. All lookups by business code are linear scans: codes are typed by
// staff and may repeat, so the first match in key order wins.
package repository

import "github.com/pkg/errors"

var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateID means a screenshot id is already taken.
	ErrDuplicateID = errors.New("repository: duplicate id")
)
