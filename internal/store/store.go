// Package store defines the persistence contract for bookmarks.
package store

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/bookmarkd/internal/domain"
)

// Bookmarks is the persistence boundary for bookmark records.
//
// Absence is not an error: Get returns (nil, nil) for an unknown id, and
// Update/Delete report zero affected rows. Every I/O failure is returned
// as a *Error.
type Bookmarks interface {
	// List returns all records ordered by id. Never nil.
	List(ctx context.Context) ([]domain.Bookmark, error)

	// Get returns the record with the given id, or nil.
	Get(ctx context.Context, id int64) (*domain.Bookmark, error)

	// Insert persists b and returns it with its assigned id.
	Insert(ctx context.Context, b domain.NewBookmark) (domain.Bookmark, error)

	// Update applies the supplied fields of p to the record with the given id.
	Update(ctx context.Context, id int64, p domain.Patch) (int64, error)

	// Delete hard-deletes the record with the given id.
	Delete(ctx context.Context, id int64) (int64, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// Ping checks the backing connection.
	Ping(ctx context.Context) error
}

// Error is an opaque persistence failure.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns nil for a nil err, otherwise a *Error for op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
