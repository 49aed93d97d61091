// Package memory persists memory records in SQLite. The store is
// append-and-read only: records are never updated or deleted once written.
package memory

import "context"

type Store interface {
	// Insert appends a record, assigning its ID and creation timestamp.
	Insert(ctx context.Context, m *Memory) (*Memory, error)
	// Query returns a user's records whose parsed calendar date falls inside
	// the window, most recent first.
	Query(ctx context.Context, userID int64, w Window) ([]*Memory, error)
	Close() error
}
