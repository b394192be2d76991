package store

import (
	"context"
	"errors"

	"github.com/harborchat/harbor/internal/gate/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. The gateway's only durable state is the local
// user projection, so the surface is deliberately small.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// GetUserByID returns the local projection for a subject id.
	GetUserByID(ctx context.Context, id string) (domain.LocalUserRecord, error)

	// UpsertUser inserts the record or refreshes its mutable fields
	// (name, email, email_verified_at, avatar_url). Concurrent upserts
	// for the same id are last-writer-wins; every field is a plain
	// scalar overwrite so no read-modify-write cycle is needed.
	UpsertUser(ctx context.Context, u domain.LocalUserRecord) error

	// CountUsers is used by readiness reporting and tests.
	CountUsers(ctx context.Context) (int64, error)
}
