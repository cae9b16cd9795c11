package storage

import (
	"context"

	"github.com/corehive/faceid/core"
)

// CollectionStore provides durable, tenant-partitioned persistence of
// embedding collections. Implementations must be thread-safe and support
// concurrent access.
type CollectionStore interface {
	// SaveCollection serializes and persists the full collection for an
	// organization, atomically replacing any prior version. No partial
	// overwrite is ever visible to a concurrent load.
	SaveCollection(ctx context.Context, orgID string, collection core.Collection) error

	// LoadCollection returns the organization's full collection.
	// Returns ErrNotFound when no collection has ever been saved;
	// backend failures are reported as ErrUnavailable wraps, never as
	// absence.
	LoadCollection(ctx context.Context, orgID string) (core.Collection, error)

	// DeleteCollection removes the persisted collection entirely.
	// Idempotent: deleting an absent collection is not an error.
	DeleteCollection(ctx context.Context, orgID string) error

	// ListOrganizations returns the ids of every organization with a
	// persisted collection. Used for cache warmup.
	ListOrganizations(ctx context.Context) ([]string, error)
}

// PhotoStore persists the original enrollment photo per employee.
// Photos are auxiliary: they are never consulted during matching.
type PhotoStore interface {
	// SavePhoto stores the photo bytes for an employee, replacing any
	// prior photo.
	SavePhoto(ctx context.Context, orgID, empID string, data []byte) error

	// GetPhoto returns the stored photo. Returns ErrNotFound when no
	// photo exists.
	GetPhoto(ctx context.Context, orgID, empID string) ([]byte, error)

	// DeletePhoto removes the stored photo. Idempotent.
	DeletePhoto(ctx context.Context, orgID, empID string) error

	// HasPhoto reports whether a photo exists for the employee.
	HasPhoto(ctx context.Context, orgID, empID string) (bool, error)
}

// Store combines collection and photo persistence behind one backend.
// Backend selection is a static configuration choice at startup, not a
// per-call parameter.
type Store interface {
	CollectionStore
	PhotoStore

	// Close releases the backend's resources.
	Close() error
}
