package ports

import (
	"context"

	"homeport-backend/domain/core/entities"
	"homeport-backend/domain/core/valueobjects"
)

// RecordRepository defines the interface for record persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type RecordRepository interface {
	// Create persists a freshly submitted record
	Create(ctx context.Context, record *entities.Record) error

	// FetchByID retrieves a record by its ID. Fails with a NotFound error
	// when the id does not exist.
	FetchByID(ctx context.Context, id valueobjects.RecordID) (*entities.Record, error)

	// FetchLatestFor retrieves the most recently created record already
	// owned by the principal. Returns (nil, nil) when the principal owns
	// nothing yet; that is a normal outcome, not an error.
	FetchLatestFor(ctx context.Context, ownerID string) (*entities.Record, error)

	// BindOwner claims the record for the principal and returns the updated
	// record. The check-and-set is a single atomic operation at the storage
	// layer: it succeeds only if the stored record has no owner or already
	// has this owner (idempotent re-bind), and fails with a Conflict error
	// otherwise. Racing callers therefore converge without client locks.
	BindOwner(ctx context.Context, id valueobjects.RecordID, ownerID string) (*entities.Record, error)

	// Update persists the record's current field set and version
	Update(ctx context.Context, record *entities.Record) error

	// MarkCompleted flips the completion flag and returns the updated record
	MarkCompleted(ctx context.Context, id valueobjects.RecordID) (*entities.Record, error)
}

// DraftTier names one of the two client storage tiers a draft reference can
// live in
type DraftTier string

const (
	// TierSession is cleared when the client session ends; it serves the
	// common, non-redirecting registration path.
	TierSession DraftTier = "session"

	// TierDurable survives a full navigation away from the application,
	// which is what a third-party login redirect does to the client.
	TierDurable DraftTier = "durable"
)

// DraftTierStore is the key-value contract one storage tier must satisfy.
// Keys are client ids; values are record ids. At most one reference per
// client per tier: Put overwrites.
type DraftTierStore interface {
	// Put writes the reference, replacing any prior value for the client
	Put(ctx context.Context, clientID, recordID string) error

	// Get returns the stored record id, or "" when absent
	Get(ctx context.Context, clientID string) (string, error)

	// Delete removes the reference; deleting an absent key is not an error
	Delete(ctx context.Context, clientID string) error
}
