package ports

import (
	"context"
	"io"

	"homeport-backend/domain/events"
)

// Attachment describes one stored file in an owner's namespace
type Attachment struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	OwnerScope  string `json:"owner_scope"`
	ContentType string `json:"content_type,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// AttachmentStore defines per-owner scoped blob storage. Implementations
// report transport failures as typed errors and never retry silently;
// retries are the caller's concern.
type AttachmentStore interface {
	// EnsureScope lazily creates the owner's namespace. Idempotent touch
	// semantics: safe to call repeatedly and concurrently for the same owner.
	EnsureScope(ctx context.Context, ownerScope string) error

	// Upload stores a file under the owner's namespace and returns its path
	Upload(ctx context.Context, ownerScope, name string, content io.Reader, size int64, contentType string) (string, error)

	// List returns the attachments in the owner's namespace. A namespace
	// that does not exist yet is an empty list, not an error.
	List(ctx context.Context, ownerScope string) ([]Attachment, error)

	// Delete removes a file. Deleting an already-absent file is not an error.
	Delete(ctx context.Context, ownerScope, name string) error

	// ResolveURL returns the public URL for a file, or "" when the file
	// does not exist
	ResolveURL(ctx context.Context, ownerScope, name string) (string, error)
}

// Notifier defines the fire-and-forget downstream notification channel.
// Callers treat failures as best-effort: logged, never propagated into
// session or reconciliation state.
type Notifier interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
