package entities

import (
	"time"

	"homeport-backend/domain/config"
	"homeport-backend/domain/core/valueobjects"
	"homeport-backend/domain/events"
	pkgerrors "homeport-backend/pkg/errors"
)

// Record is the property questionnaire submission and, once claimed, the
// customer's profile record. It is a rich domain model with encapsulated
// business logic; the write-once ownership rule lives here so that no code
// path can reassign a claimed record to a different principal.
type Record struct {
	// Private fields ensure encapsulation
	id        valueobjects.RecordID
	ownerID   string // empty while the submission is anonymous
	completed bool
	fields    valueobjects.FieldSet
	createdAt time.Time
	updatedAt time.Time
	version   int

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewRecord creates a new anonymous record from a questionnaire submission
func NewRecord(fields valueobjects.FieldSet, cfg *config.DomainConfig) (*Record, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if fields.IsEmpty() && !cfg.AllowEmptySubmission {
		return nil, pkgerrors.NewValidationError("submission cannot be empty")
	}
	if len(fields) > cfg.MaxFieldCount {
		return nil, pkgerrors.NewValidationError("submission has too many fields")
	}
	for key := range fields {
		if len(key) > cfg.MaxFieldKeyLength {
			return nil, pkgerrors.NewValidationError("field key exceeds maximum length")
		}
	}

	now := time.Now()
	record := &Record{
		id:        valueobjects.NewRecordID(),
		ownerID:   "",
		completed: false,
		fields:    fields.Copy(),
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}

	record.addEvent(events.NewRecordSubmitted(record.id, now))

	return record, nil
}

// ReconstructRecord reconstructs a record from repository data with
// preserved timestamps. No events are raised; nothing happened, the record
// was merely loaded.
func ReconstructRecord(
	id valueobjects.RecordID,
	ownerID string,
	completed bool,
	fields valueobjects.FieldSet,
	createdAt time.Time,
	updatedAt time.Time,
	version int,
) *Record {
	return &Record{
		id:        id,
		ownerID:   ownerID,
		completed: completed,
		fields:    fields.Copy(),
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		events:    []events.DomainEvent{},
	}
}

// ID returns the record identifier
func (r *Record) ID() valueobjects.RecordID {
	return r.id
}

// OwnerID returns the owning principal id, empty while unowned
func (r *Record) OwnerID() string {
	return r.ownerID
}

// IsOwned reports whether the record has been claimed by a principal
func (r *Record) IsOwned() bool {
	return r.ownerID != ""
}

// Completed reports whether the record has been finalized
func (r *Record) Completed() bool {
	return r.completed
}

// Fields returns a copy of the questionnaire fields. Callers can never
// mutate the record through the returned map.
func (r *Record) Fields() valueobjects.FieldSet {
	return r.fields.Copy()
}

// Version returns the persistence version counter
func (r *Record) Version() int {
	return r.version
}

// CreatedAt returns the creation timestamp
func (r *Record) CreatedAt() time.Time {
	return r.createdAt
}

// UpdatedAt returns the last modification timestamp
func (r *Record) UpdatedAt() time.Time {
	return r.updatedAt
}

// BindOwner claims the record for a principal. Ownership is write-once:
// rebinding to the same principal is a no-op, rebinding to a different one
// fails with a conflict. The repository enforces the same rule atomically at
// the storage layer; this in-memory check exists so the invariant cannot be
// bypassed even before persistence is involved.
func (r *Record) BindOwner(ownerID string) error {
	if ownerID == "" {
		return pkgerrors.NewValidationError("ownerID cannot be empty")
	}

	if r.ownerID == ownerID {
		return nil
	}
	if r.ownerID != "" {
		return pkgerrors.NewOwnershipConflictError(r.id.String())
	}

	r.ownerID = ownerID
	r.touch()
	r.addEvent(events.NewOwnerBound(r.id, ownerID, r.updatedAt))

	return nil
}

// ReplaceFields swaps in a new committed field set, as produced by a
// successful edit-session save
func (r *Record) ReplaceFields(fields valueobjects.FieldSet) error {
	if fields.IsEmpty() {
		return pkgerrors.NewValidationError("record fields cannot be emptied")
	}

	r.fields = fields.Copy()
	r.touch()
	r.addEvent(events.NewRecordUpdated(r.id, r.updatedAt))

	return nil
}

// MarkCompleted finalizes the record. Completion requires an owner: an
// anonymous submission is never visible to vendors. Marking an already
// completed record again is a no-op.
func (r *Record) MarkCompleted() error {
	if !r.IsOwned() {
		return pkgerrors.NewValidationError("cannot complete an unowned record")
	}
	if r.completed {
		return nil
	}

	r.completed = true
	r.touch()
	r.addEvent(events.NewRecordCompleted(r.id, r.ownerID, r.updatedAt))

	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (r *Record) GetUncommittedEvents() []events.DomainEvent {
	return r.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (r *Record) MarkEventsAsCommitted() {
	r.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (r *Record) addEvent(event events.DomainEvent) {
	r.events = append(r.events, event)
}

// touch advances updatedAt and the version counter
func (r *Record) touch() {
	r.updatedAt = time.Now()
	r.version++
}
