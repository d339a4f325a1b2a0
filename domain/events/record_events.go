package events

import (
	"time"

	"homeport-backend/domain/core/valueobjects"
)

// Record Events

// RecordSubmitted is raised when an anonymous questionnaire submission
// creates a new unowned record
type RecordSubmitted struct {
	BaseEvent
	RecordID valueobjects.RecordID `json:"record_id"`
}

// NewRecordSubmitted creates a RecordSubmitted event
func NewRecordSubmitted(recordID valueobjects.RecordID, timestamp time.Time) RecordSubmitted {
	return RecordSubmitted{
		BaseEvent: BaseEvent{
			AggregateID: recordID.String(),
			EventType:   "record.submitted",
			Timestamp:   timestamp,
			Version:     1,
		},
		RecordID: recordID,
	}
}

// OwnerBound is raised when reconciliation binds a record to a principal
type OwnerBound struct {
	BaseEvent
	RecordID valueobjects.RecordID `json:"record_id"`
	OwnerID  string                `json:"owner_id"`
}

// NewOwnerBound creates an OwnerBound event
func NewOwnerBound(recordID valueobjects.RecordID, ownerID string, timestamp time.Time) OwnerBound {
	return OwnerBound{
		BaseEvent: BaseEvent{
			AggregateID: recordID.String(),
			EventType:   "record.owner_bound",
			Timestamp:   timestamp,
			Version:     1,
		},
		RecordID: recordID,
		OwnerID:  ownerID,
	}
}

// RecordUpdated is raised when a committed edit replaces the record fields
type RecordUpdated struct {
	BaseEvent
	RecordID valueobjects.RecordID `json:"record_id"`
}

// NewRecordUpdated creates a RecordUpdated event
func NewRecordUpdated(recordID valueobjects.RecordID, timestamp time.Time) RecordUpdated {
	return RecordUpdated{
		BaseEvent: BaseEvent{
			AggregateID: recordID.String(),
			EventType:   "record.updated",
			Timestamp:   timestamp,
			Version:     1,
		},
		RecordID: recordID,
	}
}

// RecordCompleted is raised when a record is finalized and becomes visible
// to the vendor-facing side of the marketplace. Downstream notification
// (email to vendors) hangs off this event.
type RecordCompleted struct {
	BaseEvent
	RecordID valueobjects.RecordID `json:"record_id"`
	OwnerID  string                `json:"owner_id"`
}

// NewRecordCompleted creates a RecordCompleted event
func NewRecordCompleted(recordID valueobjects.RecordID, ownerID string, timestamp time.Time) RecordCompleted {
	return RecordCompleted{
		BaseEvent: BaseEvent{
			AggregateID: recordID.String(),
			EventType:   "record.completed",
			Timestamp:   timestamp,
			Version:     1,
		},
		RecordID: recordID,
		OwnerID:  ownerID,
	}
}
