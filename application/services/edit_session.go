package services

import (
	"context"
	"sync"
	"time"

	"homeport-backend/application/ports"
	"homeport-backend/domain/config"
	"homeport-backend/domain/core/entities"
	"homeport-backend/domain/core/valueobjects"
	"homeport-backend/domain/events"
	pkgerrors "homeport-backend/pkg/errors"
	"homeport-backend/pkg/observability"

	"go.uber.org/zap"
)

// EditStatus is the state of a profile edit session
type EditStatus string

const (
	StatusViewing EditStatus = "viewing"
	StatusEditing EditStatus = "editing"
	StatusSaving  EditStatus = "saving"
)

// EditSession is the draft-vs-committed editing lifecycle over a single
// record. `committed` mirrors what the repository holds; `draft` is the
// working copy and exists only while editing. Draft mutations are invisible
// outside the session until a save succeeds, and a failed save never
// corrupts the committed snapshot.
//
// The session is in-memory only. A mutex serializes the lifecycle methods
// because the orchestrator's triggers can interleave; the repository is
// still the only durable source of truth.
type EditSession struct {
	mu sync.Mutex

	status     EditStatus
	owner      valueobjects.Principal
	committed  *entities.Record
	draft      valueobjects.FieldSet
	reviewable bool
	touchedAt  time.Time

	records   ports.RecordRepository
	notifier  ports.Notifier
	domainCfg *config.DomainConfig
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewEditSession creates a session in Viewing over the given committed
// record, which may be nil when the principal has no record yet
func NewEditSession(
	owner valueobjects.Principal,
	committed *entities.Record,
	records ports.RecordRepository,
	notifier ports.Notifier,
	domainCfg *config.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *EditSession {
	if domainCfg == nil {
		domainCfg = config.DefaultDomainConfig()
	}
	return &EditSession{
		status:    StatusViewing,
		owner:     owner,
		committed: committed,
		touchedAt: time.Now(),
		records:   records,
		notifier:  notifier,
		domainCfg: domainCfg,
		metrics:   metrics,
		logger:    logger,
	}
}

// Status returns the current state
func (s *EditSession) Status() EditStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Committed returns the last known-good record, nil when none exists yet
func (s *EditSession) Committed() *entities.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed
}

// Draft returns a copy of the working field set, nil outside of an edit
func (s *EditSession) Draft() valueobjects.FieldSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil
	}
	return s.draft.Copy()
}

// Reviewable reports whether the record has been submitted for review, at
// which point the UI hides further edits
func (s *EditSession) Reviewable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviewable
}

// TouchedAt returns the last time a lifecycle method ran; the orchestrator
// uses it to expire idle sessions
func (s *EditSession) TouchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

// StartEdit enters Editing. The draft starts as a full copy of the
// committed fields; when no record exists yet the caller supplies the
// defaults for a create-new flow. A prior aborted edit never carries over.
func (s *EditSession) StartEdit(defaults valueobjects.FieldSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusViewing {
		return pkgerrors.NewConflictError("edit already in progress")
	}
	if s.reviewable {
		return pkgerrors.NewConflictError("record has been submitted for review and can no longer be edited")
	}

	if s.committed != nil {
		s.draft = s.committed.Fields()
	} else {
		s.draft = defaults.Copy()
	}
	s.status = StatusEditing
	s.touch()

	return nil
}

// Mutate updates a single field on the draft. The committed snapshot is
// never touched.
func (s *EditSession) Mutate(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusEditing {
		return pkgerrors.NewConflictError("no edit in progress")
	}
	if len(key) > s.domainCfg.MaxFieldKeyLength {
		return pkgerrors.NewValidationError("field key exceeds maximum length")
	}

	if err := s.draft.Set(key, value); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	s.touch()

	return nil
}

// Cancel discards the draft and returns to Viewing without any persistence
// call
func (s *EditSession) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusEditing {
		return pkgerrors.NewConflictError("no edit in progress")
	}

	s.draft = nil
	s.status = StatusViewing
	s.touch()

	return nil
}

// Save persists the draft. On success the session returns to Viewing with
// the draft promoted to committed. On failure it returns to Editing with the
// draft intact so no user input is lost, and the error is surfaced to the
// caller.
func (s *EditSession) Save(ctx context.Context) (*entities.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusEditing {
		return nil, pkgerrors.NewConflictError("no edit in progress")
	}
	s.status = StatusSaving
	s.touch()

	saved, err := s.persistDraft(ctx)
	if err != nil {
		s.status = StatusEditing
		s.metrics.IncSaveFailure()
		s.logger.Warn("Draft save failed, edit state retained",
			zap.Error(err),
			zap.String("principalID", s.owner.ID()),
		)
		return nil, err
	}

	s.committed = saved
	s.draft = nil
	s.status = StatusViewing
	s.touch()

	return saved, nil
}

// persistDraft writes the draft through the repository. Called with the
// mutex held and status Saving.
func (s *EditSession) persistDraft(ctx context.Context) (*entities.Record, error) {
	// First-time creation while already authenticated: create then bind to
	// the current owner.
	if s.committed == nil {
		record, err := entities.NewRecord(s.draft, s.domainCfg)
		if err != nil {
			return nil, err
		}
		if err := s.records.Create(ctx, record); err != nil {
			return nil, err
		}
		bound, err := s.records.BindOwner(ctx, record.ID(), s.owner.ID())
		if err != nil {
			return nil, err
		}
		return bound, nil
	}

	// The committed entity stays untouched until the repository accepts the
	// write; updates run on a reconstruction so a failure leaves nothing
	// half-applied.
	updated := entities.ReconstructRecord(
		s.committed.ID(),
		s.committed.OwnerID(),
		s.committed.Completed(),
		s.committed.Fields(),
		s.committed.CreatedAt(),
		s.committed.UpdatedAt(),
		s.committed.Version(),
	)
	if err := updated.ReplaceFields(s.draft); err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// SubmitForReview finalizes the committed record, making it visible to the
// vendor-facing side. Valid only from Viewing with an owned record. The
// state machine's state does not change; only the record's completion flag
// and the reviewable signal do. Downstream notification is best-effort.
func (s *EditSession) SubmitForReview(ctx context.Context) (*entities.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusViewing {
		return nil, pkgerrors.NewConflictError("cannot submit while an edit is in progress")
	}
	if s.committed == nil {
		return nil, pkgerrors.NewValidationError("no record to submit")
	}
	if !s.committed.IsOwned() {
		return nil, pkgerrors.NewValidationError("record must be owned before submission")
	}

	completed, err := s.records.MarkCompleted(ctx, s.committed.ID())
	if err != nil {
		return nil, err
	}

	s.committed = completed
	s.reviewable = true
	s.touch()

	if s.notifier != nil {
		event := events.NewRecordCompleted(completed.ID(), completed.OwnerID(), completed.UpdatedAt())
		if err := s.notifier.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish completion event",
				zap.Error(err),
				zap.String("recordID", completed.ID().String()),
			)
		}
	}

	return completed, nil
}

// touch records lifecycle activity. Called with the mutex held.
func (s *EditSession) touch() {
	s.touchedAt = time.Now()
}
