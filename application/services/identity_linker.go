package services

import (
	"context"

	"homeport-backend/application/ports"
	"homeport-backend/domain/core/entities"
	"homeport-backend/domain/core/valueobjects"
	"homeport-backend/domain/events"
	"homeport-backend/pkg/observability"
	pkgerrors "homeport-backend/pkg/errors"

	"go.uber.org/zap"
)

// IdentityLinker runs the reconciliation procedure: after a principal
// authenticates, at most one pre-existing anonymous record ends up durably
// owned by that principal, no matter how many times the procedure fires.
//
// The procedure takes no client-side locks. Idempotency rests on two pieces:
// the owned-record lookup that runs first, and the repository's atomic
// conditional bind. Two racing invocations, or two browser tabs holding the
// same draft reference, converge on the same final record; the loser of a
// cross-principal race simply ends up with no record, never an error.
type IdentityLinker struct {
	records  ports.RecordRepository
	drafts   *DraftStore
	notifier ports.Notifier
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewIdentityLinker creates an identity linker
func NewIdentityLinker(
	records ports.RecordRepository,
	drafts *DraftStore,
	notifier ports.Notifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *IdentityLinker {
	return &IdentityLinker{
		records:  records,
		drafts:   drafts,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// Reconcile links a pending anonymous submission to the principal, if one
// exists. It returns the principal's record, or nil when there is nothing
// to link, which is a normal outcome rather than a failure. NotFound and ownership
// conflicts never escape this method; only transport failures do, and those
// are retryable.
func (l *IdentityLinker) Reconcile(ctx context.Context, principal valueobjects.Principal, clientID string) (*entities.Record, error) {
	// An already-owned record means a previous invocation finished the job.
	// Checking this first is what makes repeat invocations converge.
	existing, err := l.records.FetchLatestFor(ctx, principal.ID())
	if err != nil {
		return nil, pkgerrors.Wrap(err, "reconciliation lookup failed")
	}
	if existing != nil {
		l.drafts.ClearAll(ctx, clientID)
		l.metrics.IncReconcileOutcome(observability.OutcomeAlreadyOwned)
		l.logger.Debug("Reconciliation short-circuit, principal already owns a record",
			zap.String("principalID", principal.ID()),
			zap.String("recordID", existing.ID().String()),
		)
		return existing, nil
	}

	recordID, tier := l.drafts.ConsumeFirst(ctx, clientID)
	if recordID == "" {
		l.drafts.ClearAll(ctx, clientID)
		l.metrics.IncReconcileOutcome(observability.OutcomeNoDraft)
		return nil, nil
	}

	id, err := valueobjects.NewRecordIDFromString(recordID)
	if err != nil {
		// Corrupt reference; nothing to link
		l.drafts.ClearAll(ctx, clientID)
		l.metrics.IncReconcileOutcome(observability.OutcomeStaleDraft)
		l.logger.Warn("Discarding malformed draft reference",
			zap.String("recordID", recordID),
			zap.String("clientID", clientID),
		)
		return nil, nil
	}

	record, err := l.records.FetchByID(ctx, id)
	if pkgerrors.IsNotFound(err) {
		// The referenced record vanished; a stale reference is the same as
		// no reference
		l.drafts.ClearAll(ctx, clientID)
		l.metrics.IncReconcileOutcome(observability.OutcomeStaleDraft)
		return nil, nil
	}
	if err != nil {
		// The reference was consumed but not acted on. Put it back so a
		// retry after the transport recovers can still link it.
		l.drafts.Remember(ctx, clientID, recordID, tier)
		return nil, pkgerrors.Wrap(err, "failed to fetch referenced record")
	}

	bound, err := l.records.BindOwner(ctx, record.ID(), principal.ID())
	switch {
	case pkgerrors.IsConflict(err):
		// Another principal won the race, likely a second tab completing
		// the same draft. The submission is considered lost for this
		// principal; degrade to "no record" rather than surfacing an error.
		l.drafts.ClearAll(ctx, clientID)
		l.metrics.IncReconcileOutcome(observability.OutcomeConflict)
		l.logger.Info("Draft already claimed by another principal",
			zap.String("recordID", record.ID().String()),
			zap.String("principalID", principal.ID()),
		)
		return nil, nil
	case pkgerrors.IsNotFound(err):
		l.drafts.ClearAll(ctx, clientID)
		l.metrics.IncReconcileOutcome(observability.OutcomeStaleDraft)
		return nil, nil
	case err != nil:
		l.drafts.Remember(ctx, clientID, recordID, tier)
		return nil, pkgerrors.Wrap(err, "failed to bind owner")
	}

	if !bound.Completed() {
		completed, err := l.records.MarkCompleted(ctx, bound.ID())
		if err != nil {
			// Ownership is durable at this point; completion is recoverable
			// through an explicit submit, so a failure here must not undo a
			// successful link.
			l.logger.Warn("Record linked but completion flag not set",
				zap.Error(err),
				zap.String("recordID", bound.ID().String()),
			)
		} else {
			bound = completed
		}
	}

	l.drafts.ClearAll(ctx, clientID)
	l.metrics.IncReconcileOutcome(observability.OutcomeLinked)
	l.logger.Info("Anonymous submission linked to principal",
		zap.String("recordID", bound.ID().String()),
		zap.String("principalID", principal.ID()),
		zap.String("tier", string(tier)),
	)

	l.notifyLinked(ctx, bound, principal)

	return bound, nil
}

// notifyLinked publishes the linking events downstream. Best-effort: a
// notification failure is logged and swallowed, it never affects the
// reconciliation result.
func (l *IdentityLinker) notifyLinked(ctx context.Context, record *entities.Record, principal valueobjects.Principal) {
	if l.notifier == nil {
		return
	}

	batch := []events.DomainEvent{
		events.NewOwnerBound(record.ID(), principal.ID(), record.UpdatedAt()),
	}
	if record.Completed() {
		batch = append(batch, events.NewRecordCompleted(record.ID(), principal.ID(), record.UpdatedAt()))
	}

	if err := l.notifier.PublishBatch(ctx, batch); err != nil {
		l.logger.Warn("Failed to publish linking events",
			zap.Error(err),
			zap.String("recordID", record.ID().String()),
		)
	}
}
