package services

import (
	"context"

	"homeport-backend/application/ports"
	"homeport-backend/domain/config"
	"homeport-backend/domain/core/entities"
	"homeport-backend/domain/core/valueobjects"
	"homeport-backend/pkg/observability"
	pkgerrors "homeport-backend/pkg/errors"

	"go.uber.org/zap"
)

// ProfileOrchestrator connects the lifecycle triggers to the reconciliation
// and edit machinery: an anonymous intake submission, a principal becoming
// available, and the edit/save/cancel/submit requests that follow. It keeps
// one EditSession per principal in a TTL cache; an idle session simply
// expires and is rebuilt from the repository on the next touch, which is
// safe because reconciliation is idempotent.
type ProfileOrchestrator struct {
	records   ports.RecordRepository
	drafts    *DraftStore
	linker    *IdentityLinker
	notifier  ports.Notifier
	sessions  ports.Cache
	domainCfg *config.DomainConfig
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewProfileOrchestrator creates the orchestrator
func NewProfileOrchestrator(
	records ports.RecordRepository,
	drafts *DraftStore,
	linker *IdentityLinker,
	notifier ports.Notifier,
	sessions ports.Cache,
	domainCfg *config.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ProfileOrchestrator {
	if domainCfg == nil {
		domainCfg = config.DefaultDomainConfig()
	}
	return &ProfileOrchestrator{
		records:   records,
		drafts:    drafts,
		linker:    linker,
		notifier:  notifier,
		sessions:  sessions,
		domainCfg: domainCfg,
		metrics:   metrics,
		logger:    logger,
	}
}

// SubmitIntake creates an unowned record from an anonymous questionnaire
// submission and remembers the draft reference for the client. The durable
// tier is requested by clients that are about to leave for a third-party
// login redirect.
func (o *ProfileOrchestrator) SubmitIntake(
	ctx context.Context,
	fields valueobjects.FieldSet,
	clientID string,
	tier ports.DraftTier,
) (*entities.Record, error) {
	if clientID == "" {
		return nil, pkgerrors.NewValidationError("client id is required")
	}
	if tier != ports.TierSession && tier != ports.TierDurable {
		return nil, pkgerrors.NewValidationError("unknown draft tier")
	}

	record, err := entities.NewRecord(fields, o.domainCfg)
	if err != nil {
		return nil, err
	}

	if err := o.records.Create(ctx, record); err != nil {
		return nil, err
	}

	o.drafts.Remember(ctx, clientID, record.ID().String(), tier)
	o.metrics.IncIntakeSubmission()
	o.logger.Info("Anonymous submission created",
		zap.String("recordID", record.ID().String()),
		zap.String("tier", string(tier)),
	)

	return record, nil
}

// ResolveProfile answers "what record does this principal have", running
// reconciliation on the way. Both the authenticated-event trigger and the
// fetch-on-mount trigger land here; repeat or concurrent invocations are
// harmless by the linker's construction.
func (o *ProfileOrchestrator) ResolveProfile(
	ctx context.Context,
	principal valueobjects.Principal,
	clientID string,
) (*entities.Record, error) {
	return o.linker.Reconcile(ctx, principal, clientID)
}

// Session returns the principal's edit session, building one over the
// reconciled record if none is cached
func (o *ProfileOrchestrator) Session(
	ctx context.Context,
	principal valueobjects.Principal,
	clientID string,
) (*EditSession, error) {
	key := sessionKey(principal)

	if cached, ok := o.sessions.Get(ctx, key); ok {
		if session, ok := cached.(*EditSession); ok {
			o.refreshSession(ctx, key, session)
			return session, nil
		}
	}

	record, err := o.linker.Reconcile(ctx, principal, clientID)
	if err != nil {
		return nil, err
	}

	session := NewEditSession(principal, record, o.records, o.notifier, o.domainCfg, o.metrics, o.logger)
	o.refreshSession(ctx, key, session)

	return session, nil
}

// DropSession evicts the principal's session, forcing the next touch to
// rebuild from the repository
func (o *ProfileOrchestrator) DropSession(ctx context.Context, principal valueobjects.Principal) {
	if err := o.sessions.Delete(ctx, sessionKey(principal)); err != nil {
		o.logger.Warn("Failed to evict edit session",
			zap.Error(err),
			zap.String("principalID", principal.ID()),
		)
	}
}

// refreshSession re-arms the idle TTL on every touch
func (o *ProfileOrchestrator) refreshSession(ctx context.Context, key string, session *EditSession) {
	ttl := int(o.domainCfg.EditSessionIdleTTL.Seconds())
	if err := o.sessions.Set(ctx, key, session, ttl); err != nil {
		o.logger.Warn("Failed to cache edit session", zap.Error(err))
	}
}

func sessionKey(principal valueobjects.Principal) string {
	return "edit-session#" + principal.ID()
}
