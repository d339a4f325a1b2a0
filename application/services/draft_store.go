package services

import (
	"context"

	"homeport-backend/application/ports"

	"go.uber.org/zap"
)

// DraftStore remembers which record an anonymous client is in the middle of
// submitting, across the two client storage tiers. The session tier covers
// the common in-tab registration path; the durable tier exists solely to
// survive the full-page redirect a third-party login performs.
//
// Storage failures never propagate out of this type. An unavailable tier
// reads as "no draft to link" and a failed write is logged and dropped; the
// worst case is an anonymous submission the principal has to redo, which is
// preferable to failing the login flow.
type DraftStore struct {
	session ports.DraftTierStore
	durable ports.DraftTierStore
	logger  *zap.Logger
}

// NewDraftStore creates a DraftStore over the two tier backends
func NewDraftStore(session, durable ports.DraftTierStore, logger *zap.Logger) *DraftStore {
	return &DraftStore{
		session: session,
		durable: durable,
		logger:  logger,
	}
}

// Remember writes the reference to the requested tier, replacing any prior
// value in that tier
func (s *DraftStore) Remember(ctx context.Context, clientID, recordID string, tier ports.DraftTier) {
	if err := s.tierStore(tier).Put(ctx, clientID, recordID); err != nil {
		s.logger.Warn("Failed to store draft reference",
			zap.Error(err),
			zap.String("tier", string(tier)),
			zap.String("clientID", clientID),
			zap.String("recordID", recordID),
		)
	}
}

// Recall reads the reference in the given tier without clearing it.
// Returns "" when absent or when the tier is unavailable.
func (s *DraftStore) Recall(ctx context.Context, clientID string, tier ports.DraftTier) string {
	recordID, err := s.tierStore(tier).Get(ctx, clientID)
	if err != nil {
		s.logger.Warn("Draft tier unavailable on recall, treating as absent",
			zap.Error(err),
			zap.String("tier", string(tier)),
			zap.String("clientID", clientID),
		)
		return ""
	}
	return recordID
}

// Consume reads and clears the reference in the given tier, so a reference
// is never used for more than one linking attempt
func (s *DraftStore) Consume(ctx context.Context, clientID string, tier ports.DraftTier) string {
	recordID := s.Recall(ctx, clientID, tier)
	if recordID == "" {
		return ""
	}

	if err := s.tierStore(tier).Delete(ctx, clientID); err != nil {
		s.logger.Warn("Failed to clear draft reference after consume",
			zap.Error(err),
			zap.String("tier", string(tier)),
			zap.String("clientID", clientID),
		)
	}

	return recordID
}

// ConsumeFirst consumes the highest-precedence reference available. The
// durable tier wins when both are present: it was written on the way into a
// redirect and is therefore the more recent intent. This precedence rule is
// enforced here and nowhere else.
func (s *DraftStore) ConsumeFirst(ctx context.Context, clientID string) (string, ports.DraftTier) {
	if recordID := s.Consume(ctx, clientID, ports.TierDurable); recordID != "" {
		return recordID, ports.TierDurable
	}
	if recordID := s.Consume(ctx, clientID, ports.TierSession); recordID != "" {
		return recordID, ports.TierSession
	}
	return "", ""
}

// ClearAll empties both tiers for the client so that no reference from this
// linking attempt, successful or not, can leak into an unrelated later
// session
func (s *DraftStore) ClearAll(ctx context.Context, clientID string) {
	for _, tier := range []ports.DraftTier{ports.TierDurable, ports.TierSession} {
		if err := s.tierStore(tier).Delete(ctx, clientID); err != nil {
			s.logger.Warn("Failed to clear draft tier",
				zap.Error(err),
				zap.String("tier", string(tier)),
				zap.String("clientID", clientID),
			)
		}
	}
}

func (s *DraftStore) tierStore(tier ports.DraftTier) ports.DraftTierStore {
	if tier == ports.TierDurable {
		return s.durable
	}
	return s.session
}
