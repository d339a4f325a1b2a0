package services

import (
	"context"
	"io"

	"homeport-backend/application/ports"
	"homeport-backend/domain/config"
	"homeport-backend/domain/core/validators"
	"homeport-backend/pkg/observability"
	pkgerrors "homeport-backend/pkg/errors"

	"go.uber.org/zap"
)

// AttachmentService fronts the attachment store with the pre-transport
// validation rules. Attachments are namespaced by the owning principal id,
// which stays stable across record edits.
type AttachmentService struct {
	store     ports.AttachmentStore
	validator *validators.AttachmentValidator
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewAttachmentService creates an attachment service
func NewAttachmentService(
	store ports.AttachmentStore,
	domainCfg *config.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AttachmentService {
	return &AttachmentService{
		store:     store,
		validator: validators.NewAttachmentValidator(domainCfg),
		metrics:   metrics,
		logger:    logger,
	}
}

// Upload validates and stores a file under the owner's namespace, creating
// the namespace lazily on first use. Validation failures are rejected
// before any network call.
func (s *AttachmentService) Upload(
	ctx context.Context,
	ownerScope, name string,
	content io.Reader,
	size int64,
	contentType string,
) (string, error) {
	if ownerScope == "" {
		return "", pkgerrors.NewValidationError("owner scope is required")
	}

	if err := s.validator.ValidateUpload(name, size, contentType); err != nil {
		s.metrics.IncAttachmentRejected()
		return "", err
	}

	if err := s.store.EnsureScope(ctx, ownerScope); err != nil {
		return "", err
	}

	path, err := s.store.Upload(ctx, ownerScope, name, content, size, contentType)
	if err != nil {
		return "", err
	}

	s.logger.Info("Attachment uploaded",
		zap.String("ownerScope", ownerScope),
		zap.String("name", name),
		zap.Int64("size", size),
	)

	return path, nil
}

// List returns the owner's attachments; an untouched namespace is an empty
// list
func (s *AttachmentService) List(ctx context.Context, ownerScope string) ([]ports.Attachment, error) {
	if ownerScope == "" {
		return nil, pkgerrors.NewValidationError("owner scope is required")
	}
	return s.store.List(ctx, ownerScope)
}

// Delete removes an attachment; deleting an absent file is a no-op
func (s *AttachmentService) Delete(ctx context.Context, ownerScope, name string) error {
	if ownerScope == "" {
		return pkgerrors.NewValidationError("owner scope is required")
	}
	if name == "" {
		return pkgerrors.NewValidationError("attachment name is required")
	}
	return s.store.Delete(ctx, ownerScope, name)
}

// ResolveURL returns the public URL for an attachment, or "" when it does
// not exist
func (s *AttachmentService) ResolveURL(ctx context.Context, ownerScope, name string) (string, error) {
	if ownerScope == "" {
		return "", pkgerrors.NewValidationError("owner scope is required")
	}
	return s.store.ResolveURL(ctx, ownerScope, name)
}
