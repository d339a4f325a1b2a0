package validators

import (
	"fmt"
	"path"
	"strings"

	"homeport-backend/domain/config"
	pkgerrors "homeport-backend/pkg/errors"
)

// AttachmentValidator enforces the upload constraints before any network
// call is made: size ceiling, content-kind allow-list, and a sane file name.
type AttachmentValidator struct {
	cfg *config.DomainConfig
}

// NewAttachmentValidator creates a validator bound to the domain config
func NewAttachmentValidator(cfg *config.DomainConfig) *AttachmentValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &AttachmentValidator{cfg: cfg}
}

// ValidateUpload checks an upload candidate. A nil return means the file may
// be sent to the storage backend.
func (v *AttachmentValidator) ValidateUpload(name string, size int64, contentType string) error {
	if err := v.validateName(name); err != nil {
		return err
	}

	if size <= 0 {
		return pkgerrors.NewValidationError("attachment is empty")
	}
	if size > v.cfg.MaxAttachmentBytes {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("attachment exceeds the %d byte limit", v.cfg.MaxAttachmentBytes),
		).WithDetails(map[string]interface{}{
			"size":  size,
			"limit": v.cfg.MaxAttachmentBytes,
		})
	}

	if !v.cfg.IsContentKindAllowed(contentType) {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("content type %q is not allowed", contentType),
		).WithDetails(map[string]interface{}{
			"content_type": contentType,
			"allowed":      v.cfg.AllowedContentKinds,
		})
	}

	return nil
}

// validateName rejects names that would escape the owner scope or collide
// with the namespace placeholder
func (v *AttachmentValidator) validateName(name string) error {
	if name == "" {
		return pkgerrors.NewValidationError("attachment name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") || path.Clean(name) != name {
		return pkgerrors.NewValidationError("attachment name cannot contain path separators")
	}
	if strings.HasPrefix(name, ".") {
		return pkgerrors.NewValidationError("attachment name cannot start with a dot")
	}
	return nil
}
