package config

import "time"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Attachment constraints
	MaxAttachmentBytes   int64
	AllowedContentKinds  []string
	MaxAttachmentsPerOwner int

	// Record constraints
	MaxFieldKeyLength   int
	MaxFieldValueLength int
	MaxFieldCount       int

	// Time constraints
	DraftReferenceTTL  time.Duration
	EditSessionIdleTTL time.Duration

	// Validation settings
	AllowEmptySubmission bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Attachment constraints
		MaxAttachmentBytes: 5 * 1024 * 1024,
		AllowedContentKinds: []string{
			"image/jpeg",
			"image/png",
			"image/webp",
			"application/pdf",
		},
		MaxAttachmentsPerOwner: 50,

		// Record constraints
		MaxFieldKeyLength:   128,
		MaxFieldValueLength: 10000,
		MaxFieldCount:       200,

		// Time constraints
		DraftReferenceTTL:  7 * 24 * time.Hour,
		EditSessionIdleTTL: 30 * time.Minute,

		AllowEmptySubmission: false,
	}
}

// IsContentKindAllowed checks a MIME type against the allow-list
func (c *DomainConfig) IsContentKindAllowed(contentType string) bool {
	for _, kind := range c.AllowedContentKinds {
		if kind == contentType {
			return true
		}
	}
	return false
}
