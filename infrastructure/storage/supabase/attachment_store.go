package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"homeport-backend/application/ports"
	pkgerrors "homeport-backend/pkg/errors"

	"github.com/sony/gobreaker"
	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

// keepObject marks an owner namespace as provisioned. Supabase storage has
// no real directories, so an empty placeholder is what makes the prefix
// listable before the first upload.
const keepObject = ".keep"

// AttachmentStore stores attachments in a Supabase storage bucket, one
// prefix per owning principal. All storage calls run through a circuit
// breaker so a degraded bucket fails fast instead of tying up handlers.
type AttachmentStore struct {
	client  *storage_go.Client
	bucket  string
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewAttachmentStore creates a Supabase-backed attachment store
func NewAttachmentStore(client *storage_go.Client, bucket string, logger *zap.Logger) *AttachmentStore {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "supabase-storage",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.8
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &AttachmentStore{
		client:  client,
		bucket:  bucket,
		breaker: breaker,
		logger:  logger,
	}
}

func (s *AttachmentStore) execute(operation string, fn func() (interface{}, error)) (interface{}, error) {
	out, err := s.breaker.Execute(fn)
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, pkgerrors.NewUnavailableError("attachment storage").WithCause(err)
		}
		return nil, pkgerrors.NewTransportError(operation, err)
	}
	return out, nil
}

// EnsureScope provisions the owner's prefix by upserting a placeholder
// object. Repeated calls overwrite the same placeholder and are harmless.
func (s *AttachmentStore) EnsureScope(ctx context.Context, ownerScope string) error {
	upsert := true
	contentType := "text/plain"

	_, err := s.execute("scope provisioning", func() (interface{}, error) {
		return s.client.UploadFile(
			s.bucket,
			objectPath(ownerScope, keepObject),
			bytes.NewReader([]byte{}),
			storage_go.FileOptions{
				Upsert:      &upsert,
				ContentType: &contentType,
			},
		)
	})
	return err
}

// Upload stores a file under the owner's prefix
func (s *AttachmentStore) Upload(ctx context.Context, ownerScope, name string, content io.Reader, size int64, contentType string) (string, error) {
	upsert := true
	path := objectPath(ownerScope, name)

	_, err := s.execute("attachment upload", func() (interface{}, error) {
		return s.client.UploadFile(
			s.bucket,
			path,
			content,
			storage_go.FileOptions{
				Upsert:      &upsert,
				ContentType: &contentType,
			},
		)
	})
	if err != nil {
		return "", err
	}

	s.logger.Debug("Attachment stored",
		zap.String("bucket", s.bucket),
		zap.String("path", path),
	)
	return path, nil
}

// List returns the owner's attachments, placeholder excluded. An owner
// whose prefix was never provisioned gets an empty list.
func (s *AttachmentStore) List(ctx context.Context, ownerScope string) ([]ports.Attachment, error) {
	out, err := s.execute("attachment list", func() (interface{}, error) {
		return s.client.ListFiles(s.bucket, ownerScope, storage_go.FileSearchOptions{
			SortByOptions: storage_go.SortBy{Column: "name", Order: "asc"},
		})
	})
	if err != nil {
		return nil, err
	}

	files, ok := out.([]storage_go.FileObject)
	if !ok {
		return nil, pkgerrors.NewInternalError("unexpected storage listing response")
	}

	attachments := make([]ports.Attachment, 0, len(files))
	for _, file := range files {
		if file.Name == keepObject || file.Name == "" {
			continue
		}
		attachments = append(attachments, ports.Attachment{
			Name:        file.Name,
			Size:        fileSize(file),
			OwnerScope:  ownerScope,
			ContentType: fileContentType(file),
			UpdatedAt:   file.UpdatedAt,
		})
	}
	return attachments, nil
}

// Delete removes a file; the storage API treats absent paths as no-ops
func (s *AttachmentStore) Delete(ctx context.Context, ownerScope, name string) error {
	_, err := s.execute("attachment delete", func() (interface{}, error) {
		return s.client.RemoveFile(s.bucket, []string{objectPath(ownerScope, name)})
	})
	return err
}

// ResolveURL returns the public URL for an attachment, "" when no such
// object exists. The public-URL endpoint is existence-blind, so presence is
// checked against the owner's listing first; the listing runs through the
// breaker like every other storage call.
func (s *AttachmentStore) ResolveURL(ctx context.Context, ownerScope, name string) (string, error) {
	attachments, err := s.List(ctx, ownerScope)
	if err != nil {
		return "", err
	}

	for _, attachment := range attachments {
		if attachment.Name == name {
			resp := s.client.GetPublicUrl(s.bucket, objectPath(ownerScope, name))
			return resp.SignedURL, nil
		}
	}
	return "", nil
}

// fileSize digs the byte size out of the object's loosely typed metadata
func fileSize(file storage_go.FileObject) int64 {
	meta, ok := file.Metadata.(map[string]interface{})
	if !ok {
		return 0
	}
	if size, ok := meta["size"].(float64); ok {
		return int64(size)
	}
	return 0
}

func fileContentType(file storage_go.FileObject) string {
	meta, ok := file.Metadata.(map[string]interface{})
	if !ok {
		return ""
	}
	if mime, ok := meta["mimetype"].(string); ok {
		return mime
	}
	return ""
}

func objectPath(ownerScope, name string) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(ownerScope, "/"), name)
}

var _ ports.AttachmentStore = (*AttachmentStore)(nil)
