package memory

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"homeport-backend/application/ports"
	pkgerrors "homeport-backend/pkg/errors"
)

type storedFile struct {
	data        []byte
	contentType string
	updatedAt   time.Time
}

// AttachmentStore is an in-memory AttachmentStore for tests and local
// development. Scopes are created lazily, exactly like the bucket-backed
// implementation.
type AttachmentStore struct {
	mu      sync.Mutex
	scopes  map[string]map[string]*storedFile
	baseURL string
	failErr error
}

// NewAttachmentStore creates an empty in-memory attachment store
func NewAttachmentStore() *AttachmentStore {
	return &AttachmentStore{
		scopes:  make(map[string]map[string]*storedFile),
		baseURL: "memory://attachments",
	}
}

// FailWith makes every subsequent call return err until cleared with nil
func (s *AttachmentStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// EnsureScope lazily creates the owner's namespace; repeated calls are
// no-ops
func (s *AttachmentStore) EnsureScope(ctx context.Context, ownerScope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}

	if _, ok := s.scopes[ownerScope]; !ok {
		s.scopes[ownerScope] = make(map[string]*storedFile)
	}
	return nil
}

// Upload stores a file under the owner's namespace
func (s *AttachmentStore) Upload(ctx context.Context, ownerScope, name string, content io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", pkgerrors.NewTransportError("attachment upload", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return "", s.failErr
	}

	files, ok := s.scopes[ownerScope]
	if !ok {
		files = make(map[string]*storedFile)
		s.scopes[ownerScope] = files
	}

	files[name] = &storedFile{
		data:        data,
		contentType: contentType,
		updatedAt:   time.Now(),
	}

	return fmt.Sprintf("%s/%s", ownerScope, name), nil
}

// List returns the owner's attachments; a missing namespace is an empty
// list
func (s *AttachmentStore) List(ctx context.Context, ownerScope string) ([]ports.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return nil, s.failErr
	}

	files := s.scopes[ownerScope]
	out := make([]ports.Attachment, 0, len(files))
	for name, file := range files {
		out = append(out, ports.Attachment{
			Name:        name,
			Size:        int64(len(file.data)),
			OwnerScope:  ownerScope,
			ContentType: file.contentType,
			UpdatedAt:   file.updatedAt.Format(time.RFC3339),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a file; deleting an absent file is not an error
func (s *AttachmentStore) Delete(ctx context.Context, ownerScope, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}

	if files, ok := s.scopes[ownerScope]; ok {
		delete(files, name)
	}
	return nil
}

// ResolveURL returns a synthetic URL, "" when the file does not exist
func (s *AttachmentStore) ResolveURL(ctx context.Context, ownerScope, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return "", s.failErr
	}

	files, ok := s.scopes[ownerScope]
	if !ok {
		return "", nil
	}
	if _, ok := files[name]; !ok {
		return "", nil
	}
	return fmt.Sprintf("%s/%s/%s", s.baseURL, ownerScope, name), nil
}

var _ ports.AttachmentStore = (*AttachmentStore)(nil)
