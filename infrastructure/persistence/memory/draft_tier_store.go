package memory

import (
	"context"
	"sync"

	"homeport-backend/application/ports"
)

// DraftTierStore is the in-process tier: it lives exactly as long as the
// server process, which is the session-scoped lifetime the draft flow needs
// for the non-redirecting path. Tests also use it for the durable tier.
type DraftTierStore struct {
	mu      sync.Mutex
	refs    map[string]string
	failErr error
}

// NewDraftTierStore creates an empty in-memory tier
func NewDraftTierStore() *DraftTierStore {
	return &DraftTierStore{
		refs: make(map[string]string),
	}
}

// FailWith makes every subsequent call return err until cleared with nil
func (s *DraftTierStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Len reports how many references the tier currently holds
func (s *DraftTierStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.refs)
}

// Put writes the reference, replacing any prior value for the client
func (s *DraftTierStore) Put(ctx context.Context, clientID, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}

	s.refs[clientID] = recordID
	return nil
}

// Get returns the stored record id, "" when absent
func (s *DraftTierStore) Get(ctx context.Context, clientID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return "", s.failErr
	}

	return s.refs[clientID], nil
}

// Delete removes the reference; absent keys are not an error
func (s *DraftTierStore) Delete(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}

	delete(s.refs, clientID)
	return nil
}

var _ ports.DraftTierStore = (*DraftTierStore)(nil)
