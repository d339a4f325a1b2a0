package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"homeport-backend/application/ports"
	"homeport-backend/application/services"
	"homeport-backend/domain/core/valueobjects"
	messagingmemory "homeport-backend/infrastructure/messaging/memory"
	"homeport-backend/infrastructure/persistence/memory"
	"homeport-backend/pkg/common"
	pkgerrors "homeport-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// sessionRegistry is a minimal ports.Cache for handler tests
type sessionRegistry struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{items: make(map[string]interface{})}
}

func (c *sessionRegistry) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *sessionRegistry) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *sessionRegistry) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *sessionRegistry) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]interface{})
	return nil
}

func newProfileFixture() (*ProfileHandler, *services.ProfileOrchestrator) {
	logger := zap.NewNop()
	records := memory.NewRecordRepository()
	drafts := services.NewDraftStore(memory.NewDraftTierStore(), memory.NewDraftTierStore(), logger)
	notifier := messagingmemory.NewNotifier()
	linker := services.NewIdentityLinker(records, drafts, notifier, nil, logger)
	orchestrator := services.NewProfileOrchestrator(records, drafts, linker, notifier, newSessionRegistry(), nil, nil, logger)

	return NewProfileHandler(orchestrator, pkgerrors.NewErrorHandler(logger, false), logger), orchestrator
}

// authenticatedRequest builds a request carrying what the auth and client-id
// middleware would have put in the context
func authenticatedRequest(method, target, principalID, clientID string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	ctx := common.WithPrincipalID(r.Context(), principalID)
	ctx = common.WithEmailConfirmed(ctx, true)
	ctx = common.WithRole(ctx, valueobjects.RoleCustomer)
	ctx = common.WithClientID(ctx, clientID)
	return r.WithContext(ctx)
}

func TestGetProfileWithoutRecord(t *testing.T) {
	handler, _ := newProfileFixture()

	w := httptest.NewRecorder()
	handler.GetProfile(w, authenticatedRequest(http.MethodGet, "/api/v1/profile", "principal-a", "client-1"))

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body pkgerrors.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.True(t, body.Error)
}

func TestGetProfileClaimsPendingIntake(t *testing.T) {
	handler, orchestrator := newProfileFixture()

	_, err := orchestrator.SubmitIntake(context.Background(), valueobjects.NewFieldSetFrom(map[string]interface{}{
		"property_type": "apartment",
	}), "client-1", ports.TierSession)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.GetProfile(w, authenticatedRequest(http.MethodGet, "/api/v1/profile", "principal-a", "client-1"))

	require.Equal(t, http.StatusOK, w.Code)

	var body ProfileResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.NotNil(t, body.Record)
	assert.Equal(t, "principal-a", body.Record.OwnerID)
}

func TestGetProfileRequiresAuthentication(t *testing.T) {
	handler, _ := newProfileFixture()

	w := httptest.NewRecorder()
	handler.GetProfile(w, httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
