package services

import (
	"context"
	"sync"
	"testing"

	"homeport-backend/application/ports"
	"homeport-backend/domain/core/valueobjects"
	messagingmemory "homeport-backend/infrastructure/messaging/memory"
	"homeport-backend/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCache is a minimal ports.Cache for orchestrator tests
type fakeCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]interface{})}
}

func (c *fakeCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *fakeCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]interface{})
	return nil
}

func newTestOrchestrator() (*ProfileOrchestrator, *memory.RecordRepository) {
	records := memory.NewRecordRepository()
	drafts := NewDraftStore(memory.NewDraftTierStore(), memory.NewDraftTierStore(), zap.NewNop())
	notifier := messagingmemory.NewNotifier()
	linker := NewIdentityLinker(records, drafts, notifier, nil, zap.NewNop())

	return NewProfileOrchestrator(records, drafts, linker, notifier, newFakeCache(), nil, nil, zap.NewNop()), records
}

func intakeFields() valueobjects.FieldSet {
	return valueobjects.NewFieldSetFrom(map[string]interface{}{
		"property_type": "apartment",
	})
}

func TestSubmitIntake(t *testing.T) {
	ctx := context.Background()
	orchestrator, records := newTestOrchestrator()

	t.Run("creates unowned record and remembers draft", func(t *testing.T) {
		record, err := orchestrator.SubmitIntake(ctx, intakeFields(), "client-1", ports.TierSession)
		require.NoError(t, err)

		assert.False(t, record.IsOwned())

		stored, err := records.FetchByID(ctx, record.ID())
		require.NoError(t, err)
		assert.False(t, stored.IsOwned())
	})

	t.Run("rejects missing client id", func(t *testing.T) {
		_, err := orchestrator.SubmitIntake(ctx, intakeFields(), "", ports.TierSession)
		assert.Error(t, err)
	})

	t.Run("rejects unknown tier", func(t *testing.T) {
		_, err := orchestrator.SubmitIntake(ctx, intakeFields(), "client-1", ports.DraftTier("bogus"))
		assert.Error(t, err)
	})
}

func TestResolveProfileClaimsIntake(t *testing.T) {
	ctx := context.Background()
	orchestrator, _ := newTestOrchestrator()

	submitted, err := orchestrator.SubmitIntake(ctx, intakeFields(), "client-1", ports.TierDurable)
	require.NoError(t, err)

	principal, err := valueobjects.NewPrincipal("principal-a", true, valueobjects.RoleCustomer)
	require.NoError(t, err)

	resolved, err := orchestrator.ResolveProfile(ctx, principal, "client-1")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.True(t, resolved.ID().Equals(submitted.ID()))
	assert.Equal(t, "principal-a", resolved.OwnerID())
}

func TestSessionIsReusedAcrossTouches(t *testing.T) {
	ctx := context.Background()
	orchestrator, _ := newTestOrchestrator()

	_, err := orchestrator.SubmitIntake(ctx, intakeFields(), "client-1", ports.TierSession)
	require.NoError(t, err)

	principal, err := valueobjects.NewPrincipal("principal-a", true, valueobjects.RoleCustomer)
	require.NoError(t, err)

	first, err := orchestrator.Session(ctx, principal, "client-1")
	require.NoError(t, err)
	require.NoError(t, first.StartEdit(nil))

	// The second touch sees the same in-flight session, edit state included
	second, err := orchestrator.Session(ctx, principal, "client-1")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, StatusEditing, second.Status())
}

func TestDropSessionForcesRebuild(t *testing.T) {
	ctx := context.Background()
	orchestrator, _ := newTestOrchestrator()

	_, err := orchestrator.SubmitIntake(ctx, intakeFields(), "client-1", ports.TierSession)
	require.NoError(t, err)

	principal, err := valueobjects.NewPrincipal("principal-a", true, valueobjects.RoleCustomer)
	require.NoError(t, err)

	first, err := orchestrator.Session(ctx, principal, "client-1")
	require.NoError(t, err)

	orchestrator.DropSession(ctx, principal)

	second, err := orchestrator.Session(ctx, principal, "client-1")
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	// The rebuilt session still sees the linked record
	require.NotNil(t, second.Committed())
	assert.Equal(t, "principal-a", second.Committed().OwnerID())
}
