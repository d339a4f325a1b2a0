package services

import (
	"context"
	"errors"
	"testing"

	"homeport-backend/application/ports"
	"homeport-backend/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestDraftStore() (*DraftStore, *memory.DraftTierStore, *memory.DraftTierStore) {
	session := memory.NewDraftTierStore()
	durable := memory.NewDraftTierStore()
	return NewDraftStore(session, durable, zap.NewNop()), session, durable
}

func TestDraftStoreRememberRecall(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestDraftStore()

	store.Remember(ctx, "client-1", "record-a", ports.TierSession)

	assert.Equal(t, "record-a", store.Recall(ctx, "client-1", ports.TierSession))
	assert.Empty(t, store.Recall(ctx, "client-1", ports.TierDurable))
	assert.Empty(t, store.Recall(ctx, "client-2", ports.TierSession))
}

func TestDraftStoreConsumeClears(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestDraftStore()

	store.Remember(ctx, "client-1", "record-a", ports.TierDurable)

	assert.Equal(t, "record-a", store.Consume(ctx, "client-1", ports.TierDurable))
	assert.Empty(t, store.Consume(ctx, "client-1", ports.TierDurable))
}

func TestDraftStoreConsumeFirstPrecedence(t *testing.T) {
	ctx := context.Background()

	t.Run("durable wins over session", func(t *testing.T) {
		store, _, _ := newTestDraftStore()
		store.Remember(ctx, "client-1", "session-record", ports.TierSession)
		store.Remember(ctx, "client-1", "durable-record", ports.TierDurable)

		recordID, tier := store.ConsumeFirst(ctx, "client-1")
		assert.Equal(t, "durable-record", recordID)
		assert.Equal(t, ports.TierDurable, tier)

		// Session reference is still there for the next call
		recordID, tier = store.ConsumeFirst(ctx, "client-1")
		assert.Equal(t, "session-record", recordID)
		assert.Equal(t, ports.TierSession, tier)
	})

	t.Run("session when durable is empty", func(t *testing.T) {
		store, _, _ := newTestDraftStore()
		store.Remember(ctx, "client-1", "session-record", ports.TierSession)

		recordID, tier := store.ConsumeFirst(ctx, "client-1")
		assert.Equal(t, "session-record", recordID)
		assert.Equal(t, ports.TierSession, tier)
	})

	t.Run("empty when nothing stored", func(t *testing.T) {
		store, _, _ := newTestDraftStore()
		recordID, _ := store.ConsumeFirst(ctx, "client-1")
		assert.Empty(t, recordID)
	})
}

func TestDraftStoreDegradesOnTierFailure(t *testing.T) {
	ctx := context.Background()
	store, session, durable := newTestDraftStore()

	store.Remember(ctx, "client-1", "session-record", ports.TierSession)
	durable.FailWith(errors.New("table offline"))

	// An unavailable durable tier reads as absent, the session tier still
	// serves
	recordID, tier := store.ConsumeFirst(ctx, "client-1")
	assert.Equal(t, "session-record", recordID)
	assert.Equal(t, ports.TierSession, tier)

	// A failed write is swallowed
	session.FailWith(errors.New("storage full"))
	store.Remember(ctx, "client-2", "record-b", ports.TierSession)
}

func TestDraftStoreClearAll(t *testing.T) {
	ctx := context.Background()
	store, session, durable := newTestDraftStore()

	store.Remember(ctx, "client-1", "record-a", ports.TierSession)
	store.Remember(ctx, "client-1", "record-b", ports.TierDurable)

	store.ClearAll(ctx, "client-1")

	assert.Equal(t, 0, session.Len())
	assert.Equal(t, 0, durable.Len())
}
