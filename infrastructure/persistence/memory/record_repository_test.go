package memory

import (
	"context"
	"sync"
	"testing"

	"homeport-backend/domain/core/entities"
	"homeport-backend/domain/core/valueobjects"
	pkgerrors "homeport-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedRecord(t *testing.T, repo *RecordRepository) *entities.Record {
	t.Helper()

	record, err := entities.NewRecord(valueobjects.NewFieldSetFrom(map[string]interface{}{
		"city": "Eindhoven",
	}), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), record))
	return record
}

func TestRecordRepositoryFetch(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordRepository()
	record := storedRecord(t, repo)

	t.Run("fetch by id", func(t *testing.T) {
		fetched, err := repo.FetchByID(ctx, record.ID())
		require.NoError(t, err)
		assert.True(t, fetched.ID().Equals(record.ID()))
	})

	t.Run("missing id is not found", func(t *testing.T) {
		_, err := repo.FetchByID(ctx, valueobjects.NewRecordID())
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("snapshot isolation", func(t *testing.T) {
		first, err := repo.FetchByID(ctx, record.ID())
		require.NoError(t, err)
		require.NoError(t, first.BindOwner("someone"))

		// Mutating a fetched entity never leaks into the store
		second, err := repo.FetchByID(ctx, record.ID())
		require.NoError(t, err)
		assert.False(t, second.IsOwned())
	})
}

func TestRecordRepositoryFetchLatestFor(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordRepository()

	t.Run("empty owner yields nothing", func(t *testing.T) {
		record, err := repo.FetchLatestFor(ctx, "")
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("unowned records are invisible", func(t *testing.T) {
		storedRecord(t, repo)
		record, err := repo.FetchLatestFor(ctx, "principal-a")
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("returns newest owned record", func(t *testing.T) {
		older := storedRecord(t, repo)
		newer := storedRecord(t, repo)
		_, err := repo.BindOwner(ctx, older.ID(), "principal-a")
		require.NoError(t, err)
		_, err = repo.BindOwner(ctx, newer.ID(), "principal-a")
		require.NoError(t, err)

		latest, err := repo.FetchLatestFor(ctx, "principal-a")
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.True(t, latest.ID().Equals(newer.ID()))
	})
}

func TestRecordRepositoryBindOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("binds and is idempotent", func(t *testing.T) {
		repo := NewRecordRepository()
		record := storedRecord(t, repo)

		bound, err := repo.BindOwner(ctx, record.ID(), "principal-a")
		require.NoError(t, err)
		assert.Equal(t, "principal-a", bound.OwnerID())

		again, err := repo.BindOwner(ctx, record.ID(), "principal-a")
		require.NoError(t, err)
		assert.Equal(t, "principal-a", again.OwnerID())
		assert.Equal(t, 1, repo.BindSuccesses())
	})

	t.Run("conflicts on a claimed record", func(t *testing.T) {
		repo := NewRecordRepository()
		record := storedRecord(t, repo)
		_, err := repo.BindOwner(ctx, record.ID(), "principal-a")
		require.NoError(t, err)

		_, err = repo.BindOwner(ctx, record.ID(), "principal-b")
		assert.True(t, pkgerrors.IsConflict(err))
	})

	t.Run("missing record is not found", func(t *testing.T) {
		repo := NewRecordRepository()
		_, err := repo.BindOwner(ctx, valueobjects.NewRecordID(), "principal-a")
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("exactly one concurrent winner", func(t *testing.T) {
		repo := NewRecordRepository()
		record := storedRecord(t, repo)

		const claimants = 32
		var wg sync.WaitGroup
		winners := make(chan string, claimants)

		for i := 0; i < claimants; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				owner := string(rune('a' + i%8))
				if _, err := repo.BindOwner(ctx, record.ID(), "principal-"+owner); err == nil {
					winners <- owner
				}
			}(i)
		}
		wg.Wait()
		close(winners)

		assert.Equal(t, 1, repo.BindSuccesses())

		stored, err := repo.FetchByID(ctx, record.ID())
		require.NoError(t, err)

		// Every claimant that got a nil error saw the same final owner
		for owner := range winners {
			assert.Equal(t, "principal-"+owner, stored.OwnerID())
		}
	})
}

func TestRecordRepositoryMarkCompleted(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordRepository()
	record := storedRecord(t, repo)
	_, err := repo.BindOwner(ctx, record.ID(), "principal-a")
	require.NoError(t, err)

	completed, err := repo.MarkCompleted(ctx, record.ID())
	require.NoError(t, err)
	assert.True(t, completed.Completed())

	// Idempotent
	again, err := repo.MarkCompleted(ctx, record.ID())
	require.NoError(t, err)
	assert.Equal(t, completed.Version(), again.Version())
}
