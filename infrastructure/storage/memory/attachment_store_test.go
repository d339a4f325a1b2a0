package memory

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentStoreEnsureScope(t *testing.T) {
	ctx := context.Background()
	store := NewAttachmentStore()

	require.NoError(t, store.EnsureScope(ctx, "principal-a"))
	require.NoError(t, store.EnsureScope(ctx, "principal-a"))

	files, err := store.List(ctx, "principal-a")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestAttachmentStoreUploadAndList(t *testing.T) {
	ctx := context.Background()
	store := NewAttachmentStore()

	payload := bytes.Repeat([]byte("floorplan"), 6000) // ~54KB
	path, err := store.Upload(ctx, "principal-a", "floorplan.pdf", bytes.NewReader(payload), int64(len(payload)), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "principal-a/floorplan.pdf", path)

	_, err = store.Upload(ctx, "principal-a", "deed.pdf", strings.NewReader("deed"), 4, "application/pdf")
	require.NoError(t, err)

	files, err := store.List(ctx, "principal-a")
	require.NoError(t, err)
	require.Len(t, files, 2)

	// Sorted by name
	assert.Equal(t, "deed.pdf", files[0].Name)
	assert.Equal(t, "floorplan.pdf", files[1].Name)
	assert.Equal(t, int64(len(payload)), files[1].Size)
	assert.Equal(t, "application/pdf", files[1].ContentType)
	assert.Equal(t, "principal-a", files[1].OwnerScope)
}

func TestAttachmentStoreScopeIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewAttachmentStore()

	_, err := store.Upload(ctx, "principal-a", "photo.jpg", strings.NewReader("jpeg"), 4, "image/jpeg")
	require.NoError(t, err)

	files, err := store.List(ctx, "principal-b")
	require.NoError(t, err)
	assert.Empty(t, files)

	url, err := store.ResolveURL(ctx, "principal-b", "photo.jpg")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestAttachmentStoreResolveURL(t *testing.T) {
	ctx := context.Background()
	store := NewAttachmentStore()

	_, err := store.Upload(ctx, "principal-a", "photo.jpg", strings.NewReader("jpeg"), 4, "image/jpeg")
	require.NoError(t, err)

	url, err := store.ResolveURL(ctx, "principal-a", "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "memory://attachments/principal-a/photo.jpg", url)

	url, err = store.ResolveURL(ctx, "principal-a", "missing.jpg")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestAttachmentStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewAttachmentStore()

	_, err := store.Upload(ctx, "principal-a", "photo.jpg", strings.NewReader("jpeg"), 4, "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "principal-a", "photo.jpg"))

	files, err := store.List(ctx, "principal-a")
	require.NoError(t, err)
	assert.Empty(t, files)

	// Absent file and absent scope are both fine
	assert.NoError(t, store.Delete(ctx, "principal-a", "photo.jpg"))
	assert.NoError(t, store.Delete(ctx, "principal-b", "photo.jpg"))
}

func TestAttachmentStoreFailureInjection(t *testing.T) {
	ctx := context.Background()
	store := NewAttachmentStore()
	store.FailWith(errors.New("bucket offline"))

	_, err := store.Upload(ctx, "principal-a", "photo.jpg", strings.NewReader("jpeg"), 4, "image/jpeg")
	assert.Error(t, err)

	store.FailWith(nil)
	_, err = store.Upload(ctx, "principal-a", "photo.jpg", strings.NewReader("jpeg"), 4, "image/jpeg")
	assert.NoError(t, err)
}
