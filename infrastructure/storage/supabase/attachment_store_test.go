package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

// newListServer answers every storage API call with the given object
// listing, which is all the resolve and list paths need
func newListServer(t *testing.T, names []string) *httptest.Server {
	t.Helper()

	type object struct {
		Name string `json:"name"`
	}
	listing := make([]object, 0, len(names))
	for _, name := range names {
		listing = append(listing, object{Name: name})
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(listing); err != nil {
			t.Errorf("encode listing: %v", err)
		}
	}))
}

func newTestStore(server *httptest.Server) *AttachmentStore {
	client := storage_go.NewClient(server.URL, "service-key", nil)
	return NewAttachmentStore(client, "attachments", zap.NewNop())
}

func TestResolveURLForStoredAttachment(t *testing.T) {
	server := newListServer(t, []string{keepObject, "deed.pdf"})
	defer server.Close()
	store := newTestStore(server)

	url, err := store.ResolveURL(context.Background(), "principal-a", "deed.pdf")
	require.NoError(t, err)
	assert.Contains(t, url, "attachments/principal-a/deed.pdf")
}

func TestResolveURLForMissingAttachment(t *testing.T) {
	server := newListServer(t, []string{keepObject, "deed.pdf"})
	defer server.Close()
	store := newTestStore(server)

	// The bucket holds other objects for this owner, but not this one
	url, err := store.ResolveURL(context.Background(), "principal-a", "floorplan.pdf")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestListExcludesPlaceholder(t *testing.T) {
	server := newListServer(t, []string{keepObject, "deed.pdf", "photo.jpg"})
	defer server.Close()
	store := newTestStore(server)

	attachments, err := store.List(context.Background(), "principal-a")
	require.NoError(t, err)
	require.Len(t, attachments, 2)
	assert.Equal(t, "deed.pdf", attachments[0].Name)
	assert.Equal(t, "photo.jpg", attachments[1].Name)
}
