package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"love-space-backend/config"
)

func TestSupabasePut(t *testing.T) {
	var gotPath, gotAuth, gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte(`{"Key":"audio-recordings/recordings/u1-1.m4a"}`))
	}))
	defer srv.Close()

	store, err := NewSupabaseStore(srv.URL+"/", "service-key", "audio-recordings", srv.Client())
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "recordings/u1-1.m4a", "audio/mp4", strings.NewReader("bytes"))
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/audio-recordings/recordings/u1-1.m4a", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "audio/mp4", gotType)
	assert.Equal(t, "bytes", gotBody)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/audio-recordings/recordings/u1-1.m4a", url)
}

func TestSupabasePutFailureKeepsProviderMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"Duplicate","message":"The resource already exists"}`))
	}))
	defer srv.Close()

	store, err := NewSupabaseStore(srv.URL, "k", "b", srv.Client())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "recordings/a.mp3", "audio/mpeg", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "The resource already exists")
}

func TestSupabaseNeedsCredentials(t *testing.T) {
	_, err := NewSupabaseStore("", "", "b", nil)
	assert.Error(t, err)
}

func TestEscapeKey(t *testing.T) {
	assert.Equal(t, "recordings/my%20clip.m4a", escapeKey("recordings/my clip.m4a"))
	assert.Equal(t, "https://storage.googleapis.com/bucket/recordings/a.ogg",
		objectURL("bucket", "recordings/a.ogg"))
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Backend: "floppy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floppy")
}
