package blobstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadReturnsPublicURL(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Key":"covers/covers/user-alice/1-sunset.jpg"}`))
	}))
	defer server.Close()

	client := NewSupabase(server.URL, "service-key", "covers")

	url, err := client.Upload(context.Background(), "user-alice/1-sunset.jpg", []byte{0xff, 0xd8}, "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/covers/user-alice/1-sunset.jpg", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "image/jpeg", gotContentType)
	assert.Equal(t, []byte{0xff, 0xd8}, gotBody)
	assert.Equal(t, server.URL+"/storage/v1/object/public/covers/user-alice/1-sunset.jpg", url)
}

func TestUploadDefaultsContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewSupabase(server.URL, "service-key", "covers")
	_, err := client.Upload(context.Background(), "k", []byte("x"), "")
	require.NoError(t, err)
}

func TestUploadSurfacesStorageError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"new row violates row-level security policy","error":"Unauthorized"}`))
	}))
	defer server.Close()

	client := NewSupabase(server.URL, "bad-key", "covers")
	_, err := client.Upload(context.Background(), "k", []byte("x"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row-level security")
	assert.Contains(t, err.Error(), "403")
}

func TestPublicURLIsStable(t *testing.T) {
	client := NewSupabase("https://proj.supabase.co/", "key", "covers")
	url := client.PublicURL("user-alice/1-sunset.jpg")
	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/covers/user-alice/1-sunset.jpg", url)
	assert.Equal(t, url, client.PublicURL("user-alice/1-sunset.jpg"))
}
