package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	repo "storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/product/p1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"_id":"p1","name":"Beans","price":15.5,"quantity":3}`))
	})
	mux.HandleFunc("/api/product/p2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"_id":"p2","price":"8","quantity":0}`))
	})
	mux.HandleFunc("/api/product/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/product/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	mux.HandleFunc("/api/product/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClient_LookupPrice(t *testing.T) {
	srv := newCatalogServer(t)
	c := NewHTTPClient(srv.URL)
	ctx := context.Background()

	info, err := c.LookupPrice(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "15.50", info.UnitPrice.StringFixed(2))
	assert.True(t, info.InStock)

	info, err = c.LookupPrice(ctx, "p2")
	require.NoError(t, err)
	assert.False(t, info.InStock)
}

func TestHTTPClient_LookupPrice_NotFound(t *testing.T) {
	srv := newCatalogServer(t)

	_, err := NewHTTPClient(srv.URL).LookupPrice(context.Background(), "missing")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestHTTPClient_LookupPrice_ServerError(t *testing.T) {
	srv := newCatalogServer(t)

	_, err := NewHTTPClient(srv.URL).LookupPrice(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

// タイムアウトは ctx で効く
func TestHTTPClient_LookupPrice_ContextTimeout(t *testing.T) {
	srv := newCatalogServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewHTTPClient(srv.URL).LookupPrice(ctx, "slow")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestHTTPClient_LookupDetails(t *testing.T) {
	srv := newCatalogServer(t)
	c := NewHTTPClient(srv.URL)
	ctx := context.Background()

	d, err := c.LookupDetails(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, repo.ProductDetails{ID: "p1", Name: "Beans"}, d)

	// 名前が無くても ID は埋める
	d, err = c.LookupDetails(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "p2", d.ID)
	assert.Empty(t, d.Name)

	_, err = c.LookupDetails(ctx, "missing")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
