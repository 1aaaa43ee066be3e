package dolibarr_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"boutique/internal/infra/dolibarr"
)

func TestGetProduct(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products/42", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("DOLAPIKEY"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"42","label":"Jus","price_ttc":"120","tva_tx":"20"}`))
	}))
	defer srv.Close()

	c := dolibarr.NewClient(srv.URL, "secret")
	raw, err := c.GetProduct(context.Background(), "42")
	require.NoError(t, err)
	require.Equal(t, "42", raw["id"])
	require.Equal(t, "Jus", raw["label"])
}

func TestGetProduct404IsEmptyResultNotError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Not Found"}}`))
	}))
	defer srv.Close()

	c := dolibarr.NewClient(srv.URL, "")
	raw, err := c.GetProduct(context.Background(), "999")
	require.NoError(t, err)
	require.Nil(t, raw)
}

func TestGetProductsByIDsEmptyListing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Query().Get("sqlfilters"), "t.rowid:in:(1,2)")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := dolibarr.NewClient(srv.URL, "")
	raws, err := c.GetProductsByIDs(context.Background(), []string{"1", " 2 ", ""})
	require.NoError(t, err)
	require.Empty(t, raws)
}

func TestServerErrorIsRetriedThenSurfaced(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := dolibarr.NewClient(srv.URL, "")
	_, err := c.GetProduct(context.Background(), "42")
	require.ErrorIs(t, err, dolibarr.ErrRemoteUnavailable)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRecoveryWithinRetryBudget(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"42"}`))
	}))
	defer srv.Close()

	c := dolibarr.NewClient(srv.URL, "")
	raw, err := c.GetProduct(context.Background(), "42")
	require.NoError(t, err)
	require.Equal(t, "42", raw["id"])
}

func TestBadRequestIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := dolibarr.NewClient(srv.URL, "bad-key")
	_, err := c.GetProduct(context.Background(), "42")
	require.ErrorIs(t, err, dolibarr.ErrRemoteUnavailable)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
