package storeHandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usecase "boutique/internal/application/usecase"
	cartdom "boutique/internal/domain/cart"
	stockdom "boutique/internal/domain/stock"
)

type memCartRepo struct {
	carts map[string]*cartdom.Cart
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: map[string]*cartdom.Cart{}}
}

func (r *memCartRepo) Load(_ context.Context, id string) (*cartdom.Cart, error) {
	c, ok := r.carts[id]
	if !ok {
		return nil, nil
	}
	return c.Clone(), nil
}

func (r *memCartRepo) Save(_ context.Context, c *cartdom.Cart) error {
	r.carts[c.ID] = c.Clone()
	return nil
}

func (r *memCartRepo) Delete(_ context.Context, id string) error {
	delete(r.carts, id)
	return nil
}

type fakeStock struct {
	levels map[string]int
}

func (s *fakeStock) Stock(_ context.Context, productID string) (stockdom.Snapshot, error) {
	return stockdom.Snapshot{ProductID: productID, Available: s.levels[productID]}, nil
}

func newCartServer(levels map[string]int) (http.Handler, *memCartRepo) {
	repo := newMemCartRepo()
	engine := usecase.NewCartEngine(repo, &fakeStock{levels: levels})
	return NewCartHandler(engine), repo
}

func doJSON(t *testing.T, h http.Handler, method, path, cartKey string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if cartKey != "" {
		req.Header.Set("X-Cart-Key", cartKey)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCartHandler_AddAndGet(t *testing.T) {
	t.Parallel()

	h, _ := newCartServer(map[string]int{"42": 5})

	rec := doJSON(t, h, http.MethodPost, "/store/cart/items", "guest-1", map[string]any{"productId": "42"})
	require.Equal(t, http.StatusOK, rec.Code)

	var res usecase.MutationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.OK)
	assert.Equal(t, 1, res.Quantity)
	assert.Equal(t, "guest-1", rec.Header().Get("X-Cart-Key"))

	rec = doJSON(t, h, http.MethodGet, "/store/cart", "guest-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		CartKey string         `json:"cartKey"`
		Items   map[string]int `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "guest-1", got.CartKey)
	assert.Equal(t, map[string]int{"42": 1}, got.Items)
}

func TestCartHandler_IssuesGuestKeyWhenMissing(t *testing.T) {
	t.Parallel()

	h, _ := newCartServer(map[string]int{"42": 5})

	rec := doJSON(t, h, http.MethodGet, "/store/cart", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Cart-Key"))
}

func TestCartHandler_OutOfStockConflict(t *testing.T) {
	t.Parallel()

	h, _ := newCartServer(map[string]int{"42": 0})

	rec := doJSON(t, h, http.MethodPost, "/store/cart/items", "guest-1", map[string]any{"productId": "42"})
	require.Equal(t, http.StatusConflict, rec.Code)

	var res usecase.MutationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.OK)
	assert.Equal(t, usecase.FailureOutOfStock, res.Failure)
	assert.Equal(t, 0, res.AvailableStock)
}

func TestCartHandler_InsufficientStockConflict(t *testing.T) {
	t.Parallel()

	h, _ := newCartServer(map[string]int{"42": 2})

	for i := 0; i < 2; i++ {
		rec := doJSON(t, h, http.MethodPost, "/store/cart/items", "guest-1", map[string]any{"productId": "42"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, h, http.MethodPost, "/store/cart/items", "guest-1", map[string]any{"productId": "42"})
	require.Equal(t, http.StatusConflict, rec.Code)

	var res usecase.MutationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, usecase.FailureInsufficientStock, res.Failure)
	assert.Equal(t, 2, res.AvailableStock)
}

func TestCartHandler_RemoveAndClear(t *testing.T) {
	t.Parallel()

	h, repo := newCartServer(map[string]int{"42": 5, "43": 5})

	doJSON(t, h, http.MethodPost, "/store/cart/items", "guest-1", map[string]any{"productId": "42"})
	doJSON(t, h, http.MethodPost, "/store/cart/items", "guest-1", map[string]any{"productId": "43"})

	rec := doJSON(t, h, http.MethodDelete, "/store/cart/items", "guest-1", map[string]any{"productId": "42"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/store/cart", "guest-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	saved := repo.carts["guest-1"]
	require.NotNil(t, saved)
	assert.True(t, saved.IsEmpty())
}

func TestCartHandler_UpdateQuantityValidation(t *testing.T) {
	t.Parallel()

	h, _ := newCartServer(map[string]int{"42": 5})

	rec := doJSON(t, h, http.MethodPatch, "/store/cart/items", "guest-1", map[string]any{"productId": "42", "delta": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPatch, "/store/cart/items", "guest-1", map[string]any{"productId": "", "delta": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandler_ValidateReportsViolations(t *testing.T) {
	t.Parallel()

	stock := &fakeStock{levels: map[string]int{"42": 3}}
	repo := newMemCartRepo()
	engine := usecase.NewCartEngine(repo, stock)
	h := NewCartHandler(engine)

	for i := 0; i < 3; i++ {
		rec := doJSON(t, h, http.MethodPost, "/store/cart/items", "guest-1", map[string]any{"productId": "42"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// stock shrinks after the items were added
	stock.levels["42"] = 1

	rec := doJSON(t, h, http.MethodPost, "/store/cart/validate", "guest-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		OK         bool                     `json:"ok"`
		Violations []usecase.StockViolation `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.OK)
	require.Len(t, got.Violations, 1)
	assert.Equal(t, "42", got.Violations[0].ProductID)
	assert.Equal(t, 3, got.Violations[0].RequestedQuantity)
	assert.Equal(t, 1, got.Violations[0].AvailableStock)
}
