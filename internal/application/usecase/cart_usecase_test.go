package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	usecase "boutique/internal/application/usecase"
	cartdom "boutique/internal/domain/cart"
	stockdom "boutique/internal/domain/stock"
)

// ----------------------------
// Fakes
// ----------------------------

type memCartRepo struct {
	carts    map[string]*cartdom.Cart
	failSave bool
	failLoad bool
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: map[string]*cartdom.Cart{}}
}

func (r *memCartRepo) Load(_ context.Context, id string) (*cartdom.Cart, error) {
	if r.failLoad {
		return nil, errors.New("load failed")
	}
	c, ok := r.carts[id]
	if !ok {
		return nil, nil
	}
	return c.Clone(), nil
}

func (r *memCartRepo) Save(_ context.Context, c *cartdom.Cart) error {
	if r.failSave {
		return errors.New("save failed")
	}
	r.carts[c.ID] = c.Clone()
	return nil
}

func (r *memCartRepo) Delete(_ context.Context, id string) error {
	delete(r.carts, id)
	return nil
}

type fakeStock struct {
	levels map[string]int
	errs   map[string]error
	calls  int
}

func (s *fakeStock) Stock(_ context.Context, productID string) (stockdom.Snapshot, error) {
	s.calls++
	if err, ok := s.errs[productID]; ok {
		return stockdom.Snapshot{}, err
	}
	return stockdom.Snapshot{ProductID: productID, Available: s.levels[productID]}, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newEngine(repo *memCartRepo, st *fakeStock) *usecase.CartEngine {
	return usecase.NewCartEngineWithClock(repo, st, fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)})
}

// ----------------------------
// AddToCart
// ----------------------------

func TestAddToCart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty cart, stock 3: succeeds with remaining hint 2", func(t *testing.T) {
		t.Parallel()
		repo := newMemCartRepo()
		eng := newEngine(repo, &fakeStock{levels: map[string]int{"42": 3}})

		res, err := eng.AddToCart(ctx, "uid-1", "42")
		require.NoError(t, err)
		require.True(t, res.OK)
		require.Equal(t, 1, res.Quantity)
		require.Equal(t, 2, res.RemainingStock)

		q, err := eng.Quantities(ctx, "uid-1")
		require.NoError(t, err)
		require.Equal(t, 1, q["42"])
	})

	t.Run("zero stock fails OutOfStock", func(t *testing.T) {
		t.Parallel()
		repo := newMemCartRepo()
		eng := newEngine(repo, &fakeStock{levels: map[string]int{"42": 0}})

		res, err := eng.AddToCart(ctx, "uid-1", "42")
		require.NoError(t, err)
		require.False(t, res.OK)
		require.Equal(t, usecase.FailureOutOfStock, res.Failure)
	})

	t.Run("cart at capacity fails InsufficientStock, state unchanged", func(t *testing.T) {
		t.Parallel()
		repo := newMemCartRepo()
		st := &fakeStock{levels: map[string]int{"42": 3}}
		eng := newEngine(repo, st)

		for i := 0; i < 3; i++ {
			res, err := eng.AddToCart(ctx, "uid-1", "42")
			require.NoError(t, err)
			require.True(t, res.OK)
		}

		res, err := eng.AddToCart(ctx, "uid-1", "42")
		require.NoError(t, err)
		require.False(t, res.OK)
		require.Equal(t, usecase.FailureInsufficientStock, res.Failure)
		require.Equal(t, 3, res.AvailableStock)

		q, err := eng.Quantities(ctx, "uid-1")
		require.NoError(t, err)
		require.Equal(t, 3, q["42"])
	})

	t.Run("stock fetch error reads as zero (fail-safe)", func(t *testing.T) {
		t.Parallel()
		repo := newMemCartRepo()
		eng := newEngine(repo, &fakeStock{errs: map[string]error{"42": errors.New("timeout")}})

		res, err := eng.AddToCart(ctx, "uid-1", "42")
		require.NoError(t, err)
		require.False(t, res.OK)
		require.Equal(t, usecase.FailureOutOfStock, res.Failure)
	})

	t.Run("persist failure rolls back", func(t *testing.T) {
		t.Parallel()
		repo := newMemCartRepo()
		repo.failSave = true
		eng := newEngine(repo, &fakeStock{levels: map[string]int{"42": 3}})

		res, err := eng.AddToCart(ctx, "uid-1", "42")
		require.NoError(t, err)
		require.False(t, res.OK)
		require.Equal(t, usecase.FailurePersistence, res.Failure)
		require.Empty(t, repo.carts)
	})
}

// ----------------------------
// UpdateQuantity
// ----------------------------

func TestUpdateQuantity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("negative delta clamps at zero without stock check", func(t *testing.T) {
		t.Parallel()
		repo := newMemCartRepo()
		st := &fakeStock{levels: map[string]int{"42": 5}}
		eng := newEngine(repo, st)

		_, err := eng.UpdateQuantity(ctx, "uid-1", "42", 2)
		require.NoError(t, err)
		stockCallsAfterGrow := st.calls

		res, err := eng.UpdateQuantity(ctx, "uid-1", "42", -5)
		require.NoError(t, err)
		require.True(t, res.OK)
		require.Equal(t, 0, res.Quantity)
		// shrinking never re-fetches stock
		require.Equal(t, stockCallsAfterGrow, st.calls)
	})

	t.Run("positive delta exceeding stock fails", func(t *testing.T) {
		t.Parallel()
		repo := newMemCartRepo()
		eng := newEngine(repo, &fakeStock{levels: map[string]int{"42": 3}})

		_, err := eng.UpdateQuantity(ctx, "uid-1", "42", 2)
		require.NoError(t, err)

		res, err := eng.UpdateQuantity(ctx, "uid-1", "42", 2)
		require.NoError(t, err)
		require.False(t, res.OK)
		require.Equal(t, usecase.FailureInsufficientStock, res.Failure)
		require.Equal(t, 3, res.AvailableStock)
		require.Equal(t, 2, res.Quantity)
	})

	t.Run("positive delta within stock appends", func(t *testing.T) {
		t.Parallel()
		repo := newMemCartRepo()
		eng := newEngine(repo, &fakeStock{levels: map[string]int{"42": 3}})

		res, err := eng.UpdateQuantity(ctx, "uid-1", "42", 3)
		require.NoError(t, err)
		require.True(t, res.OK)
		require.Equal(t, 3, res.Quantity)
		require.Equal(t, 0, res.RemainingStock)
	})

	t.Run("zero delta is an argument error", func(t *testing.T) {
		t.Parallel()
		repo := newMemCartRepo()
		eng := newEngine(repo, &fakeStock{})

		_, err := eng.UpdateQuantity(ctx, "uid-1", "42", 0)
		require.ErrorIs(t, err, usecase.ErrCartInvalidArgument)
	})
}

// ----------------------------
// Remove / Clear / CanAdd
// ----------------------------

func TestRemoveFromCartIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newMemCartRepo()
	eng := newEngine(repo, &fakeStock{levels: map[string]int{"42": 3, "7": 3}})

	_, err := eng.AddToCart(ctx, "uid-1", "42")
	require.NoError(t, err)
	_, err = eng.AddToCart(ctx, "uid-1", "7")
	require.NoError(t, err)

	res, err := eng.RemoveFromCart(ctx, "uid-1", "42")
	require.NoError(t, err)
	require.True(t, res.OK)

	after, err := eng.Quantities(ctx, "uid-1")
	require.NoError(t, err)

	// second removal of an absent id yields the same state
	res2, err := eng.RemoveFromCart(ctx, "uid-1", "42")
	require.NoError(t, err)
	require.True(t, res2.OK)

	again, err := eng.Quantities(ctx, "uid-1")
	require.NoError(t, err)
	require.Equal(t, after, again)
	require.Equal(t, map[string]int{"7": 1}, again)
}

func TestClearCart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newMemCartRepo()
	eng := newEngine(repo, &fakeStock{levels: map[string]int{"42": 3}})

	_, err := eng.AddToCart(ctx, "uid-1", "42")
	require.NoError(t, err)

	res, err := eng.ClearCart(ctx, "uid-1")
	require.NoError(t, err)
	require.True(t, res.OK)
	require.Empty(t, repo.carts)

	q, err := eng.Quantities(ctx, "uid-1")
	require.NoError(t, err)
	require.Empty(t, q)
}

func TestCanAddMoreItems(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newMemCartRepo()
	st := &fakeStock{levels: map[string]int{"42": 1}}
	eng := newEngine(repo, st)

	ok, err := eng.CanAddMoreItems(ctx, "uid-1", "42")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = eng.AddToCart(ctx, "uid-1", "42")
	require.NoError(t, err)

	ok, err = eng.CanAddMoreItems(ctx, "uid-1", "42")
	require.NoError(t, err)
	require.False(t, ok)

	// stock failure answers false, not an error
	st.errs = map[string]error{"42": errors.New("down")}
	ok, err = eng.CanAddMoreItems(ctx, "uid-1", "42")
	require.NoError(t, err)
	require.False(t, ok)
}

// ----------------------------
// ValidateStock
// ----------------------------

func TestValidateStockReportsAllViolations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newMemCartRepo()
	st := &fakeStock{levels: map[string]int{"42": 3, "7": 2}}
	eng := newEngine(repo, st)

	for i := 0; i < 3; i++ {
		_, err := eng.AddToCart(ctx, "uid-1", "42")
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := eng.AddToCart(ctx, "uid-1", "7")
		require.NoError(t, err)
	}

	// stock shrank after the items were added (sold on another channel)
	st.levels["42"] = 1
	st.levels["7"] = 0

	violations, err := eng.ValidateStock(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, violations, 2)
	require.Contains(t, violations, usecase.StockViolation{ProductID: "42", RequestedQuantity: 3, AvailableStock: 1})
	require.Contains(t, violations, usecase.StockViolation{ProductID: "7", RequestedQuantity: 2, AvailableStock: 0})
}

func TestValidateStockCleanCart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newMemCartRepo()
	eng := newEngine(repo, &fakeStock{levels: map[string]int{"42": 3}})

	_, err := eng.AddToCart(ctx, "uid-1", "42")
	require.NoError(t, err)

	violations, err := eng.ValidateStock(ctx, "uid-1")
	require.NoError(t, err)
	require.Empty(t, violations)
}
