package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	cartdom "boutique/internal/domain/cart"
	stockdom "boutique/internal/domain/stock"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
)

// FailureKind classifies a rejected cart mutation for the client.
// Nothing is thrown across this boundary: handlers render these as messages.
type FailureKind string

const (
	FailureNone FailureKind = ""

	// FailureOutOfStock: available stock is zero at decision time.
	FailureOutOfStock FailureKind = "outOfStock"

	// FailureInsufficientStock: the requested increase exceeds available
	// stock. Result carries the actual available count for user messaging.
	FailureInsufficientStock FailureKind = "insufficientStock"

	// FailurePersistence: the durable write failed; the mutation was rolled
	// back and the prior state preserved.
	FailurePersistence FailureKind = "persistenceFailure"
)

// MutationResult is the structured outcome of every cart mutation.
type MutationResult struct {
	OK        bool        `json:"ok"`
	Failure   FailureKind `json:"failure,omitempty"`
	ProductID string      `json:"productId,omitempty"`

	// Quantity is the resulting in-cart quantity for ProductID.
	Quantity int `json:"quantity"`

	// AvailableStock is the stock observed at decision time
	// (0 when the lookup itself failed: fail-safe, never oversell).
	AvailableStock int `json:"availableStock"`

	// RemainingStock hints how many more can still be added after success.
	RemainingStock int `json:"remainingStock"`
}

// StockViolation reports one cart line whose held quantity now exceeds
// availability (stock shrank after the items were added).
type StockViolation struct {
	ProductID         string `json:"productId"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableStock    int    `json:"availableStock"`
}

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// DefaultStockTimeout bounds every stock lookup made for a mutating
// decision. A timed-out lookup follows the fail-safe zero-stock path instead
// of hanging the add-to-cart action.
const DefaultStockTimeout = 10 * time.Second

// CartEngine maintains an eventually-consistent, stock-safe cart.
//
// Concurrency model: no lock. Correctness relies on re-fetching stock
// immediately before each mutating decision (read-then-validate-then-write
// within one operation) rather than trusting any cached value. Two
// concurrent adds can still both pass the check; ValidateStock catches the
// resulting over-reservation after the fact.
type CartEngine struct {
	repo  cartdom.Repository
	stock stockdom.Reader
	clock Clock

	stockTimeout time.Duration
}

func NewCartEngine(repo cartdom.Repository, stock stockdom.Reader) *CartEngine {
	return &CartEngine{
		repo:         repo,
		stock:        stock,
		clock:        systemClock{},
		stockTimeout: DefaultStockTimeout,
	}
}

// NewCartEngineWithClock is useful for tests.
func NewCartEngineWithClock(repo cartdom.Repository, stock stockdom.Reader, clock Clock) *CartEngine {
	if clock == nil {
		clock = systemClock{}
	}
	e := NewCartEngine(repo, stock)
	e.clock = clock
	return e
}

// Get returns the cart for key, creating nothing. Absent cart -> empty cart.
func (e *CartEngine) Get(ctx context.Context, key string) (*cartdom.Cart, error) {
	k := strings.TrimSpace(key)
	if k == "" {
		return nil, ErrCartInvalidArgument
	}
	c, err := e.repo.Load(ctx, k)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return cartdom.New(k, nil, e.clock.Now())
	}
	return c, nil
}

// AddToCart appends one occurrence of productID after re-validating stock.
func (e *CartEngine) AddToCart(ctx context.Context, key, productID string) (MutationResult, error) {
	k := strings.TrimSpace(key)
	pid := strings.TrimSpace(productID)
	if k == "" || pid == "" {
		return MutationResult{}, ErrCartInvalidArgument
	}

	c, err := e.loadOrNew(ctx, k)
	if err != nil {
		return persistenceFailure(pid, nil), nil
	}

	avail := e.fetchStockFailSafe(ctx, pid)
	qty := c.Quantity(pid)

	if avail <= 0 {
		return MutationResult{Failure: FailureOutOfStock, ProductID: pid, Quantity: qty}, nil
	}
	if qty >= avail {
		return MutationResult{
			Failure:        FailureInsufficientStock,
			ProductID:      pid,
			Quantity:       qty,
			AvailableStock: avail,
		}, nil
	}

	next := c.Clone()
	now := e.clock.Now()
	if err := next.Append(pid, 1, now); err != nil {
		return MutationResult{}, err
	}
	if err := e.repo.Save(ctx, next); err != nil {
		// persist failed: the clone is discarded, prior state stands
		log.Printf("[cart_engine] add persist failed key=%q productId=%q err=%v", k, pid, err)
		return persistenceFailure(pid, c), nil
	}

	return MutationResult{
		OK:             true,
		ProductID:      pid,
		Quantity:       qty + 1,
		AvailableStock: avail,
		RemainingStock: avail - (qty + 1),
	}, nil
}

// UpdateQuantity applies a signed quantity delta.
// delta < 0 always succeeds locally (clamped at zero, no stock check).
// delta > 0 re-fetches stock and is rejected when qty+delta > available.
func (e *CartEngine) UpdateQuantity(ctx context.Context, key, productID string, delta int) (MutationResult, error) {
	k := strings.TrimSpace(key)
	pid := strings.TrimSpace(productID)
	if k == "" || pid == "" || delta == 0 {
		return MutationResult{}, ErrCartInvalidArgument
	}

	c, err := e.loadOrNew(ctx, k)
	if err != nil {
		return persistenceFailure(pid, nil), nil
	}

	qty := c.Quantity(pid)
	now := e.clock.Now()

	if delta < 0 {
		next := c.Clone()
		if err := next.Shrink(pid, -delta, now); err != nil {
			return MutationResult{}, err
		}
		if err := e.repo.Save(ctx, next); err != nil {
			log.Printf("[cart_engine] shrink persist failed key=%q productId=%q err=%v", k, pid, err)
			return persistenceFailure(pid, c), nil
		}
		return MutationResult{OK: true, ProductID: pid, Quantity: next.Quantity(pid)}, nil
	}

	avail := e.fetchStockFailSafe(ctx, pid)
	if avail <= 0 {
		return MutationResult{Failure: FailureOutOfStock, ProductID: pid, Quantity: qty}, nil
	}
	if qty+delta > avail {
		return MutationResult{
			Failure:        FailureInsufficientStock,
			ProductID:      pid,
			Quantity:       qty,
			AvailableStock: avail,
		}, nil
	}

	next := c.Clone()
	if err := next.Append(pid, delta, now); err != nil {
		return MutationResult{}, err
	}
	if err := e.repo.Save(ctx, next); err != nil {
		log.Printf("[cart_engine] grow persist failed key=%q productId=%q err=%v", k, pid, err)
		return persistenceFailure(pid, c), nil
	}

	return MutationResult{
		OK:             true,
		ProductID:      pid,
		Quantity:       qty + delta,
		AvailableStock: avail,
		RemainingStock: avail - (qty + delta),
	}, nil
}

// RemoveFromCart drops every occurrence of productID. Removing an absent id
// is a no-op, not an error.
func (e *CartEngine) RemoveFromCart(ctx context.Context, key, productID string) (MutationResult, error) {
	k := strings.TrimSpace(key)
	pid := strings.TrimSpace(productID)
	if k == "" || pid == "" {
		return MutationResult{}, ErrCartInvalidArgument
	}

	c, err := e.repo.Load(ctx, k)
	if err != nil {
		return persistenceFailure(pid, nil), nil
	}
	if c == nil || c.Quantity(pid) == 0 {
		return MutationResult{OK: true, ProductID: pid, Quantity: 0}, nil
	}

	next := c.Clone()
	if err := next.RemoveAll(pid, e.clock.Now()); err != nil {
		return MutationResult{}, err
	}
	if err := e.repo.Save(ctx, next); err != nil {
		log.Printf("[cart_engine] remove persist failed key=%q productId=%q err=%v", k, pid, err)
		return persistenceFailure(pid, c), nil
	}
	return MutationResult{OK: true, ProductID: pid, Quantity: 0}, nil
}

// ClearCart empties state and removes the persisted entry.
func (e *CartEngine) ClearCart(ctx context.Context, key string) (MutationResult, error) {
	k := strings.TrimSpace(key)
	if k == "" {
		return MutationResult{}, ErrCartInvalidArgument
	}
	if err := e.repo.Delete(ctx, k); err != nil {
		log.Printf("[cart_engine] clear failed key=%q err=%v", k, err)
		return persistenceFailure("", nil), nil
	}
	return MutationResult{OK: true}, nil
}

// Quantities derives id -> occurrence count from the persisted sequence.
func (e *CartEngine) Quantities(ctx context.Context, key string) (map[string]int, error) {
	c, err := e.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return c.Quantities(), nil
}

// CanAddMoreItems is a read-only stock/quantity comparison; it mutates
// nothing. A failed stock lookup answers false (fail-safe).
func (e *CartEngine) CanAddMoreItems(ctx context.Context, key, productID string) (bool, error) {
	k := strings.TrimSpace(key)
	pid := strings.TrimSpace(productID)
	if k == "" || pid == "" {
		return false, ErrCartInvalidArgument
	}

	c, err := e.repo.Load(ctx, k)
	if err != nil {
		return false, err
	}
	qty := 0
	if c != nil {
		qty = c.Quantity(pid)
	}
	return qty < e.fetchStockFailSafe(ctx, pid), nil
}

// ValidateStock re-fetches stock for every distinct id in the cart and
// reports all lines whose held quantity now exceeds availability. It never
// stops at the first violation.
func (e *CartEngine) ValidateStock(ctx context.Context, key string) ([]StockViolation, error) {
	c, err := e.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var out []StockViolation
	for _, pid := range c.DistinctIDs() {
		qty := c.Quantity(pid)
		avail := e.fetchStockFailSafe(ctx, pid)
		if qty > avail {
			out = append(out, StockViolation{
				ProductID:         pid,
				RequestedQuantity: qty,
				AvailableStock:    avail,
			})
		}
	}
	return out, nil
}

// ----------------------------
// Internals
// ----------------------------

func (e *CartEngine) loadOrNew(ctx context.Context, key string) (*cartdom.Cart, error) {
	c, err := e.repo.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return cartdom.New(key, nil, e.clock.Now())
	}
	return c, nil
}

// fetchStockFailSafe re-fetches live stock with a bounded timeout.
// Any failure reads as zero available: never silently oversell.
func (e *CartEngine) fetchStockFailSafe(ctx context.Context, productID string) int {
	ctx, cancel := context.WithTimeout(ctx, e.stockTimeout)
	defer cancel()

	snap, err := e.stock.Stock(ctx, productID)
	if err != nil {
		log.Printf("[cart_engine] stock fetch failed productId=%q err=%v (treating as 0)", productID, err)
		return 0
	}
	if snap.Available < 0 {
		return 0
	}
	return snap.Available
}

func persistenceFailure(productID string, prior *cartdom.Cart) MutationResult {
	qty := 0
	if prior != nil {
		qty = prior.Quantity(productID)
	}
	return MutationResult{Failure: FailurePersistence, ProductID: productID, Quantity: qty}
}
