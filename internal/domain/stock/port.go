package stock

import "context"

// Snapshot is a point-in-time read of remote inventory for one product.
// It is never trusted beyond the operation that fetched it: every mutating
// cart decision re-fetches its own snapshot.
type Snapshot struct {
	ProductID string `json:"productId"`
	Available int    `json:"availableStock"`
}

// Reader is the output port for live stock lookups.
//
// Implementations must return an error (not a zero snapshot) on transport
// failure; the caller decides whether to map that to fail-safe zero stock
// (mutations) or to a retryable condition (read-only displays).
type Reader interface {
	Stock(ctx context.Context, productID string) (Snapshot, error)
}
