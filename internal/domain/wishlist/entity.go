package wishlist

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidWishlist = errors.New("wishlist: invalid")

// Wishlist is a per-user set of product ids (no quantities).
type Wishlist struct {
	ID         string    `json:"id" firestore:"id"`
	ProductIDs []string  `json:"productIds" firestore:"productIds"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" firestore:"updatedAt"`
}

func New(id string, now time.Time) (*Wishlist, error) {
	key := strings.TrimSpace(id)
	if key == "" {
		return nil, ErrInvalidWishlist
	}
	return &Wishlist{
		ID:         key,
		ProductIDs: []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Add inserts productID once; adding a present id is a no-op.
func (w *Wishlist) Add(productID string, now time.Time) error {
	if w == nil {
		return ErrInvalidWishlist
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return ErrInvalidWishlist
	}
	for _, e := range w.ProductIDs {
		if e == pid {
			return nil
		}
	}
	w.ProductIDs = append(w.ProductIDs, pid)
	w.UpdatedAt = now
	return nil
}

// Remove drops productID; removing an absent id is a no-op.
func (w *Wishlist) Remove(productID string, now time.Time) error {
	if w == nil {
		return ErrInvalidWishlist
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return ErrInvalidWishlist
	}
	kept := w.ProductIDs[:0]
	for _, e := range w.ProductIDs {
		if e != pid {
			kept = append(kept, e)
		}
	}
	w.ProductIDs = kept
	w.UpdatedAt = now
	return nil
}

func (w *Wishlist) Has(productID string) bool {
	if w == nil {
		return false
	}
	pid := strings.TrimSpace(productID)
	for _, e := range w.ProductIDs {
		if e == pid {
			return true
		}
	}
	return false
}
