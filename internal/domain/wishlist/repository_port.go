package wishlist

import "context"

// Repository is the output port for wishlist persistence.
// Nil policy: Load returns (nil, nil) when no wishlist is stored for the key.
type Repository interface {
	Load(ctx context.Context, id string) (*Wishlist, error)
	Save(ctx context.Context, w *Wishlist) error
	Delete(ctx context.Context, id string) error
}
