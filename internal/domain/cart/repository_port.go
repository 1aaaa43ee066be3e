package cart

import "context"

// Repository is the output port for cart persistence.
// Implementations live under adapters/out (Firestore / Postgres / local file).
// All of them store the entry sequence as one versioned blob per cart key.
//
// Nil policy: Load returns (nil, nil) when no cart is stored for the key.
type Repository interface {
	Load(ctx context.Context, id string) (*Cart, error)

	// Save overwrites the whole cart document (simple & predictable).
	Save(ctx context.Context, c *Cart) error

	// Delete removes the persisted entry. Deleting an absent key is not an error.
	Delete(ctx context.Context, id string) error
}
