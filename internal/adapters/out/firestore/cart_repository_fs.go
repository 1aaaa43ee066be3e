package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "boutique/internal/domain/cart"
)

// CartRepositoryFS implements cart.Repository on Firestore.
//
// Collection design:
// - collection: carts
// - docId: cart key (Firebase UID or guest uuid)
// - fields: entries([]string), version, createdAt, updatedAt
type CartRepositoryFS struct {
	Client *firestore.Client
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

// Load returns (nil, nil) if not found (nil policy).
func (r *CartRepositoryFS) Load(ctx context.Context, id string) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}

	key := strings.TrimSpace(id)
	if key == "" {
		return nil, errors.New("cart_repository_fs: id is empty")
	}

	snap, err := r.col().Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	// Parse snap.Data() by hand: older documents stored entries as a
	// quantity map, and DataTo on a changed schema turns into a 500.
	c := cartFromSnapshot(snap)
	// docId is the source of truth even when the doc lacks an id field
	c.ID = key
	return c, nil
}

// Save overwrites the full doc by docId=cart.ID (simple & predictable).
func (r *CartRepositoryFS) Save(ctx context.Context, c *cartdom.Cart) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	if c == nil {
		return errors.New("cart_repository_fs: cart is nil")
	}

	key := strings.TrimSpace(c.ID)
	if key == "" {
		return errors.New("cart_repository_fs: Save requires cart.ID as docId")
	}

	doc := cartDoc{
		Entries:   append([]string{}, c.Entries...),
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}

	_, err := r.col().Doc(key).Set(ctx, doc)
	return err
}

// Delete removes the persisted entry; deleting an absent key is not an error
// (Firestore deletes are idempotent).
func (r *CartRepositoryFS) Delete(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}

	key := strings.TrimSpace(id)
	if key == "" {
		return errors.New("cart_repository_fs: id is empty")
	}

	_, err := r.col().Doc(key).Delete(ctx)
	return err
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type cartDoc struct {
	Entries   []string  `firestore:"entries"`
	Version   int       `firestore:"version"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// cartFromSnapshot parses document data with backward compatibility.
//
// Supported shapes:
// 1) entries: []string (current, versioned)
// 2) entries: map[productId] = qty (legacy) — expanded into the sequence
func cartFromSnapshot(snap *firestore.DocumentSnapshot) *cartdom.Cart {
	out := &cartdom.Cart{Entries: []string{}}

	raw := snap.Data()
	if raw == nil {
		return out
	}

	if t, ok := asTime(raw["createdAt"]); ok {
		out.CreatedAt = t
	}
	if t, ok := asTime(raw["updatedAt"]); ok {
		out.UpdatedAt = t
	}
	if n, ok := asInt(raw["version"]); ok {
		out.Version = n
	}

	switch entries := raw["entries"].(type) {
	case []any:
		for _, e := range entries {
			if s, ok := e.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					out.Entries = append(out.Entries, s)
				}
			}
		}
	case map[string]any:
		// legacy quantity map: order is lost, multiset is not
		for pid, v := range entries {
			pid = strings.TrimSpace(pid)
			qty, _ := asInt(v)
			for i := 0; i < qty && pid != ""; i++ {
				out.Entries = append(out.Entries, pid)
			}
		}
	}

	return out
}

func asTime(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	return time.Time{}, false
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	default:
		return 0, false
	}
}
