package cart

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidCart      = errors.New("cart: invalid")
	ErrInvalidProductID = errors.New("cart: invalid product id")
)

// SchemaVersion tags the persisted cart blob. Readers must accept a legacy
// unversioned entry array (version 0) and rewrite it as the current version
// on the next save.
const SchemaVersion = 1

// Cart holds an ordered sequence of product-id entries.
// N occurrences of the same id = quantity N. Order carries no meaning for
// correctness but is kept stable so persistence round-trips are byte-stable.
//
// NOTE:
// - no stored aggregate: quantities are always derived from Entries
// - mutations go through the usecase layer (stock checks live there)
type Cart struct {
	// ID is the cart key (Firebase UID or a guest uuid).
	ID string `json:"id" firestore:"id"`

	// Entries is the backing sequence. Duplicates represent quantity.
	Entries []string `json:"entries" firestore:"entries"`

	Version int `json:"version" firestore:"version"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// New creates an empty (or pre-seeded) cart for key id.
func New(id string, entries []string, now time.Time) (*Cart, error) {
	key := strings.TrimSpace(id)

	c := &Cart{
		ID:        key,
		Entries:   cloneEntries(entries),
		Version:   SchemaVersion,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Append adds n occurrences of productID to the end of the sequence.
// Stock validation is the usecase's job, not the entity's.
func (c *Cart) Append(productID string, n int, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return ErrInvalidProductID
	}
	if n <= 0 {
		return ErrInvalidCart
	}

	for i := 0; i < n; i++ {
		c.Entries = append(c.Entries, pid)
	}
	c.touch(now)
	return c.validate()
}

// Shrink removes up to n occurrences of productID, scanning from the tail so
// the oldest entries keep their position. Removing more than present clamps
// at zero; removing an absent id is a no-op.
func (c *Cart) Shrink(productID string, n int, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return ErrInvalidProductID
	}
	if n <= 0 {
		return ErrInvalidCart
	}

	removed := 0
	for i := len(c.Entries) - 1; i >= 0 && removed < n; i-- {
		if c.Entries[i] == pid {
			c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
			removed++
		}
	}
	c.touch(now)
	return c.validate()
}

// RemoveAll drops every occurrence of productID. Idempotent.
func (c *Cart) RemoveAll(productID string, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return ErrInvalidProductID
	}

	kept := c.Entries[:0]
	for _, e := range c.Entries {
		if e != pid {
			kept = append(kept, e)
		}
	}
	c.Entries = kept
	c.touch(now)
	return c.validate()
}

// Clear empties the sequence.
func (c *Cart) Clear(now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	c.Entries = []string{}
	c.touch(now)
	return c.validate()
}

// Quantity counts occurrences of productID.
func (c *Cart) Quantity(productID string) int {
	if c == nil {
		return 0
	}
	pid := strings.TrimSpace(productID)
	n := 0
	for _, e := range c.Entries {
		if e == pid {
			n++
		}
	}
	return n
}

// Quantities derives productID -> occurrence count from the sequence.
func (c *Cart) Quantities() map[string]int {
	out := map[string]int{}
	if c == nil {
		return out
	}
	for _, e := range c.Entries {
		out[e]++
	}
	return out
}

// DistinctIDs returns each product id once, in first-seen order.
func (c *Cart) DistinctIDs() []string {
	if c == nil {
		return nil
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// IsEmpty reports whether the cart holds no entries.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Entries) == 0
}

// Clone returns a deep copy. Usecases mutate the clone and only publish it
// after a successful persist, so a storage failure never leaks a half-done
// mutation.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Entries = cloneEntries(c.Entries)
	return &cp
}

func (c *Cart) touch(now time.Time) {
	c.UpdatedAt = now
	if c.Version < SchemaVersion {
		c.Version = SchemaVersion
	}
}

func (c *Cart) validate() error {
	if c == nil {
		return ErrInvalidCart
	}
	if strings.TrimSpace(c.ID) == "" {
		return ErrInvalidCart
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		return ErrInvalidCart
	}
	if c.UpdatedAt.Before(c.CreatedAt) {
		return ErrInvalidCart
	}
	for _, e := range c.Entries {
		if strings.TrimSpace(e) == "" || e != strings.TrimSpace(e) {
			return ErrInvalidProductID
		}
	}
	return nil
}

// ----------------------------
// Helpers
// ----------------------------

func cloneEntries(src []string) []string {
	if len(src) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(src))
	for _, e := range src {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}
