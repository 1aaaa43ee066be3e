package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	cartdom "boutique/internal/domain/cart"
)

// CartRepositoryFile implements cart.Repository on one JSON file: a string
// key-value store (cart key -> versioned blob). Dev backend; writes are
// atomic via rename so a crash never leaves a half-written store.
type CartRepositoryFile struct {
	path string

	mu sync.Mutex
}

func NewCartRepositoryFile(path string) *CartRepositoryFile {
	return &CartRepositoryFile{path: strings.TrimSpace(path)}
}

type fileEntry struct {
	Blob      string    `json:"blob"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *CartRepositoryFile) Load(_ context.Context, id string) (*cartdom.Cart, error) {
	key := strings.TrimSpace(id)
	if key == "" {
		return nil, errors.New("cart_repository_file: id is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	store, err := r.read()
	if err != nil {
		return nil, err
	}
	entry, ok := store[key]
	if !ok {
		return nil, nil
	}

	version, entries, err := cartdom.DecodeBlob([]byte(entry.Blob))
	if err != nil {
		return nil, err
	}
	return &cartdom.Cart{
		ID:        key,
		Entries:   entries,
		Version:   version,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}, nil
}

func (r *CartRepositoryFile) Save(_ context.Context, c *cartdom.Cart) error {
	if c == nil {
		return errors.New("cart_repository_file: cart is nil")
	}
	key := strings.TrimSpace(c.ID)
	if key == "" {
		return errors.New("cart_repository_file: Save requires cart.ID")
	}

	blob, err := cartdom.EncodeBlob(c)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	store, err := r.read()
	if err != nil {
		return err
	}
	store[key] = fileEntry{
		Blob:      string(blob),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	return r.write(store)
}

func (r *CartRepositoryFile) Delete(_ context.Context, id string) error {
	key := strings.TrimSpace(id)
	if key == "" {
		return errors.New("cart_repository_file: id is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	store, err := r.read()
	if err != nil {
		return err
	}
	if _, ok := store[key]; !ok {
		return nil
	}
	delete(store, key)
	return r.write(store)
}

func (r *CartRepositoryFile) read() (map[string]fileEntry, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]fileEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	store := map[string]fileEntry{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return store, nil
	}
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, err
	}
	return store, nil
}

func (r *CartRepositoryFile) write(store map[string]fileEntry) error {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}
