package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	wishdom "boutique/internal/domain/wishlist"
)

// WishlistRepositoryFS implements wishlist.Repository on Firestore.
// Collection: wishlists, docId: user key.
type WishlistRepositoryFS struct {
	Client *firestore.Client
}

func NewWishlistRepositoryFS(client *firestore.Client) *WishlistRepositoryFS {
	return &WishlistRepositoryFS{Client: client}
}

func (r *WishlistRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("wishlists")
}

func (r *WishlistRepositoryFS) Load(ctx context.Context, id string) (*wishdom.Wishlist, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("wishlist_repository_fs: firestore client is nil")
	}
	key := strings.TrimSpace(id)
	if key == "" {
		return nil, errors.New("wishlist_repository_fs: id is empty")
	}

	snap, err := r.col().Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc wishlistDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}

	w := &wishdom.Wishlist{
		ID:         key,
		ProductIDs: doc.ProductIDs,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
	if w.ProductIDs == nil {
		w.ProductIDs = []string{}
	}
	return w, nil
}

func (r *WishlistRepositoryFS) Save(ctx context.Context, w *wishdom.Wishlist) error {
	if r == nil || r.Client == nil {
		return errors.New("wishlist_repository_fs: firestore client is nil")
	}
	if w == nil {
		return errors.New("wishlist_repository_fs: wishlist is nil")
	}
	key := strings.TrimSpace(w.ID)
	if key == "" {
		return errors.New("wishlist_repository_fs: Save requires wishlist.ID as docId")
	}

	_, err := r.col().Doc(key).Set(ctx, wishlistDoc{
		ProductIDs: append([]string{}, w.ProductIDs...),
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	})
	return err
}

func (r *WishlistRepositoryFS) Delete(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errors.New("wishlist_repository_fs: firestore client is nil")
	}
	key := strings.TrimSpace(id)
	if key == "" {
		return errors.New("wishlist_repository_fs: id is empty")
	}
	_, err := r.col().Doc(key).Delete(ctx)
	return err
}

type wishlistDoc struct {
	ProductIDs []string  `firestore:"productIds"`
	CreatedAt  time.Time `firestore:"createdAt"`
	UpdatedAt  time.Time `firestore:"updatedAt"`
}
