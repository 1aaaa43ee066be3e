package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	wishdom "boutique/internal/domain/wishlist"
)

var ErrWishlistInvalidArgument = errors.New("wishlist_usecase: invalid argument")

// WishlistUsecase coordinates wishlist operations (load -> mutate -> save).
type WishlistUsecase struct {
	repo  wishdom.Repository
	clock Clock
}

func NewWishlistUsecase(repo wishdom.Repository) *WishlistUsecase {
	return &WishlistUsecase{repo: repo, clock: systemClock{}}
}

func NewWishlistUsecaseWithClock(repo wishdom.Repository, clock Clock) *WishlistUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &WishlistUsecase{repo: repo, clock: clock}
}

// Get returns the wishlist for key; absent -> empty wishlist.
func (uc *WishlistUsecase) Get(ctx context.Context, key string) (*wishdom.Wishlist, error) {
	k := strings.TrimSpace(key)
	if k == "" {
		return nil, ErrWishlistInvalidArgument
	}
	w, err := uc.repo.Load(ctx, k)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return wishdom.New(k, uc.clock.Now())
	}
	return w, nil
}

func (uc *WishlistUsecase) Add(ctx context.Context, key, productID string) (*wishdom.Wishlist, error) {
	return uc.mutate(ctx, key, productID, (*wishdom.Wishlist).Add)
}

func (uc *WishlistUsecase) Remove(ctx context.Context, key, productID string) (*wishdom.Wishlist, error) {
	return uc.mutate(ctx, key, productID, (*wishdom.Wishlist).Remove)
}

func (uc *WishlistUsecase) Clear(ctx context.Context, key string) error {
	k := strings.TrimSpace(key)
	if k == "" {
		return ErrWishlistInvalidArgument
	}
	return uc.repo.Delete(ctx, k)
}

func (uc *WishlistUsecase) mutate(
	ctx context.Context,
	key, productID string,
	op func(*wishdom.Wishlist, string, time.Time) error,
) (*wishdom.Wishlist, error) {
	k := strings.TrimSpace(key)
	pid := strings.TrimSpace(productID)
	if k == "" || pid == "" {
		return nil, ErrWishlistInvalidArgument
	}

	w, err := uc.Get(ctx, k)
	if err != nil {
		return nil, err
	}
	if err := op(w, pid, uc.clock.Now()); err != nil {
		return nil, err
	}
	if err := uc.repo.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}
