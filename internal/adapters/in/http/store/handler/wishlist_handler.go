package storeHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	usecase "boutique/internal/application/usecase"
	wishdom "boutique/internal/domain/wishlist"
)

// WishlistHandler serves the shopper wishlist endpoints.
type WishlistHandler struct {
	uc *usecase.WishlistUsecase
}

func NewWishlistHandler(uc *usecase.WishlistUsecase) http.Handler {
	return &WishlistHandler{uc: uc}
}

func (h *WishlistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path := strings.TrimRight(r.URL.Path, "/")

	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "wishlist handler is not configured")
		return
	}

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/wishlist"):
		h.handleGet(w, r, start)

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/wishlist/items"):
		h.handleAdd(w, r, start)

	case r.Method == http.MethodDelete && strings.HasSuffix(path, "/wishlist/items"):
		h.handleRemove(w, r, start)

	case r.Method == http.MethodDelete && strings.HasSuffix(path, "/wishlist"):
		h.handleClear(w, r, start)

	default:
		notFound(w)
	}
}

func (h *WishlistHandler) handleGet(w http.ResponseWriter, r *http.Request, start time.Time) {
	key := resolveCartKey(w, r)

	wl, err := h.uc.Get(r.Context(), key)
	if err != nil {
		log.Printf("[wishlist_handler] GET error key=%q err=%v\n", maskKey(key), err)
		h.writeWishlistErr(w, err)
		return
	}

	log.Printf("[wishlist_handler] GET ok key=%q items=%d elapsed=%s\n", maskKey(key), len(wl.ProductIDs), time.Since(start))
	writeJSON(w, http.StatusOK, wl)
}

type wishlistItemReq struct {
	ProductID string `json:"productId"`
}

func (h *WishlistHandler) handleAdd(w http.ResponseWriter, r *http.Request, start time.Time) {
	var req wishlistItemReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	key := resolveCartKey(w, r)
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		writeErr(w, http.StatusBadRequest, "productId is required")
		return
	}

	wl, err := h.uc.Add(r.Context(), key, productID)
	if err != nil {
		log.Printf("[wishlist_handler] POST add error key=%q productId=%q err=%v\n", maskKey(key), productID, err)
		h.writeWishlistErr(w, err)
		return
	}

	log.Printf("[wishlist_handler] POST add ok key=%q productId=%q elapsed=%s\n", maskKey(key), productID, time.Since(start))
	writeJSON(w, http.StatusOK, wl)
}

func (h *WishlistHandler) handleRemove(w http.ResponseWriter, r *http.Request, start time.Time) {
	var req wishlistItemReq
	if err := readJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	key := resolveCartKey(w, r)
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		writeErr(w, http.StatusBadRequest, "productId is required")
		return
	}

	wl, err := h.uc.Remove(r.Context(), key, productID)
	if err != nil {
		log.Printf("[wishlist_handler] DELETE remove error key=%q productId=%q err=%v\n", maskKey(key), productID, err)
		h.writeWishlistErr(w, err)
		return
	}

	log.Printf("[wishlist_handler] DELETE remove ok key=%q productId=%q elapsed=%s\n", maskKey(key), productID, time.Since(start))
	writeJSON(w, http.StatusOK, wl)
}

func (h *WishlistHandler) handleClear(w http.ResponseWriter, r *http.Request, start time.Time) {
	key := resolveCartKey(w, r)

	if err := h.uc.Clear(r.Context(), key); err != nil {
		log.Printf("[wishlist_handler] DELETE clear error key=%q err=%v\n", maskKey(key), err)
		h.writeWishlistErr(w, err)
		return
	}

	log.Printf("[wishlist_handler] DELETE clear ok key=%q elapsed=%s\n", maskKey(key), time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *WishlistHandler) writeWishlistErr(w http.ResponseWriter, err error) {
	if errors.Is(err, usecase.ErrWishlistInvalidArgument) || errors.Is(err, wishdom.ErrInvalidWishlist) {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeErr(w, http.StatusInternalServerError, err.Error())
}
