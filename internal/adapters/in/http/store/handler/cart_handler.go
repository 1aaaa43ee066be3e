package storeHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	usecase "boutique/internal/application/usecase"
	cartdom "boutique/internal/domain/cart"
)

// CartHandler serves the shopper cart endpoints.
type CartHandler struct {
	engine *usecase.CartEngine
}

func NewCartHandler(engine *usecase.CartEngine) http.Handler {
	return &CartHandler{engine: engine}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path := strings.TrimRight(r.URL.Path, "/")
	if path == "" {
		path = "/"
	}

	log.Printf("[cart_handler] enter method=%s path=%q\n", r.Method, path)

	if h.engine == nil {
		log.Printf("[cart_handler] exit status=500 reason=engine is nil elapsed=%s\n", time.Since(start))
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/cart"):
		h.handleGet(w, r, start)

	case r.Method == http.MethodDelete && strings.HasSuffix(path, "/cart"):
		h.handleClear(w, r, start)

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/cart/items"):
		h.handleAddItem(w, r, start)

	case r.Method == http.MethodPatch && strings.HasSuffix(path, "/cart/items"):
		h.handleUpdateQuantity(w, r, start)

	case r.Method == http.MethodDelete && strings.HasSuffix(path, "/cart/items"):
		h.handleRemoveItem(w, r, start)

	case r.Method == http.MethodGet && strings.HasSuffix(path, "/cart/can-add"):
		h.handleCanAdd(w, r, start)

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/cart/validate"):
		h.handleValidate(w, r, start)

	default:
		log.Printf("[cart_handler] exit status=404 method=%s path=%q elapsed=%s\n", r.Method, path, time.Since(start))
		notFound(w)
	}
}

// -------------------------
// reads
// -------------------------

func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request, start time.Time) {
	key := resolveCartKey(w, r)

	quantities, err := h.engine.Quantities(r.Context(), key)
	if err != nil {
		log.Printf("[cart_handler] GET error key=%q err=%v elapsed=%s\n", maskKey(key), err, time.Since(start))
		h.writeEngineErr(w, err)
		return
	}

	log.Printf("[cart_handler] GET ok key=%q lines=%d elapsed=%s\n", maskKey(key), len(quantities), time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"cartKey": key,
		"items":   quantities,
	})
}

func (h *CartHandler) handleCanAdd(w http.ResponseWriter, r *http.Request, start time.Time) {
	key := resolveCartKey(w, r)

	productID := strings.TrimSpace(r.URL.Query().Get("productId"))
	if productID == "" {
		writeErr(w, http.StatusBadRequest, "productId is required")
		return
	}

	ok, err := h.engine.CanAddMoreItems(r.Context(), key, productID)
	if err != nil {
		log.Printf("[cart_handler] GET can-add error key=%q err=%v\n", maskKey(key), err)
		h.writeEngineErr(w, err)
		return
	}

	log.Printf("[cart_handler] GET can-add ok key=%q productId=%q canAdd=%t elapsed=%s\n", maskKey(key), productID, ok, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"productId": productID,
		"canAdd":    ok,
	})
}

func (h *CartHandler) handleValidate(w http.ResponseWriter, r *http.Request, start time.Time) {
	key := resolveCartKey(w, r)

	violations, err := h.engine.ValidateStock(r.Context(), key)
	if err != nil {
		log.Printf("[cart_handler] POST validate error key=%q err=%v\n", maskKey(key), err)
		h.writeEngineErr(w, err)
		return
	}

	log.Printf("[cart_handler] POST validate ok key=%q violations=%d elapsed=%s\n", maskKey(key), len(violations), time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         len(violations) == 0,
		"violations": violations,
	})
}

// -------------------------
// mutations
// -------------------------

type cartItemReq struct {
	ProductID string `json:"productId"`
	Delta     int    `json:"delta"`
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request, start time.Time) {
	var req cartItemReq
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

	res, err := h.engine.AddToCart(r.Context(), key, productID)
	if err != nil {
		log.Printf("[cart_handler] POST add-item error key=%q productId=%q err=%v\n", maskKey(key), productID, err)
		h.writeEngineErr(w, err)
		return
	}

	log.Printf("[cart_handler] POST add-item key=%q productId=%q ok=%t failure=%q elapsed=%s\n", maskKey(key), productID, res.OK, res.Failure, time.Since(start))
	writeJSON(w, mutationStatus(res), res)
}

func (h *CartHandler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request, start time.Time) {
	var req cartItemReq
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
	if req.Delta == 0 {
		writeErr(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	res, err := h.engine.UpdateQuantity(r.Context(), key, productID, req.Delta)
	if err != nil {
		log.Printf("[cart_handler] PATCH update-qty error key=%q productId=%q err=%v\n", maskKey(key), productID, err)
		h.writeEngineErr(w, err)
		return
	}

	log.Printf("[cart_handler] PATCH update-qty key=%q productId=%q delta=%d ok=%t failure=%q elapsed=%s\n", maskKey(key), productID, req.Delta, res.OK, res.Failure, time.Since(start))
	writeJSON(w, mutationStatus(res), res)
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request, start time.Time) {
	var req cartItemReq
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

	res, err := h.engine.RemoveFromCart(r.Context(), key, productID)
	if err != nil {
		log.Printf("[cart_handler] DELETE remove-item error key=%q productId=%q err=%v\n", maskKey(key), productID, err)
		h.writeEngineErr(w, err)
		return
	}

	log.Printf("[cart_handler] DELETE remove-item key=%q productId=%q ok=%t elapsed=%s\n", maskKey(key), productID, res.OK, time.Since(start))
	writeJSON(w, mutationStatus(res), res)
}

func (h *CartHandler) handleClear(w http.ResponseWriter, r *http.Request, start time.Time) {
	key := resolveCartKey(w, r)

	res, err := h.engine.ClearCart(r.Context(), key)
	if err != nil {
		log.Printf("[cart_handler] DELETE clear error key=%q err=%v\n", maskKey(key), err)
		h.writeEngineErr(w, err)
		return
	}

	log.Printf("[cart_handler] DELETE clear key=%q ok=%t elapsed=%s\n", maskKey(key), res.OK, time.Since(start))
	writeJSON(w, mutationStatus(res), res)
}

// -------------------------
// error/status mapping
// -------------------------

// mutationStatus maps a structured mutation outcome to an HTTP status.
// The body is always the MutationResult itself.
func mutationStatus(res usecase.MutationResult) int {
	switch res.Failure {
	case usecase.FailureNone:
		return http.StatusOK
	case usecase.FailureOutOfStock, usecase.FailureInsufficientStock:
		return http.StatusConflict
	case usecase.FailurePersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusOK
	}
}

func (h *CartHandler) writeEngineErr(w http.ResponseWriter, err error) {
	if errors.Is(err, usecase.ErrCartInvalidArgument) ||
		errors.Is(err, cartdom.ErrInvalidCart) ||
		errors.Is(err, cartdom.ErrInvalidProductID) {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeErr(w, http.StatusInternalServerError, err.Error())
}
