package storeHandler

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"boutique/internal/adapters/in/http/middleware"
	usecase "boutique/internal/application/usecase"
)

// CheckoutHandler runs the final stock reconciliation and clears the cart.
type CheckoutHandler struct {
	flow *usecase.CheckoutFlow
}

func NewCheckoutHandler(flow *usecase.CheckoutFlow) http.Handler {
	return &CheckoutHandler{flow: flow}
}

type checkoutReq struct {
	Email string `json:"email"`
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.flow == nil {
		writeErr(w, http.StatusInternalServerError, "checkout handler is not configured")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	// an empty body is fine: signed-in shoppers need no payload
	var req checkoutReq
	if err := readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	key := resolveCartKey(w, r)

	// prefer the verified token email over the client-supplied one
	email := strings.TrimSpace(req.Email)
	if _, tokenEmail, ok := middleware.CurrentUserUIDAndEmail(r); ok && tokenEmail != "" {
		email = tokenEmail
	}

	res, err := h.flow.Complete(r.Context(), key, email)
	if err != nil {
		log.Printf("[checkout_handler] POST error key=%q err=%v elapsed=%s\n", maskKey(key), err, time.Since(start))
		if errors.Is(err, usecase.ErrCheckoutInvalidArgument) {
			writeErr(w, http.StatusBadRequest, "cart is empty")
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusOK
	switch {
	case len(res.Violations) > 0:
		status = http.StatusConflict
	case res.Failure == usecase.FailurePersistence:
		status = http.StatusServiceUnavailable
	}

	log.Printf("[checkout_handler] POST key=%q ok=%t violations=%d elapsed=%s\n", maskKey(key), res.OK, len(res.Violations), time.Since(start))
	writeJSON(w, status, res)
}
