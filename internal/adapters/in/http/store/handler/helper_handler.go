package storeHandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"boutique/internal/adapters/in/http/middleware"
	proddom "boutique/internal/domain/product"
)

// ============================================================
// HTTP helpers
// ============================================================

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(msg)})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method_not_allowed"})
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
}

func readJSON(r *http.Request, dst any) error {
	if dst == nil {
		return errors.New("dst is nil")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)) // 1MB
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// ============================================================
// Cart key resolution
// ============================================================

// resolveCartKey decides which cart a request operates on:
//
//  1. the Firebase UID when the shopper is signed in,
//  2. otherwise the X-Cart-Key header the client got on a previous call,
//  3. otherwise a fresh guest key.
//
// The resolved key is echoed in the X-Cart-Key response header so the
// client can persist it.
func resolveCartKey(w http.ResponseWriter, r *http.Request) string {
	key, _ := middleware.CurrentUserUID(r)
	if key == "" {
		key = strings.TrimSpace(r.Header.Get("X-Cart-Key"))
	}
	if key == "" {
		key = uuid.NewString()
	}
	w.Header().Set("X-Cart-Key", key)
	return key
}

// maskKey keeps guest uuids and Firebase UIDs out of the logs.
func maskKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if len(key) <= 6 {
		return "***"
	}
	return "***" + key[len(key)-6:]
}

// ============================================================
// Product DTO
// ============================================================

// productView is the wire shape of a canonical product. Prices travel as
// fixed two-decimal strings; the full-precision decimals stay internal.
type productView struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Ref         string `json:"ref"`
	Description string `json:"description"`

	PriceHT  string `json:"priceHt"`
	PriceTTC string `json:"priceTtc"`
	TaxRate  string `json:"taxRate"`

	StockReel int    `json:"stockReel"`
	PhotoURL  string `json:"photoUrl"`

	Brand         string   `json:"brand"`
	Tags          []string `json:"tags"`
	SimilarIDs    []string `json:"similarIds"`
	CategoryLabel string   `json:"categoryLabel"`

	CustomAttributes map[string]any `json:"customAttributes,omitempty"`
}

func toProductView(c proddom.Canonical) productView {
	return productView{
		ID:               c.ID,
		Label:            c.Label,
		Ref:              c.Ref,
		Description:      c.Description,
		PriceHT:          c.DisplayPriceHT(),
		PriceTTC:         c.DisplayPriceTTC(),
		TaxRate:          c.TaxRate.String(),
		StockReel:        c.StockReel,
		PhotoURL:         c.PhotoURL,
		Brand:            c.Brand,
		Tags:             c.Tags,
		SimilarIDs:       c.SimilarIDs,
		CategoryLabel:    c.CategoryLabel,
		CustomAttributes: c.CustomAttributes,
	}
}

func toProductViews(cs []proddom.Canonical) []productView {
	out := make([]productView, 0, len(cs))
	for _, c := range cs {
		out = append(out, toProductView(c))
	}
	return out
}
