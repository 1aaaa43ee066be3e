package storeHandler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	usecase "boutique/internal/application/usecase"
	"boutique/internal/infra/dolibarr"
)

// CatalogHandler serves the read-only product endpoints backed by the ERP.
type CatalogHandler struct {
	catalog *usecase.CatalogService
}

func NewCatalogHandler(catalog *usecase.CatalogService) http.Handler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path := strings.TrimRight(r.URL.Path, "/")

	if h.catalog == nil {
		writeErr(w, http.StatusInternalServerError, "catalog handler is not configured")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	switch {
	// GET .../categories/{id}/products
	case strings.HasSuffix(path, "/products") && strings.Contains(path, "/categories/"):
		h.handleListByCategory(w, r, path, start)

	// GET .../products?ids=1,2,3
	case strings.HasSuffix(path, "/products"):
		h.handleListByIDs(w, r, start)

	// GET .../products/{id}
	case strings.Contains(path, "/products/"):
		h.handleDetail(w, r, path, start)

	default:
		notFound(w)
	}
}

func (h *CatalogHandler) handleDetail(w http.ResponseWriter, r *http.Request, path string, start time.Time) {
	id := strings.TrimSpace(path[strings.LastIndex(path, "/")+1:])
	if id == "" {
		writeErr(w, http.StatusBadRequest, "product id is required")
		return
	}

	c, err := h.catalog.Detail(r.Context(), id)
	if err != nil {
		log.Printf("[catalog_handler] GET detail error id=%q err=%v elapsed=%s\n", id, err, time.Since(start))
		h.writeCatalogErr(w, err)
		return
	}

	log.Printf("[catalog_handler] GET detail ok id=%q elapsed=%s\n", id, time.Since(start))
	writeJSON(w, http.StatusOK, toProductView(c))
}

func (h *CatalogHandler) handleListByIDs(w http.ResponseWriter, r *http.Request, start time.Time) {
	raw := strings.TrimSpace(r.URL.Query().Get("ids"))
	if raw == "" {
		writeErr(w, http.StatusBadRequest, "ids is required")
		return
	}

	var ids []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	if len(ids) == 0 {
		writeErr(w, http.StatusBadRequest, "ids is required")
		return
	}

	cs, err := h.catalog.ListByIDs(r.Context(), ids)
	if err != nil {
		log.Printf("[catalog_handler] GET list error ids=%d err=%v elapsed=%s\n", len(ids), err, time.Since(start))
		h.writeCatalogErr(w, err)
		return
	}

	log.Printf("[catalog_handler] GET list ok requested=%d found=%d elapsed=%s\n", len(ids), len(cs), time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{"products": toProductViews(cs)})
}

func (h *CatalogHandler) handleListByCategory(w http.ResponseWriter, r *http.Request, path string, start time.Time) {
	// .../categories/{id}/products
	trimmed := strings.TrimSuffix(path, "/products")
	categoryID := strings.TrimSpace(trimmed[strings.LastIndex(trimmed, "/")+1:])
	if categoryID == "" {
		writeErr(w, http.StatusBadRequest, "category id is required")
		return
	}

	cs, err := h.catalog.ListByCategory(r.Context(), categoryID)
	if err != nil {
		log.Printf("[catalog_handler] GET by-category error categoryId=%q err=%v elapsed=%s\n", categoryID, err, time.Since(start))
		h.writeCatalogErr(w, err)
		return
	}

	log.Printf("[catalog_handler] GET by-category ok categoryId=%q found=%d elapsed=%s\n", categoryID, len(cs), time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{"products": toProductViews(cs)})
}

func (h *CatalogHandler) writeCatalogErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrProductNotFound):
		notFound(w)
	case errors.Is(err, usecase.ErrProductInvalidArgument):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, dolibarr.ErrRemoteUnavailable):
		writeErr(w, http.StatusBadGateway, "upstream catalog unavailable")
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}
