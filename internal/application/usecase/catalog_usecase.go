package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"boutique/internal/domain/product"
)

var (
	ErrProductInvalidArgument = errors.New("catalog_usecase: invalid argument")
	ErrProductNotFound        = errors.New("catalog_usecase: product not found")
)

// ProductSource is the output port to the remote product API.
//
// Nil policy: a 404 or an empty result set is NOT an error — implementations
// classify those and return (nil, nil) / (empty, nil). A non-nil error means
// the remote was unreachable or misbehaving (retryable for displays).
type ProductSource interface {
	GetProduct(ctx context.Context, id string) (product.Payload, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]product.Payload, error)
	ListByCategory(ctx context.Context, categoryID string) ([]product.Payload, error)
}

// PhotoResolver fills in a photo URL when the remote payload carried none.
type PhotoResolver interface {
	Resolve(ctx context.Context, productID string) string
}

// CatalogService produces canonical products for every screen: normalize the
// raw payload, then (for sparse records) one secondary fetch of the full
// record, deep-merged. The secondary fetch failing is non-fatal.
type CatalogService struct {
	source ProductSource
	photos PhotoResolver // optional
}

func NewCatalogService(source ProductSource) *CatalogService {
	return &CatalogService{source: source}
}

func NewCatalogServiceWithPhotos(source ProductSource, photos PhotoResolver) *CatalogService {
	return &CatalogService{source: source, photos: photos}
}

// Detail fetches and normalizes one product by id.
func (s *CatalogService) Detail(ctx context.Context, id string) (product.Canonical, error) {
	pid := strings.TrimSpace(id)
	if pid == "" {
		return product.Canonical{}, ErrProductInvalidArgument
	}

	raw, err := s.source.GetProduct(ctx, pid)
	if err != nil {
		return product.Canonical{}, err
	}
	if raw == nil {
		return product.Canonical{}, ErrProductNotFound
	}
	return s.canonicalize(ctx, raw)
}

// ListByIDs batch-fetches and normalizes. Unknown ids are skipped, not
// errors (the remote list endpoints behave the same way).
func (s *CatalogService) ListByIDs(ctx context.Context, ids []string) ([]product.Canonical, error) {
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			cleaned = append(cleaned, id)
		}
	}
	if len(cleaned) == 0 {
		return []product.Canonical{}, nil
	}

	raws, err := s.source.GetProductsByIDs(ctx, cleaned)
	if err != nil {
		return nil, err
	}
	return s.canonicalizeAll(ctx, raws), nil
}

// ListByCategory fetches one category listing and normalizes it.
func (s *CatalogService) ListByCategory(ctx context.Context, categoryID string) ([]product.Canonical, error) {
	cid := strings.TrimSpace(categoryID)
	if cid == "" {
		return nil, ErrProductInvalidArgument
	}
	raws, err := s.source.ListByCategory(ctx, cid)
	if err != nil {
		return nil, err
	}
	return s.canonicalizeAll(ctx, raws), nil
}

// ----------------------------
// Internals
// ----------------------------

func (s *CatalogService) canonicalizeAll(ctx context.Context, raws []product.Payload) []product.Canonical {
	out := make([]product.Canonical, 0, len(raws))
	for _, raw := range raws {
		c, err := s.canonicalize(ctx, raw)
		if err != nil {
			log.Printf("[catalog] skipping unparseable payload err=%v", err)
			continue
		}
		out = append(out, c)
	}
	return out
}

func (s *CatalogService) canonicalize(ctx context.Context, raw product.Payload) (product.Canonical, error) {
	c, err := product.Normalize(raw)
	if err != nil {
		return product.Canonical{}, err
	}

	if product.NeedsEnrichment(c, raw) {
		fuller, ferr := s.source.GetProduct(ctx, c.ID)
		switch {
		case ferr != nil:
			// non-fatal: proceed with the originally available shape
			log.Printf("[catalog] enrichment fetch failed productId=%q err=%v", c.ID, ferr)
		case fuller != nil:
			c = product.MergeEnriched(c, fuller)
		}
	}

	if c.PhotoURL == "" && s.photos != nil {
		c.PhotoURL = s.photos.Resolve(ctx, c.ID)
	}
	return c, nil
}
