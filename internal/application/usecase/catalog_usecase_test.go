package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	usecase "boutique/internal/application/usecase"
	"boutique/internal/domain/product"
)

type fakeSource struct {
	products map[string]product.Payload
	listings map[string][]product.Payload

	getErr  error
	getByID map[string]error

	getCalls []string
}

func (s *fakeSource) GetProduct(_ context.Context, id string) (product.Payload, error) {
	s.getCalls = append(s.getCalls, id)
	if s.getErr != nil {
		return nil, s.getErr
	}
	if err, ok := s.getByID[id]; ok {
		return nil, err
	}
	return s.products[id], nil
}

func (s *fakeSource) GetProductsByIDs(_ context.Context, ids []string) ([]product.Payload, error) {
	out := []product.Payload{}
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeSource) ListByCategory(_ context.Context, categoryID string) ([]product.Payload, error) {
	return s.listings[categoryID], nil
}

func fullRecord(id string) product.Payload {
	return product.Payload{
		"id":        id,
		"label":     "Jus de pomme bio",
		"price_ttc": "120",
		"tva_tx":    "20",
		"entity":    "1",
		"array_options": map[string]any{
			"Marque":     "Acme SA",
			"Nutriscore": "B",
			"Tags":       "bio,local",
			"Similaire":  "7,9",
		},
	}
}

func TestDetail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	src := &fakeSource{products: map[string]product.Payload{"42": fullRecord("42")}}
	svc := usecase.NewCatalogService(src)

	c, err := svc.Detail(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, "Acme SA", c.Brand)
	require.Equal(t, "100.00", c.DisplayPriceHT())
}

func TestDetailNotFound(t *testing.T) {
	t.Parallel()

	src := &fakeSource{products: map[string]product.Payload{}}
	svc := usecase.NewCatalogService(src)

	_, err := svc.Detail(context.Background(), "999")
	require.ErrorIs(t, err, usecase.ErrProductNotFound)
}

func TestListByIDsEnrichesSparseRecords(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sparse := product.Payload{"id": "42", "label": "Jus", "Marque": "Acme"}
	src := &fakeSource{products: map[string]product.Payload{"42": fullRecord("42")}}
	svc := usecase.NewCatalogService(src)

	// hand the listing payload through the batch path
	src.products["list-42"] = sparse
	out, err := svc.ListByIDs(ctx, []string{"list-42"})
	require.NoError(t, err)
	require.Len(t, out, 1)

	// the sparse record triggered one secondary fetch of the full record
	require.Contains(t, src.getCalls, "42")
	require.Equal(t, "Acme SA", out[0].Brand)
	require.Equal(t, "B", out[0].CustomAttributes["Nutriscore"])
}

func TestEnrichmentFailureIsNonFatal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sparse := product.Payload{"id": "42", "label": "Jus", "Marque": "Acme"}
	src := &fakeSource{
		products: map[string]product.Payload{"l": sparse},
		getByID:  map[string]error{"42": errors.New("remote down")},
	}
	svc := usecase.NewCatalogService(src)

	out, err := svc.ListByIDs(ctx, []string{"l"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	// normalization proceeded with the originally available shape
	require.Equal(t, "Acme", out[0].Brand)
}

type fakePhotos struct{ url string }

func (p fakePhotos) Resolve(_ context.Context, productID string) string { return p.url }

func TestPhotoFallback(t *testing.T) {
	t.Parallel()

	src := &fakeSource{products: map[string]product.Payload{"42": fullRecord("42")}}
	svc := usecase.NewCatalogServiceWithPhotos(src, fakePhotos{url: "https://img.example/42.jpg"})

	c, err := svc.Detail(context.Background(), "42")
	require.NoError(t, err)
	require.Equal(t, "https://img.example/42.jpg", c.PhotoURL)
}
