package gcs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/storage"
)

// PhotoResolver looks up a fallback product photo in a GCS bucket when the
// ERP record carries no photo link. Objects follow the convention
// "products/{productID}.jpg"; a missing object simply resolves to "".
type PhotoResolver struct {
	gcs    *storage.Client
	bucket string
}

func NewPhotoResolver(gcs *storage.Client, bucket string) *PhotoResolver {
	return &PhotoResolver{gcs: gcs, bucket: strings.TrimSpace(bucket)}
}

// Resolve returns the public HTTPS URL of the fallback photo, or "" when the
// object does not exist or the lookup fails. Failures are logged, never
// surfaced: a product without a photo is still a sellable product.
func (r *PhotoResolver) Resolve(ctx context.Context, productID string) string {
	if r == nil || r.gcs == nil || r.bucket == "" {
		return ""
	}
	id := strings.TrimSpace(productID)
	if id == "" {
		return ""
	}

	object := photoObjectPath(id)
	_, err := r.gcs.Bucket(r.bucket).Object(object).Attrs(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrObjectNotExist) {
			log.Printf("[PhotoResolver] WARN attrs bucket=%q object=%q: %v", r.bucket, object, err)
		}
		return ""
	}
	return publicObjectURL(r.bucket, object)
}

// photoObjectPath returns "products/{productID}.jpg".
func photoObjectPath(productID string) string {
	return "products/" + strings.Trim(productID, "/") + ".jpg"
}

// publicObjectURL returns the public HTTPS URL for an object.
func publicObjectURL(bucket, object string) string {
	bucket = strings.TrimSpace(bucket)
	object = strings.TrimLeft(strings.TrimSpace(object), "/")
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object)
}
