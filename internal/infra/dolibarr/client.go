package dolibarr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"golang.org/x/time/rate"

	"boutique/internal/domain/product"
)

// ErrRemoteUnavailable marks transport-level or server-side failures of the
// ERP API. Retryable for read-only displays; cart mutations map it to the
// fail-safe zero-stock path instead.
var ErrRemoteUnavailable = errors.New("dolibarr: remote unavailable")

const (
	requestTimeout = 10 * time.Second
	maxAttempts    = 3
)

// Client calls the Dolibarr REST API.
// All authentication goes through the DOLAPIKEY header; endpoints and paths
// live here and nowhere else.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// NewClient builds a client for baseURL (e.g. "https://erp.example.com/api/index.php").
func NewClient(baseURL, apiKey string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")

	return &Client{
		http:    &http.Client{Timeout: requestTimeout},
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		// the ERP is a shared single instance; keep request bursts polite
		limiter: rate.NewLimiter(rate.Limit(20), 40),
	}
}

// GetProduct fetches one raw product record.
// Nil policy: (nil, nil) when the id does not exist (404 is an empty result,
// not an error).
func (c *Client) GetProduct(ctx context.Context, id string) (product.Payload, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("dolibarr: empty product id")
	}

	body, empty, err := c.getJSON(ctx, "/products/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, nil
	}

	var raw product.Payload
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("dolibarr: decode product %s: %w", id, err)
	}
	return raw, nil
}

// GetProductsByIDs batch-fetches raw records via sqlfilters.
// Unknown ids are simply absent from the result.
func (c *Client) GetProductsByIDs(ctx context.Context, ids []string) ([]product.Payload, error) {
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			cleaned = append(cleaned, id)
		}
	}
	if len(cleaned) == 0 {
		return []product.Payload{}, nil
	}

	q := url.Values{}
	q.Set("sqlfilters", "(t.rowid:in:("+strings.Join(cleaned, ",")+"))")
	q.Set("limit", "100")

	return c.getProductList(ctx, "/products", q)
}

// ListByCategory fetches the raw product records attached to one category.
func (c *Client) ListByCategory(ctx context.Context, categoryID string) ([]product.Payload, error) {
	cid := strings.TrimSpace(categoryID)
	if cid == "" {
		return nil, fmt.Errorf("dolibarr: empty category id")
	}

	q := url.Values{}
	q.Set("type", "product")

	return c.getProductList(ctx, "/categories/"+url.PathEscape(cid)+"/objects", q)
}

// ----------------------------
// Internals
// ----------------------------

func (c *Client) getProductList(ctx context.Context, path string, q url.Values) ([]product.Payload, error) {
	body, empty, err := c.getJSON(ctx, path, q)
	if err != nil {
		return nil, err
	}
	if empty {
		return []product.Payload{}, nil
	}

	var raws []product.Payload
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("dolibarr: decode list %s: %w", path, err)
	}
	return raws, nil
}

// getJSON performs one GET with rate limiting and bounded retries.
// Returns (body, false, nil) on success, (nil, true, nil) for an empty
// result, and a wrapped ErrRemoteUnavailable for anything retry could not
// fix.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values) ([]byte, bool, error) {
	if c.baseURL == "" {
		return nil, false, fmt.Errorf("dolibarr: baseURL not configured")
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	b := &backoff.Backoff{Min: 200 * time.Millisecond, Max: 2 * time.Second, Jitter: true}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
		}

		body, empty, retryable, err := c.doOnce(ctx, u)
		if err == nil {
			return body, empty, nil
		}
		lastErr = err
		if !retryable {
			break
		}

		d := b.Duration()
		log.Printf("[dolibarr] GET %s attempt %d/%d failed: %v (retrying in %s)", path, attempt, maxAttempts, err, d)
		select {
		case <-ctx.Done():
			return nil, false, fmt.Errorf("%w: %v", ErrRemoteUnavailable, ctx.Err())
		case <-time.After(d):
		}
	}

	return nil, false, fmt.Errorf("%w: %v", ErrRemoteUnavailable, lastErr)
}

func (c *Client) doOnce(ctx context.Context, u string) (body []byte, empty, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, false, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("DOLAPIKEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, true, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, false, true, err
	}

	empty, cerr := classify(resp.StatusCode, raw)
	if cerr != nil {
		// 5xx is worth retrying, 4xx is not
		return nil, false, resp.StatusCode >= 500, cerr
	}
	if empty {
		return nil, true, false, nil
	}
	return raw, false, false, nil
}

// classify is the single place deciding "real error" vs "empty result".
// The ERP answers 404 both for unknown ids and for empty listings; neither
// is an error for us.
func classify(status int, body []byte) (empty bool, err error) {
	switch {
	case status == http.StatusNotFound:
		return true, nil
	case status >= 200 && status < 300:
		if len(strings.TrimSpace(string(body))) == 0 || strings.TrimSpace(string(body)) == "[]" {
			return true, nil
		}
		return false, nil
	default:
		return false, fmt.Errorf("status=%d body=%s", status, headString(body, 200))
	}
}

func headString(b []byte, max int) string {
	if len(b) > max {
		b = b[:max]
	}
	s := string(b)
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
