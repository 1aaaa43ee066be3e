package dolibarr

import (
	"context"
	"strconv"
	"strings"

	stockdom "boutique/internal/domain/stock"
	"boutique/internal/infra/dolibarr"
)

// StockReader implements stock.Reader against the ERP product endpoint.
// Each call is one fresh fetch: the snapshot is never cached (cart decisions
// must not trust stale stock).
type StockReader struct {
	Client *dolibarr.Client
}

func NewStockReader(client *dolibarr.Client) *StockReader {
	return &StockReader{Client: client}
}

func (r *StockReader) Stock(ctx context.Context, productID string) (stockdom.Snapshot, error) {
	pid := strings.TrimSpace(productID)

	raw, err := r.Client.GetProduct(ctx, pid)
	if err != nil {
		// transport failure surfaces as an error; the caller decides
		// whether that reads as zero stock (mutations do)
		return stockdom.Snapshot{}, err
	}
	if raw == nil {
		// unknown product: genuinely zero available
		return stockdom.Snapshot{ProductID: pid, Available: 0}, nil
	}

	avail := 0
	switch v := raw["stock_reel"].(type) {
	case string:
		avail = atoiSafe(v)
	case float64:
		avail = int(v)
	case int:
		avail = v
	}
	if avail < 0 {
		avail = 0
	}
	return stockdom.Snapshot{ProductID: pid, Available: avail}, nil
}

// atoiSafe parses "7" and "7.0" alike; anything unparseable reads as 0.
func atoiSafe(s string) int {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
