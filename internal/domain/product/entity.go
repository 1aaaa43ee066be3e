package product

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPayload = errors.New("product: invalid payload")
	ErrEmptyID        = errors.New("product: empty id")
)

// DefaultTaxRate is applied when a payload carries neither tva_tx nor enough
// price information to infer one (Dolibarr's standard French VAT rate).
var DefaultTaxRate = decimal.NewFromInt(20)

// Canonical is the single normalized product representation every consumer
// reads, regardless of which remote payload shape produced it.
//
// Prices are kept at full precision (decimal, not float); rounding to two
// decimals happens at display time only.
type Canonical struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Ref         string `json:"ref"`
	Description string `json:"description"`

	PriceHT  decimal.Decimal `json:"priceHt"`
	PriceTTC decimal.Decimal `json:"priceTtc"`
	TaxRate  decimal.Decimal `json:"taxRate"`

	StockReel int    `json:"stockReel"`
	PhotoURL  string `json:"photoUrl"`

	Brand         string   `json:"brand"`
	Tags          []string `json:"tags"`
	SimilarIDs    []string `json:"similarIds"`
	CategoryLabel string   `json:"categoryLabel"`

	// CustomAttributes is the nested extension-field container
	// (brand, tags, similar products, health/nutrition attributes).
	CustomAttributes map[string]any `json:"customAttributes"`
}

// DisplayPriceTTC rounds to two decimals for user-facing rendering.
func (p Canonical) DisplayPriceTTC() string {
	return p.PriceTTC.Round(2).StringFixed(2)
}

// DisplayPriceHT rounds to two decimals for user-facing rendering.
func (p Canonical) DisplayPriceHT() string {
	return p.PriceHT.Round(2).StringFixed(2)
}

func (p Canonical) valid() bool {
	return strings.TrimSpace(p.ID) != ""
}
