package product

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// DerivePriceHT computes the tax-free price from the tax-included one:
//
//	priceHT = priceTTC / (1 + taxRate/100)
//
// Pure function; full precision (no rounding here, display rounds).
func DerivePriceHT(priceTTC, taxRate decimal.Decimal) decimal.Decimal {
	divisor := one.Add(taxRate.Div(hundred))
	if divisor.IsZero() {
		return priceTTC
	}
	return priceTTC.DivRound(divisor, 8)
}

// DerivePriceTTC is the inverse derivation, for payloads that only carry the
// tax-free price.
func DerivePriceTTC(priceHT, taxRate decimal.Decimal) decimal.Decimal {
	return priceHT.Mul(one.Add(taxRate.Div(hundred)))
}

// resolvePrices fills whichever of priceHT/priceTTC is missing.
// taxRate defaults to DefaultTaxRate when entirely absent.
func resolvePrices(raw Payload) (ht, ttc, rate decimal.Decimal) {
	rate, hasRate := getDecimal(raw, "tva_tx", "taxRate")
	if !hasRate {
		rate = DefaultTaxRate
	}

	ht, hasHT := getDecimal(raw, "price", "priceHt", "price_ht")
	ttc, hasTTC := getDecimal(raw, "price_ttc", "priceTtc")

	switch {
	case hasHT && hasTTC:
		// both present in the source; trust them as-is
	case hasTTC:
		ht = DerivePriceHT(ttc, rate)
	case hasHT:
		ttc = DerivePriceTTC(ht, rate)
	}
	return ht, ttc, rate
}
