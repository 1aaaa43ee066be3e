package store

import "net/http"

// Deps is the shopper-facing handler set.
type Deps struct {
	Catalog  http.Handler
	Cart     http.Handler
	Wishlist http.Handler
	Checkout http.Handler
}

// Register registers shopper-facing routes onto mux.
func Register(mux *http.ServeMux, deps Deps) {
	if mux == nil {
		return
	}

	// catalog (products + per-category listings)
	if deps.Catalog != nil {
		mux.Handle("/store/products", deps.Catalog)
		mux.Handle("/store/products/", deps.Catalog)
		mux.Handle("/store/categories/", deps.Catalog)
	}

	// cart (single handler; item routes dispatched internally)
	if deps.Cart != nil {
		mux.Handle("/store/cart", deps.Cart)
		mux.Handle("/store/cart/", deps.Cart)
	}

	// wishlist
	if deps.Wishlist != nil {
		mux.Handle("/store/wishlist", deps.Wishlist)
		mux.Handle("/store/wishlist/", deps.Wishlist)
	}

	// checkout
	if deps.Checkout != nil {
		mux.Handle("/store/checkout", deps.Checkout)
		mux.Handle("/store/checkout/", deps.Checkout)
	}
}
