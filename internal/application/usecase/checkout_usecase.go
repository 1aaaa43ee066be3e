package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
)

var ErrCheckoutInvalidArgument = errors.New("checkout_usecase: invalid argument")

// Mailer is the output port for the order-confirmation mail.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, toEmail string, quantities map[string]int) error
}

// CheckoutResult is the structured outcome of a checkout attempt.
type CheckoutResult struct {
	OK bool `json:"ok"`

	// Violations is non-empty when the cart failed the final stock
	// reconciliation; the cart is left untouched so the client can fix it.
	Violations []StockViolation `json:"violations,omitempty"`

	Failure FailureKind `json:"failure,omitempty"`
}

// CheckoutFlow runs the checkout-adjacent part of the flow this service
// owns: final stock reconciliation, then clearing the cart. Order placement
// itself stays with the remote system.
type CheckoutFlow struct {
	cart   *CartEngine
	mailer Mailer // optional
}

func NewCheckoutFlow(cart *CartEngine, mailer Mailer) *CheckoutFlow {
	return &CheckoutFlow{cart: cart, mailer: mailer}
}

// Complete validates every cart line against live stock; on any violation it
// refuses (cart preserved). On success the cart is cleared and a
// confirmation mail is sent best-effort.
func (f *CheckoutFlow) Complete(ctx context.Context, key, email string) (CheckoutResult, error) {
	k := strings.TrimSpace(key)
	if k == "" {
		return CheckoutResult{}, ErrCheckoutInvalidArgument
	}

	quantities, err := f.cart.Quantities(ctx, k)
	if err != nil {
		return CheckoutResult{Failure: FailurePersistence}, nil
	}
	if len(quantities) == 0 {
		return CheckoutResult{}, ErrCheckoutInvalidArgument
	}

	violations, err := f.cart.ValidateStock(ctx, k)
	if err != nil {
		return CheckoutResult{Failure: FailurePersistence}, nil
	}
	if len(violations) > 0 {
		return CheckoutResult{Violations: violations}, nil
	}

	res, err := f.cart.ClearCart(ctx, k)
	if err != nil {
		return CheckoutResult{}, err
	}
	if !res.OK {
		return CheckoutResult{Failure: res.Failure}, nil
	}

	if f.mailer != nil && strings.TrimSpace(email) != "" {
		if merr := f.mailer.SendOrderConfirmation(ctx, strings.TrimSpace(email), quantities); merr != nil {
			// best-effort: the checkout already completed
			log.Printf("[checkout] confirmation mail failed key=%q err=%v", k, merr)
		}
	}

	return CheckoutResult{OK: true}, nil
}
