package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	usecase "boutique/internal/application/usecase"
)

type fakeMailer struct {
	sent []map[string]int
	to   []string
}

func (m *fakeMailer) SendOrderConfirmation(_ context.Context, toEmail string, q map[string]int) error {
	m.to = append(m.to, toEmail)
	m.sent = append(m.sent, q)
	return nil
}

func TestCheckoutComplete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newMemCartRepo()
	st := &fakeStock{levels: map[string]int{"42": 3}}
	eng := newEngine(repo, st)
	mailer := &fakeMailer{}
	flow := usecase.NewCheckoutFlow(eng, mailer)

	_, err := eng.AddToCart(ctx, "uid-1", "42")
	require.NoError(t, err)

	res, err := flow.Complete(ctx, "uid-1", "buyer@example.com")
	require.NoError(t, err)
	require.True(t, res.OK)

	// cart cleared on checkout completion
	q, err := eng.Quantities(ctx, "uid-1")
	require.NoError(t, err)
	require.Empty(t, q)

	require.Equal(t, []string{"buyer@example.com"}, mailer.to)
	require.Equal(t, map[string]int{"42": 1}, mailer.sent[0])
}

func TestCheckoutRefusedOnViolations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newMemCartRepo()
	st := &fakeStock{levels: map[string]int{"42": 3}}
	eng := newEngine(repo, st)
	flow := usecase.NewCheckoutFlow(eng, nil)

	for i := 0; i < 3; i++ {
		_, err := eng.AddToCart(ctx, "uid-1", "42")
		require.NoError(t, err)
	}
	st.levels["42"] = 1

	res, err := flow.Complete(ctx, "uid-1", "")
	require.NoError(t, err)
	require.False(t, res.OK)
	require.Len(t, res.Violations, 1)
	require.Equal(t, usecase.StockViolation{ProductID: "42", RequestedQuantity: 3, AvailableStock: 1}, res.Violations[0])

	// cart preserved so the client can fix it
	q, err := eng.Quantities(ctx, "uid-1")
	require.NoError(t, err)
	require.Equal(t, 3, q["42"])
}

func TestCheckoutEmptyCartIsArgumentError(t *testing.T) {
	t.Parallel()

	repo := newMemCartRepo()
	eng := newEngine(repo, &fakeStock{})
	flow := usecase.NewCheckoutFlow(eng, nil)

	_, err := flow.Complete(context.Background(), "uid-1", "")
	require.ErrorIs(t, err, usecase.ErrCheckoutInvalidArgument)
}
