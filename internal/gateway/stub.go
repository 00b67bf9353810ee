package gateway

import (
	"context"

	"github.com/google/uuid"
)

// Stub issues local order ids without talking to a gateway. Used with
// PAYMENT_GATEWAY=stub in development; signatures are still checked against
// the configured secret.
type Stub struct{}

func (Stub) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}
	return Order{
		ID:          "order_" + uuid.NewString(),
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
	}, nil
}
