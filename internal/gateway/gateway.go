// Package gateway creates remote payment orders for donations.
package gateway

import (
	"context"
	"errors"
)

// ErrGateway wraps every failure returned by an Orders implementation. The
// donation flow does not distinguish transient from permanent failures.
var ErrGateway = errors.New("payment gateway error")

type OrderRequest struct {
	AmountMinor int64
	Currency    string
	// Receipt is the reconciliation key; the local donation id.
	Receipt string
	Notes   map[string]string
}

type Order struct {
	ID          string
	AmountMinor int64
	Currency    string
}

type Orders interface {
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
}
