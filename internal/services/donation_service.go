package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/baharkarakas/ngo-backend/internal/gateway"
	"github.com/baharkarakas/ngo-backend/internal/metrics"
	"github.com/baharkarakas/ngo-backend/internal/models"
	"github.com/baharkarakas/ngo-backend/internal/money"
	"github.com/baharkarakas/ngo-backend/internal/payment"
	repo "github.com/baharkarakas/ngo-backend/internal/repository"
)

// PaymentConfig is everything the donation flow needs to know about the
// gateway account. KeyID is public and goes back to the checkout client;
// Secret signs payment callbacks and never leaves the server.
type PaymentConfig struct {
	KeyID    string
	Secret   string
	Currency string
	Bounds   money.Bounds
}

// DonationService owns the donation lifecycle:
//
//	PENDING --verify ok--> SUCCESS
//	PENDING --bad signature | abandoned | gateway error--> FAILED
//
// Every transition is a conditional update on status PENDING, so a late
// cancellation can never overwrite a confirmed payment.
type DonationService struct {
	donations repo.Donations
	orders    gateway.Orders
	audit     Auditor
	log       *slog.Logger
	cfg       PaymentConfig
}

func NewDonationService(d repo.Donations, o gateway.Orders, a Auditor, log *slog.Logger, cfg PaymentConfig) *DonationService {
	return &DonationService{donations: d, orders: o, audit: a, log: log, cfg: cfg}
}

type CreatedOrder struct {
	OrderID     string
	AmountMinor int64
	Currency    string
	KeyID       string
	DonationID  string
}

type VerifyInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
	DonationID       string
}

type VerifyResult struct {
	Donation        models.Donation
	AlreadyVerified bool
}

// ----------------- Helpers -----------------

func (s *DonationService) record(d models.Donation, action string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	details["user_id"] = d.UserID
	s.audit.Record("donation", d.ID, action, details)
}

// load resolves a donation owned by ownerID. Malformed ids and donations of
// other users are reported as not found.
func (s *DonationService) load(ctx context.Context, ownerID, id string) (models.Donation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Donation{}, ErrNotFound
	}
	d, err := s.donations.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Donation{}, ErrNotFound
	}
	if err != nil {
		return models.Donation{}, fmt.Errorf("%w: load donation: %v", ErrUpstreamUnavailable, err)
	}
	if d.UserID != ownerID {
		return models.Donation{}, ErrNotFound
	}
	return d, nil
}

// fail moves a PENDING donation to FAILED. It reports whether this call
// performed the transition.
func (s *DonationService) fail(ctx context.Context, d models.Donation, reason string) (bool, error) {
	ok, err := s.donations.UpdateIfStatus(ctx, d.ID, models.DonationPending, repo.DonationUpdate{Status: models.DonationFailed})
	if err != nil {
		return false, fmt.Errorf("%w: update donation: %v", ErrUpstreamUnavailable, err)
	}
	if ok {
		metrics.DonationTransitions.WithLabelValues(string(models.DonationFailed), reason).Inc()
		s.record(d, "status_change", map[string]any{"from": models.DonationPending, "to": models.DonationFailed, "reason": reason})
	}
	return ok, nil
}

// ----------------- CREATE ORDER -----------------

func (s *DonationService) CreateOrder(ctx context.Context, ownerID string, amount decimal.Decimal) (CreatedOrder, error) {
	if err := s.cfg.Bounds.Check(amount); err != nil {
		return CreatedOrder{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	minor, err := money.ToMinor(amount, s.cfg.Currency)
	if err != nil {
		return CreatedOrder{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	d, err := s.donations.Create(ctx, models.Donation{
		UserID:      ownerID,
		AmountMinor: minor,
		Currency:    s.cfg.Currency,
		Status:      models.DonationPending,
	})
	if err != nil {
		return CreatedOrder{}, fmt.Errorf("%w: create donation: %v", ErrUpstreamUnavailable, err)
	}
	metrics.DonationsCreated.Inc()
	s.record(d, "created", map[string]any{"amount_minor": minor, "currency": d.Currency})

	order, err := s.orders.CreateOrder(ctx, gateway.OrderRequest{
		AmountMinor: minor,
		Currency:    s.cfg.Currency,
		Receipt:     d.ID,
		Notes:       map[string]string{"donationId": d.ID, "userId": ownerID},
	})
	if err != nil {
		metrics.GatewayErrors.Inc()
		s.log.Error("create gateway order", "donation_id", d.ID, "user_id", ownerID, "err", err)
		// Do not leave an orphaned PENDING record behind. The request
		// context may already be gone, the compensation must still land.
		if _, ferr := s.fail(context.WithoutCancel(ctx), d, "gateway_error"); ferr != nil {
			s.log.Error("compensate failed order", "donation_id", d.ID, "err", ferr)
		}
		return CreatedOrder{}, ErrUpstreamUnavailable
	}
	if order.AmountMinor != minor {
		s.log.Warn("gateway normalized order amount", "donation_id", d.ID, "requested", minor, "gateway", order.AmountMinor)
	}

	ok, err := s.donations.SetGatewayOrder(ctx, d.ID, order.ID)
	if err != nil {
		s.log.Error("store gateway order", "donation_id", d.ID, "gateway_order_id", order.ID, "err", err)
		if _, ferr := s.fail(context.WithoutCancel(ctx), d, "store_error"); ferr != nil {
			s.log.Error("compensate unstored order", "donation_id", d.ID, "err", ferr)
		}
		return CreatedOrder{}, fmt.Errorf("%w: store gateway order: %v", ErrUpstreamUnavailable, err)
	}
	if !ok {
		return CreatedOrder{}, ErrPaymentClosed
	}
	s.record(d, "gateway_order", map[string]any{"gateway_order_id": order.ID})

	return CreatedOrder{
		OrderID:     order.ID,
		AmountMinor: order.AmountMinor,
		Currency:    order.Currency,
		KeyID:       s.cfg.KeyID,
		DonationID:  d.ID,
	}, nil
}

// ----------------- VERIFY -----------------

func (s *DonationService) Verify(ctx context.Context, ownerID string, in VerifyInput) (VerifyResult, error) {
	in.GatewayOrderID = strings.TrimSpace(in.GatewayOrderID)
	in.GatewayPaymentID = strings.TrimSpace(in.GatewayPaymentID)
	in.Signature = strings.TrimSpace(in.Signature)
	in.DonationID = strings.TrimSpace(in.DonationID)
	if in.GatewayOrderID == "" || in.GatewayPaymentID == "" || in.Signature == "" || in.DonationID == "" {
		return VerifyResult{}, ErrMissingFields
	}

	d, err := s.load(ctx, ownerID, in.DonationID)
	if err != nil {
		return VerifyResult{}, err
	}
	switch d.Status {
	case models.DonationSuccess:
		return VerifyResult{Donation: d, AlreadyVerified: true}, nil
	case models.DonationFailed:
		return VerifyResult{}, ErrPaymentClosed
	}

	// The signature covers the order id the client sent; it must also be
	// the order we created for this donation.
	authentic := d.GatewayOrderID != nil && *d.GatewayOrderID == in.GatewayOrderID &&
		payment.Verify(s.cfg.Secret, in.GatewayOrderID, in.GatewayPaymentID, in.Signature)

	if !authentic {
		metrics.SignatureFailures.Inc()
		s.log.Warn("security: payment signature rejected",
			"donation_id", d.ID,
			"user_id", ownerID,
			"gateway_order_id", in.GatewayOrderID,
			"gateway_payment_id", in.GatewayPaymentID,
		)
		s.record(d, "signature_rejected", map[string]any{
			"gateway_order_id":   in.GatewayOrderID,
			"gateway_payment_id": in.GatewayPaymentID,
		})
		if _, err := s.fail(ctx, d, "bad_signature"); err != nil {
			return VerifyResult{}, err
		}
		return VerifyResult{}, ErrInvalidSignature
	}

	ok, err := s.donations.UpdateIfStatus(ctx, d.ID, models.DonationPending, repo.DonationUpdate{
		Status:           models.DonationSuccess,
		GatewayPaymentID: &in.GatewayPaymentID,
	})
	if err != nil {
		return VerifyResult{}, fmt.Errorf("%w: update donation: %v", ErrUpstreamUnavailable, err)
	}
	if !ok {
		// Lost the race; report whatever won.
		cur, err := s.load(ctx, ownerID, d.ID)
		if err != nil {
			return VerifyResult{}, err
		}
		if cur.Status == models.DonationSuccess {
			return VerifyResult{Donation: cur, AlreadyVerified: true}, nil
		}
		return VerifyResult{}, ErrPaymentClosed
	}

	metrics.DonationTransitions.WithLabelValues(string(models.DonationSuccess), "verified").Inc()
	s.record(d, "status_change", map[string]any{
		"from":               models.DonationPending,
		"to":                 models.DonationSuccess,
		"gateway_payment_id": in.GatewayPaymentID,
	})
	s.log.Info("donation verified", "donation_id", d.ID, "user_id", ownerID, "amount_minor", d.AmountMinor)

	d.Status = models.DonationSuccess
	d.GatewayPaymentID = &in.GatewayPaymentID
	return VerifyResult{Donation: d}, nil
}

// ----------------- MARK ABANDONED -----------------

// MarkAbandoned fails a PENDING donation after the user closed checkout.
// Donations that already reached SUCCESS or FAILED are returned unchanged.
func (s *DonationService) MarkAbandoned(ctx context.Context, ownerID, donationID string) (models.Donation, error) {
	donationID = strings.TrimSpace(donationID)
	if donationID == "" {
		return models.Donation{}, ErrMissingFields
	}
	d, err := s.load(ctx, ownerID, donationID)
	if err != nil {
		return models.Donation{}, err
	}
	if d.Status.Terminal() {
		return d, nil
	}

	ok, err := s.fail(ctx, d, "abandoned")
	if err != nil {
		return models.Donation{}, err
	}
	if !ok {
		return s.load(ctx, ownerID, donationID)
	}
	d.Status = models.DonationFailed
	return d, nil
}

// ----------------- Queries -----------------

func (s *DonationService) ListMine(ctx context.Context, ownerID string) ([]models.Donation, error) {
	return s.donations.ListByUser(ctx, ownerID)
}
