package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/ngo-backend/internal/api/httpx"
	"github.com/baharkarakas/ngo-backend/internal/models"
	"github.com/baharkarakas/ngo-backend/internal/money"
	"github.com/baharkarakas/ngo-backend/internal/services"
)

type DonationAPI interface {
	CreateOrder(ctx context.Context, ownerID string, amount decimal.Decimal) (services.CreatedOrder, error)
	Verify(ctx context.Context, ownerID string, in services.VerifyInput) (services.VerifyResult, error)
	MarkAbandoned(ctx context.Context, ownerID, donationID string) (models.Donation, error)
	ListMine(ctx context.Context, ownerID string) ([]models.Donation, error)
}

type DonationHandler struct {
	Svc DonationAPI
	Log *slog.Logger
}

func NewDonationHandler(svc DonationAPI, log *slog.Logger) *DonationHandler {
	return &DonationHandler{Svc: svc, Log: log}
}

type createOrderReq struct {
	Amount json.RawMessage `json:"amount"`
}

type createOrderResp struct {
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Key        string `json:"key"`
	DonationID string `json:"donationId"`
}

func (h *DonationHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)
	var req createOrderReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.Log, services.ErrInvalidAmount)
		return
	}
	amount, err := money.ParseJSON(req.Amount)
	if err != nil {
		writeServiceError(w, r, h.Log, services.ErrInvalidAmount)
		return
	}

	out, err := h.Svc.CreateOrder(r.Context(), u.UserID, amount)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, createOrderResp{
		OrderID:    out.OrderID,
		Amount:     out.AmountMinor,
		Currency:   out.Currency,
		Key:        out.KeyID,
		DonationID: out.DonationID,
	})
}

type verifyReq struct {
	OrderID    string `json:"razorpay_order_id"`
	PaymentID  string `json:"razorpay_payment_id"`
	Signature  string `json:"razorpay_signature"`
	DonationID string `json:"donationId"`
}

func (h *DonationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)
	var req verifyReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.Log, services.ErrMissingFields)
		return
	}

	res, err := h.Svc.Verify(r.Context(), u.UserID, services.VerifyInput{
		GatewayOrderID:   req.OrderID,
		GatewayPaymentID: req.PaymentID,
		Signature:        req.Signature,
		DonationID:       req.DonationID,
	})
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	msg := "Payment verified successfully"
	if res.AlreadyVerified {
		msg = "Payment already verified"
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Message{Message: msg})
}

type markFailedReq struct {
	DonationID string `json:"donationId"`
}

func (h *DonationHandler) MarkFailed(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)
	var req markFailedReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.Log, services.ErrMissingFields)
		return
	}
	if _, err := h.Svc.MarkAbandoned(r.Context(), u.UserID, req.DonationID); err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Message{Message: "Payment marked as failed"})
}

func (h *DonationHandler) Mine(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)
	list, err := h.Svc.ListMine(r.Context(), u.UserID)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}
