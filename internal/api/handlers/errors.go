package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/ngo-backend/internal/api/httpx"
	"github.com/baharkarakas/ngo-backend/internal/api/validate"
	"github.com/baharkarakas/ngo-backend/internal/middleware"
	"github.com/baharkarakas/ngo-backend/internal/services"
)

type errMapping struct {
	err    error
	status int
	code   string
	msg    string
}

var serviceErrors = []errMapping{
	{services.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount", "Invalid amount"},
	{services.ErrMissingFields, http.StatusBadRequest, "missing_fields", "Missing payment fields"},
	{services.ErrNotFound, http.StatusNotFound, "not_found", "Donation not found"},
	{services.ErrInvalidSignature, http.StatusBadRequest, "invalid_signature", "Invalid payment signature"},
	{services.ErrPaymentClosed, http.StatusConflict, "payment_closed", "Payment already failed"},
	{services.ErrUpstreamUnavailable, http.StatusServiceUnavailable, "upstream_unavailable", "Payment service unavailable, please retry"},
	{services.ErrEmailTaken, http.StatusConflict, "user_exists", "User already exists"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"},
}

// writeServiceError maps service sentinels to the JSON envelope. Anything
// unknown is logged with its detail and surfaced as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				log.Error("request failed", "path", r.URL.Path, "request_id", middleware.RequestIDFrom(r.Context()), "err", err)
			}
			httpx.WriteError(w, m.status, m.code, m.msg, nil)
			return
		}
	}
	log.Error("request failed", "path", r.URL.Path, "request_id", middleware.RequestIDFrom(r.Context()), "err", err)
	httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
}

func writeValidation(w http.ResponseWriter, err error) {
	var errs validate.Errs
	if errors.As(err, &errs) {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "invalid request", errs)
		return
	}
	httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request", nil)
}

func currentUser(r *http.Request) (middleware.UserCtx, bool) {
	return middleware.FromCtx(r.Context())
}
