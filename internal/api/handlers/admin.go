package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/baharkarakas/ngo-backend/internal/api/httpx"
	"github.com/baharkarakas/ngo-backend/internal/api/validate"
	"github.com/baharkarakas/ngo-backend/internal/models"
)

type StatsAPI interface {
	Totals(ctx context.Context) (models.DonationStats, error)
	Donations(ctx context.Context, limit, offset int) ([]models.DonationWithDonor, error)
}

type AdminHandler struct {
	Stats StatsAPI
	Log   *slog.Logger
}

func NewAdminHandler(stats StatsAPI, log *slog.Logger) *AdminHandler {
	return &AdminHandler{Stats: stats, Log: log}
}

func (h *AdminHandler) Totals(w http.ResponseWriter, r *http.Request) {
	st, err := h.Stats.Totals(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

// Donations lists every donation with its donor. limit falls back to the
// service default when absent or out of range.
func (h *AdminHandler) Donations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, lerr := queryInt(q.Get("limit"))
	offset, oerr := queryInt(q.Get("offset"))
	if lerr != nil || oerr != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "limit and offset must be integers", nil)
		return
	}
	if err := validate.Collect(validate.MinInt("offset", int64(offset), 0)); err != nil {
		writeValidation(w, err)
		return
	}

	list, err := h.Stats.Donations(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func queryInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
