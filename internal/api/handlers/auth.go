package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/baharkarakas/ngo-backend/internal/api/httpx"
	"github.com/baharkarakas/ngo-backend/internal/api/validate"
	"github.com/baharkarakas/ngo-backend/internal/models"
	"github.com/baharkarakas/ngo-backend/internal/services"
)

type UserAPI interface {
	Register(ctx context.Context, name, email, password string) (models.User, error)
	Login(ctx context.Context, email, password, role string) (services.Session, error)
	Refresh(ctx context.Context, refreshToken string) (services.Session, error)
}

type AuthHandler struct {
	Users UserAPI
	Log   *slog.Logger
}

func NewAuthHandler(users UserAPI, log *slog.Logger) *AuthHandler {
	return &AuthHandler{Users: users, Log: log}
}

type registerReq struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResp struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         *models.User `json:"user,omitempty"`
	Admin        *models.User `json:"admin,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidation(w, err)
		return
	}
	u, err := h.Users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.RoleUser)
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.RoleAdmin)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, role string) {
	var req loginReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidation(w, err)
		return
	}
	s, err := h.Users.Login(r.Context(), req.Email, req.Password, role)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	resp := tokenResp{Token: s.AccessToken, RefreshToken: s.RefreshToken, ExpiresAt: s.ExpiresAt}
	if role == models.RoleAdmin {
		resp.Admin = &s.User
	} else {
		resp.User = &s.User
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if err := validate.Collect(validate.Required("refresh_token", req.RefreshToken)); err != nil {
		writeValidation(w, err)
		return
	}
	s, err := h.Users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{Token: s.AccessToken, RefreshToken: s.RefreshToken, ExpiresAt: s.ExpiresAt})
}
