package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/baharkarakas/ngo-backend/internal/auth"
	"github.com/baharkarakas/ngo-backend/internal/models"
	repo "github.com/baharkarakas/ngo-backend/internal/repository"
)

type UserService struct {
	r   repo.Users
	tm  *auth.TokenManager
	log *slog.Logger

	// compared against when the email is unknown so both paths cost one
	// bcrypt comparison
	dummyHash string
}

func NewUserService(r repo.Users, tm *auth.TokenManager, log *slog.Logger) *UserService {
	h, _ := auth.HashPassword("not-a-real-password")
	return &UserService{r: r, tm: tm, log: log, dummyHash: h}
}

type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         models.User
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.r.GetByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	u, err := s.r.Create(ctx, strings.TrimSpace(name), email, hash, models.RoleUser)
	if errors.Is(err, repo.ErrDuplicate) {
		return models.User{}, ErrEmailTaken
	}
	return u, err
}

// Login checks credentials for an account holding role. Admin and user
// logins are separate endpoints; an account with the wrong role is treated
// like an unknown one.
func (s *UserService) Login(ctx context.Context, email, password, role string) (Session, error) {
	u, err := s.r.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repo.ErrNotFound) {
		_ = auth.VerifyPassword(password, s.dummyHash)
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil || u.Role != role {
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := s.tm.ParseRefresh(refreshToken)
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}
	u, err := s.r.GetByID(ctx, claims.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	return s.issue(u)
}

func (s *UserService) issue(u models.User) (Session, error) {
	access, refresh, exp, err := s.tm.GeneratePair(u.ID, u.Role)
	if err != nil {
		return Session{}, fmt.Errorf("generate tokens: %w", err)
	}
	return Session{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp, User: u}, nil
}

// SeedAdmin makes sure the configured super admin exists. An existing
// account with that email gets its password reset and is promoted to ADMIN.
func (s *UserService) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		s.log.Warn("super admin not configured")
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	existing, err := s.r.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		if _, err := s.r.Create(ctx, "Super Admin", email, hash, models.RoleAdmin); err != nil {
			return fmt.Errorf("create super admin: %w", err)
		}
		s.log.Info("super admin created", "email", email)
		return nil
	case err != nil:
		return err
	}

	if err := s.r.PromoteAdmin(ctx, existing.ID, hash); err != nil {
		return fmt.Errorf("reset super admin: %w", err)
	}
	s.log.Info("super admin verified", "email", email)
	return nil
}
