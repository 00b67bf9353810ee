package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/ngo-backend/internal/auth"
	"github.com/baharkarakas/ngo-backend/internal/models"
)

func newUserService() (*UserService, *memUsers, *auth.TokenManager) {
	users := newMemUsers()
	tm := auth.NewTokenManager("a", "r", "ngo-test", time.Hour, time.Hour)
	return NewUserService(users, tm, discardLogger()), users, tm
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, tm := newUserService()
	ctx := context.Background()

	u, err := svc.Register(ctx, " Asha ", "Asha@Example.org", "donate123")
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.Name)
	assert.Equal(t, "asha@example.org", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)

	_, err = svc.Register(ctx, "Other", "asha@example.org", "whatever1")
	assert.ErrorIs(t, err, ErrEmailTaken)

	sess, err := svc.Login(ctx, "ASHA@example.org", "donate123", models.RoleUser)
	require.NoError(t, err)
	claims, err := tm.ParseAccess(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)

	_, err = svc.Login(ctx, "asha@example.org", "wrong", models.RoleUser)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.org", "donate123", models.RoleUser)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	// users cannot use the admin login
	_, err = svc.Login(ctx, "asha@example.org", "donate123", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	svc, _, _ := newUserService()
	ctx := context.Background()
	_, err := svc.Register(ctx, "Ravi", "ravi@example.org", "donate123")
	require.NoError(t, err)
	sess, err := svc.Login(ctx, "ravi@example.org", "donate123", models.RoleUser)
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, sess.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, next.User.ID)

	_, err = svc.Refresh(ctx, sess.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSeedAdmin(t *testing.T) {
	svc, users, _ := newUserService()
	ctx := context.Background()

	require.NoError(t, svc.SeedAdmin(ctx, "", ""))
	n, _ := users.CountByRole(ctx, models.RoleAdmin)
	assert.Zero(t, n)

	require.NoError(t, svc.SeedAdmin(ctx, "root@ngo.org", "first-pass"))
	_, err := svc.Login(ctx, "root@ngo.org", "first-pass", models.RoleAdmin)
	require.NoError(t, err)

	// second boot resets the password
	require.NoError(t, svc.SeedAdmin(ctx, "root@ngo.org", "second-pass"))
	_, err = svc.Login(ctx, "root@ngo.org", "first-pass", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "root@ngo.org", "second-pass", models.RoleAdmin)
	require.NoError(t, err)

	n, _ = users.CountByRole(ctx, models.RoleAdmin)
	assert.Equal(t, int64(1), n)
}

func TestSeedAdminPromotesExistingUser(t *testing.T) {
	svc, _, _ := newUserService()
	ctx := context.Background()
	_, err := svc.Register(ctx, "Meera", "meera@ngo.org", "user-pass")
	require.NoError(t, err)

	require.NoError(t, svc.SeedAdmin(ctx, "meera@ngo.org", "admin-pass"))
	sess, err := svc.Login(ctx, "meera@ngo.org", "admin-pass", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, sess.User.Role)
}
