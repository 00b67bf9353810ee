package repository

import (
	"context"
	"errors"

	"github.com/baharkarakas/ngo-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type Users interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	// PromoteAdmin resets the password hash and forces role ADMIN.
	PromoteAdmin(ctx context.Context, id, passwordHash string) error
	CountByRole(ctx context.Context, role string) (int64, error)
}

// DonationUpdate carries the fields written together with a status change.
type DonationUpdate struct {
	Status           models.DonationStatus
	GatewayPaymentID *string
}

type Donations interface {
	Create(ctx context.Context, d models.Donation) (models.Donation, error)
	GetByID(ctx context.Context, id string) (models.Donation, error)
	// SetGatewayOrder records the remote order id once, while the donation
	// is still PENDING and has no order id. Returns false when nothing was
	// written.
	SetGatewayOrder(ctx context.Context, id, orderID string) (bool, error)
	// UpdateIfStatus applies upd only when the current status equals
	// expected, as a single conditional statement. Returns false when the
	// status did not match.
	UpdateIfStatus(ctx context.Context, id string, expected models.DonationStatus, upd DonationUpdate) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.Donation, error)
	ListWithDonor(ctx context.Context, limit, offset int) ([]models.DonationWithDonor, error)
	// Totals returns the number of donations and the sum of SUCCESS amounts
	// in minor units.
	Totals(ctx context.Context) (count int64, successMinor int64, err error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
