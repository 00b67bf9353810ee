package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/ngo-backend/internal/gateway"
	"github.com/baharkarakas/ngo-backend/internal/models"
	"github.com/baharkarakas/ngo-backend/internal/money"
	repo "github.com/baharkarakas/ngo-backend/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memDonations mirrors the conditional-update semantics of the postgres
// repository under a mutex.
type memDonations struct {
	mu       sync.Mutex
	rows     map[string]models.Donation
	failErr  error
	orderErr error // fails SetGatewayOrder only
}

func newMemDonations() *memDonations {
	return &memDonations{rows: map[string]models.Donation{}}
}

func (m *memDonations) Create(_ context.Context, d models.Donation) (models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return models.Donation{}, m.failErr
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	d.Amount = money.FromMinor(d.AmountMinor, d.Currency)
	m.rows[d.ID] = d
	return d, nil
}

func (m *memDonations) GetByID(_ context.Context, id string) (models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok {
		return models.Donation{}, repo.ErrNotFound
	}
	return d, nil
}

func (m *memDonations) SetGatewayOrder(_ context.Context, id, orderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.orderErr != nil {
		return false, m.orderErr
	}
	d, ok := m.rows[id]
	if !ok || d.Status != models.DonationPending || d.GatewayOrderID != nil {
		return false, nil
	}
	d.GatewayOrderID = &orderID
	m.rows[id] = d
	return true, nil
}

func (m *memDonations) UpdateIfStatus(_ context.Context, id string, expected models.DonationStatus, upd repo.DonationUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok || d.Status != expected {
		return false, nil
	}
	d.Status = upd.Status
	if upd.GatewayPaymentID != nil {
		p := *upd.GatewayPaymentID
		d.GatewayPaymentID = &p
	}
	d.UpdatedAt = time.Now()
	m.rows[id] = d
	return true, nil
}

func (m *memDonations) ListByUser(_ context.Context, userID string) ([]models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Donation{}
	for _, d := range m.rows {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memDonations) ListWithDonor(_ context.Context, limit, offset int) ([]models.DonationWithDonor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.DonationWithDonor{}
	for _, d := range m.rows {
		out = append(out, models.DonationWithDonor{Donation: d, Donor: models.Donor{ID: d.UserID}})
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memDonations) Totals(context.Context) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, d := range m.rows {
		if d.Status == models.DonationSuccess {
			sum += d.AmountMinor
		}
	}
	return int64(len(m.rows)), sum, nil
}

func (m *memDonations) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memUsers struct {
	mu   sync.Mutex
	rows map[string]models.User
}

func newMemUsers() *memUsers { return &memUsers{rows: map[string]models.User{}} }

func (m *memUsers) Create(_ context.Context, name, email, hash, role string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == strings.ToLower(email) {
			return models.User{}, repo.ErrDuplicate
		}
	}
	u := models.User{ID: uuid.NewString(), Name: name, Email: strings.ToLower(email), PasswordHash: hash, Role: role, CreatedAt: time.Now()}
	m.rows[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return models.User{}, repo.ErrNotFound
}

func (m *memUsers) PromoteAdmin(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.PasswordHash = hash
	u.Role = models.RoleAdmin
	m.rows[id] = u
	return nil
}

func (m *memUsers) CountByRole(_ context.Context, role string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.rows {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type fakeGateway struct {
	mu    sync.Mutex
	calls []gateway.OrderRequest
	err   error
}

func (g *fakeGateway) CreateOrder(_ context.Context, req gateway.OrderRequest) (gateway.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.err != nil {
		return gateway.Order{}, g.err
	}
	return gateway.Order{ID: "order_" + req.Receipt[:8], AmountMinor: req.AmountMinor, Currency: req.Currency}, nil
}

type auditEntry struct {
	entityType, entityID, action string
	details                      map[string]any
}

type fakeAuditor struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *fakeAuditor) Record(entityType, entityID, action string, details map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{entityType, entityID, action, details})
}

func (a *fakeAuditor) actions(id string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, e := range a.entries {
		if e.entityID == id {
			out = append(out, e.action)
		}
	}
	return out
}

type fakeAuditLogs struct {
	mu      sync.Mutex
	entries []models.AuditLog
	err     error
}

func (f *fakeAuditLogs) Create(_ context.Context, l models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, l)
	return f.err
}

var errStoreDown = errors.New("connection refused")
