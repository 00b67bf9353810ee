package services

import (
	"context"

	"github.com/baharkarakas/ngo-backend/internal/models"
	"github.com/baharkarakas/ngo-backend/internal/money"
	repo "github.com/baharkarakas/ngo-backend/internal/repository"
)

// StatsService backs the admin dashboard.
type StatsService struct {
	users     repo.Users
	donations repo.Donations
	currency  string
}

func NewStatsService(u repo.Users, d repo.Donations, currency string) *StatsService {
	return &StatsService{users: u, donations: d, currency: currency}
}

func (s *StatsService) Totals(ctx context.Context) (models.DonationStats, error) {
	users, err := s.users.CountByRole(ctx, models.RoleUser)
	if err != nil {
		return models.DonationStats{}, err
	}
	count, sum, err := s.donations.Totals(ctx)
	if err != nil {
		return models.DonationStats{}, err
	}
	return models.DonationStats{
		TotalUsers:     users,
		TotalDonations: count,
		TotalAmount:    money.FromMinor(sum, s.currency),
	}, nil
}

func (s *StatsService) Donations(ctx context.Context, limit, offset int) ([]models.DonationWithDonor, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.donations.ListWithDonor(ctx, limit, offset)
}
