package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/ngo-backend/internal/models"
	"github.com/baharkarakas/ngo-backend/internal/money"
	repo "github.com/baharkarakas/ngo-backend/internal/repository"
)

type donationsRepo struct{ db DB }

const donationColumns = `id, user_id, amount_minor, currency, status, gateway_order_id, gateway_payment_id, created_at, updated_at`

func scanDonation(row pgx.Row, extra ...any) (models.Donation, error) {
	var d models.Donation
	dest := []any{
		&d.ID, &d.UserID, &d.AmountMinor, &d.Currency, &d.Status,
		&d.GatewayOrderID, &d.GatewayPaymentID, &d.CreatedAt, &d.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return models.Donation{}, err
	}
	d.Amount = money.FromMinor(d.AmountMinor, d.Currency)
	return d, nil
}

func (r *donationsRepo) Create(ctx context.Context, d models.Donation) (models.Donation, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	out, err := scanDonation(r.db.QueryRow(ctx,
		`INSERT INTO donations (id, user_id, amount_minor, currency, status)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING `+donationColumns,
		d.ID, d.UserID, d.AmountMinor, d.Currency, d.Status,
	))
	return out, mapErr(err)
}

func (r *donationsRepo) GetByID(ctx context.Context, id string) (models.Donation, error) {
	d, err := scanDonation(r.db.QueryRow(ctx,
		`SELECT `+donationColumns+` FROM donations WHERE id=$1`, id,
	))
	return d, mapErr(err)
}

func (r *donationsRepo) SetGatewayOrder(ctx context.Context, id, orderID string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE donations
		    SET gateway_order_id=$2, updated_at=now()
		  WHERE id=$1 AND status=$3 AND gateway_order_id IS NULL`,
		id, orderID, models.DonationPending,
	)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateIfStatus is a compare-and-set on status. The WHERE clause is the
// guard; whichever writer sees the expected status first wins and the other
// matches zero rows.
func (r *donationsRepo) UpdateIfStatus(ctx context.Context, id string, expected models.DonationStatus, upd repo.DonationUpdate) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE donations
		    SET status=$3,
		        gateway_payment_id=COALESCE($4, gateway_payment_id),
		        updated_at=now()
		  WHERE id=$1 AND status=$2`,
		id, expected, upd.Status, upd.GatewayPaymentID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *donationsRepo) ListByUser(ctx context.Context, userID string) ([]models.Donation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+donationColumns+`
		   FROM donations
		  WHERE user_id=$1
		  ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Donation{}
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *donationsRepo) ListWithDonor(ctx context.Context, limit, offset int) ([]models.DonationWithDonor, error) {
	rows, err := r.db.Query(ctx,
		`SELECT d.id, d.user_id, d.amount_minor, d.currency, d.status, d.gateway_order_id,
		        d.gateway_payment_id, d.created_at, d.updated_at, u.name, u.email
		   FROM donations d
		   JOIN users u ON u.id = d.user_id
		  ORDER BY d.created_at DESC
		  LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.DonationWithDonor{}
	for rows.Next() {
		var dd models.DonationWithDonor
		d, err := scanDonation(rows, &dd.Donor.Name, &dd.Donor.Email)
		if err != nil {
			return nil, err
		}
		dd.Donation = d
		dd.Donor.ID = d.UserID
		out = append(out, dd)
	}
	return out, rows.Err()
}

func (r *donationsRepo) Totals(ctx context.Context) (int64, int64, error) {
	var count, sum int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*), COALESCE(SUM(amount_minor) FILTER (WHERE status=$1), 0)::bigint
		   FROM donations`,
		models.DonationSuccess,
	).Scan(&count, &sum)
	return count, sum, err
}
