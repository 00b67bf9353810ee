package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/baharkarakas/ngo-backend/internal/models"
	repo "github.com/baharkarakas/ngo-backend/internal/repository"
)

type usersRepo struct{ db DB }

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

func (r *usersRepo) Create(ctx context.Context, name, email, hash, role string) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx,
		`INSERT INTO users(id, name, email, password_hash, role) VALUES($1,$2,$3,$4,$5)
		 RETURNING `+userColumns,
		uuid.NewString(), name, strings.ToLower(email), hash, role,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email=$1`, strings.ToLower(email),
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) PromoteAdmin(ctx context.Context, id, hash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash=$2, role=$3, updated_at=now() WHERE id=$1`,
		id, hash, models.RoleAdmin,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *usersRepo) CountByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM users WHERE role=$1`, role).Scan(&n)
	return n, err
}
