package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/streamapp/stream-platform/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, login, email, phone, password_hash, is_admin, refresh_token, token_created, token_expires, created_at"

// Create inserts a user and returns it. Login, email and phone are unique;
// a clash on any of them comes back as ErrConflict.
func (r *UserRepo) Create(ctx context.Context, login, email, phone, passwordHash string, isAdmin bool) (model.User, error) {
	u := model.User{
		ID:           uuid.NewString(),
		Login:        strings.TrimSpace(login),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Phone:        strings.TrimSpace(phone),
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, login, email, phone, password_hash, is_admin) VALUES (?,?,?,?,?,?)",
		u.ID, u.Login, u.Email, u.Phone, u.PasswordHash, u.IsAdmin)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrConflict
		}
		return model.User{}, err
	}
	return u, nil
}

// GetByIdentifier fetches a user whose login, email or phone equals the
// given identifier. Used by login, which accepts any of the three.
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (model.User, error) {
	identifier = strings.TrimSpace(identifier)
	return r.getOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE login=? OR email=? OR phone=? LIMIT 1",
		identifier, strings.ToLower(identifier), identifier)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByRefreshHash finds the user holding a refresh token hash. Expiry is
// checked by the caller against TokenExpires.
func (r *UserRepo) GetByRefreshHash(ctx context.Context, tokenHash string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE refresh_token=? LIMIT 1", tokenHash)
}

func (r *UserRepo) getOne(ctx context.Context, query string, args ...any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Login, &u.Email, &u.Phone, &u.PasswordHash, &u.IsAdmin,
		&u.RefreshToken, &u.TokenCreated, &u.TokenExpires, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Login, &u.Email, &u.Phone, &u.PasswordHash, &u.IsAdmin,
			&u.RefreshToken, &u.TokenCreated, &u.TokenExpires, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// Update persists the mutable profile fields. Callers merge partial input
// into a loaded user first, so the row is written whole.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET login=?, email=?, phone=?, password_hash=?, is_admin=? WHERE id=?",
		u.Login, u.Email, u.Phone, u.PasswordHash, u.IsAdmin, u.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows can also mean a no-change write; confirm existence.
		if _, err := r.GetByID(ctx, u.ID); err != nil {
			return err
		}
	}
	return nil
}

// StoreRefresh records the hash and validity window of the freshly issued
// refresh token, replacing any previous one for the user.
func (r *UserRepo) StoreRefresh(ctx context.Context, userID, tokenHash string, created, expires time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token=?, token_created=?, token_expires=? WHERE id=?",
		tokenHash, created, expires, userID)
	return err
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
