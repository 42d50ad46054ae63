package repository

import (
	"context"
	"database/sql"

	"clothing-store/internal/shared/model"
)

const userColumns = `id, user_name, email, password_hash, phone, address, postal_code, role, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.UserName, &u.Email, &u.PasswordHash, &u.Phone,
		&u.Address, &u.PostalCode, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser 创建用户
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`),
		user.ID, user.UserName, user.Email, user.PasswordHash, user.Phone,
		user.Address, user.PostalCode, string(user.Role), user.CreatedAt, user.UpdatedAt,
	)
	return s.wrapError(err)
}

// GetUserByUserName 通过用户名查找用户
func (s *Store) GetUserByUserName(ctx context.Context, userName string) (*model.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE user_name = $1`, userName)
}

// GetUserByID 通过 ID 查找用户
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Store) getUser(ctx context.Context, query string, arg string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, s.rebind(query), arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}
