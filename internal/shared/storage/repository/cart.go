package repository

import (
	"context"
	"database/sql"

	"clothing-store/internal/shared/model"
	"clothing-store/internal/shared/storage"
)

const cartColumns = `id, user_id, url1, name, item_id, item_price, item_name, created_at, updated_at`

func scanCartItem(row interface{ Scan(...any) error }) (*model.CartItem, error) {
	c := &model.CartItem{}
	err := row.Scan(&c.ID, &c.UserID, &c.Url1, &c.Name, &c.ItemID, &c.ItemPrice,
		&c.ItemName, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AddCartItem 加入购物车
func (s *Store) AddCartItem(ctx context.Context, item *model.CartItem) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO carts (`+cartColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`),
		item.ID, item.UserID, item.Url1, item.Name, item.ItemID, item.ItemPrice,
		item.ItemName, item.CreatedAt, item.UpdatedAt,
	)
	return s.wrapError(err)
}

// ListCartItems 列出用户的购物车
func (s *Store) ListCartItems(ctx context.Context, userID string) ([]*model.CartItem, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT `+cartColumns+` FROM carts WHERE user_id = $1 ORDER BY created_at, id`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*model.CartItem{}
	for rows.Next() {
		c, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// DeleteCartItem 删除用户购物车中指定商品的最早一条记录
func (s *Store) DeleteCartItem(ctx context.Context, itemID, userID string) (*model.CartItem, error) {
	c, err := scanCartItem(s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+cartColumns+` FROM carts WHERE item_id = $1 AND user_id = $2
		 ORDER BY created_at, id LIMIT 1`), itemID, userID))
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM carts WHERE id = $1`), c.ID)
	if err != nil {
		return nil, s.wrapError(err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return c, nil
}
