package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"clothing-store/internal/shared/model"
)

const itemColumns = `id, item_name, item_price, gender, material, subcategory,
	url1, url2, url3, url4, url5, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*model.Item, error) {
	it := &model.Item{}
	err := row.Scan(&it.ID, &it.ItemName, &it.ItemPrice, &it.Gender, &it.Material, &it.Subcategory,
		&it.Url1, &it.Url2, &it.Url3, &it.Url4, &it.Url5, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// CreateItem 创建商品
func (s *Store) CreateItem(ctx context.Context, item *model.Item) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO items (`+itemColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`),
		item.ID, item.ItemName, item.ItemPrice, string(item.Gender), item.Material, item.Subcategory,
		item.Url1, item.Url2, item.Url3, item.Url4, item.Url5, item.CreatedAt, item.UpdatedAt,
	)
	return s.wrapError(err)
}

// GetItem 获取商品
func (s *Store) GetItem(ctx context.Context, id string) (*model.Item, error) {
	it, err := scanItem(s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+itemColumns+` FROM items WHERE id = $1`), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return it, err
}

// ListItems 列出全部商品（按创建时间）
func (s *Store) ListItems(ctx context.Context) ([]*model.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateItem 更新商品基础信息
func (s *Store) UpdateItem(ctx context.Context, id string, update model.ItemUpdate) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE items SET item_name = $1, item_price = $2, gender = $3, material = $4,
		 subcategory = $5, updated_at = $6 WHERE id = $7`),
		update.ItemName, update.ItemPrice, string(update.Gender), update.Material,
		update.Subcategory, time.Now().UTC(), id,
	)
	if err != nil {
		return s.wrapError(err)
	}
	return requireAffected(res)
}

// SetItemImage 设置商品图片槽位
func (s *Store) SetItemImage(ctx context.Context, id string, slot int, url string) error {
	field, ok := model.ImageField(slot)
	if !ok {
		return fmt.Errorf("invalid image slot %d", slot)
	}
	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE items SET `+strings.ToLower(field)+` = $1, updated_at = $2 WHERE id = $3`),
		url, time.Now().UTC(), id,
	)
	if err != nil {
		return s.wrapError(err)
	}
	return requireAffected(res)
}

// DeleteItem 删除商品
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM items WHERE id = $1`), id)
	if err != nil {
		return s.wrapError(err)
	}
	return requireAffected(res)
}
