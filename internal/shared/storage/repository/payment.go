package repository

import (
	"context"
	"database/sql"

	"clothing-store/internal/shared/model"
)

// CreatePayment 记录支付
func (s *Store) CreatePayment(ctx context.Context, p *model.Payment) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO payments (id, user_id, user_name, item_id, price, material, quantity, size, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`),
		p.ID, p.UserID, p.UserName, p.ItemID, p.Price, p.Material, p.Quantity, string(p.Size),
		p.CreatedAt, p.UpdatedAt,
	)
	return s.wrapError(err)
}

// ListPaymentDetails 列出全部支付并关联用户、商品（缺失的关联保留为占位值）
func (s *Store) ListPaymentDetails(ctx context.Context) ([]model.PaymentDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.price, p.quantity, p.size,
		        u.id, u.user_name, u.postal_code, u.address,
		        i.id, i.item_name, i.item_price
		 FROM payments p
		 LEFT JOIN users u ON u.id = p.user_id
		 LEFT JOIN items i ON i.id = p.item_id
		 ORDER BY p.created_at, p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []model.PaymentDetail{}
	for rows.Next() {
		var (
			p                                  model.Payment
			userID, userName, postal, address sql.NullString
			itemID, itemName                   sql.NullString
			itemPrice                          sql.NullFloat64
		)
		if err := rows.Scan(&p.Price, &p.Quantity, &p.Size,
			&userID, &userName, &postal, &address,
			&itemID, &itemName, &itemPrice); err != nil {
			return nil, err
		}

		var user *model.User
		if userID.Valid {
			user = &model.User{ID: userID.String, UserName: userName.String,
				PostalCode: postal.String, Address: address.String}
		}
		var item *model.Item
		if itemID.Valid {
			item = &model.Item{ID: itemID.String, ItemName: itemName.String, ItemPrice: itemPrice.Float64}
		}
		details = append(details, model.NewPaymentDetail(&p, user, item))
	}
	return details, rows.Err()
}
