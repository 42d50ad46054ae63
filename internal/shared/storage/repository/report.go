package repository

import (
	"context"
	"fmt"
	"time"

	"clothing-store/internal/shared/model"
)

// monthlySalesQuery 月度销售聚合
//
//  1. windowed: 时间窗口过滤，数量无法转为整数的记录被丢弃，商品引用统一为小写
//  2. grouped: 按商品引用累加数量与金额
//  3. first_material: 组内最早一条记录的材质
//  4. 内连接 items，引用不到商品的分组被丢弃
const monthlySalesQuery = `
WITH windowed AS (
    SELECT id, LOWER(item_id) AS item_ref, price, material, created_at,
           %[2]s AS qty
    FROM payments
    WHERE created_at >= $1 AND created_at < $2 AND %[1]s
),
grouped AS (
    SELECT item_ref, SUM(qty) AS total_quantity, SUM(price) AS total_price
    FROM windowed
    GROUP BY item_ref
),
first_material AS (
    SELECT w.item_ref, w.material
    FROM windowed w
    WHERE NOT EXISTS (
        SELECT 1 FROM windowed o
        WHERE o.item_ref = w.item_ref
          AND (o.created_at < w.created_at OR (o.created_at = w.created_at AND o.id < w.id))
    )
)
SELECT g.item_ref, g.total_quantity, g.total_price, f.material,
       i.item_name, i.item_price, i.gender, i.url1
FROM grouped g
JOIN items i ON i.id = g.item_ref
JOIN first_material f ON f.item_ref = g.item_ref
ORDER BY g.item_ref`

// AggregateMonthlySales 汇总 [start, end) 区间内的支付记录
func (s *Store) AggregateMonthlySales(ctx context.Context, start, end time.Time) ([]model.MonthlySalesRow, error) {
	query := fmt.Sprintf(monthlySalesQuery, s.dialect.IntegerText("quantity"), s.dialect.CastInteger("quantity"))

	rows, err := s.db.QueryContext(ctx, s.rebind(query), start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("aggregate monthly sales: %w", err)
	}
	defer rows.Close()

	result := []model.MonthlySalesRow{}
	for rows.Next() {
		var r model.MonthlySalesRow
		if err := rows.Scan(&r.ItemID, &r.TotalQuantity, &r.TotalPrice, &r.Material,
			&r.ItemName, &r.ItemPrice, &r.Gender, &r.URL); err != nil {
			return nil, fmt.Errorf("scan monthly sales row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aggregate monthly sales: %w", err)
	}
	return result, nil
}
