// Package redis 月度销售报表缓存操作
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"clothing-store/internal/shared/cache"
	"clothing-store/internal/shared/model"

	"github.com/redis/go-redis/v9"
)

// GetMonthlySales 读取月度报表缓存
func (s *Store) GetMonthlySales(ctx context.Context, month time.Time) ([]model.MonthlySalesRow, bool, error) {
	data, err := s.client.Get(ctx, cache.MonthlySalesKey(month)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rows []model.MonthlySalesRow
	if err := json.Unmarshal(data, &rows); err != nil {
		// 格式损坏按未命中处理，下次写入时覆盖
		return nil, false, nil
	}
	return rows, true, nil
}

// SetMonthlySales 写入月度报表缓存
func (s *Store) SetMonthlySales(ctx context.Context, month time.Time, rows []model.MonthlySalesRow) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cache.MonthlySalesKey(month), data, s.ttl).Err()
}

// InvalidateMonthlySales 删除 at 所在月份的报表缓存
func (s *Store) InvalidateMonthlySales(ctx context.Context, at time.Time) error {
	return s.client.Del(ctx, cache.MonthlySalesKey(at)).Err()
}

// InvalidateAllMonthlySales 删除全部月度报表缓存
//
// 使用 SCAN 遍历 key，避免 KEYS 阻塞 Redis
func (s *Store) InvalidateAllMonthlySales(ctx context.Context) error {
	var keys []string
	iter := s.client.Scan(ctx, 0, cache.KeyMonthlySales+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
