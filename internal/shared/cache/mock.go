// Package cache 缓存层 mock 实现
package cache

import (
	"context"
	"time"

	"clothing-store/internal/shared/model"
)

// ============================================================================
// NoOpCache - 空操作的 ReportCache 实现（未配置 Redis 或测试时使用）
// ============================================================================

// NoOpCache 是一个不做任何操作的 ReportCache 实现，每次读取都未命中
type NoOpCache struct{}

var _ ReportCache = (*NoOpCache)(nil)

// NewNoOpCache 创建 NoOpCache 实例
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetMonthlySales(ctx context.Context, month time.Time) ([]model.MonthlySalesRow, bool, error) {
	return nil, false, nil
}

func (c *NoOpCache) SetMonthlySales(ctx context.Context, month time.Time, rows []model.MonthlySalesRow) error {
	return nil
}

func (c *NoOpCache) InvalidateMonthlySales(ctx context.Context, at time.Time) error {
	return nil
}

func (c *NoOpCache) InvalidateAllMonthlySales(ctx context.Context) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
