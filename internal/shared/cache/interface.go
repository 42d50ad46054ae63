// Package cache 缓存层抽象接口
//
// 缓存月度销售报表，当前由 Redis 实现；未配置 Redis 时使用 NoOpCache。
package cache

import (
	"context"
	"time"

	"clothing-store/internal/shared/model"
)

// ReportCache 月度销售报表缓存接口
//
// month 为当月第一天（UTC），只使用其年份和月份。
type ReportCache interface {
	// GetMonthlySales 读取缓存，未命中时返回 (nil, false, nil)
	GetMonthlySales(ctx context.Context, month time.Time) ([]model.MonthlySalesRow, bool, error)
	SetMonthlySales(ctx context.Context, month time.Time, rows []model.MonthlySalesRow) error
	// InvalidateMonthlySales 删除 at 所在月份的缓存
	InvalidateMonthlySales(ctx context.Context, at time.Time) error
	// InvalidateAllMonthlySales 删除所有月份的缓存（商品变更会影响任意月份的连接结果）
	InvalidateAllMonthlySales(ctx context.Context) error
	Close() error
}
