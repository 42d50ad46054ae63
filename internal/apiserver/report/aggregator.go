// Package report 月度销售报表：按商品汇总某月的支付记录
package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"clothing-store/internal/shared/cache"
	"clothing-store/internal/shared/model"
	"clothing-store/internal/shared/storage"
)

// 报表错误
var (
	ErrInvalidMonth = errors.New("month must be an integer between 1 and 12")
	ErrNoPayments   = errors.New("no payments found for this month")
)

// Aggregator 月度销售汇总
type Aggregator interface {
	MonthlySales(ctx context.Context, month int) ([]model.MonthlySalesRow, error)
}

// Observer 报表查询观察者（指标），outcome 取值 hit / miss / empty / error
type Observer interface {
	ObserveReport(outcome string, duration time.Duration)
}

// Service 基于存储聚合与缓存的 Aggregator 实现
type Service struct {
	store    storage.SalesReportStore
	cache    cache.ReportCache
	observer Observer
	now      func() time.Time
}

var _ Aggregator = (*Service)(nil)

// NewService 创建报表服务，c 与 observer 可为 nil
func NewService(store storage.SalesReportStore, c cache.ReportCache, observer Observer) *Service {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Service{store: store, cache: c, observer: observer, now: time.Now}
}

// SetClock 替换时钟（测试用），年份取自 now() 的 UTC 年
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// ParseMonth 解析路径中的月份参数
func ParseMonth(raw string) (int, error) {
	month, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || month < 1 || month > 12 {
		return 0, ErrInvalidMonth
	}
	return month, nil
}

// MonthWindow 返回 UTC 月份区间 [当月第一天, 次月第一天)
func MonthWindow(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// MonthlySales 汇总当年指定月份的销售数据
//
// 结果按商品 ID 排序；该月没有可汇总的支付记录时返回 ErrNoPayments。
// 缓存读写失败只记录日志，以存储结果为准。
func (s *Service) MonthlySales(ctx context.Context, month int) ([]model.MonthlySalesRow, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}
	begin := time.Now()
	start, end := MonthWindow(s.now().UTC().Year(), time.Month(month))

	rows, hit, err := s.cache.GetMonthlySales(ctx, start)
	if err != nil {
		log.Printf("[report] cache get %s failed: %v", cache.MonthlySalesKey(start), err)
	}
	if hit && len(rows) > 0 {
		s.observe("hit", begin)
		return rows, nil
	}

	rows, err = s.store.AggregateMonthlySales(ctx, start, end)
	if err != nil {
		s.observe("error", begin)
		return nil, fmt.Errorf("aggregate monthly sales: %w", err)
	}
	if len(rows) == 0 {
		s.observe("empty", begin)
		return nil, ErrNoPayments
	}

	if err := s.cache.SetMonthlySales(ctx, start, rows); err != nil {
		log.Printf("[report] cache set %s failed: %v", cache.MonthlySalesKey(start), err)
	}
	s.observe("miss", begin)
	return rows, nil
}

func (s *Service) observe(outcome string, begin time.Time) {
	if s.observer != nil {
		s.observer.ObserveReport(outcome, time.Since(begin))
	}
}
