package cache

import (
	"fmt"
	"time"
)

// Key 前缀
const (
	KeyMonthlySales = "report:monthly:"
)

// TTL 配置
const (
	TTLMonthlySales = 60 * time.Second
)

// MonthlySalesKey 返回月份对应的缓存 key，如 "report:monthly:2024-03"
func MonthlySalesKey(month time.Time) string {
	m := month.UTC()
	return fmt.Sprintf("%s%04d-%02d", KeyMonthlySales, m.Year(), int(m.Month()))
}
