// Package eventbus 事件总线类型定义
package eventbus

import (
	"time"

	"clothing-store/internal/shared/model"
)

// ============================================================================
// 事件类型
// ============================================================================

// PaymentEvent 新增支付事件
type PaymentEvent struct {
	ID        string         `json:"id"` // Redis Stream ID，本地总线为空
	Payment   *model.Payment `json:"payment"`
	Timestamp time.Time      `json:"timestamp"`
}

// ============================================================================
// Key 前缀和常量
// ============================================================================

const (
	// KeyPaymentEvents 支付事件流
	KeyPaymentEvents = "payment_events"

	// MaxStreamLength Stream 最大长度
	MaxStreamLength = 1000

	// subscriberBuffer 订阅通道缓冲
	subscriberBuffer = 100
)
