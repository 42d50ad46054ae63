// Package eventbus 事件总线抽象接口
//
// 提供支付事件的发布/订阅能力，多实例部署时由 Redis Streams 实现，
// 单实例或未配置 Redis 时使用进程内的 LocalBus。
package eventbus

import (
	"context"
)

// ============================================================================
// 事件总线接口定义
// ============================================================================

// PaymentEventBus 支付事件总线接口
type PaymentEventBus interface {
	PublishPayment(ctx context.Context, event *PaymentEvent) error
	// SubscribePayments 订阅此后发布的支付事件，ctx 取消后通道关闭
	SubscribePayments(ctx context.Context) (<-chan *PaymentEvent, error)
	Close() error
}
