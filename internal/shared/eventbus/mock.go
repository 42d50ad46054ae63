// Package eventbus 进程内事件总线实现
package eventbus

import (
	"context"
	"log"
	"sync"
)

// ============================================================================
// LocalBus - 进程内的 PaymentEventBus 实现（单实例或测试时使用）
// ============================================================================

// LocalBus 在进程内扇出事件，订阅通道满时丢弃事件
type LocalBus struct {
	mu     sync.RWMutex
	subs   map[chan *PaymentEvent]struct{}
	closed bool
}

var _ PaymentEventBus = (*LocalBus)(nil)

// NewLocalBus 创建 LocalBus 实例
func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[chan *PaymentEvent]struct{})}
}

// PublishPayment 发布事件到所有订阅者
func (b *LocalBus) PublishPayment(ctx context.Context, event *PaymentEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
			log.Printf("[LocalBus] Subscriber full, dropping payment event")
		}
	}
	return nil
}

// SubscribePayments 订阅支付事件
func (b *LocalBus) SubscribePayments(ctx context.Context) (<-chan *PaymentEvent, error) {
	ch := make(chan *PaymentEvent, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, nil
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(ch)
	}()
	return ch, nil
}

func (b *LocalBus) unsubscribe(ch chan *PaymentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Close 关闭所有订阅
func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
	return nil
}
