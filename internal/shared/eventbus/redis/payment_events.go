// Package redis 支付事件总线（Redis Streams）
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"clothing-store/internal/shared/eventbus"
	"clothing-store/internal/shared/model"
)

// Store Redis 事件总线
type Store struct {
	client *redis.Client
	stream string
}

var _ eventbus.PaymentEventBus = (*Store)(nil)

// NewStoreFromURL 从 URL 创建 Redis 事件总线
func NewStoreFromURL(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Redis/EventBus] Connected to %s", opts.Addr)
	return NewStoreFromClient(client, eventbus.KeyPaymentEvents), nil
}

// NewStoreFromClient 从现有 Redis 客户端创建事件总线
func NewStoreFromClient(client *redis.Client, stream string) *Store {
	return &Store{client: client, stream: stream}
}

// Close 关闭 Redis 连接
func (s *Store) Close() error {
	return s.client.Close()
}

// PublishPayment 发布支付事件
func (s *Store) PublishPayment(ctx context.Context, event *eventbus.PaymentEvent) error {
	dataJSON, err := json.Marshal(event.Payment)
	if err != nil {
		return fmt.Errorf("failed to marshal payment: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: eventbus.MaxStreamLength,
		Approx: true,
		Values: map[string]interface{}{
			"timestamp": event.Timestamp.Format(time.RFC3339Nano),
			"payment":   string(dataJSON),
		},
	}

	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish payment event: %w", err)
	}
	event.ID = id
	return nil
}

// SubscribePayments 订阅支付事件（从订阅时刻开始）
func (s *Store) SubscribePayments(ctx context.Context) (<-chan *eventbus.PaymentEvent, error) {
	ch := make(chan *eventbus.PaymentEvent, 100)

	go func() {
		defer close(ch)
		lastID := "$"

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			streams, err := s.client.XRead(ctx, &redis.XReadArgs{
				Streams: []string{s.stream, lastID},
				Count:   10,
				Block:   5 * time.Second,
			}).Result()

			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				log.Printf("[Redis/EventBus] Payment subscription error: %v", err)
				return
			}

			for _, stream := range streams {
				for _, msg := range stream.Messages {
					lastID = msg.ID
					event, err := decodePaymentEvent(msg)
					if err != nil {
						log.Printf("[Redis/EventBus] Skip malformed event %s: %v", msg.ID, err)
						continue
					}

					select {
					case ch <- event:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return ch, nil
}

func decodePaymentEvent(msg redis.XMessage) (*eventbus.PaymentEvent, error) {
	event := &eventbus.PaymentEvent{ID: msg.ID}

	if ts, ok := msg.Values["timestamp"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			event.Timestamp = t
		}
	}

	dataStr, ok := msg.Values["payment"].(string)
	if !ok {
		return nil, errors.New("missing payment field")
	}
	var p model.Payment
	if err := json.Unmarshal([]byte(dataStr), &p); err != nil {
		return nil, err
	}
	event.Payment = &p
	return event, nil
}
