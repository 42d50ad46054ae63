package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clothing-store/internal/shared/model"
)

func recv(t *testing.T, ch <-chan *PaymentEvent) *PaymentEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestLocalBus_FanOut(t *testing.T) {
	bus := NewLocalBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := bus.SubscribePayments(ctx)
	require.NoError(t, err)
	b, err := bus.SubscribePayments(ctx)
	require.NoError(t, err)

	ev := &PaymentEvent{Payment: &model.Payment{ID: "p1"}, Timestamp: time.Now()}
	require.NoError(t, bus.PublishPayment(ctx, ev))

	assert.Equal(t, "p1", recv(t, a).Payment.ID)
	assert.Equal(t, "p1", recv(t, b).Payment.ID)
}

func TestLocalBus_Unsubscribe(t *testing.T) {
	bus := NewLocalBus()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := bus.SubscribePayments(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}

	// 无订阅者时发布不报错
	assert.NoError(t, bus.PublishPayment(context.Background(), &PaymentEvent{Payment: &model.Payment{}}))
}

func TestLocalBus_Close(t *testing.T) {
	bus := NewLocalBus()
	ch, err := bus.SubscribePayments(context.Background())
	require.NoError(t, err)
	require.NoError(t, bus.Close())

	_, ok := <-ch
	assert.False(t, ok)

	late, err := bus.SubscribePayments(context.Background())
	require.NoError(t, err)
	_, ok = <-late
	assert.False(t, ok)
}

func TestLocalBus_DropsWhenFull(t *testing.T) {
	bus := NewLocalBus()
	ch, err := bus.SubscribePayments(context.Background())
	require.NoError(t, err)

	for i := 0; i < subscriberBuffer+5; i++ {
		require.NoError(t, bus.PublishPayment(context.Background(), &PaymentEvent{Payment: &model.Payment{}}))
	}
	assert.Len(t, ch, subscriberBuffer)
}
