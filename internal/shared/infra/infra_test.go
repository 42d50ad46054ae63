package infra

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clothing-store/internal/config"
	"clothing-store/internal/shared/cache"
	"clothing-store/internal/shared/eventbus"
)

func TestNewPersistentStore_SQLite(t *testing.T) {
	cfg := &config.Config{DatabaseDriver: "sqlite", DatabaseURL: ":memory:"}
	store, err := NewPersistentStore(cfg)
	require.NoError(t, err)
	defer store.Close()

	items, err := store.ListItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNewPersistentStore_UnknownDriver(t *testing.T) {
	store, err := NewPersistentStore(&config.Config{DatabaseDriver: "mysql"})
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewReportCache_Disabled(t *testing.T) {
	c := NewReportCache(&config.Config{})
	assert.IsType(t, &cache.NoOpCache{}, c)
}

func TestNew_SQLiteWithoutOptionalServices(t *testing.T) {
	i, err := New(&config.Config{DatabaseDriver: "sqlite", DatabaseURL: ":memory:"})
	require.NoError(t, err)
	defer i.Close()

	assert.NotNil(t, i.Storage)
	assert.NotNil(t, i.Cache)
	assert.Nil(t, i.Images)
	assert.IsType(t, &eventbus.LocalBus{}, i.Events)
}

func TestNewPaymentEventBus_Disabled(t *testing.T) {
	bus := NewPaymentEventBus(&config.Config{})
	defer bus.Close()
	assert.IsType(t, &eventbus.LocalBus{}, bus)
}
