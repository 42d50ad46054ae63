package infra

import (
	"log"

	"clothing-store/internal/config"
	"clothing-store/internal/shared/cache"
	cacheredis "clothing-store/internal/shared/cache/redis"
	"clothing-store/internal/shared/eventbus"
	eventbusredis "clothing-store/internal/shared/eventbus/redis"
	objstore "clothing-store/internal/shared/minio"
)

// NewReportCache 创建报表缓存
//
// 未配置 Redis 或连接失败时降级为 NoOpCache（报表直接查询存储）。
func NewReportCache(cfg *config.Config) cache.ReportCache {
	if cfg.RedisURL == "" {
		log.Println("[Redis/Infra] Not configured, report cache disabled")
		return cache.NewNoOpCache()
	}
	store, err := cacheredis.NewStoreFromURL(cfg.RedisURL, cfg.Report.CacheTTL)
	if err != nil {
		log.Printf("WARNING: [Redis/Infra] %v, report cache disabled", err)
		return cache.NewNoOpCache()
	}
	return store
}

// NewPaymentEventBus 创建支付事件总线
//
// 配置了 Redis 时使用 Redis Streams（多实例共享实时推送），否则使用进程内总线。
func NewPaymentEventBus(cfg *config.Config) eventbus.PaymentEventBus {
	if cfg.RedisURL == "" {
		return eventbus.NewLocalBus()
	}
	bus, err := eventbusredis.NewStoreFromURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: [Redis/Infra] %v, payment feed limited to this instance", err)
		return eventbus.NewLocalBus()
	}
	return bus
}

// NewImageStore 创建商品图片存储并确保 bucket 存在
func NewImageStore(cfg *config.Config) (*objstore.Client, error) {
	client, err := objstore.NewClient(cfg.MinIO)
	if err != nil {
		return nil, err
	}
	ctx, cancel := startupContext()
	defer cancel()
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return client, nil
}
