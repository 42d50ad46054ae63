// Package infra 基础设施聚合层
//
// 根据配置初始化持久化存储（MongoDB / PostgreSQL / SQLite）、
// 报表缓存（Redis，未配置时为 NoOpCache）、支付事件总线（Redis，未配置时为进程内总线）
// 和对象存储（MinIO，可选）。
package infra

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"clothing-store/internal/config"
	"clothing-store/internal/shared/cache"
	"clothing-store/internal/shared/eventbus"
	objstore "clothing-store/internal/shared/minio"
	"clothing-store/internal/shared/storage"
	"clothing-store/internal/shared/storage/dbutil"
	pgdriver "clothing-store/internal/shared/storage/driver/postgres"
	sqlitedriver "clothing-store/internal/shared/storage/driver/sqlite"
	"clothing-store/internal/shared/storage/mongostore"
	"clothing-store/internal/shared/storage/repository"
)

// Infrastructure 基础设施聚合结构
type Infrastructure struct {
	// Storage 持久化存储
	Storage storage.PersistentStore

	// Cache 报表缓存
	Cache cache.ReportCache

	// Images 商品图片存储，未配置 MinIO 时为 nil
	Images *objstore.Client

	// Events 支付事件总线（Redis Streams 或进程内）
	Events eventbus.PaymentEventBus
}

// New 按配置初始化全部基础设施
func New(cfg *config.Config) (*Infrastructure, error) {
	store, err := NewPersistentStore(cfg)
	if err != nil {
		return nil, err
	}
	i := &Infrastructure{
		Storage: store,
		Cache:   NewReportCache(cfg),
		Events:  NewPaymentEventBus(cfg),
	}

	if cfg.MinIOEnabled() {
		images, err := NewImageStore(cfg)
		if err != nil {
			// 图片上传不可用不影响其他接口
			log.Printf("WARNING: object storage disabled: %v", err)
		} else {
			i.Images = images
		}
	}
	return i, nil
}

// NewPersistentStore 根据驱动类型创建持久化存储
func NewPersistentStore(cfg *config.Config) (storage.PersistentStore, error) {
	driver, ok := dbutil.ParseDriverType(cfg.DatabaseDriver)
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DatabaseDriver)
	}

	var (
		store storage.PersistentStore
		err   error
	)
	switch driver {
	case dbutil.DriverMongoDB:
		store, err = mongostore.NewStore(cfg.DatabaseURL, cfg.DatabaseDBName)
	case dbutil.DriverPostgres:
		store, err = NewPostgresStore(cfg.DatabaseURL)
	default:
		store, err = NewSQLiteStore(cfg.DatabaseURL)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[Storage] Connected (%s)", driver)
	return store, nil
}

// NewPostgresStore 创建 PostgreSQL 存储（goose 迁移）
func NewPostgresStore(dsn string) (*repository.Store, error) {
	db, err := pgdriver.Open(dsn)
	if err != nil {
		return nil, err
	}
	return newSQLStore(db, pgdriver.NewDialect())
}

// NewSQLiteStore 创建 SQLite 存储（含自动建表）
func NewSQLiteStore(dsn string) (*repository.Store, error) {
	db, err := sqlitedriver.Open(dsn)
	if err != nil {
		return nil, err
	}
	return newSQLStore(db, sqlitedriver.NewDialect())
}

func newSQLStore(db *sql.DB, dialect dbutil.Dialect) (*repository.Store, error) {
	if err := dialect.AutoMigrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s auto-migrate failed: %w", dialect.DriverType(), err)
	}
	return repository.NewStore(db, dialect), nil
}

// Close 关闭所有基础设施连接
func (i *Infrastructure) Close() error {
	var lastErr error

	if i.Storage != nil {
		if err := i.Storage.Close(); err != nil {
			lastErr = err
		}
	}

	if i.Cache != nil {
		if err := i.Cache.Close(); err != nil {
			lastErr = err
		}
	}

	if i.Events != nil {
		if err := i.Events.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// startupContext 初始化阶段外部依赖调用的超时
func startupContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}
