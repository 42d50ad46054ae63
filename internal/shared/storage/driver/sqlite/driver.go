// Package sqlite SQLite 数据库驱动
//
// 提供 SQLite 连接管理、方言实现和自动 Schema 迁移。
// 适用于开发、测试和轻量级部署场景。
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"clothing-store/internal/shared/storage/dbutil"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect SQLite 方言实现
type Dialect struct{}

var _ dbutil.Dialect = (*Dialect)(nil)

func (d *Dialect) DriverType() dbutil.DriverType {
	return dbutil.DriverSQLite
}

func (d *Dialect) Rebind(query string) string {
	return dbutil.StripPgCasts(dbutil.RebindToQuestion(query))
}

// IntegerText 可选的前导负号后只包含数字
func (d *Dialect) IntegerText(column string) string {
	return fmt.Sprintf("((%[1]s GLOB '[0-9]*' OR %[1]s GLOB '-[0-9]*') AND SUBSTR(%[1]s, 2) NOT GLOB '*[^0-9]*')", column)
}

func (d *Dialect) CastInteger(column string) string {
	return fmt.Sprintf("CAST(%s AS INTEGER)", column)
}

func (d *Dialect) IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (d *Dialect) AutoMigrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

// Open 创建 SQLite 数据库连接
// dsn 示例: "file:store.db?cache=shared&mode=rwc" 或 ":memory:"
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// 单连接：":memory:" 每个连接都是独立的数据库，同时避免写锁竞争
	db.SetMaxOpenConns(1)

	// SQLite 优化设置
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", p, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	return db, nil
}

// NewDialect 创建 SQLite 方言
func NewDialect() *Dialect {
	return &Dialect{}
}

// schema SQLite 完整建表语句（等价于 PostgreSQL 迁移文件）
//
// payments.item_id / carts.item_id 不加外键：支付记录允许引用已删除的商品，
// 报表聚合时再通过关联丢弃这些记录。
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id VARCHAR(24) PRIMARY KEY,
    user_name VARCHAR(100) NOT NULL UNIQUE,
    email VARCHAR(255) NOT NULL DEFAULT '',
    password_hash VARCHAR(255) NOT NULL,
    phone VARCHAR(32) NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    postal_code VARCHAR(16) NOT NULL DEFAULT '',
    role VARCHAR(16) NOT NULL DEFAULT 'User',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id VARCHAR(24) PRIMARY KEY,
    item_name VARCHAR(200) NOT NULL,
    item_price REAL NOT NULL,
    gender VARCHAR(8) NOT NULL,
    material VARCHAR(100) NOT NULL,
    subcategory VARCHAR(100) NOT NULL,
    url1 TEXT NOT NULL DEFAULT '',
    url2 TEXT NOT NULL DEFAULT '',
    url3 TEXT NOT NULL DEFAULT '',
    url4 TEXT NOT NULL DEFAULT '',
    url5 TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS payments (
    id VARCHAR(24) PRIMARY KEY,
    user_id VARCHAR(24) NOT NULL,
    user_name VARCHAR(100) NOT NULL,
    item_id VARCHAR(64) NOT NULL,
    price REAL NOT NULL,
    material VARCHAR(100) NOT NULL,
    quantity VARCHAR(16) NOT NULL,
    size VARCHAR(4) NOT NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_payments_created_at ON payments(created_at);

CREATE TABLE IF NOT EXISTS carts (
    id VARCHAR(24) PRIMARY KEY,
    user_id VARCHAR(24) NOT NULL,
    url1 TEXT NOT NULL DEFAULT '',
    name VARCHAR(200) NOT NULL,
    item_id VARCHAR(64) NOT NULL,
    item_price REAL NOT NULL,
    item_name VARCHAR(200) NOT NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_carts_user_id ON carts(user_id);
`
