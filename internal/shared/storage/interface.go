// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/（默认）、repository/（PostgreSQL、SQLite）
//   - 初始化时通过依赖注入传入实现（见 internal/shared/infra）
//
// 查询约定：Get* 在实体不存在时返回 (nil, nil)；
// Update*/Delete* 在实体不存在时返回 ErrNotFound。
package storage

import (
	"context"
	"time"

	"clothing-store/internal/shared/model"
)

// UserStore 用户存储接口
type UserStore interface {
	// CreateUser 用户名重复时返回 ErrDuplicate
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUserName(ctx context.Context, userName string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// ItemStore 商品存储接口
type ItemStore interface {
	CreateItem(ctx context.Context, item *model.Item) error
	GetItem(ctx context.Context, id string) (*model.Item, error)
	ListItems(ctx context.Context) ([]*model.Item, error)
	UpdateItem(ctx context.Context, id string, update model.ItemUpdate) error
	SetItemImage(ctx context.Context, id string, slot int, url string) error
	DeleteItem(ctx context.Context, id string) error
}

// PaymentStore 支付存储接口
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *model.Payment) error
	// ListPaymentDetails 列出全部支付记录，并关联购买用户与商品
	ListPaymentDetails(ctx context.Context) ([]model.PaymentDetail, error)
}

// CartStore 购物车存储接口
type CartStore interface {
	AddCartItem(ctx context.Context, item *model.CartItem) error
	ListCartItems(ctx context.Context, userID string) ([]*model.CartItem, error)
	// DeleteCartItem 删除并返回用户购物车中指定商品的一条记录
	DeleteCartItem(ctx context.Context, itemID, userID string) (*model.CartItem, error)
}

// SalesReportStore 销售报表存储接口
type SalesReportStore interface {
	// AggregateMonthlySales 汇总 [start, end) 区间内的支付记录
	//
	// 按商品分组累加数量与金额，关联商品信息后按商品 ID 排序返回。
	// 数量无法转换为整数、或商品 ID 无法关联到商品的记录会被丢弃。
	AggregateMonthlySales(ctx context.Context, start, end time.Time) ([]model.MonthlySalesRow, error)
}

// PersistentStore 持久化存储组合接口
type PersistentStore interface {
	UserStore
	ItemStore
	PaymentStore
	CartStore
	SalesReportStore
	Close() error
}
