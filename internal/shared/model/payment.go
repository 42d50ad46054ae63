package model

import "time"

// Size 尺码
type Size string

const (
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

// Valid 是否为合法尺码
func (s Size) Valid() bool {
	switch s {
	case SizeS, SizeM, SizeL, SizeXL, SizeXXL:
		return true
	}
	return false
}

// Payment 支付记录
//
// ItemID 与 Quantity 按文本保存，月度报表聚合时再做类型转换；
// 转换失败或引用不到商品的记录会在聚合中被丢弃。
type Payment struct {
	ID        string    `json:"_id" bson:"_id" db:"id"`
	UserID    string    `json:"userId" bson:"userId" db:"user_id"`
	UserName  string    `json:"userName" bson:"userName" db:"user_name"`
	ItemID    string    `json:"ItemId" bson:"ItemId" db:"item_id"`
	Price     float64   `json:"Price" bson:"Price" db:"price"` // 单价 × 数量
	Material  string    `json:"Material" bson:"Material" db:"material"`
	Quantity  string    `json:"Quantity" bson:"Quantity" db:"quantity"`
	Size      Size      `json:"Size" bson:"Size" db:"size"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" db:"updated_at"`
}

// PaymentDetail 管理端支付列表行（已关联用户与商品）
type PaymentDetail struct {
	UserName   string  `json:"userName"`
	TotalPrice float64 `json:"TotalPrice"`
	Quantity   string  `json:"Quantity"`
	Size       Size    `json:"Size"`
	ItemName   string  `json:"ItemName"`
	ItemPrice  float64 `json:"ItemPrice"`
	PostalCode string  `json:"postalCode"`
	Address    string  `json:"address"`
}

// NotAvailable 关联记录缺失时的占位值
const NotAvailable = "N/A"

// NewPaymentDetail 由支付记录及其关联的用户、商品构造列表行
// user 或 item 为 nil 时填充占位值
func NewPaymentDetail(p *Payment, user *User, item *Item) PaymentDetail {
	d := PaymentDetail{
		UserName:   NotAvailable,
		TotalPrice: p.Price,
		Quantity:   p.Quantity,
		Size:       p.Size,
		ItemName:   NotAvailable,
		PostalCode: NotAvailable,
		Address:    NotAvailable,
	}
	if user != nil {
		d.UserName = orNA(user.UserName)
		d.PostalCode = orNA(user.PostalCode)
		d.Address = orNA(user.Address)
	}
	if item != nil {
		d.ItemName = orNA(item.ItemName)
		d.ItemPrice = item.ItemPrice
	}
	return d
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
