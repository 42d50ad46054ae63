// Package model 定义商店的核心数据模型
//
// 字段的 JSON 名称沿用前端已使用的写法（_id、ItemName、userName 等），
// bson 标签对应 MongoDB 文档字段，db 标签对应 SQL 列名。
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserRole 用户角色
type UserRole string

const (
	UserRoleUser  UserRole = "User"
	UserRoleAdmin UserRole = "Admin"
)

// Valid 是否为合法角色
func (r UserRole) Valid() bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

// User 用户
type User struct {
	ID           string    `json:"_id" bson:"_id" db:"id"`
	UserName     string    `json:"userName" bson:"userName" db:"user_name"`
	Email        string    `json:"email" bson:"email" db:"email"`
	PasswordHash string    `json:"-" bson:"password" db:"password_hash"` // never expose in JSON
	Phone        string    `json:"phone" bson:"phone" db:"phone"`
	Address      string    `json:"address" bson:"address" db:"address"`
	PostalCode   string    `json:"postalCode" bson:"postalCode" db:"postal_code"`
	Role         UserRole  `json:"role" bson:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt" db:"updated_at"`
}

// NewID 生成 24 位十六进制 ID
//
// 所有驱动统一使用 ObjectID 的十六进制形式，
// 这样 Payment.ItemID 等引用在 MongoDB 与 SQL 中格式一致。
func NewID() string {
	return bson.NewObjectID().Hex()
}

// IsValidID 检查字符串是否为合法的 24 位十六进制 ID
func IsValidID(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}
