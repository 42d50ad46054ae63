package model

import "time"

// CartItem 购物车条目
type CartItem struct {
	ID        string    `json:"_id" bson:"_id" db:"id"`
	UserID    string    `json:"userId" bson:"userId" db:"user_id"`
	Url1      string    `json:"Url1" bson:"Url1" db:"url1"`
	Name      string    `json:"Name" bson:"Name" db:"name"`
	ItemID    string    `json:"ItemId" bson:"ItemId" db:"item_id"`
	ItemPrice float64   `json:"ItemPrice" bson:"ItemPrice" db:"item_price"`
	ItemName  string    `json:"ItemName" bson:"ItemName" db:"item_name"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" db:"updated_at"`
}
