package model

// MonthlySalesRow 月度销售汇总行（按商品分组并关联商品信息）
type MonthlySalesRow struct {
	ItemID        string  `json:"ItemId" bson:"ItemId"`
	TotalQuantity int64   `json:"totalQuantity" bson:"totalQuantity"`
	TotalPrice    float64 `json:"totalPrice" bson:"totalPrice"`
	Material      string  `json:"Material" bson:"Material"` // 组内首条记录的材质
	ItemName      string  `json:"ItemName" bson:"ItemName"`
	ItemPrice     float64 `json:"ItemPrice" bson:"ItemPrice"`
	Gender        Gender  `json:"Gender" bson:"Gender"`
	URL           string  `json:"url" bson:"url"`
}
