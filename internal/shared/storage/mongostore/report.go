package mongostore

import (
	"context"
	"fmt"
	"time"

	"clothing-store/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// monthlySalesPipeline 月度销售聚合管道
//
// 数量用 $convert 转为整数，失败记为 null 后被过滤；
// 分组前按创建时间排序，$first 取到的是组内最早一条记录的材质；
// $unwind 丢弃引用不到商品的分组。
func monthlySalesPipeline(start, end time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "createdAt", Value: bson.D{
				{Key: "$gte", Value: start.UTC()},
				{Key: "$lt", Value: end.UTC()},
			}},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "qty", Value: bson.D{{Key: "$convert", Value: bson.D{
				{Key: "input", Value: "$Quantity"},
				{Key: "to", Value: "int"},
				{Key: "onError", Value: nil},
				{Key: "onNull", Value: nil},
			}}}},
			{Key: "itemRef", Value: bson.D{{Key: "$toLower", Value: "$ItemId"}}},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "qty", Value: bson.D{{Key: "$ne", Value: nil}}}}}},
		{{Key: "$sort", Value: byCreation}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$itemRef"},
			{Key: "totalQuantity", Value: bson.D{{Key: "$sum", Value: "$qty"}}},
			{Key: "totalPrice", Value: bson.D{{Key: "$sum", Value: "$Price"}}},
			{Key: "Material", Value: bson.D{{Key: "$first", Value: "$Material"}}},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: ColItems},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "item"},
		}}},
		{{Key: "$unwind", Value: "$item"}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "ItemId", Value: "$_id"},
			{Key: "totalQuantity", Value: 1},
			{Key: "totalPrice", Value: 1},
			{Key: "Material", Value: 1},
			{Key: "ItemName", Value: "$item.ItemName"},
			{Key: "ItemPrice", Value: "$item.ItemPrice"},
			{Key: "Gender", Value: "$item.Gender"},
			{Key: "url", Value: "$item.Url1"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "ItemId", Value: 1}}}},
	}
}

// AggregateMonthlySales 汇总 [start, end) 区间内的支付记录
func (s *Store) AggregateMonthlySales(ctx context.Context, start, end time.Time) ([]model.MonthlySalesRow, error) {
	rows, err := aggregate[model.MonthlySalesRow](ctx, s.col(ColPayments), monthlySalesPipeline(start, end))
	if err != nil {
		return nil, fmt.Errorf("aggregate monthly sales: %w", err)
	}
	return rows, nil
}
