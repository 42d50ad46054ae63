package mongostore

import (
	"context"

	"clothing-store/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ============================================================================
// PaymentStore
// ============================================================================

func (s *Store) CreatePayment(ctx context.Context, p *model.Payment) error {
	return insertOne(ctx, s.col(ColPayments), p)
}

// paymentJoined $lookup 后的支付文档，关联结果为数组
type paymentJoined struct {
	model.Payment `bson:",inline"`
	Users         []model.User `bson:"user"`
	Items         []model.Item `bson:"item"`
}

// ListPaymentDetails 列出全部支付并关联用户、商品
func (s *Store) ListPaymentDetails(ctx context.Context) ([]model.PaymentDetail, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: byCreation}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: ColUsers},
			{Key: "localField", Value: "userId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: ColItems},
			{Key: "localField", Value: "ItemId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "item"},
		}}},
	}

	joined, err := aggregate[paymentJoined](ctx, s.col(ColPayments), pipeline)
	if err != nil {
		return nil, err
	}

	details := make([]model.PaymentDetail, 0, len(joined))
	for i := range joined {
		var user *model.User
		if len(joined[i].Users) > 0 {
			user = &joined[i].Users[0]
		}
		var item *model.Item
		if len(joined[i].Items) > 0 {
			item = &joined[i].Items[0]
		}
		details = append(details, model.NewPaymentDetail(&joined[i].Payment, user, item))
	}
	return details, nil
}
