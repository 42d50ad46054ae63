package mongostore

import (
	"context"
	"errors"

	"clothing-store/internal/shared/model"
	"clothing-store/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// CartStore
// ============================================================================

func (s *Store) AddCartItem(ctx context.Context, item *model.CartItem) error {
	return insertOne(ctx, s.col(ColCarts), item)
}

func (s *Store) ListCartItems(ctx context.Context, userID string) ([]*model.CartItem, error) {
	return findMany[model.CartItem](ctx, s.col(ColCarts),
		bson.D{{Key: "userId", Value: userID}}, options.Find().SetSort(byCreation))
}

// DeleteCartItem 删除用户购物车中指定商品的最早一条记录
func (s *Store) DeleteCartItem(ctx context.Context, itemID, userID string) (*model.CartItem, error) {
	filter := bson.D{{Key: "ItemId", Value: itemID}, {Key: "userId", Value: userID}}
	opts := options.FindOneAndDelete().SetSort(byCreation)

	var deleted model.CartItem
	err := s.col(ColCarts).FindOneAndDelete(ctx, filter, opts).Decode(&deleted)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, wrapError(err)
	}
	return &deleted, nil
}
