package mongostore

import (
	"context"
	"fmt"

	"clothing-store/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// ItemStore
// ============================================================================

func (s *Store) CreateItem(ctx context.Context, item *model.Item) error {
	return insertOne(ctx, s.col(ColItems), item)
}

func (s *Store) GetItem(ctx context.Context, id string) (*model.Item, error) {
	return findOne[model.Item](ctx, s.col(ColItems), byID(id))
}

func (s *Store) ListItems(ctx context.Context) ([]*model.Item, error) {
	return findMany[model.Item](ctx, s.col(ColItems), bson.D{}, options.Find().SetSort(byCreation))
}

func (s *Store) UpdateItem(ctx context.Context, id string, update model.ItemUpdate) error {
	return setFields(ctx, s.col(ColItems), id, bson.D{
		{Key: "ItemName", Value: update.ItemName},
		{Key: "ItemPrice", Value: update.ItemPrice},
		{Key: "Gender", Value: update.Gender},
		{Key: "Material", Value: update.Material},
		{Key: "Subcategory", Value: update.Subcategory},
	})
}

func (s *Store) SetItemImage(ctx context.Context, id string, slot int, url string) error {
	field, ok := model.ImageField(slot)
	if !ok {
		return fmt.Errorf("invalid image slot %d", slot)
	}
	return setFields(ctx, s.col(ColItems), id, bson.D{
		{Key: field, Value: url},
	})
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColItems), id)
}
