package mongostore

import (
	"context"
	"errors"
	"time"

	"clothing-store/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// byCreation 按创建时间排序，时间相同时按 _id
var byCreation = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}

func byID(id string) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}

// wrapError 将驱动错误转换为 storage.ErrNotFound / storage.ErrDuplicate
func wrapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return storage.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return storage.ErrDuplicate
	default:
		return err
	}
}

// findOne 查找单个文档，不存在时返回 (nil, nil)
func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.D) (*T, error) {
	doc := new(T)
	if err := col.FindOne(ctx, filter).Decode(doc); err != nil {
		if err = wrapError(err); errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

// findMany 查找多个文档，没有结果时返回空切片
func findMany[T any](ctx context.Context, col *mongo.Collection, filter bson.D, opts ...options.Lister[options.FindOptions]) ([]*T, error) {
	cursor, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, wrapError(err)
	}
	docs := []*T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// aggregate 执行聚合管道并解码全部结果
func aggregate[T any](ctx context.Context, col *mongo.Collection, pipeline mongo.Pipeline) ([]T, error) {
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapError(err)
	}
	rows := []T{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func insertOne(ctx context.Context, col *mongo.Collection, doc any) error {
	_, err := col.InsertOne(ctx, doc)
	return wrapError(err)
}

// setFields 按 _id 更新字段并刷新 updatedAt，文档不存在时返回 storage.ErrNotFound
func setFields(ctx context.Context, col *mongo.Collection, id string, fields bson.D) error {
	fields = append(fields, bson.E{Key: "updatedAt", Value: time.Now().UTC()})
	res, err := col.UpdateOne(ctx, byID(id), bson.D{{Key: "$set", Value: fields}})
	switch {
	case err != nil:
		return wrapError(err)
	case res.MatchedCount == 0:
		return storage.ErrNotFound
	}
	return nil
}

// deleteByID 按 _id 删除，文档不存在时返回 storage.ErrNotFound
func deleteByID(ctx context.Context, col *mongo.Collection, id string) error {
	res, err := col.DeleteOne(ctx, byID(id))
	switch {
	case err != nil:
		return wrapError(err)
	case res.DeletedCount == 0:
		return storage.ErrNotFound
	}
	return nil
}
