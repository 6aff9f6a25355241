package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes 在应用启动时创建所有集合的索引
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	// chat_turns 集合索引
	// 对话轮次按 (user_id, created_at) 有序读取，按 user_id 整体清空
	turnColl := db.Collection("chat_turns")
	turnIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "user_id", Value: 1}, bson.E{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_user_created"),
		},
	}

	return CreateIndexes(ctx, turnColl, turnIndexes)
}

// CreateIndexes 辅助函数：创建索引
func CreateIndexes(ctx context.Context, coll *mongo.Collection, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
