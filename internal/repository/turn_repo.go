package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rushbot/internal/model"
)

// StorageError 持久化失败
// 调用方据此决定是否继续（多数命令在持久化失败后仍然回复用户）。
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// TurnRepo 对话轮次仓库
type TurnRepo struct {
	collection *mongo.Collection
}

// NewTurnRepo 创建对话轮次仓库
func NewTurnRepo(db *mongo.Database) *TurnRepo {
	return &TurnRepo{
		collection: db.Collection("chat_turns"),
	}
}

// Append 追加一条轮次，时间戳由服务端赋值
func (r *TurnRepo) Append(ctx context.Context, userID, role, content string, metadata *model.TurnMetadata) error {
	turn := &model.ChatTurn{
		UserID:    userID,
		Role:      role,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	result, err := r.collection.InsertOne(ctx, turn)
	if err != nil {
		return &StorageError{Op: "append", Err: err}
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		turn.ID = oid
	}
	return nil
}

// RecentTurns 返回最近 limit 条轮次，按时间升序（最旧在前）
// 没有历史时返回空切片。
func (r *TurnRepo) RecentTurns(ctx context.Context, userID string, limit int) ([]model.ChatTurn, error) {
	// 先按时间倒序取最近 limit 条，再翻转为升序
	// _id 作为次级排序键，同一毫秒内的插入按落库顺序稳定排序
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}, bson.E{Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, &StorageError{Op: "recent_turns", Err: err}
	}
	defer cursor.Close(ctx)

	var turns []model.ChatTurn
	if err := cursor.All(ctx, &turns); err != nil {
		return nil, &StorageError{Op: "recent_turns", Err: err}
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Clear 删除用户全部轮次，幂等（无历史也算成功）
func (r *TurnRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return &StorageError{Op: "clear", Err: err}
	}
	return nil
}
