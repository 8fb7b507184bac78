package chat

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kindbite/internal/model/chat"
)

// MessageRepo 聊天消息仓库
// 消息只增不改，按 created_at 升序构成会话记录
type MessageRepo struct {
	collection *mongo.Collection
}

// NewMessageRepo 创建消息仓库
func NewMessageRepo(db *mongo.Database) *MessageRepo {
	return &MessageRepo{
		collection: db.Collection("chat_messages"),
	}
}

// Create 创建消息
func (r *MessageRepo) Create(ctx context.Context, message *chat.Message) error {
	message.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, message)
	return err
}

// FindByID 根据ID查询消息
func (r *MessageRepo) FindByID(ctx context.Context, id string) (*chat.Message, error) {
	var message chat.Message
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&message)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListBySession 查询会话的全部消息，按创建时间升序
func (r *MessageRepo) ListBySession(ctx context.Context, sessionID string) ([]*chat.Message, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*chat.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

// ListRecent 查询会话最近的 limit 条消息，按创建时间升序返回
// 用于给远程模型提供对话上下文
func (r *MessageRepo) ListRecent(ctx context.Context, sessionID string, limit int64) ([]*chat.Message, error) {
	// 先倒序取最近的，再反转回升序
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*chat.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// CountBySession 统计会话的消息数
func (r *MessageRepo) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"session_id": sessionID})
}

// CountByRole 统计指定会话集合内某角色的消息数
func (r *MessageRepo) CountByRole(ctx context.Context, sessionIDs []string, role chat.MessageRole) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"session_id": bson.M{"$in": sessionIDs},
		"role":       role,
	})
}

// AverageResponseTime 计算指定会话集合内assistant消息的平均响应耗时（毫秒）
func (r *MessageRepo) AverageResponseTime(ctx context.Context, sessionIDs []string) (float64, error) {
	pipeline := mongo.Pipeline{
		bson.D{bson.E{Key: "$match", Value: bson.M{
			"session_id":       bson.M{"$in": sessionIDs},
			"role":             chat.RoleAssistant,
			"response_time_ms": bson.M{"$ne": nil},
		}}},
		bson.D{bson.E{Key: "$group", Value: bson.M{
			"_id":    nil,
			"avg_ms": bson.M{"$avg": "$response_time_ms"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result struct {
		AvgMs float64 `bson:"avg_ms"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, err
		}
	}

	return result.AvgMs, nil
}
