package chat

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kindbite/internal/model/chat"
)

// SessionRepo 聊天会话仓库
// 使用UUID作为ID，无需ObjectID转换
type SessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo 创建会话仓库
func NewSessionRepo(db *mongo.Database) *SessionRepo {
	return &SessionRepo{
		collection: db.Collection("chat_sessions"),
	}
}

// Create 创建会话
func (r *SessionRepo) Create(ctx context.Context, session *chat.Session) error {
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, session)
	return err
}

// FindByID 根据ID查询会话（仅限指定用户的有效会话）
func (r *SessionRepo) FindByID(ctx context.Context, id, userID string) (*chat.Session, error) {
	var session chat.Session
	err := r.collection.FindOne(ctx, bson.M{
		"_id":       id,
		"user_id":   userID,
		"is_active": true,
	}).Decode(&session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByUser 查询用户的会话列表，按最近更新时间倒序
func (r *SessionRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]*chat.Session, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "updated_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{
		"user_id":   userID,
		"is_active": true,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*chat.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}

	return sessions, nil
}

// UpdateTitle 更新会话标题
func (r *SessionRepo) UpdateTitle(ctx context.Context, id, title string) error {
	update := bson.M{
		"$set": bson.M{
			"title":      title,
			"updated_at": time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// Touch 刷新会话的更新时间（有新消息时调用）
func (r *SessionRepo) Touch(ctx context.Context, id string) error {
	update := bson.M{
		"$set": bson.M{"updated_at": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// Deactivate 软删除会话（仅限指定用户）
// 返回是否有会话被删除
func (r *SessionRepo) Deactivate(ctx context.Context, id, userID string) (bool, error) {
	update := bson.M{
		"$set": bson.M{
			"is_active":  false,
			"updated_at": time.Now(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{
		"_id":       id,
		"user_id":   userID,
		"is_active": true,
	}, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// CountByUser 统计用户的有效会话数
func (r *SessionRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"user_id":   userID,
		"is_active": true,
	})
}

// IDsByUser 查询用户全部会话的ID（含已软删除的会话）
// 消息统计按会话归属聚合，软删除会话里的消息仍计入
func (r *SessionRepo) IDsByUser(ctx context.Context, userID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}
