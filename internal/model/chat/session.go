package chat

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Session 聊天会话实体
// 一个用户与AI助手的一轮连续对话
// 用户删除会话时只做软删除（is_active=false），消息记录保留
type Session struct {
	ID        string    `bson:"_id,omitempty" json:"id"`      // UUID格式的ID
	UserID    string    `bson:"user_id" json:"user_id"`       // 所属用户ID
	Title     string    `bson:"title" json:"title"`           // 会话标题（由首条消息自动生成）
	IsActive  bool      `bson:"is_active" json:"is_active"`   // 是否有效（软删除标记）
	CreatedAt time.Time `bson:"created_at" json:"created_at"` // 创建时间
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"` // 更新时间
}

// Collection 返回集合名称
func (s *Session) Collection() string {
	return "chat_sessions"
}

// EnsureIndexes 创建和维护索引
func (s *Session) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(s.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "user_id", Value: 1}, bson.E{Key: "is_active", Value: 1}, bson.E{Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_user_active_updated"),
		},
		{
			Keys:    bson.D{bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created"),
		},
	}

	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
