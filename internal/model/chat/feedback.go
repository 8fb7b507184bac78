package chat

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Feedback 用户对AI回复的评价
// (message_id, user_id) 唯一，重复提交按upsert处理
type Feedback struct {
	ID        string    `bson:"_id,omitempty" json:"id"`              // UUID格式的ID
	MessageID string    `bson:"message_id" json:"message_id"`         // 被评价的assistant消息ID
	UserID    string    `bson:"user_id" json:"user_id"`               // 评价用户ID
	Rating    int       `bson:"rating" json:"rating"`                 // 评分 1-5
	Comment   string    `bson:"comment,omitempty" json:"comment,omitempty"` // 评论（可选）
	CreatedAt time.Time `bson:"created_at" json:"created_at"`         // 创建时间
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`         // 更新时间
}

// Collection 返回集合名称
func (f *Feedback) Collection() string {
	return "chat_feedback"
}

// EnsureIndexes 创建和维护索引
func (f *Feedback) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(f.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "message_id", Value: 1}, bson.E{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_message_user").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_user"),
		},
	}

	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
