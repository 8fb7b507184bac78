package chat

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRole 消息角色
type MessageRole string

const (
	RoleUser      MessageRole = "user"      // 用户消息
	RoleAssistant MessageRole = "assistant" // AI回复
	RoleSystem    MessageRole = "system"    // 系统消息
)

// IsValid 检查角色是否有效
func (r MessageRole) IsValid() bool {
	return r == RoleUser || r == RoleAssistant || r == RoleSystem
}

// Message 聊天消息实体
// 创建后不可修改，按 created_at 升序排列构成会话记录
type Message struct {
	ID             string      `bson:"_id,omitempty" json:"id"`                                        // UUID格式的ID
	SessionID      string      `bson:"session_id" json:"session_id"`                                   // 所属会话ID
	Role           MessageRole `bson:"role" json:"role"`                                               // 角色
	Content        string      `bson:"content" json:"content"`                                         // 消息内容
	ResponseTimeMs *int        `bson:"response_time_ms,omitempty" json:"response_time_ms,omitempty"`   // AI响应耗时（毫秒，仅assistant消息）
	TokensUsed     *int        `bson:"tokens_used,omitempty" json:"tokens_used,omitempty"`             // Token用量（仅远程模型路径）
	CreatedAt      time.Time   `bson:"created_at" json:"created_at"`                                   // 创建时间
}

// Collection 返回集合名称
func (m *Message) Collection() string {
	return "chat_messages"
}

// EnsureIndexes 创建和维护索引
func (m *Message) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(m.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "session_id", Value: 1}, bson.E{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_session_created"),
		},
		{
			Keys:    bson.D{bson.E{Key: "role", Value: 1}},
			Options: options.Index().SetName("idx_role"),
		},
	}

	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
