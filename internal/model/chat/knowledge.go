package chat

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// KnowledgeCategory 知识库条目分类
type KnowledgeCategory string

const (
	CategoryPlatform       KnowledgeCategory = "platform"       // 平台介绍
	CategoryFoodSafety     KnowledgeCategory = "food_safety"    // 食品安全
	CategoryNutrition      KnowledgeCategory = "nutrition"      // 营养
	CategorySustainability KnowledgeCategory = "sustainability" // 可持续发展
	CategoryRecipes        KnowledgeCategory = "recipes"        // 食谱
	CategoryFoodWaste      KnowledgeCategory = "food_waste"     // 食物浪费
	CategoryGeneral        KnowledgeCategory = "general"        // 其他
)

// IsValid 检查分类是否有效
func (c KnowledgeCategory) IsValid() bool {
	switch c {
	case CategoryPlatform, CategoryFoodSafety, CategoryNutrition,
		CategorySustainability, CategoryRecipes, CategoryFoodWaste, CategoryGeneral:
		return true
	}
	return false
}

// KnowledgeEntry 知识库条目
// AI聊天回退路径的素材，按关键词匹配检索
// 排序规则: priority 降序，title 升序
type KnowledgeEntry struct {
	ID        string            `bson:"_id,omitempty" json:"id"`      // UUID格式的ID
	Title     string            `bson:"title" json:"title"`           // 标题
	Category  KnowledgeCategory `bson:"category" json:"category"`     // 分类
	Content   string            `bson:"content" json:"content"`       // 正文
	Keywords  []string          `bson:"keywords" json:"keywords"`     // 匹配关键词
	IsActive  bool              `bson:"is_active" json:"is_active"`   // 是否有效
	Priority  int               `bson:"priority" json:"priority"`     // 优先级（高者优先）
	CreatedAt time.Time         `bson:"created_at" json:"created_at"` // 创建时间
	UpdatedAt time.Time         `bson:"updated_at" json:"updated_at"` // 更新时间
}

// Collection 返回集合名称
func (e *KnowledgeEntry) Collection() string {
	return "knowledge_entries"
}

// EnsureIndexes 创建和维护索引
func (e *KnowledgeEntry) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(e.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "is_active", Value: 1}, bson.E{Key: "priority", Value: -1}, bson.E{Key: "title", Value: 1}},
			Options: options.Index().SetName("idx_active_priority_title"),
		},
		{
			Keys:    bson.D{bson.E{Key: "category", Value: 1}},
			Options: options.Index().SetName("idx_category"),
		},
	}

	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
