package chat

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kindbite/internal/ai"
	"kindbite/internal/model/chat"
)

// KnowledgeRepo 知识库仓库
type KnowledgeRepo struct {
	collection *mongo.Collection
}

// NewKnowledgeRepo 创建知识库仓库
func NewKnowledgeRepo(db *mongo.Database) *KnowledgeRepo {
	return &KnowledgeRepo{
		collection: db.Collection("knowledge_entries"),
	}
}

// Create 创建知识库条目
func (r *KnowledgeRepo) Create(ctx context.Context, entry *chat.KnowledgeEntry) error {
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// FindByID 根据ID查询条目
func (r *KnowledgeRepo) FindByID(ctx context.Context, id string) (*chat.KnowledgeEntry, error) {
	var entry chat.KnowledgeEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Update 更新条目
func (r *KnowledgeRepo) Update(ctx context.Context, id string, update bson.M) error {
	if setDoc, ok := update["$set"].(bson.M); ok {
		setDoc["updated_at"] = time.Now()
	} else {
		update["$set"] = bson.M{"updated_at": time.Now()}
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// Delete 删除条目
func (r *KnowledgeRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// List 查询条目列表（支持按分类筛选）
func (r *KnowledgeRepo) List(ctx context.Context, category string, activeOnly bool) ([]*chat.KnowledgeEntry, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	if activeOnly {
		filter["is_active"] = true
	}

	opts := options.Find().
		SetSort(bson.D{
			bson.E{Key: "priority", Value: -1},
			bson.E{Key: "title", Value: 1},
		})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*chat.KnowledgeEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// Search 按关键词检索有效条目
// 每个关键词对 title/content/keywords 做不区分大小写的子串匹配，任一命中即入选，
// 结果按优先级降序、标题升序，最多返回 limit 条
func (r *KnowledgeRepo) Search(ctx context.Context, keywords []string, limit int) ([]ai.KnowledgeHit, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	clauses := make([]bson.M, 0, len(keywords)*3)
	for _, kw := range keywords {
		pattern := primitiveRegex(kw)
		clauses = append(clauses,
			bson.M{"title": pattern},
			bson.M{"content": pattern},
			bson.M{"keywords": pattern},
		)
	}

	filter := bson.M{
		"is_active": true,
		"$or":       clauses,
	}

	opts := options.Find().
		SetSort(bson.D{
			bson.E{Key: "priority", Value: -1},
			bson.E{Key: "title", Value: 1},
		}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*chat.KnowledgeEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	hits := make([]ai.KnowledgeHit, 0, len(entries))
	for _, entry := range entries {
		hits = append(hits, ai.KnowledgeHit{
			Title:   entry.Title,
			Content: entry.Content,
		})
	}

	return hits, nil
}

// primitiveRegex 构造不区分大小写的子串匹配条件
// 关键词转义后再拼接，避免用户输入破坏正则
func primitiveRegex(keyword string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(keyword), "$options": "i"}
}
