package food

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Image 食物图片实体
// 文件本体存在 storage（local/oss），这里只记录URL和归属
type Image struct {
	ID        string    `bson:"_id,omitempty" json:"id"`            // UUID格式的ID
	ListingID string    `bson:"listing_id" json:"listing_id"`       // 所属食物发布ID
	URL       string    `bson:"url" json:"url"`                     // 图片URL
	StorageKey string   `bson:"storage_key,omitempty" json:"storage_key,omitempty"` // 存储key（用于删除）
	AltText   string    `bson:"alt_text,omitempty" json:"alt_text,omitempty"` // 替代文本
	IsPrimary bool      `bson:"is_primary" json:"is_primary"`       // 是否为主图
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Collection 返回集合名称
func (i *Image) Collection() string {
	return "food_images"
}

// EnsureIndexes 创建和维护索引
func (i *Image) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(i.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "listing_id", Value: 1}},
			Options: options.Index().SetName("idx_listing"),
		},
	}

	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
