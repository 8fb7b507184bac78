package food

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kindbite/internal/model/food"
)

// ImageRepo 食物图片仓库
type ImageRepo struct {
	collection *mongo.Collection
}

// NewImageRepo 创建图片仓库
func NewImageRepo(db *mongo.Database) *ImageRepo {
	return &ImageRepo{
		collection: db.Collection("food_images"),
	}
}

// Create 创建图片记录
func (r *ImageRepo) Create(ctx context.Context, image *food.Image) error {
	image.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, image)
	return err
}

// FindByID 根据ID查询图片
func (r *ImageRepo) FindByID(ctx context.Context, id string) (*food.Image, error) {
	var image food.Image
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&image)
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// ListByListing 查询发布的图片列表，主图在前
func (r *ImageRepo) ListByListing(ctx context.Context, listingID string) ([]*food.Image, error) {
	opts := options.Find().
		SetSort(bson.D{
			bson.E{Key: "is_primary", Value: -1},
			bson.E{Key: "created_at", Value: 1},
		})

	cursor, err := r.collection.Find(ctx, bson.M{"listing_id": listingID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var images []*food.Image
	if err := cursor.All(ctx, &images); err != nil {
		return nil, err
	}

	return images, nil
}

// ClearPrimary 取消发布下所有图片的主图标记
func (r *ImageRepo) ClearPrimary(ctx context.Context, listingID string) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"listing_id": listingID},
		bson.M{"$set": bson.M{"is_primary": false}},
	)
	return err
}

// Delete 删除图片记录
func (r *ImageRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
