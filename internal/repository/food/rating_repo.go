package food

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kindbite/internal/model/food"
)

// RatingRepo 评价仓库
type RatingRepo struct {
	collection *mongo.Collection
}

// NewRatingRepo 创建评价仓库
func NewRatingRepo(db *mongo.Database) *RatingRepo {
	return &RatingRepo{
		collection: db.Collection("food_ratings"),
	}
}

// Create 创建评价
// (listing_id, reviewer_id) 唯一索引冲突时返回 mongo 重复键错误
func (r *RatingRepo) Create(ctx context.Context, rating *food.Rating) error {
	now := time.Now()
	rating.CreatedAt = now
	rating.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, rating)
	return err
}

// FindByID 根据ID查询评价
func (r *RatingRepo) FindByID(ctx context.Context, id string) (*food.Rating, error) {
	var rating food.Rating
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rating)
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// ListByListing 查询发布的评价列表，按创建时间倒序
func (r *RatingRepo) ListByListing(ctx context.Context, listingID string, limit int64) ([]*food.Rating, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"listing_id": listingID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ratings []*food.Rating
	if err := cursor.All(ctx, &ratings); err != nil {
		return nil, err
	}

	return ratings, nil
}

// Aggregate 重新计算发布的平均评分和评价数
func (r *RatingRepo) Aggregate(ctx context.Context, listingID string) (float64, int, error) {
	pipeline := mongo.Pipeline{
		bson.D{bson.E{Key: "$match", Value: bson.M{"listing_id": listingID}}},
		bson.D{bson.E{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var result struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, 0, err
		}
	}

	return result.Avg, result.Count, nil
}
