package food

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kindbite/internal/model/food"
)

// ListingRepo 食物发布仓库
type ListingRepo struct {
	collection *mongo.Collection
}

// NewListingRepo 创建食物发布仓库
func NewListingRepo(db *mongo.Database) *ListingRepo {
	return &ListingRepo{
		collection: db.Collection("food_listings"),
	}
}

// Create 创建发布
func (r *ListingRepo) Create(ctx context.Context, listing *food.Listing) error {
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, listing)
	return err
}

// FindByID 根据ID查询发布
func (r *ListingRepo) FindByID(ctx context.Context, id string) (*food.Listing, error) {
	var listing food.Listing
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// ListingFilter 发布列表筛选条件
type ListingFilter struct {
	Status       food.ListingStatus
	ProviderID   string
	ProviderType string
	Search       string // 名称/描述/商家名关键词
	FreeOnly     bool   // 只看免费（折后价为0）
	PickupFrom   string // 取餐日期下限（YYYY-MM-DD，含当天）
	ActiveOnly   bool
}

// List 查询发布列表（支持分页和筛选），按创建时间倒序
func (r *ListingRepo) List(ctx context.Context, filter ListingFilter, page, pageSize int64) ([]*food.Listing, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.ProviderID != "" {
		query["provider_id"] = filter.ProviderID
	}
	if filter.ProviderType != "" {
		query["provider_type"] = filter.ProviderType
	}
	if filter.ActiveOnly {
		query["is_active"] = true
	}
	if filter.FreeOnly {
		query["discounted_price"] = 0
	}
	if filter.PickupFrom != "" {
		query["pickup_date"] = bson.M{"$gte": filter.PickupFrom}
	}
	if filter.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
		query["$or"] = []bson.M{
			{"name": pattern},
			{"description": pattern},
			{"provider_name": pattern},
		}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}}).
		SetLimit(pageSize).
		SetSkip((page - 1) * pageSize)

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var listings []*food.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// Update 更新发布
func (r *ListingRepo) Update(ctx context.Context, id string, update bson.M) error {
	if setDoc, ok := update["$set"].(bson.M); ok {
		setDoc["updated_at"] = time.Now()
	} else {
		update["$set"] = bson.M{"updated_at": time.Now()}
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// TryReserve 原子扣减库存
// 单条条件更新完成校验+扣减，避免读改写竞态导致超卖。
// 仅当发布可预订且剩余数量足够时扣减成功，返回是否扣减成功。
func (r *ListingRepo) TryReserve(ctx context.Context, id string, quantity int) (bool, error) {
	filter := bson.M{
		"_id":                id,
		"status":             food.ListingAvailable,
		"is_active":          true,
		"available_quantity": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{"available_quantity": -quantity},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// ReleaseQuantity 归还库存（预订取消时的补偿操作）
// 发布若因订满变为reserved状态，归还后恢复为available
func (r *ListingRepo) ReleaseQuantity(ctx context.Context, id string, quantity int) error {
	update := bson.M{
		"$inc": bson.M{"available_quantity": quantity},
		"$set": bson.M{
			"status":     food.ListingAvailable,
			"updated_at": time.Now(),
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{
		"_id": id,
		"status": bson.M{"$in": []food.ListingStatus{
			food.ListingAvailable,
			food.ListingReserved,
		}},
	}, update)
	return err
}

// MarkReservedIfDepleted 库存归零时将发布状态置为reserved
func (r *ListingRepo) MarkReservedIfDepleted(ctx context.Context, id string) error {
	update := bson.M{
		"$set": bson.M{
			"status":     food.ListingReserved,
			"updated_at": time.Now(),
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{
		"_id":                id,
		"status":             food.ListingAvailable,
		"available_quantity": bson.M{"$lte": 0},
	}, update)
	return err
}

// UpdateRating 更新发布的评分聚合值
func (r *ListingRepo) UpdateRating(ctx context.Context, id string, avg float64, count int) error {
	update := bson.M{
		"$set": bson.M{
			"rating":       avg,
			"rating_count": count,
			"updated_at":   time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// Deactivate 软删除发布
func (r *ListingRepo) Deactivate(ctx context.Context, id string) error {
	update := bson.M{
		"$set": bson.M{
			"is_active":  false,
			"status":     food.ListingCancelled,
			"updated_at": time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// Count 统计发布数量
func (r *ListingRepo) Count(ctx context.Context, filter bson.M) (int64, error) {
	return r.collection.CountDocuments(ctx, filter)
}

// SumCO2Saved 统计已完成发布的CO2减排总量
func (r *ListingRepo) SumCO2Saved(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		bson.D{bson.E{Key: "$match", Value: bson.M{
			"status": food.ListingCompleted,
		}}},
		bson.D{bson.E{Key: "$group", Value: bson.M{
			"_id":       nil,
			"total_co2": bson.M{"$sum": "$co2_saved"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result struct {
		TotalCO2 float64 `bson:"total_co2"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, err
		}
	}

	return result.TotalCO2, nil
}
