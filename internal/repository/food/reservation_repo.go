package food

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kindbite/internal/model/food"
)

// ReservationRepo 预订仓库
type ReservationRepo struct {
	collection *mongo.Collection
}

// NewReservationRepo 创建预订仓库
func NewReservationRepo(db *mongo.Database) *ReservationRepo {
	return &ReservationRepo{
		collection: db.Collection("food_reservations"),
	}
}

// Create 创建预订
// (listing_id, seeker_id) 唯一索引冲突时返回 mongo 重复键错误
func (r *ReservationRepo) Create(ctx context.Context, reservation *food.Reservation) error {
	now := time.Now()
	reservation.ReservedAt = now
	reservation.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, reservation)
	return err
}

// FindByID 根据ID查询预订
func (r *ReservationRepo) FindByID(ctx context.Context, id string) (*food.Reservation, error) {
	var reservation food.Reservation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation)
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ExistsActive 检查用户对发布是否已有未完结的预订
func (r *ReservationRepo) ExistsActive(ctx context.Context, listingID, seekerID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"listing_id": listingID,
		"seeker_id":  seekerID,
		"status": bson.M{"$in": []food.ReservationStatus{
			food.ReservationPending,
			food.ReservationConfirmed,
		}},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListBySeeker 查询用户的预订列表，按预订时间倒序
func (r *ReservationRepo) ListBySeeker(ctx context.Context, seekerID string, limit int64) ([]*food.Reservation, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "reserved_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"seeker_id": seekerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reservations []*food.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, err
	}

	return reservations, nil
}

// ListByListing 查询某发布的全部预订
func (r *ReservationRepo) ListByListing(ctx context.Context, listingID string) ([]*food.Reservation, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "reserved_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"listing_id": listingID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reservations []*food.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, err
	}

	return reservations, nil
}

// UpdateStatus 更新预订状态
// fromStatuses 限定允许的当前状态，返回是否更新成功
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id string, from []food.ReservationStatus, to food.ReservationStatus, extra bson.M) (bool, error) {
	now := time.Now()
	setDoc := bson.M{
		"status":     to,
		"updated_at": now,
	}
	for k, v := range extra {
		setDoc[k] = v
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{
		"_id":    id,
		"status": bson.M{"$in": from},
	}, bson.M{"$set": setDoc})
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// Delete 删除预订（取消后允许重新预订同一发布）
func (r *ReservationRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Count 统计预订数量
func (r *ReservationRepo) Count(ctx context.Context, filter bson.M) (int64, error) {
	return r.collection.CountDocuments(ctx, filter)
}

// SumKindCoins 统计用户通过预订累计获得的KindCoins
func (r *ReservationRepo) SumKindCoins(ctx context.Context, seekerID string) (int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{bson.E{Key: "$match", Value: bson.M{
			"seeker_id": seekerID,
			"status": bson.M{"$in": []food.ReservationStatus{
				food.ReservationPending,
				food.ReservationConfirmed,
				food.ReservationPickedUp,
			}},
		}}},
		bson.D{bson.E{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$kindcoins_earned"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result struct {
		Total int64 `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, err
		}
	}

	return result.Total, nil
}
