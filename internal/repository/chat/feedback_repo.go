package chat

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kindbite/internal/model/chat"
)

// FeedbackRepo 消息评价仓库
type FeedbackRepo struct {
	collection *mongo.Collection
}

// NewFeedbackRepo 创建评价仓库
func NewFeedbackRepo(db *mongo.Database) *FeedbackRepo {
	return &FeedbackRepo{
		collection: db.Collection("chat_feedback"),
	}
}

// Upsert 提交评价
// 同一用户对同一消息重复提交时覆盖原评价，保留首次创建时间
func (r *FeedbackRepo) Upsert(ctx context.Context, feedback *chat.Feedback) error {
	now := time.Now()
	filter := bson.M{
		"message_id": feedback.MessageID,
		"user_id":    feedback.UserID,
	}
	update := bson.M{
		"$set": bson.M{
			"rating":     feedback.Rating,
			"comment":    feedback.Comment,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        feedback.ID,
			"created_at": now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// CountByUser 统计用户提交的评价总数
func (r *FeedbackRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
}

// AverageRatingByUser 计算用户评价的平均评分
func (r *FeedbackRepo) AverageRatingByUser(ctx context.Context, userID string) (float64, error) {
	pipeline := mongo.Pipeline{
		bson.D{bson.E{Key: "$match", Value: bson.M{"user_id": userID}}},
		bson.D{bson.E{Key: "$group", Value: bson.M{
			"_id":        nil,
			"avg_rating": bson.M{"$avg": "$rating"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result struct {
		AvgRating float64 `bson:"avg_rating"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, err
		}
	}

	return result.AvgRating, nil
}
