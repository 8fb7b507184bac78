package food

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Rating 食物评价实体
// 只有完成取餐的预订可以评价，每个用户对同一发布只能评价一次
type Rating struct {
	ID            string `bson:"_id,omitempty" json:"id"`              // UUID格式的ID
	ListingID     string `bson:"listing_id" json:"listing_id"`         // 食物发布ID
	ReviewerID    string `bson:"reviewer_id" json:"reviewer_id"`       // 评价用户ID
	ReservationID string `bson:"reservation_id" json:"reservation_id"` // 关联预订ID

	Rating int    `bson:"rating" json:"rating"`                 // 总评分 1-5
	Review string `bson:"review,omitempty" json:"review,omitempty"` // 评价文字（可选）

	// 分项评分
	FoodQuality      int `bson:"food_quality" json:"food_quality"`           // 食物质量 1-5
	PickupExperience int `bson:"pickup_experience" json:"pickup_experience"` // 取餐体验 1-5
	ValueForMoney    int `bson:"value_for_money" json:"value_for_money"`     // 性价比 1-5

	IsVerified bool      `bson:"is_verified" json:"is_verified"` // 是否经过审核员核实
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (r *Rating) Collection() string {
	return "food_ratings"
}

// EnsureIndexes 创建和维护索引
func (r *Rating) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(r.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "listing_id", Value: 1}, bson.E{Key: "reviewer_id", Value: 1}},
			Options: options.Index().SetName("idx_listing_reviewer").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "reservation_id", Value: 1}},
			Options: options.Index().SetName("idx_reservation").SetUnique(true),
		},
	}

	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
