package food

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReservationStatus 预订状态
// 流转: pending -> confirmed -> picked_up，或在任意阶段 cancelled/no_show
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"   // 待确认
	ReservationConfirmed ReservationStatus = "confirmed" // 已确认
	ReservationPickedUp  ReservationStatus = "picked_up" // 已取餐
	ReservationCancelled ReservationStatus = "cancelled" // 已取消
	ReservationNoShow    ReservationStatus = "no_show"   // 未到场
)

// IsValid 检查状态是否有效
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationPickedUp,
		ReservationCancelled, ReservationNoShow:
		return true
	}
	return false
}

// IsActive 是否占用库存（pending/confirmed占用，取消或完结后不再占用）
func (s ReservationStatus) IsActive() bool {
	return s == ReservationPending || s == ReservationConfirmed
}

// Reservation 食物预订实体
// 每个用户对同一发布最多持有一条有效预订
type Reservation struct {
	ID        string            `bson:"_id,omitempty" json:"id"`    // UUID格式的ID
	ListingID string            `bson:"listing_id" json:"listing_id"` // 食物发布ID
	SeekerID  string            `bson:"seeker_id" json:"seeker_id"`   // 觅食者用户ID
	Quantity  int               `bson:"quantity" json:"quantity"`     // 预订数量
	Status    ReservationStatus `bson:"status" json:"status"`         // 状态

	SpecialInstructions string `bson:"special_instructions,omitempty" json:"special_instructions,omitempty"` // 觅食者备注
	ProviderNotes       string `bson:"provider_notes,omitempty" json:"provider_notes,omitempty"`             // 供餐方备注

	KindCoinsEarned int `bson:"kindcoins_earned" json:"kindcoins_earned"` // 本次预订获得的KindCoins

	ReservedAt  time.Time  `bson:"reserved_at" json:"reserved_at"`                       // 预订时间
	ConfirmedAt *time.Time `bson:"confirmed_at,omitempty" json:"confirmed_at,omitempty"` // 确认时间
	PickedUpAt  *time.Time `bson:"picked_up_at,omitempty" json:"picked_up_at,omitempty"` // 取餐时间
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (r *Reservation) Collection() string {
	return "food_reservations"
}

// EnsureIndexes 创建和维护索引
func (r *Reservation) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(r.Collection())
	indexes := []mongo.IndexModel{
		{
			// 部分唯一索引: 只约束未完结的预订，取消后允许重新预订
			Keys: bson.D{bson.E{Key: "listing_id", Value: 1}, bson.E{Key: "seeker_id", Value: 1}},
			Options: options.Index().SetName("idx_listing_seeker_active").SetUnique(true).
				SetPartialFilterExpression(bson.M{"$or": []bson.M{
					{"status": ReservationPending},
					{"status": ReservationConfirmed},
				}}),
		},
		{
			Keys:    bson.D{bson.E{Key: "seeker_id", Value: 1}, bson.E{Key: "reserved_at", Value: -1}},
			Options: options.Index().SetName("idx_seeker_reserved"),
		},
		{
			Keys:    bson.D{bson.E{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_status"),
		},
	}

	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
