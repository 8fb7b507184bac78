package food

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListingStatus 食物发布状态
type ListingStatus string

const (
	ListingAvailable ListingStatus = "available" // 可预订
	ListingReserved  ListingStatus = "reserved"  // 已订满
	ListingCompleted ListingStatus = "completed" // 已完成
	ListingExpired   ListingStatus = "expired"   // 已过期
	ListingCancelled ListingStatus = "cancelled" // 已取消
)

// IsValid 检查状态是否有效
func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingAvailable, ListingReserved, ListingCompleted, ListingExpired, ListingCancelled:
		return true
	}
	return false
}

// Listing 食物发布实体
// 供餐方发布的一批余量食物
type Listing struct {
	ID           string        `bson:"_id,omitempty" json:"id"`          // UUID格式的ID
	ProviderID   string        `bson:"provider_id" json:"provider_id"`   // 供餐方用户ID
	ProviderName string        `bson:"provider_name" json:"provider_name"` // 供餐方名称（餐厅/商家名）
	ProviderType string        `bson:"provider_type" json:"provider_type"` // 供餐方类型（restaurant/home/factory/supermarket/retail）
	Name         string        `bson:"name" json:"name"`                 // 食物名称
	Description  string        `bson:"description" json:"description"`   // 描述

	// 价格
	OriginalPrice   float64 `bson:"original_price" json:"original_price"`     // 原价
	DiscountedPrice float64 `bson:"discounted_price" json:"discounted_price"` // 折后价（0为免费）

	// 库存
	Quantity          int `bson:"quantity" json:"quantity"`                     // 总数量
	AvailableQuantity int `bson:"available_quantity" json:"available_quantity"` // 剩余可预订数量

	// 取餐安排
	PickupDate  string `bson:"pickup_date" json:"pickup_date"`   // 取餐日期（YYYY-MM-DD）
	PickupStart string `bson:"pickup_start" json:"pickup_start"` // 取餐窗口开始（HH:MM）
	PickupEnd   string `bson:"pickup_end" json:"pickup_end"`     // 取餐窗口结束（HH:MM）

	// 位置
	Location  string   `bson:"location" json:"location"`                         // 取餐地址
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`     // 纬度
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`   // 经度

	// 分类与展示
	DietaryInfo []string `bson:"dietary_info,omitempty" json:"dietary_info,omitempty"` // 饮食信息（Halal/Vegan等）
	ImageEmoji  string   `bson:"image_emoji,omitempty" json:"image_emoji,omitempty"`   // 表情符号展示

	// 环境影响
	CO2Saved float64 `bson:"co2_saved" json:"co2_saved"` // 预估CO2减排量（kg，按整批计）

	// 状态与评分
	Status      ListingStatus `bson:"status" json:"status"`             // 状态
	Rating      float64       `bson:"rating" json:"rating"`             // 平均评分（保留1位小数）
	RatingCount int           `bson:"rating_count" json:"rating_count"` // 评分数量

	IsActive  bool      `bson:"is_active" json:"is_active"` // 是否有效（软删除标记）
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAvailable 检查是否可预订
func (l *Listing) IsAvailable() bool {
	return l.Status == ListingAvailable && l.AvailableQuantity > 0 && l.IsActive
}

// DiscountPercentage 计算折扣百分比
func (l *Listing) DiscountPercentage() int {
	if l.OriginalPrice <= 0 {
		return 0
	}
	return int((1 - l.DiscountedPrice/l.OriginalPrice) * 100)
}

// Collection 返回集合名称
func (l *Listing) Collection() string {
	return "food_listings"
}

// EnsureIndexes 创建和维护索引
func (l *Listing) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(l.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "status", Value: 1}, bson.E{Key: "is_active", Value: 1}, bson.E{Key: "pickup_date", Value: 1}},
			Options: options.Index().SetName("idx_status_active_pickup"),
		},
		{
			Keys:    bson.D{bson.E{Key: "provider_id", Value: 1}, bson.E{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_provider_status"),
		},
		{
			Keys:    bson.D{bson.E{Key: "provider_type", Value: 1}, bson.E{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_type_status"),
		},
		{
			Keys:    bson.D{bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created"),
		},
	}

	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
