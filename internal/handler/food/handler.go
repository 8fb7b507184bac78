package food

import (
	"time"

	"kindbite/internal/model/food"
	httputil "kindbite/internal/pkg/http"
	"kindbite/internal/service"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// Handler 食物处理器
type Handler struct {
	foodService        *service.FoodService
	reservationService *service.ReservationService
	authService        *service.AuthService
}

// NewHandler 创建食物处理器
func NewHandler(
	foodService *service.FoodService,
	reservationService *service.ReservationService,
	authService *service.AuthService,
) *Handler {
	return &Handler{
		foodService:        foodService,
		reservationService: reservationService,
		authService:        authService,
	}
}

// ListingInfo 发布信息（用于响应）
type ListingInfo struct {
	ID                 string   `json:"id"`
	ProviderID         string   `json:"provider_id"`
	ProviderName       string   `json:"provider_name"`
	ProviderType       string   `json:"provider_type"`
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	OriginalPrice      float64  `json:"original_price"`
	DiscountedPrice    float64  `json:"discounted_price"`
	DiscountPercentage int      `json:"discount_percentage"`
	Quantity           int      `json:"quantity"`
	AvailableQuantity  int      `json:"available_quantity"`
	PickupDate         string   `json:"pickup_date"`
	PickupStart        string   `json:"pickup_start"`
	PickupEnd          string   `json:"pickup_end"`
	Location           string   `json:"location"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
	DietaryInfo        []string `json:"dietary_info,omitempty"`
	ImageEmoji         string   `json:"image_emoji,omitempty"`
	CO2Saved           float64  `json:"co2_saved"`
	Status             string   `json:"status"`
	Rating             float64  `json:"rating"`
	RatingCount        int      `json:"rating_count"`
	CreatedAt          string   `json:"created_at"`
}

// toListingInfo 将Listing实体转换为ListingInfo
func toListingInfo(l *food.Listing) ListingInfo {
	return ListingInfo{
		ID:                 l.ID,
		ProviderID:         l.ProviderID,
		ProviderName:       l.ProviderName,
		ProviderType:       l.ProviderType,
		Name:               l.Name,
		Description:        l.Description,
		OriginalPrice:      l.OriginalPrice,
		DiscountedPrice:    l.DiscountedPrice,
		DiscountPercentage: l.DiscountPercentage(),
		Quantity:           l.Quantity,
		AvailableQuantity:  l.AvailableQuantity,
		PickupDate:         l.PickupDate,
		PickupStart:        l.PickupStart,
		PickupEnd:          l.PickupEnd,
		Location:           l.Location,
		Latitude:           l.Latitude,
		Longitude:          l.Longitude,
		DietaryInfo:        l.DietaryInfo,
		ImageEmoji:         l.ImageEmoji,
		CO2Saved:           l.CO2Saved,
		Status:             string(l.Status),
		Rating:             l.Rating,
		RatingCount:        l.RatingCount,
		CreatedAt:          l.CreatedAt.Format(time.RFC3339),
	}
}

// ReservationInfo 预订信息（用于响应）
type ReservationInfo struct {
	ID                  string `json:"id"`
	ListingID           string `json:"listing_id"`
	SeekerID            string `json:"seeker_id"`
	Quantity            int    `json:"quantity"`
	Status              string `json:"status"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
	ProviderNotes       string `json:"provider_notes,omitempty"`
	KindCoinsEarned     int    `json:"kindcoins_earned"`
	ReservedAt          string `json:"reserved_at"`
	ConfirmedAt         string `json:"confirmed_at,omitempty"`
	PickedUpAt          string `json:"picked_up_at,omitempty"`
}

// toReservationInfo 将Reservation实体转换为ReservationInfo
func toReservationInfo(r *food.Reservation) ReservationInfo {
	info := ReservationInfo{
		ID:                  r.ID,
		ListingID:           r.ListingID,
		SeekerID:            r.SeekerID,
		Quantity:            r.Quantity,
		Status:              string(r.Status),
		SpecialInstructions: r.SpecialInstructions,
		ProviderNotes:       r.ProviderNotes,
		KindCoinsEarned:     r.KindCoinsEarned,
		ReservedAt:          r.ReservedAt.Format(time.RFC3339),
	}
	if r.ConfirmedAt != nil {
		info.ConfirmedAt = r.ConfirmedAt.Format(time.RFC3339)
	}
	if r.PickedUpAt != nil {
		info.PickedUpAt = r.PickedUpAt.Format(time.RFC3339)
	}
	return info
}
