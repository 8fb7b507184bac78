package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"kindbite/internal/model/auth"
	"kindbite/internal/model/food"
	"kindbite/internal/pkg/id"
	"kindbite/internal/pkg/storage"
	foodRepo "kindbite/internal/repository/food"
)

var (
	ErrNotListingOwner  = errors.New("无权操作该发布")
	ErrNotProviderRole  = errors.New("当前角色不能发布食物")
	ErrRatingExists     = errors.New("已评价过该发布")
	ErrRatingNotAllowed = errors.New("只有完成取餐后才能评价")
	ErrImageNotFound    = errors.New("图片不存在")
	ErrInvalidImageType = errors.New("不支持的图片格式")
)

// 图片上传限制
var allowedImageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// FoodService 食物发布服务
type FoodService struct {
	listingRepo     *foodRepo.ListingRepo
	reservationRepo *foodRepo.ReservationRepo
	ratingRepo      *foodRepo.RatingRepo
	imageRepo       *foodRepo.ImageRepo
	storage         storage.Storage
}

// NewFoodService 创建食物发布服务
func NewFoodService(
	listingRepo *foodRepo.ListingRepo,
	reservationRepo *foodRepo.ReservationRepo,
	ratingRepo *foodRepo.RatingRepo,
	imageRepo *foodRepo.ImageRepo,
	store storage.Storage,
) *FoodService {
	return &FoodService{
		listingRepo:     listingRepo,
		reservationRepo: reservationRepo,
		ratingRepo:      ratingRepo,
		imageRepo:       imageRepo,
		storage:         store,
	}
}

// CreateListingParams 创建发布参数
type CreateListingParams struct {
	Name            string
	Description     string
	OriginalPrice   float64
	DiscountedPrice float64
	Quantity        int
	PickupDate      string
	PickupStart     string
	PickupEnd       string
	Location        string
	Latitude        *float64
	Longitude       *float64
	DietaryInfo     []string
	ImageEmoji      string
	CO2Saved        float64
}

// CreateListing 创建食物发布
// 仅限供餐方角色，发布的provider_type取自用户角色
func (s *FoodService) CreateListing(ctx context.Context, provider *auth.User, params CreateListingParams) (*food.Listing, error) {
	if !provider.Role.IsProvider() {
		return nil, ErrNotProviderRole
	}
	if params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	listing := &food.Listing{
		ID:                id.New(),
		ProviderID:        provider.ID,
		ProviderName:      provider.BusinessName,
		ProviderType:      string(provider.Role),
		Name:              strings.TrimSpace(params.Name),
		Description:       params.Description,
		OriginalPrice:     params.OriginalPrice,
		DiscountedPrice:   params.DiscountedPrice,
		Quantity:          params.Quantity,
		AvailableQuantity: params.Quantity,
		PickupDate:        params.PickupDate,
		PickupStart:       params.PickupStart,
		PickupEnd:         params.PickupEnd,
		Location:          params.Location,
		Latitude:          params.Latitude,
		Longitude:         params.Longitude,
		DietaryInfo:       params.DietaryInfo,
		ImageEmoji:        params.ImageEmoji,
		CO2Saved:          params.CO2Saved,
		Status:            food.ListingAvailable,
		IsActive:          true,
	}

	if listing.ProviderName == "" {
		listing.ProviderName = provider.FullName()
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		log.Error().Err(err).Msg("failed to create listing")
		return nil, errors.New("创建发布失败")
	}

	return listing, nil
}

// GetListing 查询发布详情
func (s *FoodService) GetListing(ctx context.Context, listingID string) (*food.Listing, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

// ListAvailable 查询可预订的发布列表
// 只返回取餐日期未过期的发布
func (s *FoodService) ListAvailable(ctx context.Context, providerType, search string, freeOnly bool, page, pageSize int64) ([]*food.Listing, int64, error) {
	filter := foodRepo.ListingFilter{
		Status:       food.ListingAvailable,
		ProviderType: providerType,
		Search:       search,
		FreeOnly:     freeOnly,
		PickupFrom:   time.Now().Format("2006-01-02"),
		ActiveOnly:   true,
	}
	return s.listingRepo.List(ctx, filter, page, pageSize)
}

// ListByProvider 查询供餐方自己的发布列表
func (s *FoodService) ListByProvider(ctx context.Context, providerID string, page, pageSize int64) ([]*food.Listing, int64, error) {
	filter := foodRepo.ListingFilter{
		ProviderID: providerID,
	}
	return s.listingRepo.List(ctx, filter, page, pageSize)
}

// UpdateListingParams 更新发布参数，nil字段不更新
type UpdateListingParams struct {
	Name            *string
	Description     *string
	OriginalPrice   *float64
	DiscountedPrice *float64
	PickupDate      *string
	PickupStart     *string
	PickupEnd       *string
	Location        *string
	DietaryInfo     []string
	ImageEmoji      *string
}

// UpdateListing 更新发布（仅限发布归属供餐方）
func (s *FoodService) UpdateListing(ctx context.Context, providerID, listingID string, params UpdateListingParams) (*food.Listing, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, ErrListingNotFound
	}
	if listing.ProviderID != providerID {
		return nil, ErrNotListingOwner
	}

	setDoc := bson.M{}
	if params.Name != nil {
		setDoc["name"] = strings.TrimSpace(*params.Name)
	}
	if params.Description != nil {
		setDoc["description"] = *params.Description
	}
	if params.OriginalPrice != nil {
		setDoc["original_price"] = *params.OriginalPrice
	}
	if params.DiscountedPrice != nil {
		setDoc["discounted_price"] = *params.DiscountedPrice
	}
	if params.PickupDate != nil {
		setDoc["pickup_date"] = *params.PickupDate
	}
	if params.PickupStart != nil {
		setDoc["pickup_start"] = *params.PickupStart
	}
	if params.PickupEnd != nil {
		setDoc["pickup_end"] = *params.PickupEnd
	}
	if params.Location != nil {
		setDoc["location"] = *params.Location
	}
	if params.DietaryInfo != nil {
		setDoc["dietary_info"] = params.DietaryInfo
	}
	if params.ImageEmoji != nil {
		setDoc["image_emoji"] = *params.ImageEmoji
	}

	if len(setDoc) > 0 {
		if err := s.listingRepo.Update(ctx, listingID, bson.M{"$set": setDoc}); err != nil {
			log.Error().Err(err).Str("listing_id", listingID).Msg("failed to update listing")
			return nil, errors.New("更新发布失败")
		}
	}

	return s.listingRepo.FindByID(ctx, listingID)
}

// DeleteListing 下架发布（软删除，仅限发布归属供餐方）
func (s *FoodService) DeleteListing(ctx context.Context, providerID, listingID string) error {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return ErrListingNotFound
	}
	if listing.ProviderID != providerID {
		return ErrNotListingOwner
	}

	if err := s.listingRepo.Deactivate(ctx, listingID); err != nil {
		log.Error().Err(err).Str("listing_id", listingID).Msg("failed to deactivate listing")
		return errors.New("下架发布失败")
	}

	return nil
}

// RateListingParams 评价参数
type RateListingParams struct {
	Rating           int
	Review           string
	FoodQuality      int
	PickupExperience int
	ValueForMoney    int
}

// RateListing 评价发布
// 只有完成取餐的预订可以评价，评价后重算发布的评分聚合值
func (s *FoodService) RateListing(ctx context.Context, reviewerID, listingID string, params RateListingParams) (*food.Rating, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}

	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, ErrListingNotFound
	}

	// 找到该用户已取餐的预订
	reservations, err := s.reservationRepo.ListBySeeker(ctx, reviewerID, 100)
	if err != nil {
		log.Error().Err(err).Msg("failed to load reservations")
		return nil, errors.New("评价失败")
	}
	var pickedUp *food.Reservation
	for _, r := range reservations {
		if r.ListingID == listingID && r.Status == food.ReservationPickedUp {
			pickedUp = r
			break
		}
	}
	if pickedUp == nil {
		return nil, ErrRatingNotAllowed
	}

	rating := &food.Rating{
		ID:               id.New(),
		ListingID:        listingID,
		ReviewerID:       reviewerID,
		ReservationID:    pickedUp.ID,
		Rating:           params.Rating,
		Review:           params.Review,
		FoodQuality:      params.FoodQuality,
		PickupExperience: params.PickupExperience,
		ValueForMoney:    params.ValueForMoney,
	}
	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrRatingExists
		}
		log.Error().Err(err).Msg("failed to create rating")
		return nil, errors.New("评价失败")
	}

	// 重算聚合评分，保留1位小数
	avg, count, err := s.ratingRepo.Aggregate(ctx, listingID)
	if err != nil {
		log.Warn().Err(err).Str("listing_id", listingID).Msg("failed to aggregate ratings")
		return rating, nil
	}
	avg = math.Round(avg*10) / 10
	if err := s.listingRepo.UpdateRating(ctx, listingID, avg, count); err != nil {
		log.Warn().Err(err).Str("listing_id", listing.ID).Msg("failed to update listing rating")
	}

	return rating, nil
}

// ListRatings 查询发布的评价列表
func (s *FoodService) ListRatings(ctx context.Context, listingID string) ([]*food.Rating, error) {
	return s.ratingRepo.ListByListing(ctx, listingID, 50)
}

// UploadImage 上传食物图片
// 文件存入storage，记录URL和归属；首张图片自动设为主图
func (s *FoodService) UploadImage(ctx context.Context, providerID, listingID, filename string, data io.Reader, isPrimary bool, altText string) (*food.Image, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, ErrListingNotFound
	}
	if listing.ProviderID != providerID {
		return nil, ErrNotListingOwner
	}

	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := allowedImageExts[ext]
	if !ok {
		return nil, ErrInvalidImageType
	}

	imageID := id.New()
	key := fmt.Sprintf("food/%s/%s%s", listingID, imageID, ext)

	url, err := s.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to upload image")
		return nil, errors.New("图片上传失败")
	}

	existing, err := s.imageRepo.ListByListing(ctx, listingID)
	if err != nil {
		log.Warn().Err(err).Msg("failed to list existing images")
	}
	if len(existing) == 0 {
		isPrimary = true
	} else if isPrimary {
		if err := s.imageRepo.ClearPrimary(ctx, listingID); err != nil {
			log.Warn().Err(err).Msg("failed to clear primary image flag")
		}
	}

	image := &food.Image{
		ID:         imageID,
		ListingID:  listingID,
		URL:        url,
		StorageKey: key,
		AltText:    altText,
		IsPrimary:  isPrimary,
	}
	if err := s.imageRepo.Create(ctx, image); err != nil {
		// 记录失败时清理已上传的文件
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("failed to clean up uploaded image")
		}
		log.Error().Err(err).Msg("failed to save image record")
		return nil, errors.New("保存图片失败")
	}

	return image, nil
}

// ListImages 查询发布的图片列表
func (s *FoodService) ListImages(ctx context.Context, listingID string) ([]*food.Image, error) {
	return s.imageRepo.ListByListing(ctx, listingID)
}

// DeleteImage 删除图片（仅限发布归属供餐方）
func (s *FoodService) DeleteImage(ctx context.Context, providerID, imageID string) error {
	image, err := s.imageRepo.FindByID(ctx, imageID)
	if err != nil {
		return ErrImageNotFound
	}

	listing, err := s.listingRepo.FindByID(ctx, image.ListingID)
	if err != nil {
		return ErrListingNotFound
	}
	if listing.ProviderID != providerID {
		return ErrNotListingOwner
	}

	if image.StorageKey != "" {
		if err := s.storage.Delete(ctx, image.StorageKey); err != nil {
			log.Warn().Err(err).Str("key", image.StorageKey).Msg("failed to delete stored image")
		}
	}

	return s.imageRepo.Delete(ctx, imageID)
}

// ImageDownloadURL 获取图片的预签名下载URL
func (s *FoodService) ImageDownloadURL(ctx context.Context, imageID string, expiry time.Duration) (string, error) {
	image, err := s.imageRepo.FindByID(ctx, imageID)
	if err != nil {
		return "", ErrImageNotFound
	}
	if image.StorageKey == "" {
		return image.URL, nil
	}
	return s.storage.GetPresignedDownloadURL(ctx, image.StorageKey, expiry)
}

// PlatformStats 平台统计
type PlatformStats struct {
	TotalListings     int64   `json:"total_listings"`
	AvailableListings int64   `json:"available_listings"`
	TotalReservations int64   `json:"total_reservations"`
	CompletedPickups  int64   `json:"completed_pickups"`
	TotalCO2SavedKg   float64 `json:"total_co2_saved_kg"`
}

// GetPlatformStats 查询平台统计
func (s *FoodService) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	stats := &PlatformStats{}

	total, err := s.listingRepo.Count(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	stats.TotalListings = total

	available, err := s.listingRepo.Count(ctx, bson.M{
		"status":    food.ListingAvailable,
		"is_active": true,
	})
	if err != nil {
		return nil, err
	}
	stats.AvailableListings = available

	reservations, err := s.reservationRepo.Count(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	stats.TotalReservations = reservations

	pickedUp, err := s.reservationRepo.Count(ctx, bson.M{"status": food.ReservationPickedUp})
	if err != nil {
		return nil, err
	}
	stats.CompletedPickups = pickedUp

	co2, err := s.listingRepo.SumCO2Saved(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalCO2SavedKg = co2

	return stats, nil
}
