package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"kindbite/internal/config"
	"kindbite/internal/model/food"
	"kindbite/internal/pkg/id"
	authRepo "kindbite/internal/repository/auth"
	foodRepo "kindbite/internal/repository/food"
)

var (
	ErrListingNotFound      = errors.New("食物发布不存在")
	ErrListingUnavailable   = errors.New("食物不可预订")
	ErrInsufficientQuantity = errors.New("剩余数量不足")
	ErrInvalidQuantity      = errors.New("预订数量必须大于0")
	ErrDuplicateReservation = errors.New("已有未完结的预订")
	ErrReservationNotFound  = errors.New("预订不存在")
	ErrInvalidTransition    = errors.New("当前状态不允许该操作")
	ErrNotReservationOwner  = errors.New("无权操作该预订")
)

// ReservationService 预订服务
// 库存扣减走单条条件更新，扣减成功后再落预订单，失败路径按补偿回滚
type ReservationService struct {
	listingRepo     *foodRepo.ListingRepo
	reservationRepo *foodRepo.ReservationRepo
	userRepo        *authRepo.UserRepo
	rewards         config.RewardsConfig
}

// NewReservationService 创建预订服务
func NewReservationService(
	listingRepo *foodRepo.ListingRepo,
	reservationRepo *foodRepo.ReservationRepo,
	userRepo *authRepo.UserRepo,
	rewards config.RewardsConfig,
) *ReservationService {
	return &ReservationService{
		listingRepo:     listingRepo,
		reservationRepo: reservationRepo,
		userRepo:        userRepo,
		rewards:         rewards,
	}
}

// CalcKindCoins 计算预订奖励
// 基础奖励按件数计，CO2加成按整批减排量计（不乘数量），向下取整
func CalcKindCoins(rewards config.RewardsConfig, quantity int, co2Saved float64) int {
	return rewards.BaseCoinsPerItem*quantity + int(co2Saved*float64(rewards.CoinsPerKgCO2))
}

// ReserveResult 预订结果
type ReserveResult struct {
	Reservation *food.Reservation
	Listing     *food.Listing
	CoinsEarned int
}

// Reserve 创建预订
// 流程: 重复预订检查 -> 原子扣库存 -> 落预订单 -> 发奖励 -> 库存归零时翻转发布状态
func (s *ReservationService) Reserve(ctx context.Context, seekerID, listingID string, quantity int, instructions string) (*ReserveResult, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, ErrListingNotFound
	}

	exists, err := s.reservationRepo.ExistsActive(ctx, listingID, seekerID)
	if err != nil {
		log.Error().Err(err).Msg("failed to check duplicate reservation")
		return nil, errors.New("创建预订失败")
	}
	if exists {
		return nil, ErrDuplicateReservation
	}

	// 校验和扣减在同一条条件更新里完成，并发下不会超卖
	ok, err := s.listingRepo.TryReserve(ctx, listingID, quantity)
	if err != nil {
		log.Error().Err(err).Str("listing_id", listingID).Msg("failed to reserve quantity")
		return nil, errors.New("创建预订失败")
	}
	if !ok {
		// 区分不可预订和数量不足，返回更准确的错误
		if !listing.IsAvailable() {
			return nil, ErrListingUnavailable
		}
		return nil, ErrInsufficientQuantity
	}

	coins := CalcKindCoins(s.rewards, quantity, listing.CO2Saved)

	reservation := &food.Reservation{
		ID:                  id.New(),
		ListingID:           listingID,
		SeekerID:            seekerID,
		Quantity:            quantity,
		Status:              food.ReservationPending,
		SpecialInstructions: instructions,
		KindCoinsEarned:     coins,
	}
	if err := s.reservationRepo.Create(ctx, reservation); err != nil {
		// 落单失败归还库存
		if releaseErr := s.listingRepo.ReleaseQuantity(ctx, listingID, quantity); releaseErr != nil {
			log.Error().Err(releaseErr).Str("listing_id", listingID).Msg("failed to release quantity after create failure")
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateReservation
		}
		log.Error().Err(err).Msg("failed to create reservation")
		return nil, errors.New("创建预订失败")
	}

	if err := s.userRepo.IncrementKindCoins(ctx, seekerID, coins); err != nil {
		log.Error().Err(err).Str("user_id", seekerID).Msg("failed to grant kindcoins")
		// 预订已成立，奖励失败只记录，不回滚
	}

	// 库存归零时把发布状态翻转为reserved
	if err := s.listingRepo.MarkReservedIfDepleted(ctx, listingID); err != nil {
		log.Warn().Err(err).Str("listing_id", listingID).Msg("failed to flip listing status")
	}

	listing, _ = s.listingRepo.FindByID(ctx, listingID)

	return &ReserveResult{
		Reservation: reservation,
		Listing:     listing,
		CoinsEarned: coins,
	}, nil
}

// Cancel 取消预订
// 仅限预订归属用户，归还库存并收回奖励
func (s *ReservationService) Cancel(ctx context.Context, userID, reservationID string) error {
	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return ErrReservationNotFound
	}
	if reservation.SeekerID != userID {
		return ErrNotReservationOwner
	}

	ok, err := s.reservationRepo.UpdateStatus(ctx, reservationID,
		[]food.ReservationStatus{food.ReservationPending, food.ReservationConfirmed},
		food.ReservationCancelled, nil)
	if err != nil {
		log.Error().Err(err).Str("reservation_id", reservationID).Msg("failed to cancel reservation")
		return errors.New("取消预订失败")
	}
	if !ok {
		return ErrInvalidTransition
	}

	if err := s.listingRepo.ReleaseQuantity(ctx, reservation.ListingID, reservation.Quantity); err != nil {
		log.Error().Err(err).Str("listing_id", reservation.ListingID).Msg("failed to release quantity on cancel")
	}

	if reservation.KindCoinsEarned > 0 {
		if err := s.userRepo.IncrementKindCoins(ctx, userID, -reservation.KindCoinsEarned); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("failed to revoke kindcoins")
		}
	}

	return nil
}

// Confirm 供餐方确认预订
func (s *ReservationService) Confirm(ctx context.Context, providerID, reservationID, notes string) error {
	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return ErrReservationNotFound
	}

	listing, err := s.listingRepo.FindByID(ctx, reservation.ListingID)
	if err != nil {
		return ErrListingNotFound
	}
	if listing.ProviderID != providerID {
		return ErrNotReservationOwner
	}

	now := time.Now()
	extra := bson.M{"confirmed_at": now}
	if notes != "" {
		extra["provider_notes"] = notes
	}

	ok, err := s.reservationRepo.UpdateStatus(ctx, reservationID,
		[]food.ReservationStatus{food.ReservationPending},
		food.ReservationConfirmed, extra)
	if err != nil {
		log.Error().Err(err).Str("reservation_id", reservationID).Msg("failed to confirm reservation")
		return errors.New("确认预订失败")
	}
	if !ok {
		return ErrInvalidTransition
	}

	return nil
}

// MarkPickedUp 标记已取餐
// 觅食者或供餐方均可操作
func (s *ReservationService) MarkPickedUp(ctx context.Context, userID, reservationID string) error {
	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return ErrReservationNotFound
	}

	if reservation.SeekerID != userID {
		listing, err := s.listingRepo.FindByID(ctx, reservation.ListingID)
		if err != nil || listing.ProviderID != userID {
			return ErrNotReservationOwner
		}
	}

	ok, err := s.reservationRepo.UpdateStatus(ctx, reservationID,
		[]food.ReservationStatus{food.ReservationPending, food.ReservationConfirmed},
		food.ReservationPickedUp, bson.M{"picked_up_at": time.Now()})
	if err != nil {
		log.Error().Err(err).Str("reservation_id", reservationID).Msg("failed to mark picked up")
		return errors.New("更新预订失败")
	}
	if !ok {
		return ErrInvalidTransition
	}

	return nil
}

// MarkNoShow 供餐方标记未到店取餐
// 归还库存并收回奖励，与取消的区别在于留下no_show记录
func (s *ReservationService) MarkNoShow(ctx context.Context, providerID, reservationID string) error {
	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return ErrReservationNotFound
	}

	listing, err := s.listingRepo.FindByID(ctx, reservation.ListingID)
	if err != nil {
		return ErrListingNotFound
	}
	if listing.ProviderID != providerID {
		return ErrNotReservationOwner
	}

	ok, err := s.reservationRepo.UpdateStatus(ctx, reservationID,
		[]food.ReservationStatus{food.ReservationPending, food.ReservationConfirmed},
		food.ReservationNoShow, nil)
	if err != nil {
		log.Error().Err(err).Str("reservation_id", reservationID).Msg("failed to mark no-show")
		return errors.New("更新预订失败")
	}
	if !ok {
		return ErrInvalidTransition
	}

	if err := s.listingRepo.ReleaseQuantity(ctx, reservation.ListingID, reservation.Quantity); err != nil {
		log.Error().Err(err).Str("listing_id", reservation.ListingID).Msg("failed to release quantity on no-show")
	}

	if reservation.KindCoinsEarned > 0 {
		if err := s.userRepo.IncrementKindCoins(ctx, reservation.SeekerID, -reservation.KindCoinsEarned); err != nil {
			log.Error().Err(err).Str("user_id", reservation.SeekerID).Msg("failed to revoke kindcoins")
		}
	}

	return nil
}

// ListMyReservations 查询用户的预订列表
func (s *ReservationService) ListMyReservations(ctx context.Context, seekerID string) ([]*food.Reservation, error) {
	return s.reservationRepo.ListBySeeker(ctx, seekerID, 50)
}

// TotalKindCoinsEarned 统计用户通过预订累计获得的KindCoins
// 只计入未取消且非no_show的预订
func (s *ReservationService) TotalKindCoinsEarned(ctx context.Context, seekerID string) (int64, error) {
	return s.reservationRepo.SumKindCoins(ctx, seekerID)
}

// GetReservation 查询预订详情（仅限预订归属用户或供餐方）
func (s *ReservationService) GetReservation(ctx context.Context, userID, reservationID string) (*food.Reservation, error) {
	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, ErrReservationNotFound
	}

	if reservation.SeekerID != userID {
		listing, err := s.listingRepo.FindByID(ctx, reservation.ListingID)
		if err != nil || listing.ProviderID != userID {
			return nil, ErrNotReservationOwner
		}
	}

	return reservation, nil
}
