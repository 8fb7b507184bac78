package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"kindbite/internal/ai"
	"kindbite/internal/model/chat"
	"kindbite/internal/pkg/cache"
	"kindbite/internal/pkg/id"
	chatRepo "kindbite/internal/repository/chat"
)

var (
	ErrSessionNotFound     = errors.New("会话不存在")
	ErrMessageNotFound     = errors.New("消息不存在")
	ErrEmptyMessage        = errors.New("消息内容不能为空")
	ErrInvalidRating       = errors.New("评分必须在1到5之间")
	ErrNotAssistantMessage = errors.New("只能评价AI回复")
)

// 会话标题派生参数: 超过50个字符截取前47个加省略号
const (
	maxTitleLen    = 50
	titleTruncLen  = 47
	titleEllipsis  = "..."
	historyLimit   = 6  // 传给解析器的历史消息条数
	sessionListCap = 20 // 会话列表默认条数
)

// SessionCache 会话详情缓存接口
// *cache.RedisCache 满足该接口，Redis未配置时传nil
type SessionCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ChatService 聊天服务
type ChatService struct {
	sessionRepo  *chatRepo.SessionRepo
	messageRepo  *chatRepo.MessageRepo
	feedbackRepo *chatRepo.FeedbackRepo
	resolver     *ai.Resolver
	sessionCache SessionCache
}

// NewChatService 创建聊天服务
// sessionCache 为 nil 时会话详情不走缓存
func NewChatService(
	sessionRepo *chatRepo.SessionRepo,
	messageRepo *chatRepo.MessageRepo,
	feedbackRepo *chatRepo.FeedbackRepo,
	resolver *ai.Resolver,
	sessionCache SessionCache,
) *ChatService {
	return &ChatService{
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		feedbackRepo: feedbackRepo,
		resolver:     resolver,
		sessionCache: sessionCache,
	}
}

// SendMessageResult 发送消息结果
type SendMessageResult struct {
	Session          *chat.Session
	UserMessage      *chat.Message
	AssistantMessage *chat.Message
}

// SendMessage 发送消息并获取AI回复
// sessionID 为空或无效时创建新会话；回复解析失败不会向调用方暴露错误
func (s *ChatService) SendMessage(ctx context.Context, userID, sessionID, content string) (*SendMessageResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	session, err := s.getOrCreateSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	// 在写入用户消息前取历史，避免当前消息重复出现在上下文里
	history, err := s.messageRepo.ListRecent(ctx, session.ID, historyLimit)
	if err != nil {
		log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to load chat history")
		history = nil
	}

	userMessage := &chat.Message{
		ID:        id.New(),
		SessionID: session.ID,
		Role:      chat.RoleUser,
		Content:   content,
	}
	if err := s.messageRepo.Create(ctx, userMessage); err != nil {
		log.Error().Err(err).Msg("failed to save user message")
		return nil, errors.New("保存消息失败")
	}

	result := s.resolver.Resolve(ctx, content, history)

	elapsedMs := result.ElapsedMs
	assistantMessage := &chat.Message{
		ID:             id.New(),
		SessionID:      session.ID,
		Role:           chat.RoleAssistant,
		Content:        result.Content,
		ResponseTimeMs: &elapsedMs,
	}
	if err := s.messageRepo.Create(ctx, assistantMessage); err != nil {
		log.Error().Err(err).Msg("failed to save assistant message")
		return nil, errors.New("保存消息失败")
	}

	// 首轮对话后用用户消息派生会话标题
	if count, err := s.messageRepo.CountBySession(ctx, session.ID); err == nil && count <= 2 {
		title := DeriveSessionTitle(content)
		if err := s.sessionRepo.UpdateTitle(ctx, session.ID, title); err != nil {
			log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to update session title")
		} else {
			session.Title = title
		}
	}

	if err := s.sessionRepo.Touch(ctx, session.ID); err != nil {
		log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to touch session")
	}

	s.invalidateSessionCache(ctx, session.ID)

	return &SendMessageResult{
		Session:          session,
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
	}, nil
}

// getOrCreateSession 获取已有会话或创建新会话
// 指定的会话不存在（或不属于该用户）时静默创建新会话
func (s *ChatService) getOrCreateSession(ctx context.Context, userID, sessionID string) (*chat.Session, error) {
	if sessionID != "" {
		session, err := s.sessionRepo.FindByID(ctx, sessionID, userID)
		if err == nil {
			return session, nil
		}
	}

	session := &chat.Session{
		ID:       id.New(),
		UserID:   userID,
		Title:    "New Chat",
		IsActive: true,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		log.Error().Err(err).Msg("failed to create chat session")
		return nil, errors.New("创建会话失败")
	}

	return session, nil
}

// DeriveSessionTitle 从首条用户消息派生会话标题
// 按rune截断，避免把多字节字符切坏
func DeriveSessionTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= maxTitleLen {
		return message
	}
	return string(runes[:titleTruncLen]) + titleEllipsis
}

// ListSessions 查询用户的会话列表
func (s *ChatService) ListSessions(ctx context.Context, userID string) ([]*chat.Session, error) {
	return s.sessionRepo.ListByUser(ctx, userID, sessionListCap)
}

// SessionDetail 会话详情
type SessionDetail struct {
	Session  *chat.Session
	Messages []*chat.Message
}

// GetSession 查询会话详情（含全部消息）
// 缓存按会话ID存整份详情，命中后仍校验归属
func (s *ChatService) GetSession(ctx context.Context, userID, sessionID string) (*SessionDetail, error) {
	if s.sessionCache != nil {
		var cached SessionDetail
		if err := s.sessionCache.Get(ctx, cache.SessionCacheKey(sessionID), &cached); err == nil && cached.Session != nil {
			if cached.Session.UserID != userID {
				return nil, ErrSessionNotFound
			}
			return &cached, nil
		}
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID, userID)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	messages, err := s.messageRepo.ListBySession(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to load session messages")
		return nil, errors.New("查询消息失败")
	}

	detail := &SessionDetail{
		Session:  session,
		Messages: messages,
	}

	if s.sessionCache != nil {
		if err := s.sessionCache.Set(ctx, cache.SessionCacheKey(sessionID), detail, cache.SessionCacheTTL); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to cache session detail")
		}
	}

	return detail, nil
}

// invalidateSessionCache 会话内容变更后清除缓存
func (s *ChatService) invalidateSessionCache(ctx context.Context, sessionID string) {
	if s.sessionCache == nil {
		return
	}
	if err := s.sessionCache.Delete(ctx, cache.SessionCacheKey(sessionID)); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to invalidate session cache")
	}
}

// CreateSession 创建新会话
func (s *ChatService) CreateSession(ctx context.Context, userID string) (*chat.Session, error) {
	return s.getOrCreateSession(ctx, userID, "")
}

// DeleteSession 删除会话（软删除）
func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	ok, err := s.sessionRepo.Deactivate(ctx, sessionID, userID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to deactivate session")
		return errors.New("删除会话失败")
	}
	if !ok {
		return ErrSessionNotFound
	}

	s.invalidateSessionCache(ctx, sessionID)
	return nil
}

// SubmitFeedback 提交对AI回复的评价
// 同一用户重复评价同一消息时覆盖原评价
func (s *ChatService) SubmitFeedback(ctx context.Context, userID, messageID string, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return ErrMessageNotFound
	}
	if message.Role != chat.RoleAssistant {
		return ErrNotAssistantMessage
	}

	feedback := &chat.Feedback{
		ID:        id.New(),
		MessageID: messageID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.feedbackRepo.Upsert(ctx, feedback); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("failed to save feedback")
		return errors.New("保存评价失败")
	}

	return nil
}

// ChatStats 聊天统计
type ChatStats struct {
	TotalSessions     int64   `json:"total_sessions"`
	TotalMessages     int64   `json:"total_messages"`
	UserMessages      int64   `json:"user_messages"`
	AssistantMessages int64   `json:"assistant_messages"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
	FeedbackCount     int64   `json:"feedback_count"`
	AvgFeedbackRating float64 `json:"avg_feedback_rating"`
}

// GetStats 查询当前用户的聊天统计
// 全部维度按用户维度统计: 会话数为有效会话，消息按会话归属聚合（含已删除会话），评价按提交人
func (s *ChatService) GetStats(ctx context.Context, userID string) (*ChatStats, error) {
	stats := &ChatStats{}

	sessions, err := s.sessionRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.TotalSessions = sessions

	sessionIDs, err := s.sessionRepo.IDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	userCount, err := s.messageRepo.CountByRole(ctx, sessionIDs, chat.RoleUser)
	if err != nil {
		return nil, err
	}
	stats.UserMessages = userCount

	assistantCount, err := s.messageRepo.CountByRole(ctx, sessionIDs, chat.RoleAssistant)
	if err != nil {
		return nil, err
	}
	stats.AssistantMessages = assistantCount
	stats.TotalMessages = userCount + assistantCount

	avgMs, err := s.messageRepo.AverageResponseTime(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}
	stats.AvgResponseTimeMs = avgMs

	feedbackCount, err := s.feedbackRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.FeedbackCount = feedbackCount

	avgRating, err := s.feedbackRepo.AverageRatingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.AvgFeedbackRating = avgRating

	return stats, nil
}
