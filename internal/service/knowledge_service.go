package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"kindbite/internal/model/chat"
	"kindbite/internal/pkg/id"
	chatRepo "kindbite/internal/repository/chat"
)

var (
	ErrKnowledgeNotFound = errors.New("知识库条目不存在")
	ErrInvalidCategory   = errors.New("无效的知识库分类")
)

// KnowledgeService 知识库管理服务
// 面向管理员的条目维护，检索路径见 ai.Resolver 的回退逻辑
type KnowledgeService struct {
	knowledgeRepo *chatRepo.KnowledgeRepo
}

// NewKnowledgeService 创建知识库管理服务
func NewKnowledgeService(knowledgeRepo *chatRepo.KnowledgeRepo) *KnowledgeService {
	return &KnowledgeService{
		knowledgeRepo: knowledgeRepo,
	}
}

// KnowledgeEntryParams 条目参数
type KnowledgeEntryParams struct {
	Title    string
	Category chat.KnowledgeCategory
	Content  string
	Keywords []string
	Priority int
	IsActive *bool
}

// CreateEntry 创建知识库条目
// 分类缺省为 general，is_active 缺省为 true
func (s *KnowledgeService) CreateEntry(ctx context.Context, params KnowledgeEntryParams) (*chat.KnowledgeEntry, error) {
	category := params.Category
	if category == "" {
		category = chat.CategoryGeneral
	}
	if !category.IsValid() {
		return nil, ErrInvalidCategory
	}

	entry := &chat.KnowledgeEntry{
		ID:       id.New(),
		Title:    params.Title,
		Category: category,
		Content:  params.Content,
		Keywords: params.Keywords,
		Priority: params.Priority,
		IsActive: true,
	}
	if params.IsActive != nil {
		entry.IsActive = *params.IsActive
	}

	if err := s.knowledgeRepo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("title", params.Title).Msg("failed to create knowledge entry")
		return nil, errors.New("创建知识库条目失败")
	}

	return entry, nil
}

// GetEntry 查询条目
func (s *KnowledgeService) GetEntry(ctx context.Context, entryID string) (*chat.KnowledgeEntry, error) {
	entry, err := s.knowledgeRepo.FindByID(ctx, entryID)
	if err != nil {
		return nil, ErrKnowledgeNotFound
	}
	return entry, nil
}

// ListEntries 查询条目列表
func (s *KnowledgeService) ListEntries(ctx context.Context, category string, activeOnly bool) ([]*chat.KnowledgeEntry, error) {
	return s.knowledgeRepo.List(ctx, category, activeOnly)
}

// UpdateEntry 更新条目
func (s *KnowledgeService) UpdateEntry(ctx context.Context, entryID string, params KnowledgeEntryParams) (*chat.KnowledgeEntry, error) {
	if _, err := s.knowledgeRepo.FindByID(ctx, entryID); err != nil {
		return nil, ErrKnowledgeNotFound
	}

	setDoc := bson.M{}
	if params.Title != "" {
		setDoc["title"] = params.Title
	}
	if params.Category != "" {
		if !params.Category.IsValid() {
			return nil, ErrInvalidCategory
		}
		setDoc["category"] = params.Category
	}
	if params.Content != "" {
		setDoc["content"] = params.Content
	}
	if params.Keywords != nil {
		setDoc["keywords"] = params.Keywords
	}
	if params.Priority != 0 {
		setDoc["priority"] = params.Priority
	}
	if params.IsActive != nil {
		setDoc["is_active"] = *params.IsActive
	}

	if err := s.knowledgeRepo.Update(ctx, entryID, bson.M{"$set": setDoc}); err != nil {
		log.Error().Err(err).Str("entry_id", entryID).Msg("failed to update knowledge entry")
		return nil, errors.New("更新知识库条目失败")
	}

	return s.knowledgeRepo.FindByID(ctx, entryID)
}

// DeleteEntry 删除条目
func (s *KnowledgeService) DeleteEntry(ctx context.Context, entryID string) error {
	if _, err := s.knowledgeRepo.FindByID(ctx, entryID); err != nil {
		return ErrKnowledgeNotFound
	}

	if err := s.knowledgeRepo.Delete(ctx, entryID); err != nil {
		log.Error().Err(err).Str("entry_id", entryID).Msg("failed to delete knowledge entry")
		return errors.New("删除知识库条目失败")
	}

	return nil
}
