package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"kindbite/internal/ai"
	"kindbite/internal/pkg/cache"
)

// CachedKnowledgeSearcher 带Redis缓存的知识库检索
// 相同关键词组合在TTL内直接命中缓存，Redis故障时直接穿透到底层检索
type CachedKnowledgeSearcher struct {
	inner ai.KnowledgeSearcher
	redis *cache.RedisCache
}

// NewCachedKnowledgeSearcher 创建缓存检索装饰器
func NewCachedKnowledgeSearcher(inner ai.KnowledgeSearcher, redis *cache.RedisCache) *CachedKnowledgeSearcher {
	return &CachedKnowledgeSearcher{
		inner: inner,
		redis: redis,
	}
}

// Search 检索知识库，优先读缓存
func (s *CachedKnowledgeSearcher) Search(ctx context.Context, keywords []string, limit int) ([]ai.KnowledgeHit, error) {
	key := cache.KnowledgeCacheKey(strings.Join(keywords, ",") + ":" + strconv.Itoa(limit))

	var cached []ai.KnowledgeHit
	if err := s.redis.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	hits, err := s.inner.Search(ctx, keywords, limit)
	if err != nil {
		return nil, err
	}

	if err := s.redis.Set(ctx, key, hits, cache.KnowledgeCacheTTL); err != nil {
		log.Warn().Err(err).Msg("failed to cache knowledge search result")
	}

	return hits, nil
}
