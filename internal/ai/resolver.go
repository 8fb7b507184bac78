package ai

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"kindbite/internal/model/chat"
)

// maxHistoryTurns 远程对话携带的最大历史消息条数（3轮对话）
const maxHistoryTurns = 6

// knowledgeMatchLimit 知识库检索返回的最大条目数
const knowledgeMatchLimit = 3

// KnowledgeHit 知识库检索命中条目
type KnowledgeHit struct {
	Title   string
	Content string
}

// KnowledgeSearcher 知识库检索接口
// 按关键词对标题/内容/关键词字段做OR匹配，按优先级降序、标题升序返回
type KnowledgeSearcher interface {
	Search(ctx context.Context, keywords []string, limit int) ([]KnowledgeHit, error)
}

// Result 回复解析结果
type Result struct {
	Content   string // 回复内容
	ElapsedMs int    // 解析耗时（墙上时钟，毫秒）
}

// Resolver 聊天回复解析器
// 优先调用远程模型，远程不可用时走规则回退路径，任何情况下都不向调用方返回错误
type Resolver struct {
	chatModel model.ChatModel
	knowledge KnowledgeSearcher
}

// NewResolver 创建回复解析器
// chatModel 为 nil 时只走规则回退路径
func NewResolver(chatModel model.ChatModel, knowledge KnowledgeSearcher) *Resolver {
	return &Resolver{
		chatModel: chatModel,
		knowledge: knowledge,
	}
}

// Resolve 解析用户消息，生成助手回复
// history 为当前会话按时间升序排列的历史消息
func (r *Resolver) Resolve(ctx context.Context, userMessage string, history []*chat.Message) *Result {
	start := time.Now()

	content, ok := r.resolveRemote(ctx, userMessage, history)
	if !ok {
		content = r.resolveFallback(ctx, userMessage)
	}

	return &Result{
		Content:   content,
		ElapsedMs: int(time.Since(start).Milliseconds()),
	}
}

// resolveRemote 调用远程模型生成回复
// 模型未配置或调用失败时返回 ok=false，由调用方转入规则回退路径，错误不向上传递
func (r *Resolver) resolveRemote(ctx context.Context, userMessage string, history []*chat.Message) (string, bool) {
	if r.chatModel == nil {
		return "", false
	}

	messages := make([]*schema.Message, 0, maxHistoryTurns+2)
	messages = append(messages, schema.SystemMessage(systemPrompt))

	// 只携带最近几轮历史
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	for _, msg := range history {
		switch msg.Role {
		case chat.RoleUser:
			messages = append(messages, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		}
	}

	messages = append(messages, schema.UserMessage(userMessage))

	resp, err := r.chatModel.Generate(ctx, messages)
	if err != nil {
		log.Warn().Err(err).Msg("chat model generate failed, falling back to rule-based path")
		return "", false
	}

	return strings.TrimSpace(resp.Content), true
}

// resolveFallback 规则回退路径
// 顺序: 规则表（问候/平台/安全/食物话题）-> 知识库检索 -> 默认回复
func (r *Resolver) resolveFallback(ctx context.Context, userMessage string) string {
	normalized := strings.ToLower(strings.TrimSpace(userMessage))

	if matched := matchRule(normalized); matched != nil {
		return matched.response
	}

	if kbResponse := r.searchKnowledge(ctx, normalized); kbResponse != "" {
		return kbResponse
	}

	return defaultResponse
}

// searchKnowledge 检索知识库并组装回复
// 无关键词、检索失败或无命中都返回空串，由调用方继续走默认回复
func (r *Resolver) searchKnowledge(ctx context.Context, message string) string {
	if r.knowledge == nil {
		return ""
	}

	keywords := extractKeywords(message)
	if len(keywords) == 0 {
		return ""
	}

	hits, err := r.knowledge.Search(ctx, keywords, knowledgeMatchLimit)
	if err != nil {
		log.Warn().Err(err).Msg("knowledge base search failed")
		return ""
	}
	if len(hits) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("📚 **From our Knowledge Base:**\n\n")
	for _, hit := range hits {
		sb.WriteString("**")
		sb.WriteString(hit.Title)
		sb.WriteString("**\n")
		sb.WriteString(hit.Content)
		sb.WriteString("\n\n")
	}

	return strings.TrimSpace(sb.String())
}
