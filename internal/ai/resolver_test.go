package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	. "github.com/smartystreets/goconvey/convey"

	"kindbite/internal/model/chat"
)

// fakeChatModel 测试用远程模型，记录收到的消息并返回预设结果
type fakeChatModel struct {
	reply    string
	err      error
	received []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.received = in
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func (f *fakeChatModel) BindTools(tools []*schema.ToolInfo) error {
	return nil
}

// fakeKnowledgeSearcher 测试用知识库检索
type fakeKnowledgeSearcher struct {
	hits     []KnowledgeHit
	err      error
	keywords []string
}

func (f *fakeKnowledgeSearcher) Search(ctx context.Context, keywords []string, limit int) ([]KnowledgeHit, error) {
	f.keywords = keywords
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func TestResolver_Resolve_Remote(t *testing.T) {
	Convey("Resolver 远程模型路径", t, func() {
		ctx := context.Background()

		Convey("正常调用返回模型回复并去除首尾空白", func() {
			cm := &fakeChatModel{reply: "  Sure, here is how donations work.  "}
			resolver := NewResolver(cm, nil)

			result := resolver.Resolve(ctx, "how do donations work?", nil)
			So(result.Content, ShouldEqual, "Sure, here is how donations work.")
			So(result.ElapsedMs, ShouldBeGreaterThanOrEqualTo, 0)
		})

		Convey("请求消息以系统人设开头、用户消息结尾", func() {
			cm := &fakeChatModel{reply: "ok"}
			resolver := NewResolver(cm, nil)

			history := []*chat.Message{
				{Role: chat.RoleUser, Content: "hello"},
				{Role: chat.RoleAssistant, Content: "hi, how can i help?"},
			}
			resolver.Resolve(ctx, "what can i donate?", history)

			So(len(cm.received), ShouldEqual, 4)
			So(cm.received[0].Role, ShouldEqual, schema.System)
			So(cm.received[1].Role, ShouldEqual, schema.User)
			So(cm.received[1].Content, ShouldEqual, "hello")
			So(cm.received[2].Role, ShouldEqual, schema.Assistant)
			So(cm.received[3].Role, ShouldEqual, schema.User)
			So(cm.received[3].Content, ShouldEqual, "what can i donate?")
		})

		Convey("历史超长时只携带最近几条", func() {
			cm := &fakeChatModel{reply: "ok"}
			resolver := NewResolver(cm, nil)

			history := make([]*chat.Message, 0, 10)
			for i := 0; i < 10; i++ {
				role := chat.RoleUser
				if i%2 == 1 {
					role = chat.RoleAssistant
				}
				history = append(history, &chat.Message{Role: role, Content: "msg"})
			}
			resolver.Resolve(ctx, "latest question", history)

			// 系统消息 + 6条历史 + 当前用户消息
			So(len(cm.received), ShouldEqual, maxHistoryTurns+2)
		})

		Convey("模型调用失败时转入规则回退路径", func() {
			cm := &fakeChatModel{err: errors.New("connection refused")}
			resolver := NewResolver(cm, nil)

			result := resolver.Resolve(ctx, "hello", nil)
			So(result.Content, ShouldEqual, greetingResponse)
		})

		Convey("模型调用失败且规则未命中时返回默认回复", func() {
			cm := &fakeChatModel{err: errors.New("connection refused")}
			resolver := NewResolver(cm, nil)

			result := resolver.Resolve(ctx, "xyz", nil)
			So(result.Content, ShouldEqual, defaultResponse)
		})
	})
}

func TestResolver_Resolve_Fallback(t *testing.T) {
	Convey("Resolver 规则回退路径", t, func() {
		ctx := context.Background()

		Convey("命中规则表直接返回规则回复", func() {
			resolver := NewResolver(nil, nil)

			result := resolver.Resolve(ctx, "  HELLO there  ", nil)
			So(result.Content, ShouldEqual, greetingResponse)

			result = resolver.Resolve(ctx, "How do KindCoins work?", nil)
			So(result.Content, ShouldEqual, kindCoinsResponse)
		})

		Convey("规则未命中时检索知识库", func() {
			searcher := &fakeKnowledgeSearcher{
				hits: []KnowledgeHit{
					{Title: "Donation guidelines", Content: "Only unexpired food may be listed."},
					{Title: "Bakery surplus", Content: "Day-old bread is welcome."},
				},
			}
			resolver := NewResolver(nil, searcher)

			result := resolver.Resolve(ctx, "donation guidelines please", nil)
			So(result.Content, ShouldStartWith, "📚 **From our Knowledge Base:**")
			So(result.Content, ShouldContainSubstring, "**Donation guidelines**\nOnly unexpired food may be listed.")
			So(result.Content, ShouldContainSubstring, "**Bakery surplus**\nDay-old bread is welcome.")
			So(searcher.keywords, ShouldResemble, []string{"donation", "guidelines", "please"})
		})

		Convey("知识库无命中时返回默认回复", func() {
			resolver := NewResolver(nil, &fakeKnowledgeSearcher{})

			result := resolver.Resolve(ctx, "donation guidelines please", nil)
			So(result.Content, ShouldEqual, defaultResponse)
		})

		Convey("知识库检索失败时返回默认回复", func() {
			resolver := NewResolver(nil, &fakeKnowledgeSearcher{err: errors.New("mongo down")})

			result := resolver.Resolve(ctx, "donation guidelines please", nil)
			So(result.Content, ShouldEqual, defaultResponse)
		})

		Convey("无知识库且规则未命中时返回默认回复", func() {
			resolver := NewResolver(nil, nil)

			result := resolver.Resolve(ctx, "xyz", nil)
			So(result.Content, ShouldEqual, defaultResponse)
		})
	})
}
