package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	. "github.com/smartystreets/goconvey/convey"

	"kindbite/internal/model/chat"
	"kindbite/internal/pkg/cache"
)

func TestDeriveSessionTitle(t *testing.T) {
	Convey("DeriveSessionTitle 从首条消息推导会话标题", t, func() {
		Convey("短消息原样返回", func() {
			So(DeriveSessionTitle("How do I donate food?"), ShouldEqual, "How do I donate food?")
		})

		Convey("恰好50个字符不截断", func() {
			msg := strings.Repeat("a", 50)
			So(DeriveSessionTitle(msg), ShouldEqual, msg)
		})

		Convey("超过50个字符截断为47个字符加省略号", func() {
			msg := strings.Repeat("a", 51)
			title := DeriveSessionTitle(msg)
			So(title, ShouldEqual, strings.Repeat("a", 47)+"...")
			So(utf8.RuneCountInString(title), ShouldEqual, 50)
		})

		Convey("按字符数而不是字节数截断多字节文本", func() {
			msg := strings.Repeat("食", 60)
			title := DeriveSessionTitle(msg)
			So(title, ShouldEqual, strings.Repeat("食", 47)+"...")
			So(utf8.ValidString(title), ShouldBeTrue)
		})
	})
}

// fakeSessionCache 内存版会话缓存
type fakeSessionCache struct {
	data    map[string][]byte
	deleted []string
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{data: map[string][]byte{}}
}

func (f *fakeSessionCache) Get(_ context.Context, key string, dest any) error {
	raw, ok := f.data[key]
	if !ok {
		return errors.New("cache miss")
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeSessionCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeSessionCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
		f.deleted = append(f.deleted, k)
	}
	return nil
}

func TestGetSessionFromCache(t *testing.T) {
	Convey("会话详情缓存命中路径", t, func() {
		ctx := context.Background()
		sessionCache := newFakeSessionCache()

		detail := &SessionDetail{
			Session: &chat.Session{
				ID:       "sess-1",
				UserID:   "user-1",
				Title:    "Hello!",
				IsActive: true,
			},
			Messages: []*chat.Message{
				{ID: "msg-1", SessionID: "sess-1", Role: chat.RoleUser, Content: "Hello!"},
				{ID: "msg-2", SessionID: "sess-1", Role: chat.RoleAssistant, Content: "Hi there"},
			},
		}
		So(sessionCache.Set(ctx, cache.SessionCacheKey("sess-1"), detail, cache.SessionCacheTTL), ShouldBeNil)

		// 命中缓存时不访问仓库，nil仓库仍能返回详情
		svc := NewChatService(nil, nil, nil, nil, sessionCache)

		Convey("归属用户命中缓存", func() {
			got, err := svc.GetSession(ctx, "user-1", "sess-1")
			So(err, ShouldBeNil)
			So(got.Session.Title, ShouldEqual, "Hello!")
			So(len(got.Messages), ShouldEqual, 2)
		})

		Convey("非归属用户命中缓存仍返回会话不存在", func() {
			_, err := svc.GetSession(ctx, "user-2", "sess-1")
			So(err, ShouldEqual, ErrSessionNotFound)
		})

		Convey("清除缓存后key被删除", func() {
			svc.invalidateSessionCache(ctx, "sess-1")
			So(sessionCache.deleted, ShouldContain, cache.SessionCacheKey("sess-1"))
			_, ok := sessionCache.data[cache.SessionCacheKey("sess-1")]
			So(ok, ShouldBeFalse)
		})
	})
}
