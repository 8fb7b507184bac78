package tests

import (
	"net/http"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// knowledgeEntryData 测试断言用的知识库条目字段
type knowledgeEntryData struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Content  string   `json:"content"`
	Keywords []string `json:"keywords"`
	Priority int      `json:"priority"`
	IsActive bool     `json:"is_active"`
}

func TestKnowledgeManagement(t *testing.T) {
	Convey("知识库条目管理与检索", t, func() {
		adminToken, _ := registerAndLogin(t, "kb_admin@test.local", "admin")
		seekerToken, _ := registerAndLogin(t, "kb_seeker@test.local", "seeker")

		// 非管理员角色无权访问
		w := doRequest(http.MethodGet, "/api/v1/admin/knowledge", seekerToken, nil)
		So(w.Code, ShouldEqual, http.StatusForbidden)
		So(parseResponse(t, w).Code, ShouldEqual, 40301)

		// 管理员创建条目
		w = doRequest(http.MethodPost, "/api/v1/admin/knowledge", adminToken, map[string]interface{}{
			"title":    "Composting basics",
			"category": "sustainability",
			"content":  "Vegetable scraps and coffee grounds break down fastest in a backyard bin.",
			"keywords": []string{"composting", "compost"},
			"priority": 5,
		})
		So(w.Code, ShouldEqual, http.StatusOK)
		var entry knowledgeEntryData
		decodeData(t, parseResponse(t, w), &entry)
		So(entry.ID, ShouldNotBeEmpty)
		So(entry.Category, ShouldEqual, "sustainability")
		So(entry.IsActive, ShouldBeTrue)

		// 无效分类拒绝
		w = doRequest(http.MethodPost, "/api/v1/admin/knowledge", adminToken, map[string]interface{}{
			"title":    "Bad category",
			"category": "astrology",
			"content":  "should not be accepted",
		})
		So(w.Code, ShouldEqual, http.StatusBadRequest)
		So(parseResponse(t, w).Code, ShouldEqual, 40008)

		// 列表可以看到条目
		w = doRequest(http.MethodGet, "/api/v1/admin/knowledge?category=sustainability", adminToken, nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var listResp struct {
			Entries []knowledgeEntryData `json:"entries"`
		}
		decodeData(t, parseResponse(t, w), &listResp)
		So(len(listResp.Entries), ShouldBeGreaterThanOrEqualTo, 1)

		// 聊天回退路径通过关键词检索到条目
		w = doRequest(http.MethodPost, "/api/v1/chat/send", seekerToken, map[string]interface{}{
			"message": "guidance about composting surplus bread",
		})
		So(w.Code, ShouldEqual, http.StatusOK)
		var chatResp struct {
			AssistantMessage struct {
				Content string `json:"content"`
			} `json:"assistant_message"`
		}
		decodeData(t, parseResponse(t, w), &chatResp)
		So(chatResp.AssistantMessage.Content, ShouldContainSubstring, "From our Knowledge Base")
		So(chatResp.AssistantMessage.Content, ShouldContainSubstring, "Composting basics")

		// 更新条目内容
		w = doRequest(http.MethodPut, "/api/v1/admin/knowledge/"+entry.ID, adminToken, map[string]interface{}{
			"content":  "Layer greens and browns, turn the pile weekly.",
			"priority": 8,
		})
		So(w.Code, ShouldEqual, http.StatusOK)

		w = doRequest(http.MethodGet, "/api/v1/admin/knowledge/"+entry.ID, adminToken, nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var updated knowledgeEntryData
		decodeData(t, parseResponse(t, w), &updated)
		So(updated.Content, ShouldEqual, "Layer greens and browns, turn the pile weekly.")
		So(updated.Priority, ShouldEqual, 8)
		So(updated.Title, ShouldEqual, "Composting basics")

		// 删除后检索不再命中，回退到默认回复
		w = doRequest(http.MethodDelete, "/api/v1/admin/knowledge/"+entry.ID, adminToken, nil)
		So(w.Code, ShouldEqual, http.StatusOK)

		w = doRequest(http.MethodGet, "/api/v1/admin/knowledge/"+entry.ID, adminToken, nil)
		So(w.Code, ShouldEqual, http.StatusNotFound)
		So(parseResponse(t, w).Code, ShouldEqual, 40407)

		w = doRequest(http.MethodPost, "/api/v1/chat/send", seekerToken, map[string]interface{}{
			"message": "guidance about composting surplus bread",
		})
		So(w.Code, ShouldEqual, http.StatusOK)
		decodeData(t, parseResponse(t, w), &chatResp)
		So(chatResp.AssistantMessage.Content, ShouldNotContainSubstring, "Composting basics")
		So(chatResp.AssistantMessage.Content, ShouldContainSubstring, "I'm here to help")
	})
}
