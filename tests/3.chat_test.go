package tests

import (
	"net/http"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// messageData 测试断言用的消息响应字段
type messageData struct {
	ID             string `json:"id"`
	SessionID      string `json:"session_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	ResponseTimeMs *int   `json:"response_time_ms"`
}

func TestChatAssistantFlow(t *testing.T) {
	Convey("AI聊天助手流程（规则回退路径）", t, func() {
		token, _ := registerAndLogin(t, "chat_user@test.local", "seeker")

		// 首条消息创建会话，问候语命中规则表
		w := doRequest(http.MethodPost, "/api/v1/chat/send", token, map[string]interface{}{
			"message": "Hello!",
		})
		So(w.Code, ShouldEqual, http.StatusOK)

		var first struct {
			SessionID        string      `json:"session_id"`
			SessionTitle     string      `json:"session_title"`
			UserMessage      messageData `json:"user_message"`
			AssistantMessage messageData `json:"assistant_message"`
		}
		decodeData(t, parseResponse(t, w), &first)
		So(first.SessionID, ShouldNotBeEmpty)
		So(first.SessionTitle, ShouldEqual, "Hello!")
		So(first.UserMessage.Role, ShouldEqual, "user")
		So(first.UserMessage.Content, ShouldEqual, "Hello!")
		So(first.AssistantMessage.Role, ShouldEqual, "assistant")
		So(first.AssistantMessage.Content, ShouldContainSubstring, "KindBite AI assistant")
		So(first.AssistantMessage.ResponseTimeMs, ShouldNotBeNil)

		// 同一会话继续提问，命中KindCoins规则
		w = doRequest(http.MethodPost, "/api/v1/chat/send", token, map[string]interface{}{
			"session_id": first.SessionID,
			"message":    "How do KindCoins work?",
		})
		So(w.Code, ShouldEqual, http.StatusOK)

		var second struct {
			SessionID        string      `json:"session_id"`
			AssistantMessage messageData `json:"assistant_message"`
		}
		decodeData(t, parseResponse(t, w), &second)
		So(second.SessionID, ShouldEqual, first.SessionID)
		So(second.AssistantMessage.Content, ShouldContainSubstring, "KindCoins")

		// 空消息拒绝
		w = doRequest(http.MethodPost, "/api/v1/chat/send", token, map[string]interface{}{
			"message": "   ",
		})
		So(w.Code, ShouldEqual, http.StatusBadRequest)

		// 会话列表
		w = doRequest(http.MethodGet, "/api/v1/chat/sessions", token, nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var sessionList struct {
			Sessions []struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"sessions"`
		}
		decodeData(t, parseResponse(t, w), &sessionList)
		So(len(sessionList.Sessions), ShouldBeGreaterThanOrEqualTo, 1)
		So(sessionList.Sessions[0].Title, ShouldEqual, "Hello!")

		// 会话详情包含全部消息
		w = doRequest(http.MethodGet, "/api/v1/chat/sessions/"+first.SessionID, token, nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var detail struct {
			Messages []messageData `json:"messages"`
		}
		decodeData(t, parseResponse(t, w), &detail)
		So(len(detail.Messages), ShouldEqual, 4)
		So(detail.Messages[0].Role, ShouldEqual, "user")
		So(detail.Messages[1].Role, ShouldEqual, "assistant")

		// 对AI回复提交评价
		w = doRequest(http.MethodPost, "/api/v1/chat/feedback", token, map[string]interface{}{
			"message_id": first.AssistantMessage.ID,
			"rating":     5,
			"comment":    "Helpful answer",
		})
		So(w.Code, ShouldEqual, http.StatusOK)

		// 不能评价用户自己的消息
		w = doRequest(http.MethodPost, "/api/v1/chat/feedback", token, map[string]interface{}{
			"message_id": first.UserMessage.ID,
			"rating":     3,
		})
		So(w.Code, ShouldEqual, http.StatusBadRequest)
		So(parseResponse(t, w).Code, ShouldEqual, 40004)

		// 聊天统计按当前用户维度，可以做精确断言
		w = doRequest(http.MethodGet, "/api/v1/chat/stats", token, nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var stats struct {
			TotalSessions     int64   `json:"total_sessions"`
			UserMessages      int64   `json:"user_messages"`
			AssistantMessages int64   `json:"assistant_messages"`
			FeedbackCount     int64   `json:"feedback_count"`
			AvgFeedbackRating float64 `json:"avg_feedback_rating"`
		}
		decodeData(t, parseResponse(t, w), &stats)
		So(stats.TotalSessions, ShouldEqual, 1)
		So(stats.UserMessages, ShouldEqual, 2)
		So(stats.AssistantMessages, ShouldEqual, 2)
		So(stats.FeedbackCount, ShouldEqual, 1)
		So(stats.AvgFeedbackRating, ShouldEqual, 5.0)

		// 重复评价同一消息是覆盖而不是新增
		w = doRequest(http.MethodPost, "/api/v1/chat/feedback", token, map[string]interface{}{
			"message_id": first.AssistantMessage.ID,
			"rating":     3,
			"comment":    "Changed my mind",
		})
		So(w.Code, ShouldEqual, http.StatusOK)

		w = doRequest(http.MethodGet, "/api/v1/chat/stats", token, nil)
		So(w.Code, ShouldEqual, http.StatusOK)
		var statsAfter struct {
			FeedbackCount     int64   `json:"feedback_count"`
			AvgFeedbackRating float64 `json:"avg_feedback_rating"`
		}
		decodeData(t, parseResponse(t, w), &statsAfter)
		So(statsAfter.FeedbackCount, ShouldEqual, 1)
		So(statsAfter.AvgFeedbackRating, ShouldEqual, 3.0)

		// 删除会话后不可再访问
		w = doRequest(http.MethodDelete, "/api/v1/chat/sessions/"+first.SessionID, token, nil)
		So(w.Code, ShouldEqual, http.StatusOK)

		w = doRequest(http.MethodGet, "/api/v1/chat/sessions/"+first.SessionID, token, nil)
		So(w.Code, ShouldEqual, http.StatusNotFound)
	})
}
