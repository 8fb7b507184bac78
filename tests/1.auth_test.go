package tests

import (
	"net/http"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAuthFlow(t *testing.T) {
	Convey("认证流程", t, func() {
		Convey("注册新用户成功", func() {
			w := doRequest(http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
				"email":      "auth_seeker@test.local",
				"password":   "password123",
				"first_name": "Alice",
				"last_name":  "Seeker",
				"role":       "seeker",
			})
			So(w.Code, ShouldEqual, http.StatusOK)

			resp := parseResponse(t, w)
			So(resp.Code, ShouldEqual, 0)

			var data struct {
				UserID string `json:"user_id"`
				Email  string `json:"email"`
				Role   string `json:"role"`
			}
			decodeData(t, resp, &data)
			So(data.UserID, ShouldNotBeEmpty)
			So(data.Email, ShouldEqual, "auth_seeker@test.local")
			So(data.Role, ShouldEqual, "seeker")
		})

		Convey("重复邮箱注册返回冲突", func() {
			w := doRequest(http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
				"email":    "auth_seeker@test.local",
				"password": "password123",
				"role":     "seeker",
			})
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(parseResponse(t, w).Code, ShouldEqual, 40901)
		})

		Convey("无效角色注册失败", func() {
			w := doRequest(http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
				"email":    "auth_badrole@test.local",
				"password": "password123",
				"role":     "superhero",
			})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(parseResponse(t, w).Code, ShouldEqual, 40002)
		})

		Convey("错误密码登录失败", func() {
			w := doRequest(http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
				"email":    "auth_seeker@test.local",
				"password": "wrong-password",
			})
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("正确密码登录并访问个人信息", func() {
			w := doRequest(http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
				"email":    "auth_seeker@test.local",
				"password": "password123",
			})
			So(w.Code, ShouldEqual, http.StatusOK)

			var loginData struct {
				AccessToken  string `json:"access_token"`
				RefreshToken string `json:"refresh_token"`
				TokenType    string `json:"token_type"`
			}
			decodeData(t, parseResponse(t, w), &loginData)
			So(loginData.AccessToken, ShouldNotBeEmpty)
			So(loginData.RefreshToken, ShouldNotBeEmpty)
			So(loginData.TokenType, ShouldEqual, "Bearer")

			w = doRequest(http.MethodGet, "/api/v1/auth/me", loginData.AccessToken, nil)
			So(w.Code, ShouldEqual, http.StatusOK)

			var me struct {
				Email     string `json:"email"`
				Role      string `json:"role"`
				KindCoins uint64 `json:"kind_coins"`
			}
			decodeData(t, parseResponse(t, w), &me)
			So(me.Email, ShouldEqual, "auth_seeker@test.local")
			So(me.Role, ShouldEqual, "seeker")
			So(me.KindCoins, ShouldEqual, 0)
		})

		Convey("未携带令牌访问受保护接口返回未授权", func() {
			w := doRequest(http.MethodGet, "/api/v1/auth/me", "", nil)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("刷新令牌换取新的访问令牌", func() {
			w := doRequest(http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
				"email":    "auth_seeker@test.local",
				"password": "password123",
			})
			So(w.Code, ShouldEqual, http.StatusOK)

			var loginData struct {
				RefreshToken string `json:"refresh_token"`
			}
			decodeData(t, parseResponse(t, w), &loginData)

			w = doRequest(http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{
				"refresh_token": loginData.RefreshToken,
			})
			So(w.Code, ShouldEqual, http.StatusOK)

			var refreshData struct {
				AccessToken string `json:"access_token"`
			}
			decodeData(t, parseResponse(t, w), &refreshData)
			So(refreshData.AccessToken, ShouldNotBeEmpty)
		})
	})
}
