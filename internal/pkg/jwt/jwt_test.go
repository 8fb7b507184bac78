package jwt

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestJWT(t *testing.T) {
	Convey("JWT 令牌生成与验证", t, func() {
		j := NewJWT("test-secret", time.Hour)

		Convey("生成的令牌可以验证并取回Claims", func() {
			token, err := j.GenerateToken("user-123", "seeker@example.com", "seeker")
			So(err, ShouldBeNil)
			So(token, ShouldNotBeEmpty)

			claims, err := j.ValidateToken(token)
			So(err, ShouldBeNil)
			So(claims.UserID, ShouldEqual, "user-123")
			So(claims.Email, ShouldEqual, "seeker@example.com")
			So(claims.Role, ShouldEqual, "seeker")
		})

		Convey("密钥不匹配时验证失败", func() {
			token, err := j.GenerateToken("user-123", "seeker@example.com", "seeker")
			So(err, ShouldBeNil)

			other := NewJWT("another-secret", time.Hour)
			_, err = other.ValidateToken(token)
			So(err, ShouldEqual, ErrInvalidToken)
		})

		Convey("过期令牌返回过期错误", func() {
			expired := NewJWT("test-secret", -time.Minute)
			token, err := expired.GenerateToken("user-123", "seeker@example.com", "seeker")
			So(err, ShouldBeNil)

			_, err = j.ValidateToken(token)
			So(err, ShouldEqual, ErrExpiredToken)
		})

		Convey("乱码令牌返回无效错误", func() {
			_, err := j.ValidateToken("not-a-jwt")
			So(err, ShouldEqual, ErrInvalidToken)
		})
	})
}

func TestGenerateRefreshToken(t *testing.T) {
	Convey("GenerateRefreshToken 生成随机刷新令牌", t, func() {
		a := GenerateRefreshToken()
		b := GenerateRefreshToken()

		So(a, ShouldHaveLength, 64)
		So(b, ShouldHaveLength, 64)
		So(a, ShouldNotEqual, b)
	})
}
