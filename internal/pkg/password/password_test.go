package password

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestHashAndVerify(t *testing.T) {
	Convey("密码哈希与验证", t, func() {
		hash, err := Hash("s3cret-passw0rd")
		So(err, ShouldBeNil)
		So(hash, ShouldNotBeEmpty)
		So(hash, ShouldNotEqual, "s3cret-passw0rd")

		Convey("正确密码验证通过", func() {
			So(Verify("s3cret-passw0rd", hash), ShouldBeTrue)
		})

		Convey("错误密码验证失败", func() {
			So(Verify("wrong-password", hash), ShouldBeFalse)
		})

		Convey("同一密码两次哈希结果不同", func() {
			hash2, err := Hash("s3cret-passw0rd")
			So(err, ShouldBeNil)
			So(hash2, ShouldNotEqual, hash)
			So(Verify("s3cret-passw0rd", hash2), ShouldBeTrue)
		})
	})
}
