package service

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"kindbite/internal/config"
)

func TestCalcKindCoins(t *testing.T) {
	Convey("CalcKindCoins 计算预订奖励", t, func() {
		rewards := config.RewardsConfig{
			BaseCoinsPerItem: 10,
			CoinsPerKgCO2:    5,
		}

		Convey("基础奖励按数量累加，CO2奖励按单子计一次", func() {
			So(CalcKindCoins(rewards, 3, 2.0), ShouldEqual, 40)
			So(CalcKindCoins(rewards, 1, 2.0), ShouldEqual, 20)
		})

		Convey("CO2小数部分向下取整", func() {
			So(CalcKindCoins(rewards, 1, 0.9), ShouldEqual, 14)
			So(CalcKindCoins(rewards, 2, 1.99), ShouldEqual, 29)
		})

		Convey("无CO2数据时只有基础奖励", func() {
			So(CalcKindCoins(rewards, 5, 0), ShouldEqual, 50)
		})

		Convey("奖励配置为零时不发放", func() {
			So(CalcKindCoins(config.RewardsConfig{}, 3, 2.0), ShouldEqual, 0)
		})
	})
}
