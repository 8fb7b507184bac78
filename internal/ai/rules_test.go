package ai

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMatchRule(t *testing.T) {
	Convey("matchRule 能按优先级匹配规则表", t, func() {
		Convey("问候语应命中 greeting 规则", func() {
			for _, msg := range []string{"hello", "hi there", "hey!", "good morning everyone"} {
				matched := matchRule(msg)
				So(matched, ShouldNotBeNil)
				So(matched.name, ShouldEqual, "greeting")
			}
		})

		Convey("平台问题应命中对应规则", func() {
			cases := []struct {
				message string
				rule    string
			}{
				{"what is kindbite exactly?", "about_platform"},
				{"tell me how it works", "how_it_works"},
				{"what user roles exist", "user_roles"},
				{"how do i earn kindcoins", "kindcoins"},
				{"what about the environmental impact", "environment"},
			}
			for _, tc := range cases {
				matched := matchRule(tc.message)
				So(matched, ShouldNotBeNil)
				So(matched.name, ShouldEqual, tc.rule)
			}
		})

		Convey("安全与食物话题应命中对应规则", func() {
			cases := []struct {
				message string
				rule    string
			}{
				{"tell me about food safety", "food_safety"},
				{"the milk looks expired", "food_safety"},
				{"how should i store food at home", "storage"},
				{"where is the pickup location", "pickup"},
				{"any recipe for leftover rice", "cooking"},
				{"is surplus bread healthy", "nutrition"},
				{"how to reduce waste", "waste"},
			}
			for _, tc := range cases {
				matched := matchRule(tc.message)
				So(matched, ShouldNotBeNil)
				So(matched.name, ShouldEqual, tc.rule)
			}
		})

		Convey("排在前面的规则优先命中", func() {
			// "hi" 同时是 greeting 的关键词和很多词的子串，greeting 在表首
			matched := matchRule("hi, how does kindbite work?")
			So(matched, ShouldNotBeNil)
			So(matched.name, ShouldEqual, "greeting")

			// kindcoins 规则排在 waste 之前
			matched = matchRule("can i get rewards for reducing waste")
			So(matched, ShouldNotBeNil)
			So(matched.name, ShouldEqual, "kindcoins")
		})

		Convey("未命中任何关键词返回 nil", func() {
			So(matchRule("completely unrelated gibberish"), ShouldBeNil)
			So(matchRule(""), ShouldBeNil)
		})
	})
}

func TestExtractKeywords(t *testing.T) {
	Convey("extractKeywords 提取知识库检索关键词", t, func() {
		Convey("过滤长度不超过3的短词", func() {
			keywords := extractKeywords("how do i donate surplus food")
			So(keywords, ShouldResemble, []string{"donate", "surplus", "food"})
		})

		Convey("最多保留5个关键词", func() {
			keywords := extractKeywords("vegetables bakery restaurant charity community shelter donation")
			So(len(keywords), ShouldEqual, 5)
			So(keywords, ShouldResemble, []string{"vegetables", "bakery", "restaurant", "charity", "community"})
		})

		Convey("标点不会混入关键词", func() {
			keywords := extractKeywords("donation? yes, please!")
			So(keywords, ShouldResemble, []string{"donation", "please"})
		})

		Convey("无有效词时返回空", func() {
			So(extractKeywords("a an the of"), ShouldBeEmpty)
			So(extractKeywords(""), ShouldBeEmpty)
		})
	})
}
