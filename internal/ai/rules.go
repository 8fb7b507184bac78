package ai

import (
	"regexp"
	"strings"
)

// rule 规则表条目
// 任意一个关键词出现在消息中（小写子串匹配）即命中
type rule struct {
	name     string
	keywords []string
	response string
}

// fallbackRules 规则回退表，按优先级从高到低排列
// 平台问题优先于安全问题，安全问题优先于通用食物话题
var fallbackRules = []rule{
	{
		name:     "greeting",
		keywords: []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"},
		response: greetingResponse,
	},
	{
		name:     "about_platform",
		keywords: []string{"what is kindbite", "about kindbite", "kindbite is"},
		response: aboutPlatformResponse,
	},
	{
		name:     "how_it_works",
		keywords: []string{"how does kindbite work", "how it works", "how kindbite works"},
		response: howItWorksResponse,
	},
	{
		name:     "user_roles",
		keywords: []string{"user roles", "user types", "who can use", "roles"},
		response: userRolesResponse,
	},
	{
		name:     "kindcoins",
		keywords: []string{"kindcoins", "kind coins", "rewards", "points"},
		response: kindCoinsResponse,
	},
	{
		name:     "environment",
		keywords: []string{"environmental impact", "environment", "sustainability", "eco"},
		response: environmentResponse,
	},
	{
		name:     "food_safety",
		keywords: []string{"food safety", "safe to eat", "food poisoning", "expired"},
		response: foodSafetyResponse,
	},
	{
		name:     "storage",
		keywords: []string{"storage", "store food", "keep fresh", "refrigerate"},
		response: storageResponse,
	},
	{
		name:     "pickup",
		keywords: []string{"pickup", "collect food", "transportation", "transport"},
		response: pickupResponse,
	},
	{
		name:     "cooking",
		keywords: []string{"recipe", "cook", "cooking", "prepare"},
		response: cookingResponse,
	},
	{
		name:     "nutrition",
		keywords: []string{"nutrition", "healthy", "vitamins", "nutrients"},
		response: nutritionResponse,
	},
	{
		name:     "waste",
		keywords: []string{"waste", "reduce waste", "food waste", "leftovers"},
		response: wasteResponse,
	},
}

// matchRule 在规则表中查找第一条命中的规则
// message 须已小写并去除首尾空白，未命中返回 nil
func matchRule(message string) *rule {
	for i := range fallbackRules {
		for _, kw := range fallbackRules[i].keywords {
			if strings.Contains(message, kw) {
				return &fallbackRules[i]
			}
		}
	}
	return nil
}

var wordPattern = regexp.MustCompile(`\w+`)

// extractKeywords 从消息中提取知识库检索关键词
// 只保留长度大于3的词，最多取前5个
func extractKeywords(message string) []string {
	words := wordPattern.FindAllString(message, -1)
	keywords := make([]string, 0, 5)
	for _, w := range words {
		if len(w) > 3 {
			keywords = append(keywords, w)
			if len(keywords) == 5 {
				break
			}
		}
	}
	return keywords
}
