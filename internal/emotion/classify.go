package emotion

import (
	"context"
	"sort"
	"strings"
)

// Classifier 从对话文本中识别情绪标签。
//
// 两种实现可以互换：RuleClassifier 基于加权关键词，零成本、确定性，
// 适合测试和离线回放；LLMClassifier 走模型判读，准确但有延迟和费用。
// 用哪个由配置决定。
type Classifier interface {
	Classify(ctx context.Context, transcript string) ([]string, error)
}

type weightedKeyword struct {
	keyword string
	weight  float64
}

// RuleClassifier 基于加权关键词打分的规则分类器。
// 不同词的权重经过区分，避免单个弱信号词误触发。
type RuleClassifier struct {
	patterns  map[string][]weightedKeyword
	threshold float64
}

// NewRuleClassifier 创建内置词表的规则分类器。
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{
		patterns:  defaultEmotionPatterns(),
		threshold: 0.3,
	}
}

func defaultEmotionPatterns() map[string][]weightedKeyword {
	return map[string][]weightedKeyword{
		"愤怒": {
			{keyword: "凭什么", weight: 0.5}, {keyword: "够了", weight: 0.4},
			{keyword: "烦死", weight: 0.5}, {keyword: "随便你", weight: 0.4},
			{keyword: "无所谓", weight: 0.3}, {keyword: "你根本", weight: 0.4},
		},
		"悲伤": {
			{keyword: "算了", weight: 0.4}, {keyword: "唉", weight: 0.4},
			{keyword: "难过", weight: 0.5}, {keyword: "失望", weight: 0.5},
			{keyword: "心凉", weight: 0.5}, {keyword: "没意思", weight: 0.4},
		},
		"焦虑": {
			{keyword: "怎么办", weight: 0.4}, {keyword: "万一", weight: 0.3},
			{keyword: "担心", weight: 0.5}, {keyword: "害怕", weight: 0.5},
			{keyword: "不安", weight: 0.4},
		},
		"委屈": {
			{keyword: "我也没", weight: 0.4}, {keyword: "你从来", weight: 0.4},
			{keyword: "每次都是我", weight: 0.5}, {keyword: "不公平", weight: 0.5},
		},
		"快乐": {
			// 权重偏低，需要多个信号叠加才触发，避免把客套话当积极情绪
			{keyword: "太好了", weight: 0.3}, {keyword: "开心", weight: 0.3},
			{keyword: "哈哈", weight: 0.3}, {keyword: "谢谢你", weight: 0.3},
		},
		"安心": {
			{keyword: "放心", weight: 0.4}, {keyword: "理解你", weight: 0.3},
			{keyword: "好多了", weight: 0.4}, {keyword: "没事了", weight: 0.4},
		},
	}
}

// Classify 对文本做关键词加权打分，返回超过阈值的情绪标签，按分值降序。
func (c *RuleClassifier) Classify(_ context.Context, transcript string) ([]string, error) {
	lower := strings.ToLower(transcript)

	scores := make(map[string]float64)
	for label, keywords := range c.patterns {
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw.keyword)) {
				scores[label] += kw.weight
			}
		}
	}

	// 感叹号密度加成：情绪化表达的廉价信号，封顶 +0.2
	exclaim := strings.Count(transcript, "!") + strings.Count(transcript, "！")
	if exclaim >= 2 {
		boost := float64(exclaim) * 0.1
		if boost > 0.2 {
			boost = 0.2
		}
		if top := maxScoreLabel(scores); top != "" {
			scores[top] += boost
		}
	}

	var labels []string
	for label, score := range scores {
		if score >= c.threshold {
			labels = append(labels, label)
		}
	}
	sort.Slice(labels, func(i, j int) bool {
		if scores[labels[i]] != scores[labels[j]] {
			return scores[labels[i]] > scores[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels, nil
}

func maxScoreLabel(scores map[string]float64) string {
	best := ""
	bestScore := 0.0
	for label, score := range scores {
		if score > bestScore || (score == bestScore && (best == "" || label < best)) {
			best = label
			bestScore = score
		}
	}
	return best
}
