package emotion

import "strings"

// 情绪词表与情绪集合运算。
//
// 虚拟人物的自我报告、待测模型的预测和专家面板的判读都会产出
// 自由文本的情绪标签，这里提供统一的分类、打分与比较能力。

// 情绪极性分类结果。
type Categories struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
	Neutral  []string `json:"neutral"`
	Unknown  []string `json:"unknown"`
}

var positiveEmotions = map[string]bool{
	"快乐": true, "开心": true, "高兴": true, "兴奋": true,
	"满足": true, "愉悦": true, "喜悦": true, "幸福": true,
	"欣慰": true, "感激": true, "放松": true, "自豪": true,
	"安心": true, "舒适": true, "满意": true, "期待": true,
	"信任": true, "希望": true,
}

var negativeEmotions = map[string]bool{
	"悲伤": true, "难过": true, "沮丧": true, "痛苦": true,
	"失望": true, "后悔": true, "自责": true, "内疚": true,
	"焦虑": true, "紧张": true, "恐惧": true, "害怕": true,
	"担忧": true, "愤怒": true, "生气": true, "烦躁": true,
	"厌倦": true, "厌恶": true, "嫉妒": true, "无奈": true,
	"绝望": true, "孤独": true, "委屈": true, "尴尬": true,
}

var neutralEmotions = map[string]bool{
	"平静": true, "冷静": true, "专注": true, "思考": true,
	"好奇": true, "惊讶": true, "困惑": true, "迷茫": true,
}

// Set 表示一组情绪标签。
type Set struct {
	Labels []string
}

// NewSet 从标签列表创建情绪集合。
func NewSet(labels []string) Set {
	return Set{Labels: labels}
}

// Categorize 按积极/消极/中性/未知对标签分类。
func (s Set) Categorize() Categories {
	var c Categories
	for _, label := range s.Labels {
		trimmed := strings.TrimSpace(label)
		switch {
		case positiveEmotions[trimmed]:
			c.Positive = append(c.Positive, trimmed)
		case negativeEmotions[trimmed]:
			c.Negative = append(c.Negative, trimmed)
		case neutralEmotions[trimmed]:
			c.Neutral = append(c.Neutral, trimmed)
		default:
			c.Unknown = append(c.Unknown, trimmed)
		}
	}
	return c
}

// SentimentScore 计算整体情感得分，范围 [-1, 1]。
// 积极计 +1，消极计 -1，中性和未知计 0，取均值；空集合返回 0。
func (s Set) SentimentScore() float64 {
	if len(s.Labels) == 0 {
		return 0.0
	}
	c := s.Categorize()
	total := len(c.Positive) + len(c.Negative) + len(c.Neutral) + len(c.Unknown)
	if total == 0 {
		return 0.0
	}
	return float64(len(c.Positive)-len(c.Negative)) / float64(total)
}

// Similarity 两个情绪集合的相似度。
type Similarity struct {
	Overlap             float64 `json:"overlap"`              // Jaccard 重叠度
	SentimentSimilarity float64 `json:"sentiment_similarity"` // 情感倾向相似度
	Overall             float64 `json:"overall"`
}

// Compare 比较两个情绪集合：标签重叠度（Jaccard）+ 情感倾向距离。
func (s Set) Compare(other Set) Similarity {
	set1 := make(map[string]bool, len(s.Labels))
	for _, l := range s.Labels {
		set1[strings.ToLower(strings.TrimSpace(l))] = true
	}
	set2 := make(map[string]bool, len(other.Labels))
	for _, l := range other.Labels {
		set2[strings.ToLower(strings.TrimSpace(l))] = true
	}

	intersection := 0
	for l := range set1 {
		if set2[l] {
			intersection++
		}
	}
	union := len(set1) + len(set2) - intersection

	overlap := 0.0
	if union > 0 {
		overlap = float64(intersection) / float64(union)
	}

	sentimentSim := 1.0 - abs(s.SentimentScore()-other.SentimentScore())

	return Similarity{
		Overlap:             overlap,
		SentimentSimilarity: sentimentSim,
		Overall:             (overlap + sentimentSim) / 2.0,
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// 相近情绪分组。预测的标签与真实标签不同但落在同一组时给半分，
// 避免把"难过/悲伤"这类近义差异当成完全错判。
var similarGroups = [][]string{
	{"快乐", "开心", "高兴", "愉悦", "喜悦", "幸福"},
	{"满足", "满意", "欣慰", "舒适"},
	{"放松", "安心", "平静", "冷静"},
	{"期待", "希望", "信任"},
	{"悲伤", "难过", "沮丧", "痛苦", "失望"},
	{"后悔", "自责", "内疚"},
	{"焦虑", "紧张", "担忧", "不安"},
	{"恐惧", "害怕"},
	{"愤怒", "生气", "烦躁"},
	{"无奈", "绝望", "厌倦"},
	{"孤独", "委屈"},
	{"困惑", "迷茫"},
}

// LabelMatch 两个情绪标签的匹配度：相同为 1.0，同组为 0.5，否则 0。
func LabelMatch(a, b string) float64 {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}
	for _, group := range similarGroups {
		inA, inB := false, false
		for _, label := range group {
			if label == a {
				inA = true
			}
			if label == b {
				inB = true
			}
		}
		if inA && inB {
			return 0.5
		}
	}
	return 0.0
}

// BestMatch 在 candidates 中为 label 找最高匹配度。
func BestMatch(label string, candidates []string) float64 {
	best := 0.0
	for _, c := range candidates {
		if m := LabelMatch(label, c); m > best {
			best = m
		}
	}
	return best
}
