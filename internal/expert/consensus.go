package expert

import "math"

// MoodConsensus 专家情绪值的共识度：1 - 标准差/刻度半宽，截断到 [0,1]。
// 全员给出相同情绪值时为 1，分歧越大越接近 0。单个专家视为完全共识。
func MoodConsensus(assessments []Assessment) float64 {
	n := len(assessments)
	if n == 0 {
		return 0.0
	}
	if n == 1 {
		return 1.0
	}
	mean := 0.0
	for _, a := range assessments {
		mean += a.Mood
	}
	mean /= float64(n)

	variance := 0.0
	for _, a := range assessments {
		d := a.Mood - mean
		variance += d * d
	}
	variance /= float64(n)

	consensus := 1.0 - math.Sqrt(variance)/2.0
	if consensus < 0.0 {
		return 0.0
	}
	if consensus > 1.0 {
		return 1.0
	}
	return consensus
}

// LabelAgreement 多数情绪标签的支持比例：统计每个标签被多少位专家
// 提及，取最高计数除以专家数。没有任何标签时为 0。
func LabelAgreement(assessments []Assessment) float64 {
	n := len(assessments)
	if n == 0 {
		return 0.0
	}
	counts := make(map[string]int)
	for _, a := range assessments {
		seen := make(map[string]bool)
		for _, label := range a.Emotions.Labels {
			if !seen[label] {
				seen[label] = true
				counts[label]++
			}
		}
	}
	best := 0
	for _, c := range counts {
		if c > best {
			best = c
		}
	}
	if best == 0 {
		return 0.0
	}
	return float64(best) / float64(n)
}
