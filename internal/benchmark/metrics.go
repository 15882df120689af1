package benchmark

import (
	"sort"

	"github.com/zjzjy/LQBench/internal/emotion"
	"github.com/zjzjy/LQBench/internal/persona"
	"github.com/zjzjy/LQBench/internal/simulator"
)

// CaseMetrics 单个用例的评测指标，全部落在 [0,1]。
type CaseMetrics struct {
	// PredictionAccuracy 待测模型对人物情绪值的感知准确率：
	// 每轮 1 - |预测-真实|/刻度全宽，取各轮均值。
	PredictionAccuracy float64 `json:"prediction_accuracy"`
	// LabelAccuracy 情绪标签命中率，相近情绪给半分。
	LabelAccuracy float64 `json:"label_accuracy"`
	// ExpertConsensus 专家情绪值共识度均值。
	ExpertConsensus float64 `json:"expert_consensus"`
	// ExpertLabelAgreement 专家多数标签占比均值。
	ExpertLabelAgreement float64 `json:"expert_label_agreement"`
	InitialMood          float64 `json:"initial_mood"`
	FinalMood            float64 `json:"final_mood"`
	// MoodDelta 最终情绪值减初始情绪值，正值表示对话让人物好转。
	MoodDelta float64 `json:"mood_delta"`
	Turns     int     `json:"turns"`
	Reason    string  `json:"reason"`
}

// ComputeCaseMetrics 从模拟结果推导指标。预测或专家数据缺失的部分
// 记 0，不影响其余指标。
func ComputeCaseMetrics(result *simulator.Result) CaseMetrics {
	m := CaseMetrics{
		FinalMood: result.FinalMood,
		Turns:     result.TurnsCompleted,
		Reason:    string(result.Reason),
	}
	if len(result.MoodHistory) > 0 {
		m.InitialMood = result.MoodHistory[0]
		m.MoodDelta = m.FinalMood - m.InitialMood
	}
	m.PredictionAccuracy = PredictionAccuracy(result.Predictions)
	m.LabelAccuracy = LabelAccuracy(result)
	m.ExpertConsensus, m.ExpertLabelAgreement = expertMeans(result)
	return m
}

// PredictionAccuracy 情绪值感知准确率。规范化刻度全宽为 2，
// 每条已计分预测的准确率 = 1 - |预测-真实|/2，截断到 [0,1] 后取均值。
// 最后一轮的预测没有下一轮真实值，不参与计算。
func PredictionAccuracy(predictions []simulator.Prediction) float64 {
	sum, count := 0.0, 0
	for _, p := range predictions {
		if !p.Scored {
			continue
		}
		sum += emotion.Clamp01(1.0 - abs(p.Mood-p.Actual)/emotion.CanonicalRange)
		count++
	}
	if count == 0 {
		return 0.0
	}
	return sum / float64(count)
}

// LabelAccuracy 预测标签对人物自报标签的命中率。第 t 轮的预测标签
// 对照第 t+1 轮人物的自报标签，每个预测标签在真实标签里找最佳匹配
// （同词 1 分，相近情绪 0.5 分），先对单轮的预测标签取均值，再对
// 各轮取均值。任一方没有标签的轮次跳过。
func LabelAccuracy(result *simulator.Result) float64 {
	actualByTurn := make(map[int][]string)
	turnIndex := 0
	for _, t := range result.Conversation {
		if t.Role != persona.RolePersona {
			continue
		}
		turnIndex++
		actualByTurn[turnIndex] = t.Emotions.Labels
	}

	sum, count := 0.0, 0
	for _, p := range result.Predictions {
		predicted := p.Emotions.Labels
		actual := actualByTurn[p.Turn+1]
		if len(predicted) == 0 || len(actual) == 0 {
			continue
		}
		turnSum := 0.0
		for _, label := range predicted {
			turnSum += emotion.BestMatch(label, actual)
		}
		sum += turnSum / float64(len(predicted))
		count++
	}
	if count == 0 {
		return 0.0
	}
	return sum / float64(count)
}

// expertMeans 对可用的专家评估取均值，不可用的轮次有记录但不计分。
func expertMeans(result *simulator.Result) (consensus, labelAgreement float64) {
	n := 0
	for _, panel := range result.Panels {
		if panel.Unavailable {
			continue
		}
		consensus += panel.Consensus
		labelAgreement += panel.LabelAgreement
		n++
	}
	if n == 0 {
		return 0.0, 0.0
	}
	return consensus / float64(n), labelAgreement / float64(n)
}

// Summary 批次级汇总。AccuracyByTrait 按画像的四个特质维度分组，
// 外层键为维度名，内层键为特质 ID。
type Summary struct {
	TotalCases          int                           `json:"total_cases"`
	Succeeded           int                           `json:"succeeded"`
	Failed              int                           `json:"failed"`
	MeanAccuracy        float64                       `json:"mean_accuracy"`
	MeanLabelAccuracy   float64                       `json:"mean_label_accuracy"`
	MeanExpertConsensus float64                       `json:"mean_expert_consensus"`
	MeanFinalMood       float64                       `json:"mean_final_mood"`
	MeanMoodDelta       float64                       `json:"mean_mood_delta"`
	ReasonCounts        map[string]int                `json:"reason_counts"`
	AccuracyByTrait     map[string]map[string]float64 `json:"accuracy_by_trait,omitempty"`
}

// 分组维度名，与 Summary.AccuracyByTrait 的外层键一致
const (
	DimPersonality   = "personality"
	DimBelief        = "relationship_belief"
	DimCommunication = "communication"
	DimAttachment    = "attachment"
)

// Summarize 汇总全批次指标，并按人物特质维度分组统计准确率，
// 用于观察待测模型对哪类人物的情绪感知更差。
func Summarize(cases []CaseResult, failures []CaseFailure) Summary {
	s := Summary{
		TotalCases:   len(cases) + len(failures),
		Succeeded:    len(cases),
		Failed:       len(failures),
		ReasonCounts: make(map[string]int),
	}
	if len(cases) == 0 {
		return s
	}

	byTrait := map[string]map[string][]float64{
		DimPersonality:   {},
		DimBelief:        {},
		DimCommunication: {},
		DimAttachment:    {},
	}
	for _, c := range cases {
		s.MeanAccuracy += c.Metrics.PredictionAccuracy
		s.MeanLabelAccuracy += c.Metrics.LabelAccuracy
		s.MeanExpertConsensus += c.Metrics.ExpertConsensus
		s.MeanFinalMood += c.Metrics.FinalMood
		s.MeanMoodDelta += c.Metrics.MoodDelta
		s.ReasonCounts[c.Metrics.Reason]++

		acc := c.Metrics.PredictionAccuracy
		p := c.Case.Profile
		byTrait[DimPersonality][p.PersonalityType] = append(byTrait[DimPersonality][p.PersonalityType], acc)
		byTrait[DimBelief][p.RelationshipBelief] = append(byTrait[DimBelief][p.RelationshipBelief], acc)
		byTrait[DimCommunication][p.CommunicationType] = append(byTrait[DimCommunication][p.CommunicationType], acc)
		byTrait[DimAttachment][p.AttachmentStyle] = append(byTrait[DimAttachment][p.AttachmentStyle], acc)
	}
	n := float64(len(cases))
	s.MeanAccuracy /= n
	s.MeanLabelAccuracy /= n
	s.MeanExpertConsensus /= n
	s.MeanFinalMood /= n
	s.MeanMoodDelta /= n

	s.AccuracyByTrait = make(map[string]map[string]float64, len(byTrait))
	for dim, groups := range byTrait {
		s.AccuracyByTrait[dim] = make(map[string]float64, len(groups))
		for id, values := range groups {
			total := 0.0
			for _, v := range values {
				total += v
			}
			s.AccuracyByTrait[dim][id] = total / float64(len(values))
		}
	}
	return s
}

// sortedCases 按用例 ID 排序的副本，报表输出顺序稳定。
func sortedCases(cases []CaseResult) []CaseResult {
	out := make([]CaseResult, len(cases))
	copy(out, cases)
	sort.Slice(out, func(i, j int) bool { return out[i].Case.ID < out[j].Case.ID })
	return out
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
