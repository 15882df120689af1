package benchmark

import (
	"testing"

	"github.com/zjzjy/LQBench/internal/emotion"
	"github.com/zjzjy/LQBench/internal/expert"
	"github.com/zjzjy/LQBench/internal/persona"
	"github.com/zjzjy/LQBench/internal/simulator"
)

func TestPredictionAccuracy(t *testing.T) {
	t.Run("完美预测得1", func(t *testing.T) {
		predictions := []simulator.Prediction{
			{Turn: 1, Mood: -0.6, Actual: -0.6, Scored: true},
			{Turn: 2, Mood: 0.2, Actual: 0.2, Scored: true},
		}
		if got := PredictionAccuracy(predictions); got != 1.0 {
			t.Errorf("Expected 1.0, got %f", got)
		}
		t.Log("✓ 完美预测准确率 1.0")
	})

	t.Run("最大偏差得0", func(t *testing.T) {
		predictions := []simulator.Prediction{{Turn: 1, Mood: 1.0, Actual: -1.0, Scored: true}}
		if got := PredictionAccuracy(predictions); got != 0.0 {
			t.Errorf("Expected 0.0, got %f", got)
		}
	})

	t.Run("中等偏差", func(t *testing.T) {
		predictions := []simulator.Prediction{{Turn: 1, Mood: -0.2, Actual: -0.6, Scored: true}}
		got := PredictionAccuracy(predictions)
		if got < 0.799 || got > 0.801 {
			t.Errorf("Expected 0.8, got %f", got)
		}
	})

	t.Run("未计分预测不参与", func(t *testing.T) {
		predictions := []simulator.Prediction{
			{Turn: 1, Mood: -0.6, Actual: -0.6, Scored: true},
			{Turn: 2, Mood: 1.0}, // 最后一轮，没有下一轮真实值
		}
		if got := PredictionAccuracy(predictions); got != 1.0 {
			t.Errorf("Expected unscored prediction skipped, got %f", got)
		}
	})

	t.Run("无预测得0", func(t *testing.T) {
		if got := PredictionAccuracy(nil); got != 0.0 {
			t.Errorf("Expected 0.0, got %f", got)
		}
	})
}

func TestLabelAccuracy(t *testing.T) {
	// 第 t 轮的预测标签对照第 t+1 轮人物的自报标签
	result := &simulator.Result{
		Conversation: []persona.Turn{
			{Role: persona.RolePartner, Content: "怎么了"},
			{Role: persona.RolePersona, Content: "没事", Emotions: emotion.NewSet([]string{"委屈"})},
			{Role: persona.RolePartner, Content: "别这样"},
			{Role: persona.RolePersona, Content: "算了", Emotions: emotion.NewSet([]string{"委屈"})},
			{Role: persona.RolePartner, Content: "你先冷静一下"},
			{Role: persona.RolePersona, Content: "不想说了", Emotions: emotion.NewSet([]string{"生气"})},
		},
		Predictions: []simulator.Prediction{
			{Turn: 1, Emotions: emotion.NewSet([]string{"委屈"})}, // 对照第 2 轮，完全命中
			{Turn: 2, Emotions: emotion.NewSet([]string{"愤怒"})}, // 对照第 3 轮，相近情绪半分
			{Turn: 3, Emotions: emotion.NewSet([]string{"平静"})}, // 没有第 4 轮，跳过
		},
	}
	got := LabelAccuracy(result)
	want := (1.0 + 0.5) / 2.0
	if got < want-0.001 || got > want+0.001 {
		t.Errorf("Expected %f, got %f", want, got)
	}
	t.Logf("✓ 标签命中率 %.3f（相近情绪计半分）", got)
}

func TestComputeCaseMetrics(t *testing.T) {
	result := &simulator.Result{
		MoodHistory:    []float64{-0.7, -0.6, -0.5, -0.4, -0.3},
		FinalMood:      -0.3,
		TurnsCompleted: 4,
		Reason:         simulator.ReasonMaxTurns,
		Predictions: []simulator.Prediction{
			{Turn: 1, Mood: -0.5, Actual: -0.5, Scored: true},
		},
		Panels: []expert.PanelResult{
			{Turn: 1, Consensus: 0.9, LabelAgreement: 1.0},
			{Turn: 2, Consensus: 0.7, LabelAgreement: 0.5},
			{Turn: 3, Unavailable: true}, // 不可用轮次不计入均值
		},
	}
	m := ComputeCaseMetrics(result)
	if m.PredictionAccuracy != 1.0 {
		t.Errorf("Expected accuracy 1.0, got %f", m.PredictionAccuracy)
	}
	if m.ExpertConsensus < 0.799 || m.ExpertConsensus > 0.801 {
		t.Errorf("Expected consensus 0.8, got %f", m.ExpertConsensus)
	}
	if m.ExpertLabelAgreement != 0.75 {
		t.Errorf("Expected label agreement 0.75, got %f", m.ExpertLabelAgreement)
	}
	if m.Turns != 4 || m.Reason != string(simulator.ReasonMaxTurns) {
		t.Errorf("Unexpected metrics: %+v", m)
	}
	if m.InitialMood != -0.7 {
		t.Errorf("Expected initial mood -0.7, got %f", m.InitialMood)
	}
	if m.MoodDelta < 0.399 || m.MoodDelta > 0.401 {
		t.Errorf("Expected mood delta 0.4, got %f", m.MoodDelta)
	}
	t.Logf("✓ 指标: %+v", m)
}

func TestSummarize(t *testing.T) {
	cases := []CaseResult{
		{
			Case:    TestCase{Profile: persona.Profile{PersonalityType: "openness_high", AttachmentStyle: "secure"}},
			Metrics: CaseMetrics{PredictionAccuracy: 0.8, MoodDelta: 0.2, Reason: "max_turns_reached"},
		},
		{
			Case:    TestCase{Profile: persona.Profile{PersonalityType: "openness_high", AttachmentStyle: "anxious"}},
			Metrics: CaseMetrics{PredictionAccuracy: 0.6, MoodDelta: 1.0, Reason: "mood_resolved"},
		},
		{
			Case:    TestCase{Profile: persona.Profile{PersonalityType: "neuroticism_high", AttachmentStyle: "anxious"}},
			Metrics: CaseMetrics{PredictionAccuracy: 0.4, MoodDelta: -0.3, Reason: "max_turns_reached"},
		},
	}
	failures := []CaseFailure{{CaseID: "case-004", Error: "gateway down"}}

	s := Summarize(cases, failures)
	if s.TotalCases != 4 || s.Succeeded != 3 || s.Failed != 1 {
		t.Errorf("Unexpected counts: %+v", s)
	}
	if s.MeanAccuracy < 0.599 || s.MeanAccuracy > 0.601 {
		t.Errorf("Expected mean accuracy 0.6, got %f", s.MeanAccuracy)
	}
	if s.ReasonCounts["max_turns_reached"] != 2 {
		t.Errorf("Expected 2 max_turns_reached, got %d", s.ReasonCounts["max_turns_reached"])
	}
	if got := s.AccuracyByTrait[DimPersonality]["openness_high"]; got < 0.699 || got > 0.701 {
		t.Errorf("Expected openness_high accuracy 0.7, got %f", got)
	}
	if got := s.AccuracyByTrait[DimAttachment]["anxious"]; got < 0.499 || got > 0.501 {
		t.Errorf("Expected anxious accuracy 0.5, got %f", got)
	}
	if s.MeanMoodDelta < 0.299 || s.MeanMoodDelta > 0.301 {
		t.Errorf("Expected mean mood delta 0.3, got %f", s.MeanMoodDelta)
	}
	t.Logf("✓ 汇总: %+v", s)
}
