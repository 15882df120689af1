package emotion

import (
	"math"
	"testing"
)

func TestSentimentScore(t *testing.T) {
	t.Run("空集合返回0", func(t *testing.T) {
		s := NewSet(nil)
		if got := s.SentimentScore(); got != 0.0 {
			t.Errorf("Expected 0.0, got %f", got)
		}
		t.Log("✓ 空集合情感得分为 0")
	})

	t.Run("全积极得1", func(t *testing.T) {
		s := NewSet([]string{"快乐", "满足", "安心"})
		if got := s.SentimentScore(); got != 1.0 {
			t.Errorf("Expected 1.0, got %f", got)
		}
		t.Log("✓ 全积极情绪得分 1.0")
	})

	t.Run("全消极得-1", func(t *testing.T) {
		s := NewSet([]string{"愤怒", "悲伤", "委屈"})
		if got := s.SentimentScore(); got != -1.0 {
			t.Errorf("Expected -1.0, got %f", got)
		}
		t.Log("✓ 全消极情绪得分 -1.0")
	})

	t.Run("混合取均值", func(t *testing.T) {
		s := NewSet([]string{"快乐", "悲伤", "平静", "未知词"})
		if got := s.SentimentScore(); got != 0.0 {
			t.Errorf("Expected 0.0, got %f", got)
		}
	})
}

func TestCategorize(t *testing.T) {
	c := NewSet([]string{"快乐", "愤怒", "平静", "莫名其妙"}).Categorize()
	if len(c.Positive) != 1 || len(c.Negative) != 1 || len(c.Neutral) != 1 || len(c.Unknown) != 1 {
		t.Errorf("Unexpected categorize result: %+v", c)
	}
	t.Logf("✓ 分类: 积极=%v 消极=%v 中性=%v 未知=%v", c.Positive, c.Negative, c.Neutral, c.Unknown)
}

func TestCompare(t *testing.T) {
	t.Run("自比较全为1", func(t *testing.T) {
		s := NewSet([]string{"愤怒", "委屈"})
		sim := s.Compare(s)
		if sim.Overlap != 1.0 || sim.SentimentSimilarity != 1.0 || sim.Overall != 1.0 {
			t.Errorf("Expected all 1.0, got %+v", sim)
		}
		t.Log("✓ 相同集合相似度 1.0")
	})

	t.Run("无重叠但极性相同", func(t *testing.T) {
		sim := NewSet([]string{"愤怒"}).Compare(NewSet([]string{"悲伤"}))
		if sim.Overlap != 0.0 {
			t.Errorf("Expected overlap 0.0, got %f", sim.Overlap)
		}
		if sim.SentimentSimilarity != 1.0 {
			t.Errorf("Expected sentiment similarity 1.0, got %f", sim.SentimentSimilarity)
		}
	})
}

func TestLabelMatch(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"愤怒", "愤怒", 1.0},
		{"愤怒", "生气", 0.5},
		{"愤怒", "快乐", 0.0},
		{"难过", "悲伤", 0.5},
		{"", "快乐", 0.0},
	}
	for _, c := range cases {
		if got := LabelMatch(c.a, c.b); got != c.want {
			t.Errorf("LabelMatch(%q, %q) = %f, want %f", c.a, c.b, got, c.want)
		}
	}
	t.Log("✓ 标签匹配：同词 1 分，相近 0.5 分")
}

func TestBestMatch(t *testing.T) {
	if got := BestMatch("生气", []string{"快乐", "愤怒"}); got != 0.5 {
		t.Errorf("Expected 0.5, got %f", got)
	}
	if got := BestMatch("生气", []string{"生气", "愤怒"}); got != 1.0 {
		t.Errorf("Expected 1.0, got %f", got)
	}
}

func TestScaleConversion(t *testing.T) {
	t.Run("原始到规范化", func(t *testing.T) {
		if got := FromRawScale(-7); got != -0.7 {
			t.Errorf("Expected -0.7, got %f", got)
		}
		if got := FromRawScale(15); got != 1.0 {
			t.Errorf("Expected clamp to 1.0, got %f", got)
		}
		t.Log("✓ 原始刻度除以 10 并截断")
	})

	t.Run("往返误差", func(t *testing.T) {
		for _, raw := range []float64{-10, -4, 0, 4, 10} {
			back := ToRawScale(FromRawScale(raw))
			if math.Abs(back-raw) > 1e-9 {
				t.Errorf("Round trip %f -> %f", raw, back)
			}
		}
	})

	t.Run("Clamp01", func(t *testing.T) {
		if Clamp01(-0.5) != 0.0 || Clamp01(1.5) != 1.0 || Clamp01(0.3) != 0.3 {
			t.Error("Clamp01 out of range")
		}
	})
}
