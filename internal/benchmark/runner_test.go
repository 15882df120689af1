package benchmark

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/zjzjy/LQBench/internal/config"
	"github.com/zjzjy/LQBench/internal/llm"
	"github.com/zjzjy/LQBench/internal/persona"
)

func TestGenerateTestCases(t *testing.T) {
	t.Run("确定性生成", func(t *testing.T) {
		// financial_issues 下只有一个情境，画像数即用例数
		cfg := config.BenchmarkConfig{NumPersonas: 5, ScenarioIDs: []string{"financial_issues"}}
		first, err := GenerateTestCases(cfg)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(first) != 5 {
			t.Fatalf("Expected 5 cases, got %d", len(first))
		}
		again, _ := GenerateTestCases(cfg)
		for i := range first {
			if first[i].ID != again[i].ID || first[i].Profile.PersonalityType != again[i].Profile.PersonalityType {
				t.Fatalf("Non-deterministic case %d: %+v vs %+v", i, first[i], again[i])
			}
		}
		for _, tc := range first {
			if err := tc.Profile.Validate(); err != nil {
				t.Errorf("Invalid generated profile %s: %v", tc.ID, err)
			}
		}
		t.Logf("✓ 生成 %d 个确定性用例", len(first))
	})

	t.Run("画像与情境笛卡尔积", func(t *testing.T) {
		cases, err := GenerateTestCases(config.BenchmarkConfig{NumPersonas: 3})
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		total := 0
		for _, s := range persona.ConflictScenarios {
			total += len(s.Situations)
		}
		if len(cases) != 3*total {
			t.Fatalf("Expected %d cases (3 personas x %d situations), got %d", 3*total, total, len(cases))
		}
		seen := make(map[string]bool)
		for _, tc := range cases {
			key := tc.Profile.ID + "/" + tc.Situation.SituationID
			if seen[key] {
				t.Errorf("Duplicate pairing %s", key)
			}
			seen[key] = true
		}
		t.Logf("✓ 笛卡尔积生成 %d 个不重复用例", len(cases))
	})

	t.Run("画像多样性", func(t *testing.T) {
		cases, _ := GenerateTestCases(config.BenchmarkConfig{NumPersonas: 8, ScenarioIDs: []string{"financial_issues"}})
		personalities := make(map[string]bool)
		for _, tc := range cases {
			personalities[tc.Profile.PersonalityType] = true
		}
		if len(personalities) < 4 {
			t.Errorf("Expected varied personalities, got %d distinct", len(personalities))
		}
		t.Logf("✓ %d 个用例覆盖 %d 种性格", len(cases), len(personalities))
	})

	t.Run("指定场景过滤", func(t *testing.T) {
		cfg := config.BenchmarkConfig{
			NumPersonas: 4,
			ScenarioIDs: []string{"time_allocation"},
		}
		cases, err := GenerateTestCases(cfg)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(cases) != 8 {
			t.Fatalf("Expected 8 cases (4 personas x 2 situations), got %d", len(cases))
		}
		for _, tc := range cases {
			if tc.Situation.ScenarioID != "time_allocation" {
				t.Errorf("Case %s outside requested scenario: %s", tc.ID, tc.Situation.ScenarioID)
			}
		}
	})

	t.Run("重复场景去重", func(t *testing.T) {
		cfg := config.BenchmarkConfig{
			NumPersonas: 2,
			ScenarioIDs: []string{"financial_issues", "financial_issues"},
		}
		cases, err := GenerateTestCases(cfg)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(cases) != 2 {
			t.Fatalf("Expected 2 cases after dedupe, got %d", len(cases))
		}
		ids := make(map[string]bool)
		for _, tc := range cases {
			if ids[tc.ID] {
				t.Errorf("Duplicate case id %s", tc.ID)
			}
			ids[tc.ID] = true
		}
		t.Logf("✓ 重复 scenario id 不产生重复用例")
	})

	t.Run("未知场景报配置错误", func(t *testing.T) {
		_, err := GenerateTestCases(config.BenchmarkConfig{
			NumPersonas: 2,
			ScenarioIDs: []string{"nonexistent"},
		})
		var cfgErr *persona.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("Expected ConfigurationError, got %v", err)
		}
		t.Logf("✓ 配置错误: %v", err)
	})
}

const runnerCognitiveJSON = `{
  "primary_appraisal": {"relevance": "重要", "nature": "伤害", "attribution": "对方"},
  "secondary_appraisal": {"coping_ability": "有限", "coping_strategy": "回避"}
}`

// routingMock 按提示词内容路由响应，一个实例同时扮演人物、伴侣与
// 认知建模角色。failOn 非空时，任何包含该子串的请求都返回网关错误，
// 用来打掉特定用例。
type routingMock struct {
	mu     sync.Mutex
	failOn string
	calls  int
}

func (m *routingMock) Complete(_ context.Context, messages []llm.Message, _ llm.RoleConfig) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	var all strings.Builder
	for _, msg := range messages {
		all.WriteString(msg.Content)
	}
	content := all.String()

	if m.failOn != "" && strings.Contains(content, m.failOn) {
		return "", errors.New("gateway down")
	}

	system := messages[0].Content
	switch {
	case strings.Contains(system, "心理学专家"):
		return runnerCognitiveJSON, nil
	case strings.Contains(system, "扮演一个处于亲密关系冲突"):
		return "我没事。\n情绪值：{-6}\n情绪：{委屈}", nil
	default:
		// 伴侣：开场/回复/预测共用一个分支
		last := messages[len(messages)-1].Content
		if strings.Contains(last, "暂停角色扮演") {
			return `{"mood": -6, "emotions": ["委屈"]}`, nil
		}
		return "跟我说说嘛", nil
	}
}

func runnerConfig() *config.Config {
	return &config.Config{
		Roles: config.RolesConfig{
			Character: config.RoleConfig{Temperature: 0.8},
			Partner:   config.RoleConfig{Temperature: 0.8},
			Expert:    config.RoleConfig{Temperature: 0.2},
		},
		Benchmark: config.BenchmarkConfig{
			MaxTurns:                  2,
			NumPersonas:               5,
			ScenarioIDs:               []string{"financial_issues"},
			Parallel:                  true,
			MaxWorkers:                4,
			MaxConsecutiveParseErrors: 3,
			UseEmotionPrediction:      true,
		},
		Mood: config.MoodConfig{ImprovementThreshold: 4, CriticalThreshold: -8},
	}
}

func TestRunnerIsolatesFailures(t *testing.T) {
	cfg := runnerConfig()
	cases, err := GenerateTestCases(cfg.Benchmark)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// 第三个用例的人物叫苏婷，所有涉及她的调用都会失败
	mock := &routingMock{failOn: "苏婷"}
	runner := NewRunner(mock, cfg, nil)

	batch, err := runner.Run(context.Background(), "", cases)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(batch.Cases) != 4 {
		t.Errorf("Expected 4 succeeded cases, got %d", len(batch.Cases))
	}
	if len(batch.Failures) != 1 {
		t.Fatalf("Expected 1 failure, got %d", len(batch.Failures))
	}
	if batch.Summary.TotalCases != 5 || batch.Summary.Succeeded != 4 || batch.Summary.Failed != 1 {
		t.Errorf("Unexpected summary: %+v", batch.Summary)
	}
	for _, c := range batch.Cases {
		if c.Result.TurnsCompleted != 2 {
			t.Errorf("Case %s expected 2 turns, got %d", c.Case.ID, c.Result.TurnsCompleted)
		}
		if c.Metrics.PredictionAccuracy != 1.0 {
			t.Errorf("Case %s expected perfect accuracy, got %f", c.Case.ID, c.Metrics.PredictionAccuracy)
		}
	}
	t.Logf("✓ 单用例失败不跨界: %d 成功, 失败=%v", len(batch.Cases), batch.Failures)
}

func TestRunnerAllSucceed(t *testing.T) {
	cfg := runnerConfig()
	cfg.Benchmark.NumPersonas = 3
	cases, _ := GenerateTestCases(cfg.Benchmark)

	batch, err := NewRunner(&routingMock{}, cfg, nil).Run(context.Background(), "batch-fixed-id", cases)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if batch.ID != "batch-fixed-id" {
		t.Errorf("Expected caller-supplied id, got %s", batch.ID)
	}
	if len(batch.Cases) != 3 || len(batch.Failures) != 0 {
		t.Errorf("Expected 3/0, got %d/%d", len(batch.Cases), len(batch.Failures))
	}
	if batch.Summary.MeanAccuracy != 1.0 {
		t.Errorf("Expected mean accuracy 1.0, got %f", batch.Summary.MeanAccuracy)
	}
	t.Logf("✓ 批次 %s 全部成功, 平均准确率 %.2f", batch.ID, batch.Summary.MeanAccuracy)
}
