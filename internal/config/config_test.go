package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lqbench.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalYAML = `
llm:
  chain: [deepseek]
  deepseek:
    api_url: https://api.deepseek.com/v1
    model: deepseek-chat
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Benchmark.MaxTurns != 10 {
		t.Errorf("Expected default max_turns 10, got %d", cfg.Benchmark.MaxTurns)
	}
	if cfg.Benchmark.NumExperts != 3 {
		t.Errorf("Expected default num_experts 3, got %d", cfg.Benchmark.NumExperts)
	}
	if cfg.Mood.ImprovementThreshold != 4 || cfg.Mood.CriticalThreshold != -8 {
		t.Errorf("Unexpected mood defaults: %+v", cfg.Mood)
	}
	if cfg.LLM.Timeout != 60*time.Second {
		t.Errorf("Expected default timeout 60s, got %s", cfg.LLM.Timeout)
	}
	if cfg.Roles.Expert.Temperature != 0.2 {
		t.Errorf("Expected expert temperature 0.2, got %f", cfg.Roles.Expert.Temperature)
	}
	if cfg.Store.Kind != "memory" {
		t.Errorf("Expected default store memory, got %s", cfg.Store.Kind)
	}
	t.Logf("✓ 默认值: max_turns=%d experts=%d", cfg.Benchmark.MaxTurns, cfg.Benchmark.NumExperts)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "sk-from-env")
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.DeepSeek.APIKey != "sk-from-env" {
		t.Errorf("Expected env key, got %q", cfg.LLM.DeepSeek.APIKey)
	}
	t.Log("✓ API Key 从环境变量覆盖")
}

func TestLoadValidation(t *testing.T) {
	t.Run("未知provider", func(t *testing.T) {
		yaml := `
llm:
  chain: [nope]
`
		if _, err := Load(writeConfig(t, yaml)); err == nil {
			t.Error("Expected error")
		}
	})

	t.Run("阈值颠倒", func(t *testing.T) {
		yaml := minimalYAML + `
mood:
  improvement_threshold: -9
  critical_threshold: -8
`
		if _, err := Load(writeConfig(t, yaml)); err == nil {
			t.Error("Expected error")
		}
	})

	t.Run("好转阈值必须为正", func(t *testing.T) {
		// 非正阈值会让趋势检查永远满足或永远失效，配置层直接拒绝
		yaml := minimalYAML + `
mood:
  improvement_threshold: -2
  critical_threshold: -8
`
		if _, err := Load(writeConfig(t, yaml)); err == nil {
			t.Error("Expected error")
		}
	})

	t.Run("sqlite缺路径", func(t *testing.T) {
		yaml := minimalYAML + `
store:
  kind: sqlite
`
		if _, err := Load(writeConfig(t, yaml)); err == nil {
			t.Error("Expected error")
		}
	})

	t.Run("文件不存在", func(t *testing.T) {
		if _, err := Load("/nonexistent/lqbench.yaml"); err == nil {
			t.Error("Expected error")
		}
	})
}
