package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 全局配置
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	LLM        LLMConfig        `yaml:"llm"`
	Roles      RolesConfig      `yaml:"roles"`
	Benchmark  BenchmarkConfig  `yaml:"benchmark"`
	Mood       MoodConfig       `yaml:"mood"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Store      StoreConfig      `yaml:"store"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LLMConfig 文本生成后端配置。
// Chain 按优先级列出 provider 名称，前者失败后逐个降级。
type LLMConfig struct {
	Chain      []string          `yaml:"chain"`
	DeepSeek   ProviderConfig    `yaml:"deepseek"`
	OpenRouter ProviderConfig    `yaml:"openrouter"`
	Anthropic  ProviderConfig    `yaml:"anthropic"`
	Timeout    time.Duration     `yaml:"timeout"`
	Extra      map[string]string `yaml:"extra,omitempty"`
}

// ProviderConfig 单个 provider 的接入配置
type ProviderConfig struct {
	APIKey string `yaml:"api_key"`
	APIURL string `yaml:"api_url"`
	Model  string `yaml:"model"`
}

// RoleConfig 某个对话角色调用模型时的采样参数
type RoleConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// RolesConfig 三类角色各自的模型参数：
// 虚拟人物（character）、待测模型（partner）、专家评审（expert）。
type RolesConfig struct {
	Character RoleConfig `yaml:"character"`
	Partner   RoleConfig `yaml:"partner"`
	Expert    RoleConfig `yaml:"expert"`
}

// BenchmarkConfig 批量评测参数
type BenchmarkConfig struct {
	MaxTurns             int  `yaml:"max_turns"`
	UseEmotionPrediction bool `yaml:"use_emotion_prediction"`
	UseExpertAnalysis    bool `yaml:"use_expert_analysis"`
	NumExperts           int  `yaml:"num_experts"`
	Parallel             bool `yaml:"parallel"`
	MaxWorkers           int  `yaml:"max_workers"`
	NumPersonas          int  `yaml:"num_personas"`
	// MaxConsecutiveParseErrors 连续解析失败多少轮后强制终止单次模拟，
	// 防止一个一直不按格式输出的模型把对话拖满 max_turns。
	MaxConsecutiveParseErrors int      `yaml:"max_consecutive_parse_errors"`
	ScenarioIDs               []string `yaml:"scenario_ids"`
}

// MoodConfig 对话终止相关的情绪阈值。
//
// 阈值沿用提示词里的 -10..+10 原始刻度书写（improvement=+4、critical=-8
// 这类整数对使用者直观），引擎装配时统一除以 10 换算到内部 [-1,1] 刻度，
// 换算只发生在这一处。
type MoodConfig struct {
	ImprovementThreshold float64 `yaml:"improvement_threshold"`
	CriticalThreshold    float64 `yaml:"critical_threshold"`
}

// ClassifierConfig 情绪分类器选择："rule" 或 "llm"
type ClassifierConfig struct {
	Kind string `yaml:"kind"`
}

// StoreConfig 结果存储配置："memory" 或 "sqlite"
type StoreConfig struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
}

// Load 从文件加载配置，环境变量覆盖敏感信息。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// API Key 不落盘，优先从环境变量读取
	if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" {
		cfg.LLM.DeepSeek.APIKey = key
	}
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		cfg.LLM.OpenRouter.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.LLM.Anthropic.APIKey = key
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.LLM.Chain) == 0 {
		c.LLM.Chain = []string{"deepseek", "openrouter"}
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 60 * time.Second
	}
	if c.Benchmark.MaxTurns == 0 {
		c.Benchmark.MaxTurns = 10
	}
	if c.Benchmark.NumExperts == 0 {
		c.Benchmark.NumExperts = 3
	}
	if c.Benchmark.MaxWorkers == 0 {
		c.Benchmark.MaxWorkers = 4
	}
	if c.Benchmark.NumPersonas == 0 {
		c.Benchmark.NumPersonas = 3
	}
	if c.Benchmark.MaxConsecutiveParseErrors == 0 {
		c.Benchmark.MaxConsecutiveParseErrors = 3
	}
	if c.Mood.ImprovementThreshold == 0 {
		c.Mood.ImprovementThreshold = 4
	}
	if c.Mood.CriticalThreshold == 0 {
		c.Mood.CriticalThreshold = -8
	}
	if c.Classifier.Kind == "" {
		c.Classifier.Kind = "rule"
	}
	if c.Store.Kind == "" {
		c.Store.Kind = "memory"
	}
	if c.Roles.Character.Temperature == 0 {
		c.Roles.Character.Temperature = 0.8
	}
	if c.Roles.Partner.Temperature == 0 {
		c.Roles.Partner.Temperature = 0.8
	}
	if c.Roles.Expert.Temperature == 0 {
		c.Roles.Expert.Temperature = 0.2
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	known := map[string]bool{"deepseek": true, "openrouter": true, "anthropic": true}
	for _, name := range c.LLM.Chain {
		if !known[name] {
			return fmt.Errorf("unknown provider in chain: %s", name)
		}
	}
	if c.Benchmark.MaxTurns < 1 {
		return fmt.Errorf("benchmark.max_turns must be >= 1")
	}
	if c.Benchmark.NumExperts < 1 {
		return fmt.Errorf("benchmark.num_experts must be >= 1")
	}
	if c.Mood.ImprovementThreshold <= 0 {
		return fmt.Errorf("mood.improvement_threshold must be positive")
	}
	if c.Mood.ImprovementThreshold <= c.Mood.CriticalThreshold {
		return fmt.Errorf("mood.improvement_threshold must be greater than mood.critical_threshold")
	}
	switch c.Classifier.Kind {
	case "rule", "llm":
	default:
		return fmt.Errorf("unsupported classifier kind: %s", c.Classifier.Kind)
	}
	switch c.Store.Kind {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for sqlite store")
		}
	default:
		return fmt.Errorf("unsupported store kind: %s", c.Store.Kind)
	}
	return nil
}
