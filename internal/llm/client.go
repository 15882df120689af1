package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/zjzjy/LQBench/internal/config"
)

// Client LLM 客户端接口。
//
// 虚拟人物、待测模型、专家面板全部通过这一个入口调用文本生成，
// 具体 provider 的选择和降级由实现负责，调用方只看到 *GatewayError
// 一种失败形态。
type Client interface {
	// Complete 完成一次文本生成任务
	Complete(ctx context.Context, messages []Message, role RoleConfig) (string, error)
}

// Message 消息结构
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// RoleConfig 一次调用的采样参数，按对话角色（人物/伴侣/专家）区分。
type RoleConfig struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// ErrorKind 网关失败的归一化类别
type ErrorKind string

const (
	KindProvider  ErrorKind = "provider"
	KindTimeout   ErrorKind = "timeout"
	KindRateLimit ErrorKind = "rate_limit"
)

// GatewayError 所有 provider 的失败统一归一化为这一种错误。
// 调用方用 errors.As 拿到 Kind，不感知具体后端。
type GatewayError struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("llm gateway (%s/%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// IsGatewayError 判断 err 是否是网关失败，并返回归一化错误。
func IsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// NewClient 按配置构建带降级链的客户端。
func NewClient(cfg *config.Config) (Client, error) {
	var clients []Client
	for _, name := range cfg.LLM.Chain {
		switch name {
		case "deepseek":
			clients = append(clients, newOpenAICompatClient("deepseek", cfg.LLM.DeepSeek, cfg.LLM.Timeout))
		case "openrouter":
			clients = append(clients, newOpenAICompatClient("openrouter", cfg.LLM.OpenRouter, cfg.LLM.Timeout))
		case "anthropic":
			clients = append(clients, newAnthropicClient(cfg.LLM.Anthropic, cfg.LLM.Timeout))
		default:
			return nil, fmt.Errorf("unsupported LLM provider: %s", name)
		}
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("empty provider chain")
	}
	return NewChain(clients...), nil
}
