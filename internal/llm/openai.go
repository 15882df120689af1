package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zjzjy/LQBench/internal/config"
)

// openAICompatClient 兼容 OpenAI ChatCompletions 协议的客户端。
// DeepSeek 和 OpenRouter 都走这一套协议，只是 base URL 和鉴权不同。
type openAICompatClient struct {
	name       string
	config     config.ProviderConfig
	httpClient *http.Client
}

func newOpenAICompatClient(name string, cfg config.ProviderConfig, timeout time.Duration) *openAICompatClient {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &openAICompatClient{
		name:   name,
		config: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Complete 完成文本生成（OpenAI 兼容协议）
func (c *openAICompatClient) Complete(ctx context.Context, messages []Message, role RoleConfig) (string, error) {
	model := role.Model
	if model == "" {
		model = c.config.Model
	}
	reqBody := map[string]any{
		"model":       model,
		"messages":    messages,
		"temperature": role.Temperature,
	}
	if role.MaxTokens > 0 {
		reqBody["max_tokens"] = role.MaxTokens
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", &GatewayError{Kind: KindProvider, Provider: c.name, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.APIURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &GatewayError{Kind: KindProvider, Provider: c.name, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &GatewayError{Kind: classifyTransportError(err), Provider: c.name, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &GatewayError{Kind: KindProvider, Provider: c.name, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		kind := KindProvider
		if resp.StatusCode == http.StatusTooManyRequests {
			kind = KindRateLimit
		}
		return "", &GatewayError{
			Kind:     kind,
			Provider: c.name,
			Err:      fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody)),
		}
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &GatewayError{Kind: KindProvider, Provider: c.name, Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	if len(result.Choices) == 0 {
		return "", &GatewayError{Kind: KindProvider, Provider: c.name, Err: fmt.Errorf("no choices in response")}
	}

	content := result.Choices[0].Message.Content
	if content == "" {
		return "", &GatewayError{Kind: KindProvider, Provider: c.name, Err: fmt.Errorf("empty content in response")}
	}
	return content, nil
}

// classifyTransportError 把传输层错误归一化：超时/取消归为 timeout。
func classifyTransportError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindProvider
}
