package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zjzjy/LQBench/internal/config"
)

// anthropicClient Anthropic Messages 协议客户端
type anthropicClient struct {
	config     config.ProviderConfig
	httpClient *http.Client
}

func newAnthropicClient(cfg config.ProviderConfig, timeout time.Duration) *anthropicClient {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &anthropicClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Complete 完成文本生成（Anthropic）
func (c *anthropicClient) Complete(ctx context.Context, messages []Message, role RoleConfig) (string, error) {
	// Anthropic 需要分离 system message
	var systemMsg string
	var userMessages []map[string]string
	for _, msg := range messages {
		if msg.Role == "system" {
			systemMsg = msg.Content
		} else {
			userMessages = append(userMessages, map[string]string{
				"role":    msg.Role,
				"content": msg.Content,
			})
		}
	}

	model := role.Model
	if model == "" {
		model = c.config.Model
	}
	maxTokens := role.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	reqBody := map[string]any{
		"model":       model,
		"messages":    userMessages,
		"max_tokens":  maxTokens,
		"temperature": role.Temperature,
	}
	if systemMsg != "" {
		reqBody["system"] = systemMsg
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", &GatewayError{Kind: KindProvider, Provider: "anthropic", Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.APIURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", &GatewayError{Kind: KindProvider, Provider: "anthropic", Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &GatewayError{Kind: classifyTransportError(err), Provider: "anthropic", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &GatewayError{Kind: KindProvider, Provider: "anthropic", Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		kind := KindProvider
		if resp.StatusCode == http.StatusTooManyRequests {
			kind = KindRateLimit
		}
		return "", &GatewayError{
			Kind:     kind,
			Provider: "anthropic",
			Err:      fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody)),
		}
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
			Type string `json:"type"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &GatewayError{Kind: KindProvider, Provider: "anthropic", Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	if len(result.Content) == 0 {
		return "", &GatewayError{Kind: KindProvider, Provider: "anthropic", Err: fmt.Errorf("no content in response")}
	}
	return result.Content[0].Text, nil
}
