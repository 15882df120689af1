package llm

import (
	"context"
	"log"
)

// Chain 按优先级尝试多个 provider 的降级链。
//
// 前一个 provider 失败（含限流、超时）时自动切到下一个；全部失败时
// 返回最后一个归一化错误。重试和降级到此为止，上层不再做任何重试。
type Chain struct {
	clients []Client
}

// NewChain 创建降级链，clients 按优先级排列。
func NewChain(clients ...Client) *Chain {
	return &Chain{clients: clients}
}

// Complete 依次尝试每个 provider，返回第一个成功的结果。
func (c *Chain) Complete(ctx context.Context, messages []Message, role RoleConfig) (string, error) {
	var lastErr error
	for i, client := range c.clients {
		text, err := client.Complete(ctx, messages, role)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ge, ok := IsGatewayError(err); ok {
			// 上下文已取消时没有必要再试下一个
			if ge.Kind == KindTimeout && ctx.Err() != nil {
				return "", err
			}
			if i < len(c.clients)-1 {
				log.Printf("[LLM] provider %s failed (%s), falling back: %v", ge.Provider, ge.Kind, ge.Err)
			}
		}
	}
	return "", lastErr
}
