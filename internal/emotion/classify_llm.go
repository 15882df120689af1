package emotion

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/zjzjy/LQBench/internal/llm"
)

// NewClassifier 按配置选择分类器实现，kind 为空回落到规则分类器。
func NewClassifier(kind string, client llm.Client, role llm.RoleConfig) (Classifier, error) {
	switch kind {
	case "", "rule":
		return NewRuleClassifier(), nil
	case "llm":
		return &LLMClassifier{Client: client, Role: role}, nil
	default:
		return nil, fmt.Errorf("unsupported classifier kind: %s", kind)
	}
}

// LLMClassifier 把情绪标签识别交给大模型，适合规则分类器覆盖不到的
// 委婉或反讽表达。输出同样做去重排序，保持与规则分类器一致的契约。
type LLMClassifier struct {
	Client llm.Client
	Role   llm.RoleConfig
}

const classifySystemPrompt = `你是情绪识别助手。给定一段中文对话文本，识别说话人当前的情绪，输出 1 到 3 个常见中文情绪词，用顿号分隔，例如：愤怒、委屈。只输出情绪词，不输出其他内容。`

var classifySplitPattern = regexp.MustCompile(`[、，,\s]+`)

func (c *LLMClassifier) Classify(ctx context.Context, transcript string) ([]string, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, nil
	}
	messages := []llm.Message{
		{Role: "system", Content: classifySystemPrompt},
		{Role: "user", Content: transcript},
	}
	response, err := c.Client.Complete(ctx, messages, c.Role)
	if err != nil {
		return nil, fmt.Errorf("llm classify: %w", err)
	}

	seen := make(map[string]bool)
	var labels []string
	for _, label := range classifySplitPattern.Split(response, -1) {
		label = strings.TrimSpace(strings.Trim(label, "。.！!"))
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("llm classify: no labels in response %q", response)
	}
	sort.Strings(labels)
	return labels, nil
}
