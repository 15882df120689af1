package persona

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/zjzjy/LQBench/internal/llm"
)

// 认知评估模型（Lazarus 认知评价理论的简化版）。
//
// 初级评估回答"这件事对我意味着什么"，次级评估回答"我能不能应对"。
// 每个 (人物, 情境) 组合在第一轮对话前恰好构建一次，之后只读。

// PrimaryAppraisal 初级评估
type PrimaryAppraisal struct {
	Relevance   string `json:"relevance"`   // 情境对个体的重要性
	Nature      string `json:"nature"`      // 情境性质：威胁/伤害/挑战
	Attribution string `json:"attribution"` // 责任归因
}

// SecondaryAppraisal 次级评估
type SecondaryAppraisal struct {
	CopingAbility  string `json:"coping_ability"`  // 对自身应对能力的评估
	CopingStrategy string `json:"coping_strategy"` // 倾向采用的应对策略
}

// CognitiveModel 人物对当前情境的完整认知评估。
type CognitiveModel struct {
	Primary   PrimaryAppraisal   `json:"primary_appraisal"`
	Secondary SecondaryAppraisal `json:"secondary_appraisal"`
}

// Compare 粗粒度相似度：各字段完全一致计 1，双方都有值但不同计 0.5，
// 否则计 0，取均值。用于把专家推断的认知模型与人物真实认知模型对照。
func (m *CognitiveModel) Compare(other *CognitiveModel) float64 {
	if m == nil || other == nil {
		return 0.0
	}
	fields := [][2]string{
		{m.Primary.Relevance, other.Primary.Relevance},
		{m.Primary.Nature, other.Primary.Nature},
		{m.Primary.Attribution, other.Primary.Attribution},
		{m.Secondary.CopingAbility, other.Secondary.CopingAbility},
		{m.Secondary.CopingStrategy, other.Secondary.CopingStrategy},
	}
	total := 0.0
	for _, pair := range fields {
		a := strings.TrimSpace(strings.ToLower(pair[0]))
		b := strings.TrimSpace(strings.ToLower(pair[1]))
		switch {
		case a == "" || b == "":
			// 有一方缺失计 0
		case a == b:
			total += 1.0
		default:
			total += 0.5
		}
	}
	return total / float64(len(fields))
}

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// BuildCognitiveModel 通过一次模型调用，从画像与情境推导认知模型。
// 纯派生，无副作用；画像不合法时返回 ConfigurationError，不发起调用。
func BuildCognitiveModel(ctx context.Context, client llm.Client, role llm.RoleConfig, profile Profile, situation Situation) (*CognitiveModel, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	messages := []llm.Message{
		{Role: "system", Content: cognitiveModelSystemPrompt},
		{Role: "user", Content: buildCognitiveModelPrompt(profile, situation)},
	}

	response, err := client.Complete(ctx, messages, role)
	if err != nil {
		return nil, fmt.Errorf("build cognitive model: %w", err)
	}

	model, err := parseCognitiveModel(response)
	if err != nil {
		return nil, fmt.Errorf("build cognitive model: %w", err)
	}
	return model, nil
}

// parseCognitiveModel 从模型输出中提取 JSON。模型偶尔会在 JSON 前后
// 加解释文字，所以先抓最外层的大括号片段再解析。
func parseCognitiveModel(response string) (*CognitiveModel, error) {
	raw := jsonObjectPattern.FindString(response)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}
	var model CognitiveModel
	if err := json.Unmarshal([]byte(raw), &model); err != nil {
		return nil, fmt.Errorf("unmarshal cognitive model: %w", err)
	}
	if model.Primary.Relevance == "" && model.Primary.Nature == "" {
		return nil, fmt.Errorf("cognitive model missing primary appraisal")
	}
	return &model, nil
}
