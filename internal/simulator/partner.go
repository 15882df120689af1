package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/zjzjy/LQBench/internal/emotion"
	"github.com/zjzjy/LQBench/internal/llm"
	"github.com/zjzjy/LQBench/internal/persona"
)

// Partner 被测模型扮演的伴侣，对话发起方。它看不到人物的画像、
// 认知模型与内心独白，只能凭可见对话内容安抚对方。
type Partner struct {
	client    llm.Client
	role      llm.RoleConfig
	situation persona.Situation
}

func NewPartner(client llm.Client, role llm.RoleConfig, situation persona.Situation) *Partner {
	return &Partner{client: client, role: role, situation: situation}
}

func (p *Partner) systemPrompt() string {
	return fmt.Sprintf(`你正在扮演亲密关系中的一方，刚刚和伴侣发生了矛盾：%s

你的目标是通过对话安抚伴侣、化解冲突。注意倾听和共情，回应要口语化、贴近真实聊天，不要说教，不要长篇大论。`,
		p.situation.Description)
}

// OpeningLine 生成对话的第一句话。伴侣总是先开口。
func (p *Partner) OpeningLine(ctx context.Context) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: p.systemPrompt()},
		{Role: "user", Content: "现在请你先开口，说出化解这次矛盾的第一句话。只输出这句话本身。"},
	}
	line, err := p.client.Complete(ctx, messages, p.role)
	if err != nil {
		return "", fmt.Errorf("partner opening line: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Reply 基于可见对话生成伴侣的下一句话。
func (p *Partner) Reply(ctx context.Context, conversation []persona.Turn) (string, error) {
	messages := []llm.Message{{Role: "system", Content: p.systemPrompt()}}
	for _, t := range conversation {
		msgRole := "assistant"
		if t.Role == persona.RolePersona {
			msgRole = "user"
		}
		messages = append(messages, llm.Message{Role: msgRole, Content: t.Content})
	}
	reply, err := p.client.Complete(ctx, messages, p.role)
	if err != nil {
		return "", fmt.Errorf("partner reply: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// Prediction 伴侣在第 Turn 轮后对人物下一轮情绪的预判。Actual 在
// 下一轮完成后回填；对话在此中断时 Scored 为 false，不参与准确率。
// Mood 为规范化刻度。
type Prediction struct {
	Turn      int         `json:"turn"`
	Mood      float64     `json:"mood"`
	Emotions  emotion.Set `json:"emotions,omitempty"`
	Rationale string      `json:"rationale,omitempty"`
	Actual    float64     `json:"actual"`
	Scored    bool        `json:"scored"`
}

const predictionInstruction = `现在暂停角色扮演。根据到目前为止的对话，推断对方在下一轮回复时会是什么情绪状态。以 JSON 输出：
{
  "mood": 情绪值，-10 到 10 的整数,
  "emotions": ["情绪词1", "情绪词2"],
  "rationale": "一句话说明判断依据"
}
只输出 JSON。`

type predictionJSON struct {
	Mood      float64  `json:"mood"`
	Emotions  []string `json:"emotions"`
	Rationale string   `json:"rationale"`
}

var (
	predictionObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)
	predictionMoodFallback  = regexp.MustCompile(`(?:mood|情绪值)["\s:：]*([-+]?\d+(?:\.\d+)?)`)
)

// PredictMood 让伴侣预判人物下一轮的情绪。解析失败与网关错误同样处理，
// 由调用方决定是否跳过该轮的预测记录。
func (p *Partner) PredictMood(ctx context.Context, conversation []persona.Turn) (Prediction, error) {
	messages := []llm.Message{{Role: "system", Content: p.systemPrompt()}}
	for _, t := range conversation {
		msgRole := "assistant"
		if t.Role == persona.RolePersona {
			msgRole = "user"
		}
		messages = append(messages, llm.Message{Role: msgRole, Content: t.Content})
	}
	messages = append(messages, llm.Message{Role: "user", Content: predictionInstruction})

	response, err := p.client.Complete(ctx, messages, p.role)
	if err != nil {
		return Prediction{}, fmt.Errorf("partner predict: %w", err)
	}
	return parsePrediction(response)
}

func parsePrediction(response string) (Prediction, error) {
	if raw := predictionObjectPattern.FindString(response); raw != "" {
		var pj predictionJSON
		if err := json.Unmarshal([]byte(raw), &pj); err == nil {
			return Prediction{
				Mood:      emotion.FromRawScale(pj.Mood),
				Emotions:  emotion.NewSet(pj.Emotions),
				Rationale: strings.TrimSpace(pj.Rationale),
			}, nil
		}
	}
	if m := predictionMoodFallback.FindStringSubmatch(response); m != nil {
		if raw, err := strconv.ParseFloat(m[1], 64); err == nil {
			return Prediction{Mood: emotion.FromRawScale(raw)}, nil
		}
	}
	return Prediction{}, fmt.Errorf("no parseable prediction in response")
}
