// Package expert 实现专家小组评估：多个带不同采样温度的评估器并行
// 分析同一段对话，再对结果求共识。单个专家失败不影响整体，全部失败
// 时结果标记为不可用，由上层跳过该轮。
package expert

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zjzjy/LQBench/internal/emotion"
	"github.com/zjzjy/LQBench/internal/llm"
	"github.com/zjzjy/LQBench/internal/persona"
)

// Assessment 单个专家对人物当前状态的判断。Mood 为规范化刻度。
type Assessment struct {
	Expert   int         `json:"expert"`
	Mood     float64     `json:"mood"`
	Emotions emotion.Set `json:"emotions"`
	Analysis string      `json:"analysis,omitempty"`
}

// PanelResult 某一轮的小组评估结果。Unavailable 表示所有专家都失败，
// 此时其余字段无意义。
type PanelResult struct {
	Turn           int          `json:"turn"`
	Assessments    []Assessment `json:"assessments"`
	Consensus      float64      `json:"consensus"`       // 情绪值共识度，[0,1]
	LabelAgreement float64      `json:"label_agreement"` // 多数情绪标签占比，[0,1]
	Unavailable    bool         `json:"unavailable,omitempty"`
}

// Panel 专家小组。各专家共用同一客户端与基础配置，仅采样温度不同：
// 第 i 个专家的温度为 base + 0.1*i，制造判断多样性。
type Panel struct {
	client llm.Client
	role   llm.RoleConfig
	size   int
}

func NewPanel(client llm.Client, role llm.RoleConfig, size int) *Panel {
	if size < 1 {
		size = 1
	}
	return &Panel{client: client, role: role, size: size}
}

// Evaluate 并行评估第 turn 轮结束后的人物状态。专家部分失败时返回
// 成功子集；全部失败时 Unavailable 为 true，error 仍为 nil。
func (p *Panel) Evaluate(ctx context.Context, conversation []persona.Turn, turn int) (PanelResult, error) {
	prompt := buildAssessmentPrompt(conversation)

	var mu sync.Mutex
	var assessments []Assessment

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.size; i++ {
		i := i
		g.Go(func() error {
			a, err := p.assessOne(gctx, i, prompt)
			if err != nil {
				// 单个专家失败不致命，记录后继续
				log.Printf("[expert] expert %d failed on turn %d: %v", i, turn, err)
				return nil
			}
			mu.Lock()
			assessments = append(assessments, a)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PanelResult{Turn: turn, Unavailable: true}, err
	}

	if len(assessments) == 0 {
		return PanelResult{Turn: turn, Unavailable: true}, nil
	}

	result := PanelResult{Turn: turn, Assessments: assessments}
	result.Consensus = MoodConsensus(assessments)
	result.LabelAgreement = LabelAgreement(assessments)
	return result, nil
}

func (p *Panel) assessOne(ctx context.Context, index int, prompt string) (Assessment, error) {
	role := p.role
	role.Temperature = p.role.Temperature + 0.1*float64(index)

	messages := []llm.Message{
		{Role: "system", Content: assessmentSystemPrompt},
		{Role: "user", Content: prompt},
	}
	response, err := p.client.Complete(ctx, messages, role)
	if err != nil {
		return Assessment{}, err
	}

	a, err := parseAssessment(response)
	if err != nil {
		return Assessment{}, err
	}
	a.Expert = index
	return a, nil
}

const assessmentSystemPrompt = `你是亲密关系心理评估专家。根据对话内容评估"人物"一方当前的情绪状态。以 JSON 输出：
{
  "mood": 情绪值，-10 到 10 的整数,
  "emotions": ["情绪词1", "情绪词2"],
  "analysis": "一两句话的分析"
}
只输出 JSON。`

// buildAssessmentPrompt 把对话整理为带角色前缀的文本。专家只能看到
// 可见内容，人物的内心独白不提供。
func buildAssessmentPrompt(conversation []persona.Turn) string {
	var b strings.Builder
	b.WriteString("以下是伴侣与人物之间的对话：\n\n")
	for _, t := range conversation {
		speaker := "人物"
		if t.Role == persona.RolePartner {
			speaker = "伴侣"
		}
		fmt.Fprintf(&b, "%s：%s\n", speaker, t.Content)
	}
	b.WriteString("\n请评估人物当前的情绪状态。")
	return b.String()
}

type assessmentJSON struct {
	Mood     float64  `json:"mood"`
	Emotions []string `json:"emotions"`
	Analysis string   `json:"analysis"`
}

var (
	jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)
	moodFallback      = regexp.MustCompile(`(?:mood|情绪值)["\s:：]*([-+]?\d+(?:\.\d+)?)`)
)

// parseAssessment 先按 JSON 解析，失败时退回正则抓取情绪值。
func parseAssessment(response string) (Assessment, error) {
	if raw := jsonObjectPattern.FindString(response); raw != "" {
		var aj assessmentJSON
		if err := json.Unmarshal([]byte(raw), &aj); err == nil {
			return Assessment{
				Mood:     emotion.FromRawScale(aj.Mood),
				Emotions: emotion.NewSet(aj.Emotions),
				Analysis: strings.TrimSpace(aj.Analysis),
			}, nil
		}
	}
	if m := moodFallback.FindStringSubmatch(response); m != nil {
		raw, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return Assessment{Mood: emotion.FromRawScale(raw)}, nil
		}
	}
	return Assessment{}, fmt.Errorf("no parseable assessment in response")
}
