package persona

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/zjzjy/LQBench/internal/emotion"
	"github.com/zjzjy/LQBench/internal/llm"
)

// Role 对话中的说话方。
type Role string

const (
	RolePersona Role = "persona" // 被模拟的人物
	RolePartner Role = "partner" // 伴侣（对话发起方）
)

// Turn 一条对话记录。Content 是对方可见的文本，情绪标记与内心独白
// 已剥离；InnerMonologue 保留剥离出的内心活动，仅用于事后分析。
type Turn struct {
	Role           Role        `json:"role"`
	Content        string      `json:"content"`
	InnerMonologue string      `json:"inner_monologue,omitempty"`
	Mood           float64     `json:"mood"`
	Emotions       emotion.Set `json:"emotions,omitempty"`
	ParseOK        bool        `json:"parse_ok"`
}

// ParseError 人物回复中缺失或无法解析情绪标记。此时沿用上一轮情绪值，
// 对话继续；连续多次解析失败由上层决定是否强制终止。
type ParseError struct {
	Marker string // 缺失的标记名
	Raw    string // 原始回复（截断后）
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s marker: not found in response %q", e.Marker, e.Raw)
}

var (
	moodPattern       = regexp.MustCompile(`情绪值[:：]\s*\{?\s*([-+]?\d+)\s*\}?`)
	emotionsPattern   = regexp.MustCompile(`情绪[:：]\s*\{([^}]+)\}`)
	monologuePattern  = regexp.MustCompile(`【内心】([\s\S]*?)【内心】`)
	markerLinePattern = regexp.MustCompile(`(?m)^\s*情绪(值)?[:：].*$`)
)

// Persona 被模拟人物的对话状态。非并发安全，单次模拟内串行使用。
type Persona struct {
	client    llm.Client
	role      llm.RoleConfig
	modelRole llm.RoleConfig // 认知模型推导用的角色配置

	Profile   Profile
	Situation Situation

	cognitive  *CognitiveModel
	cogHistory []*CognitiveModel
	classifier emotion.Classifier // 情绪标记缺标签时的兜底识别，可为 nil

	conversation  []Turn
	moods         []float64 // 规范化情绪轨迹，[-1,1]，首元素为初始情绪
	parseFailures int       // 连续解析失败次数，成功一次即清零
}

// New 构建人物。画像不合法时返回 ConfigurationError。
func New(client llm.Client, role, modelRole llm.RoleConfig, profile Profile, situation Situation) (*Persona, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	p := &Persona{
		client:    client,
		role:      role,
		modelRole: modelRole,
		Profile:   profile,
		Situation: situation,
	}
	p.moods = []float64{p.initialMood()}
	return p, nil
}

// initialMood 冲突开场时的情绪基线。神经质高的人物起点更低，
// 开放性高的稍高，其余取默认值。原始刻度 -10..10，存储时规范化。
func (p *Persona) initialMood() float64 {
	raw := -7.0
	switch p.Profile.PersonalityType {
	case "neuroticism_high":
		raw = -8.0
	case "openness_high":
		raw = -6.0
	}
	return emotion.FromRawScale(raw)
}

// UseClassifier 设置情绪标签的兜底分类器。人物回复缺失情绪标签标记
// 时用它从可见文本识别，保证标签命中率统计仍有真实值可对照。
func (p *Persona) UseClassifier(c emotion.Classifier) { p.classifier = c }

// EnsureCognitiveModel 惰性构建认知模型，已存在时直接返回。
func (p *Persona) EnsureCognitiveModel(ctx context.Context) (*CognitiveModel, error) {
	if p.cognitive != nil {
		return p.cognitive, nil
	}
	model, err := BuildCognitiveModel(ctx, p.client, p.modelRole, p.Profile, p.Situation)
	if err != nil {
		return nil, err
	}
	p.cognitive = model
	p.cogHistory = append(p.cogHistory, model)
	return model, nil
}

// CognitiveModel 返回已构建的认知模型，未构建时为 nil。
func (p *Persona) CognitiveModel() *CognitiveModel { return p.cognitive }

// CognitiveModelHistory 按构建顺序返回认知模型快照副本。
func (p *Persona) CognitiveModelHistory() []*CognitiveModel {
	out := make([]*CognitiveModel, len(p.cogHistory))
	copy(out, p.cogHistory)
	return out
}

// Mood 当前情绪值（规范化刻度）。
func (p *Persona) Mood() float64 { return p.moods[len(p.moods)-1] }

// MoodHistory 自对话开始以来的情绪轨迹副本，长度 = 已完成轮数 + 1。
func (p *Persona) MoodHistory() []float64 {
	out := make([]float64, len(p.moods))
	copy(out, p.moods)
	return out
}

// Conversation 对话记录副本。
func (p *Persona) Conversation() []Turn {
	out := make([]Turn, len(p.conversation))
	copy(out, p.conversation)
	return out
}

// ConsecutiveParseFailures 连续解析失败次数。
func (p *Persona) ConsecutiveParseFailures() int { return p.parseFailures }

// MoodTrend 近几轮情绪变化均值：取最近 min(3, len-1) 个相邻差值求平均。
// 不足两个数据点时返回 0。
func (p *Persona) MoodTrend() float64 {
	n := len(p.moods)
	if n < 2 {
		return 0.0
	}
	window := 3
	if n-1 < window {
		window = n - 1
	}
	sum := 0.0
	for i := n - window; i < n; i++ {
		sum += p.moods[i] - p.moods[i-1]
	}
	return sum / float64(window)
}

// Respond 接收伴侣的一句话并生成人物回复。返回的 Turn 已剥离情绪标记
// 与内心独白。情绪标记解析失败时沿用上一轮情绪值并返回 *ParseError，
// 此时 Turn 仍然有效；网关错误则整轮失败。
func (p *Persona) Respond(ctx context.Context, incoming string) (Turn, error) {
	if _, err := p.EnsureCognitiveModel(ctx); err != nil {
		return Turn{}, err
	}

	p.conversation = append(p.conversation, Turn{
		Role:    RolePartner,
		Content: incoming,
		ParseOK: true,
	})

	messages := p.buildMessages()
	response, err := p.client.Complete(ctx, messages, p.role)
	if err != nil {
		// 失败的来话不计入已完成轮次，回滚
		p.conversation = p.conversation[:len(p.conversation)-1]
		return Turn{}, fmt.Errorf("persona respond: %w", err)
	}

	turn, parseErr := p.parseResponse(response)
	if parseErr != nil {
		p.parseFailures++
		turn.Mood = p.Mood() // 沿用上一轮
		log.Printf("[persona] mood marker missing, carrying previous mood %.2f (consecutive failures: %d)", turn.Mood, p.parseFailures)
	} else {
		p.parseFailures = 0
	}

	// 情绪标签标记缺失时交给分类器从可见文本兜底识别，失败只降级
	if len(turn.Emotions.Labels) == 0 && p.classifier != nil && turn.Content != "" {
		if labels, err := p.classifier.Classify(ctx, turn.Content); err != nil {
			log.Printf("[persona] classifier fallback failed: %v", err)
		} else {
			turn.Emotions = emotion.NewSet(labels)
		}
	}

	p.conversation = append(p.conversation, turn)
	p.moods = append(p.moods, turn.Mood)

	if parseErr != nil {
		return turn, parseErr
	}
	return turn, nil
}

// buildMessages 把系统提示词与已有对话组装为模型输入。人物自己的历史
// 回复保留情绪标记，让模型看到自己之前标注的情绪轨迹。
func (p *Persona) buildMessages() []llm.Message {
	messages := []llm.Message{
		{Role: "system", Content: buildCharacterSystemPrompt(p.Profile, p.Situation, p.cognitive)},
	}
	for _, turn := range p.conversation {
		msgRole := "user"
		content := turn.Content
		if turn.Role == RolePersona {
			msgRole = "assistant"
			content = p.restoreMarkers(turn)
		}
		messages = append(messages, llm.Message{Role: msgRole, Content: content})
	}
	return messages
}

// restoreMarkers 把剥离的标记补回历史消息尾部，保持模型上下文格式一致。
func (p *Persona) restoreMarkers(turn Turn) string {
	raw := emotion.ToRawScale(turn.Mood)
	s := fmt.Sprintf("%s\n情绪值：{%d}", turn.Content, int(raw))
	if len(turn.Emotions.Labels) > 0 {
		s += fmt.Sprintf("\n情绪：{%s}", strings.Join(turn.Emotions.Labels, ", "))
	}
	return s
}

// parseResponse 解析情绪值与情绪标签标记，剥离内心独白与标记行。
// 情绪值缺失时返回 *ParseError，Turn 的其余字段照常填充。
func (p *Persona) parseResponse(response string) (Turn, *ParseError) {
	turn := Turn{Role: RolePersona}

	if m := monologuePattern.FindStringSubmatch(response); m != nil {
		turn.InnerMonologue = strings.TrimSpace(m[1])
	}

	if m := emotionsPattern.FindStringSubmatch(response); m != nil {
		var labels []string
		for _, label := range strings.FieldsFunc(m[1], func(r rune) bool {
			return r == ',' || r == '，' || r == '、'
		}) {
			if label = strings.TrimSpace(label); label != "" {
				labels = append(labels, label)
			}
		}
		turn.Emotions = emotion.NewSet(labels)
	}

	turn.Content = cleanVisible(response)

	m := moodPattern.FindStringSubmatch(response)
	if m == nil {
		turn.ParseOK = false
		return turn, &ParseError{Marker: "情绪值", Raw: truncate(response, 80)}
	}
	rawMood, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		turn.ParseOK = false
		return turn, &ParseError{Marker: "情绪值", Raw: truncate(response, 80)}
	}
	turn.ParseOK = true
	turn.Mood = emotion.FromRawScale(rawMood)
	return turn, nil
}

// cleanVisible 得到对方可见的文本：去掉内心独白块与情绪标记行。
func cleanVisible(response string) string {
	s := monologuePattern.ReplaceAllString(response, "")
	s = markerLinePattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
