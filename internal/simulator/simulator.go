// Package simulator 驱动一次完整的对话模拟：伴侣开场，人物回应，
// 每轮结束后做情绪预测与专家评估，直至触发任一终止条件。
package simulator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/zjzjy/LQBench/internal/expert"
	"github.com/zjzjy/LQBench/internal/persona"
)

// TerminationReason 对话终止原因。
type TerminationReason string

const (
	ReasonMaxTurns TerminationReason = "max_turns_reached" // 达到轮数上限
	ReasonResolved TerminationReason = "mood_resolved"     // 情绪持续好转
	ReasonCritical TerminationReason = "mood_critical"     // 情绪跌入临界区
	ReasonForced   TerminationReason = "forced"            // 连续解析失败，强制终止
)

// 终止条件需要连续满足的轮数，避免单轮波动误判
const endCheckStreak = 2

// Event 模拟过程中的一条事件，供外部实时订阅。
type Event struct {
	Type    string       `json:"type"` // turn / prediction / expert / end
	Turn    int          `json:"turn"`
	Role    persona.Role `json:"role,omitempty"`
	Content string       `json:"content,omitempty"`
	Mood    float64      `json:"mood,omitempty"`
	Reason  string       `json:"reason,omitempty"`
}

// EventSink 事件接收方。Emit 不得阻塞，慢消费者自行丢弃。
type EventSink interface {
	Emit(Event)
}

// Options 模拟参数。阈值使用规范化刻度 [-1,1]。
type Options struct {
	MaxTurns                  int
	ImprovementThreshold      float64 // 情绪变化趋势达到该值视为好转，必须为正（配置层校验）
	CriticalThreshold         float64 // 情绪值低于该值视为临界
	MaxConsecutiveParseErrors int     // 连续解析失败达到该值强制终止
	UseEmotionPrediction      bool
	UseExpertAnalysis         bool
	Panel                     *expert.Panel
	Sink                      EventSink
}

// Result 一次模拟的完整记录。
type Result struct {
	RunID           string                    `json:"run_id"`
	Profile         persona.Profile           `json:"profile"`
	Situation       persona.Situation         `json:"situation"`
	CognitiveModels []*persona.CognitiveModel `json:"cognitive_models,omitempty"`

	Conversation   []persona.Turn       `json:"conversation"`
	MoodHistory    []float64            `json:"mood_history"`
	FinalMood      float64              `json:"final_mood"`
	TurnsCompleted int                  `json:"turns_completed"`
	Reason         TerminationReason    `json:"reason"`
	Predictions    []Prediction         `json:"predictions,omitempty"`
	Panels         []expert.PanelResult `json:"panels,omitempty"`
	StartedAt      time.Time            `json:"started_at"`
	FinishedAt     time.Time            `json:"finished_at"`
}

// Simulator 单次模拟的编排器。不可复用，一个实例跑一次。
type Simulator struct {
	persona *persona.Persona
	partner *Partner
	opts    Options

	improveStreak  int
	criticalStreak int
}

func New(p *persona.Persona, partner *Partner, opts Options) *Simulator {
	if opts.MaxTurns < 1 {
		opts.MaxTurns = 1
	}
	return &Simulator{persona: p, partner: partner, opts: opts}
}

// Run 执行模拟。网关层面的失败是致命的，整次模拟失败；
// 情绪标记解析失败、预测失败、专家失败都只降级记录。
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		Profile:   s.persona.Profile,
		Situation: s.persona.Situation,
		StartedAt: time.Now(),
	}

	if _, err := s.persona.EnsureCognitiveModel(ctx); err != nil {
		return nil, fmt.Errorf("simulation %s: %w", result.RunID, err)
	}

	incoming, err := s.partner.OpeningLine(ctx)
	if err != nil {
		return nil, fmt.Errorf("simulation %s: %w", result.RunID, err)
	}

	reason := ReasonMaxTurns
	for turn := 1; turn <= s.opts.MaxTurns; turn++ {
		s.emit(Event{Type: "turn", Turn: turn, Role: persona.RolePartner, Content: incoming})

		reply, err := s.persona.Respond(ctx, incoming)
		if err != nil {
			var parseErr *persona.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("simulation %s turn %d: %w", result.RunID, turn, err)
			}
			log.Printf("[simulator] run %s turn %d: %v", result.RunID, turn, parseErr)
		}

		result.TurnsCompleted = turn
		s.emit(Event{Type: "turn", Turn: turn, Role: persona.RolePersona, Content: reply.Content, Mood: reply.Mood})

		if s.opts.UseEmotionPrediction {
			s.predict(ctx, result, turn)
		}
		if s.opts.UseExpertAnalysis && s.opts.Panel != nil {
			s.consult(ctx, result, turn)
		}

		if s.persona.ConsecutiveParseFailures() >= s.opts.MaxConsecutiveParseErrors && s.opts.MaxConsecutiveParseErrors > 0 {
			reason = ReasonForced
			break
		}
		if r, done := s.shouldEnd(); done {
			reason = r
			break
		}
		if turn == s.opts.MaxTurns {
			break
		}

		incoming, err = s.partner.Reply(ctx, s.persona.Conversation())
		if err != nil {
			return nil, fmt.Errorf("simulation %s turn %d: %w", result.RunID, turn, err)
		}
	}

	result.Conversation = s.persona.Conversation()
	result.CognitiveModels = s.persona.CognitiveModelHistory()
	result.MoodHistory = s.persona.MoodHistory()
	result.FinalMood = s.persona.Mood()
	result.Reason = reason
	result.FinishedAt = time.Now()
	s.scorePredictions(result)

	s.emit(Event{Type: "end", Turn: result.TurnsCompleted, Mood: result.FinalMood, Reason: string(reason)})
	return result, nil
}

// shouldEnd 检查趋势与临界终止条件。两个条件都要求连续满足
// endCheckStreak 轮；临界条件优先。
func (s *Simulator) shouldEnd() (TerminationReason, bool) {
	if s.persona.Mood() <= s.opts.CriticalThreshold {
		s.criticalStreak++
	} else {
		s.criticalStreak = 0
	}
	if s.persona.MoodTrend() >= s.opts.ImprovementThreshold {
		s.improveStreak++
	} else {
		s.improveStreak = 0
	}

	if s.criticalStreak >= endCheckStreak {
		return ReasonCritical, true
	}
	if s.improveStreak >= endCheckStreak {
		return ReasonResolved, true
	}
	return "", false
}

func (s *Simulator) predict(ctx context.Context, result *Result, turn int) {
	prediction, err := s.partner.PredictMood(ctx, s.persona.Conversation())
	if err != nil {
		log.Printf("[simulator] run %s turn %d: prediction skipped: %v", result.RunID, turn, err)
		return
	}
	prediction.Turn = turn
	result.Predictions = append(result.Predictions, prediction)
	s.emit(Event{Type: "prediction", Turn: turn, Mood: prediction.Mood})
}

// scorePredictions 回填每条预测对应的下一轮实际情绪值。
// MoodHistory[t] 是第 t 轮结束后的情绪值，第 turn 轮做出的预测对照
// MoodHistory[turn+1]；最后一轮的预测没有下一轮，不计分。
func (s *Simulator) scorePredictions(result *Result) {
	for i := range result.Predictions {
		next := result.Predictions[i].Turn + 1
		if next < len(result.MoodHistory) {
			result.Predictions[i].Actual = result.MoodHistory[next]
			result.Predictions[i].Scored = true
		}
	}
}

func (s *Simulator) consult(ctx context.Context, result *Result, turn int) {
	panel, err := s.opts.Panel.Evaluate(ctx, s.persona.Conversation(), turn)
	if err != nil {
		log.Printf("[simulator] run %s turn %d: expert panel aborted: %v", result.RunID, turn, err)
		return
	}
	if panel.Unavailable {
		// 留下不可用记录，报表能区分“评估失败”和“从未评估”
		log.Printf("[simulator] run %s turn %d: expert panel unavailable", result.RunID, turn)
		result.Panels = append(result.Panels, panel)
		return
	}
	result.Panels = append(result.Panels, panel)
	s.emit(Event{Type: "expert", Turn: turn, Mood: panel.Consensus})
}

func (s *Simulator) emit(e Event) {
	if s.opts.Sink != nil {
		s.opts.Sink.Emit(e)
	}
}
