// Package benchmark 批量评测：按配置生成测试用例，并发跑模拟，
// 汇总情绪感知准确率与专家共识等指标。单个用例失败不影响其余用例。
package benchmark

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zjzjy/LQBench/internal/config"
	"github.com/zjzjy/LQBench/internal/emotion"
	"github.com/zjzjy/LQBench/internal/expert"
	"github.com/zjzjy/LQBench/internal/llm"
	"github.com/zjzjy/LQBench/internal/persona"
	"github.com/zjzjy/LQBench/internal/simulator"
)

// TestCase 一条评测用例：一个人物画像搭配一个冲突情境。
type TestCase struct {
	ID        string            `json:"id"`
	Profile   persona.Profile   `json:"profile"`
	Situation persona.Situation `json:"situation"`
}

// CaseResult 单个用例的模拟结果与指标。
type CaseResult struct {
	Case    TestCase          `json:"case"`
	Result  *simulator.Result `json:"result"`
	Metrics CaseMetrics       `json:"metrics"`
}

// CaseFailure 失败的用例。错误只记录文本，批次本身照常完成。
type CaseFailure struct {
	CaseID string `json:"case_id"`
	Error  string `json:"error"`
}

// BatchResult 一个批次的全部产出。
type BatchResult struct {
	ID         string        `json:"id"`
	Cases      []CaseResult  `json:"cases"`
	Failures   []CaseFailure `json:"failures,omitempty"`
	Summary    Summary       `json:"summary"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// 用例生成时循环选取的画像骨架，保证批次内画像多样且可复现
var caseNames = []string{"林晓", "陈雨", "苏婷", "王磊", "周蕾", "李想", "赵敏", "许诺"}

// GenerateTestCases 确定性生成评测用例：先按配置生成 NumPersonas 个
// 画像（特质表按不同步长循环取值），再与选定场景下的全部情境做
// 笛卡尔积，每个画像在每个情境各跑一次。scenario id 不合法时直接
// 报配置错误。
func GenerateTestCases(cfg config.BenchmarkConfig) ([]TestCase, error) {
	var situations []persona.Situation
	scenarioIDs := cfg.ScenarioIDs
	if len(scenarioIDs) == 0 {
		for _, s := range persona.ConflictScenarios {
			situations = append(situations, persona.SituationsOf(s)...)
		}
	} else {
		seen := make(map[string]bool, len(scenarioIDs))
		for _, id := range scenarioIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			s, ok := persona.ScenarioByID(id)
			if !ok {
				return nil, &persona.ConfigurationError{Field: "scenario_id", Value: id}
			}
			situations = append(situations, persona.SituationsOf(s)...)
		}
	}
	if len(situations) == 0 {
		return nil, fmt.Errorf("no situations available for configured scenarios")
	}

	n := cfg.NumPersonas
	if n < 1 {
		n = 1
	}

	cases := make([]TestCase, 0, n*len(situations))
	for i := 0; i < n; i++ {
		// 各维度用互质步长循环，相邻画像不会只差一个维度
		profile := persona.Profile{
			ID:                 fmt.Sprintf("persona-%03d", i+1),
			Name:               caseNames[i%len(caseNames)],
			Gender:             []string{"女", "男"}[i%2],
			Age:                24 + i%10,
			PersonalityType:    persona.PersonalityTypes[i%len(persona.PersonalityTypes)].ID,
			RelationshipBelief: persona.RelationshipBeliefs[(i*5)%len(persona.RelationshipBeliefs)].ID,
			CommunicationType:  persona.CommunicationTypes[(i*3)%len(persona.CommunicationTypes)].ID,
			AttachmentStyle:    persona.AttachmentStyles[(i*3+1)%len(persona.AttachmentStyles)].ID,
		}
		if err := profile.Validate(); err != nil {
			return nil, err
		}
		for _, situation := range situations {
			p := profile
			p.TriggerTopics = []string{situation.Name}
			cases = append(cases, TestCase{
				ID:        fmt.Sprintf("case-%03d-%s", i+1, situation.SituationID),
				Profile:   p,
				Situation: situation,
			})
		}
	}
	return cases, nil
}

// Runner 批量执行器。
type Runner struct {
	client llm.Client
	cfg    *config.Config
	sink   simulator.EventSink
}

func NewRunner(client llm.Client, cfg *config.Config, sink simulator.EventSink) *Runner {
	return &Runner{client: client, cfg: cfg, sink: sink}
}

// Run 并发执行所有用例。用例之间完全隔离：一个用例的网关错误只
// 产生一条 CaseFailure。返回 error 仅当上下文被取消。
// id 为空时自动生成，调用方需要提前订阅事件流时可自带 ID。
func (r *Runner) Run(ctx context.Context, id string, cases []TestCase) (*BatchResult, error) {
	if id == "" {
		id = uuid.NewString()
	}
	batch := &BatchResult{
		ID:        id,
		StartedAt: time.Now(),
	}

	workers := 1
	if r.cfg.Benchmark.Parallel {
		workers = r.cfg.Benchmark.MaxWorkers
		if workers < 1 {
			workers = 1
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, tc := range cases {
		tc := tc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := r.runCase(gctx, tc)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[benchmark] case %s failed: %v", tc.ID, err)
				batch.Failures = append(batch.Failures, CaseFailure{CaseID: tc.ID, Error: err.Error()})
				return nil
			}
			batch.Cases = append(batch.Cases, CaseResult{
				Case:    tc,
				Result:  result,
				Metrics: ComputeCaseMetrics(result),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("benchmark batch %s: %w", batch.ID, err)
	}

	batch.Summary = Summarize(batch.Cases, batch.Failures)
	batch.FinishedAt = time.Now()
	log.Printf("[benchmark] batch %s done: %d succeeded, %d failed in %s",
		batch.ID, len(batch.Cases), len(batch.Failures), batch.FinishedAt.Sub(batch.StartedAt).Round(time.Millisecond))
	return batch, nil
}

func (r *Runner) runCase(ctx context.Context, tc TestCase) (*simulator.Result, error) {
	characterRole := toLLMRole(r.cfg.Roles.Character)
	partnerRole := toLLMRole(r.cfg.Roles.Partner)
	expertRole := toLLMRole(r.cfg.Roles.Expert)

	p, err := persona.New(r.client, characterRole, expertRole, tc.Profile, tc.Situation)
	if err != nil {
		return nil, err
	}
	classifier, err := emotion.NewClassifier(r.cfg.Classifier.Kind, r.client, expertRole)
	if err != nil {
		return nil, err
	}
	p.UseClassifier(classifier)
	partner := simulator.NewPartner(r.client, partnerRole, tc.Situation)

	opts := simulator.Options{
		MaxTurns: r.cfg.Benchmark.MaxTurns,
		// 阈值在配置里按 -10..+10 原始刻度书写，装配时统一换算
		ImprovementThreshold:      emotion.FromRawScale(r.cfg.Mood.ImprovementThreshold),
		CriticalThreshold:         emotion.FromRawScale(r.cfg.Mood.CriticalThreshold),
		MaxConsecutiveParseErrors: r.cfg.Benchmark.MaxConsecutiveParseErrors,
		UseEmotionPrediction:      r.cfg.Benchmark.UseEmotionPrediction,
		UseExpertAnalysis:         r.cfg.Benchmark.UseExpertAnalysis,
		Sink:                      r.sink,
	}
	if opts.UseExpertAnalysis {
		opts.Panel = expert.NewPanel(r.client, expertRole, r.cfg.Benchmark.NumExperts)
	}

	return simulator.New(p, partner, opts).Run(ctx)
}

func toLLMRole(rc config.RoleConfig) llm.RoleConfig {
	return llm.RoleConfig{Model: rc.Model, Temperature: rc.Temperature, MaxTokens: rc.MaxTokens}
}
