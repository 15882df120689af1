package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zjzjy/LQBench/internal/config"
	"github.com/zjzjy/LQBench/internal/llm"
	"github.com/zjzjy/LQBench/internal/store"
)

const apiCognitiveJSON = `{
  "primary_appraisal": {"relevance": "重要", "nature": "伤害", "attribution": "对方"},
  "secondary_appraisal": {"coping_ability": "有限", "coping_strategy": "回避"}
}`

// routingMock 按提示词内容路由响应，同时扮演人物、伴侣与认知建模角色。
type routingMock struct {
	mu    sync.Mutex
	calls int
}

func (m *routingMock) Complete(_ context.Context, messages []llm.Message, _ llm.RoleConfig) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	system := messages[0].Content
	switch {
	case strings.Contains(system, "心理学专家"):
		return apiCognitiveJSON, nil
	case strings.Contains(system, "扮演一个处于亲密关系冲突"):
		return "我没事。\n情绪值：{-6}\n情绪：{委屈}", nil
	default:
		last := messages[len(messages)-1].Content
		if strings.Contains(last, "暂停角色扮演") {
			return `{"mood": -6, "emotions": ["委屈"]}`, nil
		}
		return "跟我说说嘛", nil
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Roles: config.RolesConfig{
			Character: config.RoleConfig{Temperature: 0.8},
			Partner:   config.RoleConfig{Temperature: 0.8},
			Expert:    config.RoleConfig{Temperature: 0.2},
		},
		Benchmark: config.BenchmarkConfig{
			MaxTurns:                  1,
			NumPersonas:               2,
			ScenarioIDs:               []string{"financial_issues"},
			Parallel:                  true,
			MaxWorkers:                2,
			MaxConsecutiveParseErrors: 3,
		},
		Mood: config.MoodConfig{ImprovementThreshold: 4, CriticalThreshold: -8},
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := NewServer(testConfig(), &routingMock{}, store.NewMemoryStore())
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return s, ts
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	t.Log("✓ healthz 正常")
}

func TestScenariosAndTraits(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/scenarios")
	if err != nil {
		t.Fatalf("GET /api/scenarios: %v", err)
	}
	defer resp.Body.Close()
	var scenarios []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&scenarios); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(scenarios) == 0 {
		t.Error("Expected scenarios")
	}

	resp2, err := http.Get(ts.URL + "/api/traits")
	if err != nil {
		t.Fatalf("GET /api/traits: %v", err)
	}
	defer resp2.Body.Close()
	var traits map[string]any
	if err := json.NewDecoder(resp2.Body).Decode(&traits); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if traits["personality_types"] == nil {
		t.Error("Expected personality_types")
	}
	t.Logf("✓ 返回 %d 个场景与 %d 张特质表", len(scenarios), len(traits))
}

func TestCreateAndGetBenchmark(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/benchmarks", "application/json",
		strings.NewReader(`{"num_personas": 2, "max_turns": 1}`))
	if err != nil {
		t.Fatalf("POST /api/benchmarks: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", resp.StatusCode)
	}
	var created struct {
		BatchID string          `json:"batch_id"`
		Status  string          `json:"status"`
		Cases   json.RawMessage `json:"cases"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.BatchID == "" || created.Status != "running" {
		t.Fatalf("Unexpected create response: %+v", created)
	}

	// 后台批次用 mock 客户端瞬时完成，轮询到落盘为止
	var batch map[string]any
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		getResp, err := http.Get(ts.URL + "/api/benchmarks/" + created.BatchID)
		if err != nil {
			t.Fatalf("GET benchmark: %v", err)
		}
		err = json.NewDecoder(getResp.Body).Decode(&batch)
		getResp.Body.Close()
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if batch["summary"] != nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if batch["summary"] == nil {
		t.Fatalf("Batch never finished: %+v", batch)
	}

	listResp, err := http.Get(ts.URL + "/api/benchmarks")
	if err != nil {
		t.Fatalf("GET list: %v", err)
	}
	defer listResp.Body.Close()
	var list struct {
		Batches []map[string]any `json:"batches"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Batches) != 1 {
		t.Errorf("Expected 1 batch, got %d", len(list.Batches))
	}
	t.Logf("✓ 批次 %s 创建并完成", created.BatchID)
}

func TestCreateBenchmarkBadScenario(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/benchmarks", "application/json",
		strings.NewReader(`{"scenario_ids": ["nonexistent"]}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
	t.Log("✓ 非法场景 ID 返回 400")
}

func TestGetBenchmarkNotFound(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/benchmarks/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}
