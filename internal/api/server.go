// Package api 提供评测服务的 HTTP/WebSocket 接口：发起批次、查询
// 结果、实时订阅模拟事件。
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zjzjy/LQBench/internal/benchmark"
	"github.com/zjzjy/LQBench/internal/config"
	"github.com/zjzjy/LQBench/internal/llm"
	"github.com/zjzjy/LQBench/internal/persona"
	"github.com/zjzjy/LQBench/internal/store"
)

// 批次执行状态
const (
	statusRunning = "running"
	statusDone    = "done"
	statusFailed  = "failed"
)

type Server struct {
	config *config.Config
	client llm.Client
	store  store.Store
	hub    *hub

	// statuses 跟踪进行中批次 (batchID -> status)，完成后结果进 store
	statuses   map[string]string
	statusesMu sync.RWMutex

	upgrader websocket.Upgrader
}

func NewServer(cfg *config.Config, client llm.Client, st store.Store) *Server {
	return &Server{
		config:   cfg,
		client:   client,
		store:    st,
		hub:      newHub(),
		statuses: make(map[string]string),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// 评测服务默认只在本机使用，放开同源检查
				return true
			},
		},
	}
}

func (s *Server) Routes() http.Handler {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	engine.GET("/healthz", s.handleHealthz)
	engine.GET("/api/scenarios", s.handleScenarios)
	engine.GET("/api/traits", s.handleTraits)
	engine.POST("/api/benchmarks", s.handleCreateBenchmark)
	engine.GET("/api/benchmarks", s.handleListBenchmarks)
	engine.GET("/api/benchmarks/:id", s.handleGetBenchmark)
	engine.GET("/api/benchmarks/:id/stream", s.handleBenchmarkStream)
	return engine
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleScenarios 返回全部冲突场景与情境。
func (s *Server) handleScenarios(c *gin.Context) {
	c.JSON(http.StatusOK, persona.ConflictScenarios)
}

// handleTraits 返回四张特质表，供前端拼装自定义画像。
func (s *Server) handleTraits(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"personality_types":    persona.PersonalityTypes,
		"relationship_beliefs": persona.RelationshipBeliefs,
		"communication_types":  persona.CommunicationTypes,
		"attachment_styles":    persona.AttachmentStyles,
	})
}

type createBenchmarkRequest struct {
	ScenarioIDs []string `json:"scenario_ids"`
	NumPersonas int      `json:"num_personas"`
	MaxTurns    int      `json:"max_turns"`
}

// handleCreateBenchmark 发起一个批次。请求体里的字段覆盖配置默认值，
// 批次在后台执行，响应立即返回批次 ID 与用例清单。
func (s *Server) handleCreateBenchmark(c *gin.Context) {
	var req createBenchmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	benchCfg := s.config.Benchmark
	if len(req.ScenarioIDs) > 0 {
		benchCfg.ScenarioIDs = req.ScenarioIDs
	}
	if req.NumPersonas > 0 {
		benchCfg.NumPersonas = req.NumPersonas
	}
	if req.MaxTurns > 0 {
		benchCfg.MaxTurns = req.MaxTurns
	}

	cases, err := benchmark.GenerateTestCases(benchCfg)
	if err != nil {
		var cfgErr *persona.ConfigurationError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": cfgErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate test cases failed"})
		return
	}

	batchID := uuid.NewString()
	runCfg := *s.config
	runCfg.Benchmark = benchCfg

	s.setStatus(batchID, statusRunning)
	go s.runBatch(batchID, &runCfg, cases)

	c.JSON(http.StatusAccepted, gin.H{
		"batch_id": batchID,
		"status":   statusRunning,
		"cases":    cases,
	})
}

// runBatch 后台执行批次并落盘。用独立的 context，不随 HTTP 请求取消。
func (s *Server) runBatch(batchID string, cfg *config.Config, cases []benchmark.TestCase) {
	runner := benchmark.NewRunner(s.client, cfg, &batchSink{hub: s.hub, batchID: batchID})
	batch, err := runner.Run(context.Background(), batchID, cases)
	if err != nil {
		log.Printf("[api] batch %s failed: %v", batchID, err)
		s.setStatus(batchID, statusFailed)
		return
	}
	if err := s.store.Save(context.Background(), batch); err != nil {
		log.Printf("[api] save batch %s failed: %v", batchID, err)
		s.setStatus(batchID, statusFailed)
		return
	}
	s.setStatus(batchID, statusDone)
}

func (s *Server) handleListBenchmarks(c *gin.Context) {
	metas, err := s.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list benchmarks failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"batches": metas})
}

func (s *Server) handleGetBenchmark(c *gin.Context) {
	id := c.Param("id")
	batch, err := s.store.Get(c.Request.Context(), id)
	if err == nil {
		c.JSON(http.StatusOK, batch)
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load benchmark failed"})
		return
	}
	// store 里没有，可能还在跑
	if status, ok := s.getStatus(id); ok {
		c.JSON(http.StatusOK, gin.H{"batch_id": id, "status": status})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "benchmark not found"})
}

// handleBenchmarkStream 升级 WebSocket 并订阅批次事件，直到客户端断开。
func (s *Server) handleBenchmarkStream(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.getStatus(id); !ok {
		if _, err := s.store.Get(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "benchmark not found"})
			return
		}
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[api] websocket upgrade failed for batch %s: %v", id, err)
		return
	}
	s.hub.subscribe(id, conn)
	defer func() {
		s.hub.unsubscribe(id, conn)
		_ = conn.Close()
	}()

	// 读循环只为感知断连，客户端消息直接丢弃
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) setStatus(id, status string) {
	s.statusesMu.Lock()
	defer s.statusesMu.Unlock()
	s.statuses[id] = status
}

func (s *Server) getStatus(id string) (string, bool) {
	s.statusesMu.RLock()
	defer s.statusesMu.RUnlock()
	status, ok := s.statuses[id]
	return status, ok
}
