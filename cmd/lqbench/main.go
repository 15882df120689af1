package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zjzjy/LQBench/internal/api"
	"github.com/zjzjy/LQBench/internal/benchmark"
	"github.com/zjzjy/LQBench/internal/config"
	"github.com/zjzjy/LQBench/internal/llm"
	"github.com/zjzjy/LQBench/internal/store"
)

func main() {
	// 敏感信息（各家 API Key）从环境变量读取，其余配置走 yaml + flag 覆盖
	configPath := flag.String("config", "configs/lqbench.yaml", "config file path")
	mode := flag.String("mode", "run", "run: 跑一个批次并输出报告; serve: 启动 HTTP 服务")
	scenarios := flag.String("scenarios", "", "逗号分隔的场景 ID，留空使用全部场景")
	numPersonas := flag.Int("personas", 0, "测试人物数量，0 表示使用配置值")
	csvPath := flag.String("csv", "", "批次结束后导出 CSV 的路径，留空不导出")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *scenarios != "" {
		cfg.Benchmark.ScenarioIDs = strings.Split(*scenarios, ",")
	}
	if *numPersonas > 0 {
		cfg.Benchmark.NumPersonas = *numPersonas
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		log.Fatalf("init llm client: %v", err)
	}

	st, err := store.Open(cfg.Store.Kind, cfg.Store.Path)
	if err != nil {
		log.Fatalf("init store: %v", err)
	}
	defer st.Close()

	switch *mode {
	case "run":
		runOnce(cfg, client, st, *csvPath)
	case "serve":
		serve(cfg, client, st)
	default:
		log.Fatalf("unknown mode: %s", *mode)
	}
}

// runOnce 跑一个批次，终端打印报告，结果落入 store。
func runOnce(cfg *config.Config, client llm.Client, st store.Store, csvPath string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cases, err := benchmark.GenerateTestCases(cfg.Benchmark)
	if err != nil {
		log.Fatalf("generate test cases: %v", err)
	}
	log.Printf("starting batch with %d cases (max %d turns each)", len(cases), cfg.Benchmark.MaxTurns)

	runner := benchmark.NewRunner(client, cfg, nil)
	batch, err := runner.Run(ctx, "", cases)
	if err != nil {
		log.Fatalf("run batch: %v", err)
	}
	if err := st.Save(ctx, batch); err != nil {
		log.Printf("save batch: %v", err)
	}

	benchmark.WriteReport(os.Stdout, batch)

	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			log.Fatalf("create csv: %v", err)
		}
		defer f.Close()
		if err := benchmark.WriteCSV(f, batch); err != nil {
			log.Fatalf("write csv: %v", err)
		}
		log.Printf("csv written to %s", csvPath)
	}
}

// serve 启动 HTTP/WebSocket 服务。
func serve(cfg *config.Config, client llm.Client, st store.Store) {
	server := api.NewServer(cfg, client, st)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("lqbench server listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Routes()); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
