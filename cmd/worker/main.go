package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/qs3c/leadcrm_go_server/config"
	"github.com/qs3c/leadcrm_go_server/internal/database"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/analysiswebhook"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/pubsub"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/queue"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
	"github.com/qs3c/leadcrm_go_server/internal/worker"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化队列和 Pub/Sub
	dispatchQueue := queue.NewQueue(rdb, cfg.Queue.DispatchQueue)
	publisher := pubsub.NewPublisher(rdb)

	// 初始化 Repository 和外部分析服务客户端
	analysisRepo := repository.NewAnalysisRepository(db)
	webhook := analysiswebhook.NewClient(&cfg.AnalysisWebhook)

	dispatcher := worker.NewDispatcher(dispatchQueue, webhook, analysisRepo, publisher, cfg.Queue.MaxWorkers)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	log.Printf("Worker started, max workers: %d", cfg.Queue.MaxWorkers)

	// 阻塞到所有消费协程退出
	dispatcher.Run(ctx)
	log.Println("Worker shutdown complete")
}
