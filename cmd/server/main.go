package main

import (
	"context"
	"fmt"
	"log"

	"github.com/qs3c/leadcrm_go_server/config"
	"github.com/qs3c/leadcrm_go_server/internal/api"
	"github.com/qs3c/leadcrm_go_server/internal/api/handler"
	"github.com/qs3c/leadcrm_go_server/internal/database"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/email"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/oauth"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/oss"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/passreset"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/pubsub"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/queue"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/ws"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
	"github.com/qs3c/leadcrm_go_server/internal/service"
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

	// 初始化 OSS（可选，CSV 归档用）
	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			log.Println("OSS client initialized")
		}
	}

	// 初始化队列和 Pub/Sub
	dispatchQueue := queue.NewQueue(rdb, cfg.Queue.DispatchQueue)
	publisher := pubsub.NewPublisher(rdb)

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()

	// 分析状态从 Redis 订阅转发到 WebSocket
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(msg *pubsub.StatusMessage) {
			// 不知道发起人的消息（老数据、后台清理）退化成租户内广播
			wsMsg := &ws.Message{Type: msg.Type, Data: msg}
			var err error
			if msg.UserID != 0 {
				err = wsHub.SendToUser(msg.UserID, wsMsg)
			} else {
				err = wsHub.SendToCompany(msg.CompanyID, wsMsg)
			}
			if err != nil {
				log.Printf("Failed to push status (user %d, company %d): %v", msg.UserID, msg.CompanyID, err)
			}
		})
		if err != nil {
			log.Printf("Status subscriber stopped: %v", err)
		}
	}()
	log.Println("WebSocket hub started")

	// 初始化 Repository
	companyRepo := repository.NewCompanyRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	clientRepo := repository.NewClientRepository(db)
	callRepo := repository.NewCallRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)

	// 初始化 Service
	emailService := email.NewService(&cfg.Email)
	resetStore := passreset.NewTokenStore(rdb)
	authService := service.NewAuthService(teamRepo, companyRepo, emailService, resetStore, cfg)
	companyService := service.NewCompanyService(companyRepo, teamRepo)
	teamService := service.NewTeamService(teamRepo, companyRepo, emailService, cfg)
	leadService := service.NewLeadService(leadRepo, teamRepo, clientRepo, callRepo)
	importService := service.NewImportService(leadRepo, ossClient, cfg)
	clientService := service.NewClientService(clientRepo, leadRepo)
	callService := service.NewCallService(callRepo, leadRepo, teamRepo, analysisRepo, ossClient)
	analysisService := service.NewAnalysisService(analysisRepo, callRepo, leadRepo, companyRepo, dispatchQueue, publisher)
	dashboardService := service.NewDashboardService(leadRepo, callRepo, teamRepo, analysisRepo)

	// 初始化 Handler
	stateStore := oauth.NewStateStore(rdb)
	authHandler := handler.NewAuthHandler(authService, stateStore)
	companyHandler := handler.NewCompanyHandler(companyService)
	teamHandler := handler.NewTeamHandler(teamService)
	leadHandler := handler.NewLeadHandler(leadService, importService)
	clientHandler := handler.NewClientHandler(clientService)
	callHandler := handler.NewCallHandler(callService)
	analysisHandler := handler.NewAnalysisHandler(analysisService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		companyHandler,
		teamHandler,
		leadHandler,
		clientHandler,
		callHandler,
		analysisHandler,
		dashboardHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
