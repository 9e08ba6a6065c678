package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sports-data-service/config"
	"sports-data-service/database"
	"sports-data-service/logger"
	"sports-data-service/services"
	"sports-data-service/web"
)

func main() {
	logger.Println("Starting sports data service...")

	// 加载配置
	cfg := config.Load()

	// 连接数据库
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 运行数据库迁移
	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	logger.Println("Database connected and migrated")

	// 创建数据访问层
	store := services.NewMatchStore(db)

	// 创建WebSocket Hub
	wsHub := web.NewHub()
	go wsHub.Run()

	// 事件通知：WebSocket 始终启用，AMQP 在配置了 AMQP_URL 时启用
	notifiers := []services.MatchCreatedNotifier{wsHub}

	var amqpPublisher *services.AMQPPublisher
	if cfg.AMQPURL != "" {
		amqpPublisher = services.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err := amqpPublisher.Connect(); err != nil {
			logger.Fatalf("Failed to connect AMQP publisher: %v", err)
		}
		defer amqpPublisher.Close()
		notifiers = append(notifiers, amqpPublisher)
	}

	notifier := services.NewMultiNotifier(notifiers...)

	// 启动Web服务器
	server := web.NewServer(cfg, store, wsHub, notifier)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Web server error: %v", err)
		}
	}()

	logger.Printf("Web server started on %s", cfg.Addr())
	logger.Println("Service is running. Press Ctrl+C to stop.")

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("Shutting down service...")

	server.Stop()

	logger.Println("Service stopped")
}
