package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"sports-data-service/config"
	"sports-data-service/database"
	"sports-data-service/logger"
	"sports-data-service/services"
)

// MatchStore 路由层依赖的数据访问操作
type MatchStore interface {
	CreateMatch(m services.NewMatch) (*database.Match, error)
	CreateCommentary(c services.NewCommentary) (*database.Commentary, error)
	ListMatches() ([]database.Match, error)
	GetMatchWithCommentary(matchID int64) ([]database.MatchWithCommentary, error)
	UpdateMatch(id int64, upd services.MatchUpdate) (*database.Match, error)
	DeleteCommentaryByMatch(matchID int64) (int64, error)
	DeleteMatch(id int64) (int64, error)
}

type Server struct {
	config     *config.Config
	store      MatchStore
	wsHub      *Hub
	notifier   services.MatchCreatedNotifier
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// NewServer 创建HTTP服务器，notifier 在比赛创建成功后被调用
func NewServer(cfg *config.Config, store MatchStore, hub *Hub, notifier services.MatchCreatedNotifier) *Server {
	return &Server{
		config:   cfg,
		store:    store,
		wsHub:    hub,
		notifier: notifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有来源(生产环境需要限制)
			},
		},
	}
}

// Router 构建路由表
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	// WebSocket和指标路由不经过统计中间件 (升级需要 Hijacker)
	router.HandleFunc("/ws", s.handleWebSocket)
	router.Handle("/metrics", promhttp.Handler())

	app := router.PathPrefix("/").Subrouter()
	app.Use(metricsMiddleware)

	app.HandleFunc("/", s.handleRoot).Methods("GET")
	app.HandleFunc("/api/health", s.handleHealth).Methods("GET")

	// 比赛路由
	app.HandleFunc("/matches", s.handleCreateMatch).Methods("POST")
	app.HandleFunc("/matches", s.handleListMatches).Methods("GET")
	app.HandleFunc("/matches/{id:[0-9]+}", s.handleGetMatch).Methods("GET")
	app.HandleFunc("/matches/{id:[0-9]+}", s.handleUpdateMatch).Methods("PATCH")
	app.HandleFunc("/matches/{id:[0-9]+}", s.handleDeleteMatch).Methods("DELETE")
	app.HandleFunc("/matches/{id:[0-9]+}/commentary", s.handleCreateCommentary).Methods("POST")
	app.HandleFunc("/matches/{id:[0-9]+}/commentary", s.handleDeleteCommentary).Methods("DELETE")

	// CORS配置
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(router)
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}
}

// handleRoot 存活探测
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Sports data service is running"))
}

// handleHealth 健康检查
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"clients": s.wsHub.ClientCount(),
		"time":    time.Now().Unix(),
	})
}

// handleWebSocket WebSocket连接处理
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  s.wsHub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	// 发送欢迎消息
	welcomeMsg := &WSMessage{
		Type: "connected",
		Data: map[string]interface{}{
			"message": "Connected to match events",
			"time":    time.Now().Unix(),
		},
	}
	welcomeData, _ := json.Marshal(welcomeMsg)
	client.send <- welcomeData

	go client.writePump()
	go client.readPump()
}
