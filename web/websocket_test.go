package web

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"sports-data-service/config"
	"sports-data-service/database"
)

func dialTestClient(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// 读取欢迎消息，确认注册完成
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var welcome WSMessage
	if err := conn.ReadJSON(&welcome); err != nil {
		t.Fatalf("Failed to read welcome message: %v", err)
	}
	if welcome.Type != "connected" {
		t.Fatalf("Expected welcome type 'connected', got '%s'", welcome.Type)
	}

	return conn
}

func TestBroadcastMatchCreated(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	cfg := &config.Config{Host: "127.0.0.1", Port: "0"}
	s := NewServer(cfg, &stubStore{}, hub, hub)

	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	conn := dialTestClient(t, ts.URL)

	if hub.ClientCount() != 1 {
		t.Errorf("Expected 1 registered client, got %d", hub.ClientCount())
	}

	match := &database.Match{ID: 42, Sport: "Football", HomeTeam: "Team A", AwayTeam: "Team B", Status: database.StatusScheduled}
	hub.BroadcastMatchCreated(match)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}

	if msg.Type != "match_created" {
		t.Errorf("Expected type 'match_created', got '%s'", msg.Type)
	}

	data, err := json.Marshal(msg.Data)
	if err != nil {
		t.Fatalf("Failed to re-marshal data: %v", err)
	}
	var received database.Match
	if err := json.Unmarshal(data, &received); err != nil {
		t.Fatalf("Failed to decode match payload: %v", err)
	}
	if received.ID != 42 {
		t.Errorf("Expected match id 42, got %d", received.ID)
	}
}

func TestLateClientReceivesNothing(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	cfg := &config.Config{Host: "127.0.0.1", Port: "0"}
	s := NewServer(cfg, &stubStore{}, hub, hub)

	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	early := dialTestClient(t, ts.URL)

	match := &database.Match{ID: 7, Status: database.StatusScheduled}
	hub.BroadcastMatchCreated(match)

	// 早连接的客户端恰好收到一条事件
	early.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	if err := early.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}
	if msg.Type != "match_created" {
		t.Errorf("Expected type 'match_created', got '%s'", msg.Type)
	}

	// 广播之后才连接的客户端收不到该事件
	late := dialTestClient(t, ts.URL)
	late.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if err := late.ReadJSON(&msg); err == nil {
		t.Errorf("Expected no message for late client, got type '%s'", msg.Type)
	}
}

func TestDisconnectPrunesClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	cfg := &config.Config{Host: "127.0.0.1", Port: "0"}
	s := NewServer(cfg, &stubStore{}, hub, hub)

	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	conn := dialTestClient(t, ts.URL)
	conn.Close()

	// 等待 readPump 感知断开并注销客户端
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Expected client to be pruned, still %d connected", hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}

	// 广播到空集合不会阻塞或崩溃
	hub.BroadcastMatchCreated(&database.Match{ID: 1})
}
