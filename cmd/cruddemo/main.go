package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"sports-data-service/config"
	"sports-data-service/database"
	"sports-data-service/logger"
	"sports-data-service/services"
)

// 一次性演示脚本：按顺序执行比赛和解说的完整生命周期。
// 与HTTP服务共享同一套 schema，但作为独立入口运行。
func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		db.Close()
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	runErr := run(services.NewMatchStore(db))

	// 无论成败都先关闭连接池
	db.Close()
	logger.Println("Database pool closed")

	if runErr != nil {
		logger.Errorf("CRUD operations failed: %v", runErr)
		os.Exit(1)
	}
}

func run(store *services.MatchStore) error {
	logger.Println("Performing CRUD operations on sports data...")

	// CREATE: 插入比赛
	startTime := time.Date(2026, 2, 2, 15, 0, 0, 0, time.UTC)
	match, err := store.CreateMatch(services.NewMatch{
		Sport:     "Football",
		HomeTeam:  "Team A",
		AwayTeam:  "Team B",
		Status:    database.StatusScheduled,
		StartTime: &startTime,
	})
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	logger.Printf("CREATE: match %d created: %s vs %s (%s)", match.ID, match.HomeTeam, match.AwayTeam, match.Status)

	// CREATE: 添加赛前解说
	minute := 0
	sequence := 1
	period := "pre-match"
	eventType := "kickoff"
	actor := "Referee"
	entry, err := store.CreateCommentary(services.NewCommentary{
		MatchID:   match.ID,
		Minute:    &minute,
		Sequence:  &sequence,
		Period:    &period,
		EventType: &eventType,
		Actor:     &actor,
		Message:   "Match is about to start",
		Metadata:  json.RawMessage(`{"weather":"sunny"}`),
		Tags:      []string{"start"},
	})
	if err != nil {
		return fmt.Errorf("create commentary: %w", err)
	}
	logger.Printf("CREATE: commentary %d added", entry.ID)

	// READ: 左连接查询比赛及解说
	rows, err := store.GetMatchWithCommentary(match.ID)
	if err != nil {
		return fmt.Errorf("read match with commentary: %w", err)
	}
	logger.Printf("READ: match %d returned %d row(s)", match.ID, len(rows))

	// UPDATE: 状态改为 live 并记一个进球
	statusLive := database.StatusLive
	homeScore := 1
	updated, err := store.UpdateMatch(match.ID, services.MatchUpdate{
		Status:    &statusLive,
		HomeScore: &homeScore,
	})
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	if updated == nil {
		return fmt.Errorf("update match: match %d not found", match.ID)
	}
	logger.Printf("UPDATE: match %d now %s, score %d-%d", updated.ID, updated.Status, updated.HomeScore, updated.AwayScore)

	// UPDATE: 添加进球解说
	goalMinute := 15
	goalSequence := 2
	goalPeriod := "first_half"
	goalEvent := "goal"
	scorer := "Player 1"
	homeTeam := "home"
	if _, err := store.CreateCommentary(services.NewCommentary{
		MatchID:   match.ID,
		Minute:    &goalMinute,
		Sequence:  &goalSequence,
		Period:    &goalPeriod,
		EventType: &goalEvent,
		Actor:     &scorer,
		Team:      &homeTeam,
		Message:   "Goal scored by Player 1!",
		Metadata:  json.RawMessage(`{"scorer":"Player 1","assist":"Player 2"}`),
		Tags:      []string{"goal", "home"},
	}); err != nil {
		return fmt.Errorf("create goal commentary: %w", err)
	}
	logger.Println("UPDATE: goal commentary added")

	// DELETE: 先删解说再删比赛 (外键无级联)
	deleted, err := store.DeleteCommentaryByMatch(match.ID)
	if err != nil {
		return fmt.Errorf("delete commentary: %w", err)
	}
	logger.Printf("DELETE: %d commentary row(s) deleted", deleted)

	if _, err := store.DeleteMatch(match.ID); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	logger.Printf("DELETE: match %d deleted", match.ID)

	logger.Println("CRUD operations completed successfully")
	return nil
}
