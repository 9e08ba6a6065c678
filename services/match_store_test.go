package services

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/lib/pq"

	"sports-data-service/database"
)

func TestUpdateMatchNoFields(t *testing.T) {
	store := NewMatchStore(nil)

	_, err := store.UpdateMatch(1, MatchUpdate{})
	if !errors.Is(err, ErrNoUpdateFields) {
		t.Errorf("Expected ErrNoUpdateFields, got %v", err)
	}
}

func TestIsConstraintError(t *testing.T) {
	if !IsConstraintError(&pq.Error{Code: "23502"}) {
		t.Error("Expected not-null violation to be a constraint error")
	}
	if !IsConstraintError(&pq.Error{Code: "22P02"}) {
		t.Error("Expected invalid enum value to be a constraint error")
	}
	if IsConstraintError(&pq.Error{Code: "42P01"}) {
		t.Error("Expected undefined-table error not to be a constraint error")
	}
	if IsConstraintError(errors.New("plain error")) {
		t.Error("Expected plain error not to be a constraint error")
	}
}

func TestIsForeignKeyError(t *testing.T) {
	if !IsForeignKeyError(&pq.Error{Code: "23503"}) {
		t.Error("Expected foreign key violation to be detected")
	}
	if IsForeignKeyError(&pq.Error{Code: "23502"}) {
		t.Error("Expected not-null violation not to be a foreign key error")
	}
}

// 需要真实 Postgres 的生命周期测试，未设置 TEST_DATABASE_URL 时跳过
func TestMatchLifecycle(t *testing.T) {
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(databaseURL); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	store := NewMatchStore(db)

	// CREATE
	startTime := time.Date(2026, 2, 2, 15, 0, 0, 0, time.UTC)
	match, err := store.CreateMatch(NewMatch{
		Sport:     "Football",
		HomeTeam:  "Team A",
		AwayTeam:  "Team B",
		Status:    database.StatusScheduled,
		StartTime: &startTime,
	})
	if err != nil {
		t.Fatalf("Failed to create match: %v", err)
	}
	if match.ID <= 0 {
		t.Errorf("Expected positive match id, got %d", match.ID)
	}
	if match.Status != database.StatusScheduled {
		t.Errorf("Expected status 'scheduled', got '%s'", match.Status)
	}
	if match.HomeScore != 0 || match.AwayScore != 0 {
		t.Errorf("Expected scores 0-0, got %d-%d", match.HomeScore, match.AwayScore)
	}

	// 非法枚举值必须被拒绝
	if _, err := store.CreateMatch(NewMatch{
		Sport:    "Football",
		HomeTeam: "Team A",
		AwayTeam: "Team B",
		Status:   "cancelled",
	}); err == nil {
		t.Error("Expected invalid status to fail")
	} else if !IsConstraintError(err) {
		t.Errorf("Expected constraint error for invalid status, got %v", err)
	}

	// 无解说时左连接返回一行且 Commentary 为 nil
	rows, err := store.GetMatchWithCommentary(match.ID)
	if err != nil {
		t.Fatalf("Failed to read match: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].Commentary != nil {
		t.Error("Expected commentary to be absent")
	}

	// 添加两条解说后返回两行
	for i, message := range []string{"Match is about to start", "Goal scored by Player 1!"} {
		sequence := i + 1
		if _, err := store.CreateCommentary(NewCommentary{
			MatchID:  match.ID,
			Sequence: &sequence,
			Message:  message,
			Tags:     []string{"test"},
		}); err != nil {
			t.Fatalf("Failed to create commentary: %v", err)
		}
	}

	rows, err = store.GetMatchWithCommentary(match.ID)
	if err != nil {
		t.Fatalf("Failed to read match: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(rows))
	}

	// 不存在的比赛不能添加解说
	if _, err := store.CreateCommentary(NewCommentary{
		MatchID: match.ID + 1000000,
		Message: "orphan",
	}); err == nil {
		t.Error("Expected foreign key violation")
	} else if !IsForeignKeyError(err) {
		t.Errorf("Expected foreign key error, got %v", err)
	}

	// UPDATE
	statusLive := database.StatusLive
	homeScore := 1
	updated, err := store.UpdateMatch(match.ID, MatchUpdate{Status: &statusLive, HomeScore: &homeScore})
	if err != nil {
		t.Fatalf("Failed to update match: %v", err)
	}
	if updated.Status != database.StatusLive {
		t.Errorf("Expected status 'live', got '%s'", updated.Status)
	}
	if updated.HomeScore != 1 || updated.AwayScore != 0 {
		t.Errorf("Expected score 1-0, got %d-%d", updated.HomeScore, updated.AwayScore)
	}

	// 更新不存在的比赛返回 (nil, nil)
	missing, err := store.UpdateMatch(match.ID+1000000, MatchUpdate{Status: &statusLive})
	if err != nil {
		t.Fatalf("Unexpected error updating missing match: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil match for missing id")
	}

	// DELETE: 先删解说再删比赛，重复删除返回0行且不报错
	deleted, err := store.DeleteCommentaryByMatch(match.ID)
	if err != nil {
		t.Fatalf("Failed to delete commentary: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 commentary rows deleted, got %d", deleted)
	}

	deleted, err = store.DeleteCommentaryByMatch(match.ID)
	if err != nil || deleted != 0 {
		t.Errorf("Expected idempotent commentary delete, got %d rows, err %v", deleted, err)
	}

	deleted, err = store.DeleteMatch(match.ID)
	if err != nil {
		t.Fatalf("Failed to delete match: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 match row deleted, got %d", deleted)
	}

	deleted, err = store.DeleteMatch(match.ID)
	if err != nil || deleted != 0 {
		t.Errorf("Expected idempotent match delete, got %d rows, err %v", deleted, err)
	}
}
