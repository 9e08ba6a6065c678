package database

import (
	"encoding/json"
	"time"
)

// 比赛状态枚举值，对应数据库 match_status 类型
const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusFinished  = "finished"
)

// ValidStatus 检查状态是否为合法枚举值
func ValidStatus(status string) bool {
	switch status {
	case StatusScheduled, StatusLive, StatusFinished:
		return true
	}
	return false
}

// Match 比赛记录
type Match struct {
	ID        int64      `db:"id" json:"id"`
	Sport     string     `db:"sport" json:"sport"`
	HomeTeam  string     `db:"home_team" json:"home_team"`
	AwayTeam  string     `db:"away_team" json:"away_team"`
	Status    string     `db:"status" json:"status"`
	StartTime *time.Time `db:"start_time" json:"start_time"`
	EndTime   *time.Time `db:"end_time" json:"end_time"`
	HomeScore int        `db:"home_score" json:"home_score"`
	AwayScore int        `db:"away_score" json:"away_score"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Commentary 比赛解说记录
type Commentary struct {
	ID        int64           `db:"id" json:"id"`
	MatchID   int64           `db:"match_id" json:"match_id"`
	Minute    *int            `db:"minute" json:"minute"`
	Sequence  *int            `db:"sequence" json:"sequence"`
	Period    *string         `db:"period" json:"period"`
	EventType *string         `db:"event_type" json:"event_type"`
	Actor     *string         `db:"actor" json:"actor"`
	Team      *string         `db:"team" json:"team"`
	Message   string          `db:"message" json:"message"`
	Metadata  json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	Tags      []string        `db:"tags" json:"tags,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// MatchWithCommentary 左连接查询的一行结果，无解说时 Commentary 为 nil
type MatchWithCommentary struct {
	Match      Match       `json:"match"`
	Commentary *Commentary `json:"commentary"`
}
