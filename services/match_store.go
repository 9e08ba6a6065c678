package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"sports-data-service/database"
)

// ErrNoUpdateFields 部分更新未提供任何字段
var ErrNoUpdateFields = errors.New("no fields to update")

const matchColumns = "id, sport, home_team, away_team, status, start_time, end_time, home_score, away_score, created_at"

type MatchStore struct {
	db *sql.DB
}

func NewMatchStore(db *sql.DB) *MatchStore {
	return &MatchStore{db: db}
}

// NewMatch 创建比赛的输入
type NewMatch struct {
	Sport     string
	HomeTeam  string
	AwayTeam  string
	Status    string
	StartTime *time.Time
}

// NewCommentary 创建解说的输入
type NewCommentary struct {
	MatchID   int64
	Minute    *int
	Sequence  *int
	Period    *string
	EventType *string
	Actor     *string
	Team      *string
	Message   string
	Metadata  json.RawMessage
	Tags      []string
}

// MatchUpdate 部分更新的字段集，nil 表示不修改
type MatchUpdate struct {
	Sport     *string
	HomeTeam  *string
	AwayTeam  *string
	Status    *string
	StartTime *time.Time
	EndTime   *time.Time
	HomeScore *int
	AwayScore *int
}

// CreateMatch 插入比赛并返回完整记录，约束冲突由数据库报错
func (s *MatchStore) CreateMatch(m NewMatch) (*database.Match, error) {
	query := `
		INSERT INTO matches (sport, home_team, away_team, status, start_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + matchColumns

	return scanMatch(s.db.QueryRow(query, m.Sport, m.HomeTeam, m.AwayTeam, m.Status, m.StartTime))
}

// CreateCommentary 插入解说并返回完整记录
func (s *MatchStore) CreateCommentary(c NewCommentary) (*database.Commentary, error) {
	query := `
		INSERT INTO commentary (match_id, minute, sequence, period, event_type, actor, team, message, metadata, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, match_id, minute, sequence, period, event_type, actor, team, message, metadata, tags, created_at
	`

	var metadata interface{}
	if len(c.Metadata) > 0 {
		metadata = []byte(c.Metadata)
	}

	row := s.db.QueryRow(query, c.MatchID, c.Minute, c.Sequence, c.Period, c.EventType,
		c.Actor, c.Team, c.Message, metadata, pq.Array(c.Tags))

	var out database.Commentary
	var rawMetadata []byte
	var tags pq.StringArray
	err := row.Scan(&out.ID, &out.MatchID, &out.Minute, &out.Sequence, &out.Period, &out.EventType,
		&out.Actor, &out.Team, &out.Message, &rawMetadata, &tags, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	out.Metadata = rawMetadata
	out.Tags = tags

	return &out, nil
}

// ListMatches 查询全部比赛，新建的在前
func (s *MatchStore) ListMatches() ([]database.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []database.Match{}
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *match)
	}

	return matches, rows.Err()
}

// GetMatchWithCommentary 左连接查询比赛及其解说。
// 每条解说一行；无解说时返回一行且 Commentary 为 nil；比赛不存在时返回空切片。
func (s *MatchStore) GetMatchWithCommentary(matchID int64) ([]database.MatchWithCommentary, error) {
	query := `
		SELECT m.id, m.sport, m.home_team, m.away_team, m.status, m.start_time, m.end_time,
		       m.home_score, m.away_score, m.created_at,
		       c.id, c.match_id, c.minute, c.sequence, c.period, c.event_type, c.actor, c.team,
		       c.message, c.metadata, c.tags, c.created_at
		FROM matches m
		LEFT JOIN commentary c ON c.match_id = m.id
		WHERE m.id = $1
	`

	rows, err := s.db.Query(query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []database.MatchWithCommentary{}
	for rows.Next() {
		var row database.MatchWithCommentary
		var (
			cID        sql.NullInt64
			cMatchID   sql.NullInt64
			cMinute    *int
			cSequence  *int
			cPeriod    *string
			cEventType *string
			cActor     *string
			cTeam      *string
			cMessage   sql.NullString
			cMetadata  []byte
			cTags      pq.StringArray
			cCreatedAt sql.NullTime
		)

		err := rows.Scan(&row.Match.ID, &row.Match.Sport, &row.Match.HomeTeam, &row.Match.AwayTeam,
			&row.Match.Status, &row.Match.StartTime, &row.Match.EndTime,
			&row.Match.HomeScore, &row.Match.AwayScore, &row.Match.CreatedAt,
			&cID, &cMatchID, &cMinute, &cSequence, &cPeriod, &cEventType, &cActor, &cTeam,
			&cMessage, &cMetadata, &cTags, &cCreatedAt)
		if err != nil {
			return nil, err
		}

		if cID.Valid {
			row.Commentary = &database.Commentary{
				ID:        cID.Int64,
				MatchID:   cMatchID.Int64,
				Minute:    cMinute,
				Sequence:  cSequence,
				Period:    cPeriod,
				EventType: cEventType,
				Actor:     cActor,
				Team:      cTeam,
				Message:   cMessage.String,
				Metadata:  cMetadata,
				Tags:      cTags,
				CreatedAt: cCreatedAt.Time,
			}
		}

		results = append(results, row)
	}

	return results, rows.Err()
}

// UpdateMatch 部分更新比赛并返回更新后的记录。
// 比赛不存在时返回 (nil, nil)，调用方应视为 not-found。
func (s *MatchStore) UpdateMatch(id int64, upd MatchUpdate) (*database.Match, error) {
	sets := []string{}
	args := []interface{}{}

	appendSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Sport != nil {
		appendSet("sport", *upd.Sport)
	}
	if upd.HomeTeam != nil {
		appendSet("home_team", *upd.HomeTeam)
	}
	if upd.AwayTeam != nil {
		appendSet("away_team", *upd.AwayTeam)
	}
	if upd.Status != nil {
		appendSet("status", *upd.Status)
	}
	if upd.StartTime != nil {
		appendSet("start_time", *upd.StartTime)
	}
	if upd.EndTime != nil {
		appendSet("end_time", *upd.EndTime)
	}
	if upd.HomeScore != nil {
		appendSet("home_score", *upd.HomeScore)
	}
	if upd.AwayScore != nil {
		appendSet("away_score", *upd.AwayScore)
	}

	if len(sets) == 0 {
		return nil, ErrNoUpdateFields
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE matches SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), matchColumns)

	match, err := scanMatch(s.db.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return match, err
}

// DeleteCommentaryByMatch 删除某场比赛的全部解说，返回删除行数，可重复调用
func (s *MatchStore) DeleteCommentaryByMatch(matchID int64) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM commentary WHERE match_id = $1`, matchID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteMatch 删除比赛，返回删除行数，可重复调用。
// 外键无级联，调用方需先删除解说，否则存在解说时会报约束错误。
func (s *MatchStore) DeleteMatch(id int64) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// IsConstraintError 判断是否为数据约束类错误 (非法枚举值、违反 NOT NULL/外键/CHECK 等)
func IsConstraintError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	class := pqErr.Code.Class()
	return class == "22" || class == "23"
}

// IsForeignKeyError 判断是否为外键违反，即引用的比赛不存在
func IsForeignKeyError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23503"
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*database.Match, error) {
	var m database.Match
	err := row.Scan(&m.ID, &m.Sport, &m.HomeTeam, &m.AwayTeam, &m.Status,
		&m.StartTime, &m.EndTime, &m.HomeScore, &m.AwayScore, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
