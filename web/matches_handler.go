package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"sports-data-service/database"
	"sports-data-service/logger"
	"sports-data-service/services"
)

type createMatchRequest struct {
	Sport     string     `json:"sport"`
	HomeTeam  string     `json:"home_team"`
	AwayTeam  string     `json:"away_team"`
	Status    string     `json:"status"`
	StartTime *time.Time `json:"start_time"`
}

type updateMatchRequest struct {
	Sport     *string    `json:"sport"`
	HomeTeam  *string    `json:"home_team"`
	AwayTeam  *string    `json:"away_team"`
	Status    *string    `json:"status"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	HomeScore *int       `json:"home_score"`
	AwayScore *int       `json:"away_score"`
}

type createCommentaryRequest struct {
	Minute    *int            `json:"minute"`
	Sequence  *int            `json:"sequence"`
	Period    *string         `json:"period"`
	EventType *string         `json:"event_type"`
	Actor     *string         `json:"actor"`
	Team      *string         `json:"team"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata"`
	Tags      []string        `json:"tags"`
}

// handleCreateMatch 创建比赛，成功后广播 match_created 事件
func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Sport == "" || req.HomeTeam == "" || req.AwayTeam == "" || req.Status == "" {
		writeError(w, http.StatusBadRequest, "sport, home_team, away_team and status are required")
		return
	}
	if !database.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "status must be one of: scheduled, live, finished")
		return
	}

	match, err := s.store.CreateMatch(services.NewMatch{
		Sport:     req.Sport,
		HomeTeam:  req.HomeTeam,
		AwayTeam:  req.AwayTeam,
		Status:    req.Status,
		StartTime: req.StartTime,
	})
	if err != nil {
		if services.IsConstraintError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Errorf("Failed to create match: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create match")
		return
	}

	s.notifier.BroadcastMatchCreated(match)

	writeJSON(w, http.StatusCreated, match)
}

// handleListMatches 查询全部比赛
func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.store.ListMatches()
	if err != nil {
		logger.Errorf("Failed to list matches: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
	})
}

// handleGetMatch 查询比赛及其解说
func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	rows, err := s.store.GetMatchWithCommentary(id)
	if err != nil {
		logger.Errorf("Failed to get match %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to get match")
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}

	commentary := []database.Commentary{}
	for _, row := range rows {
		if row.Commentary != nil {
			commentary = append(commentary, *row.Commentary)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"match":      rows[0].Match,
		"commentary": commentary,
	})
}

// handleUpdateMatch 部分更新比赛
func (s *Server) handleUpdateMatch(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	var req updateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Status != nil && !database.ValidStatus(*req.Status) {
		writeError(w, http.StatusBadRequest, "status must be one of: scheduled, live, finished")
		return
	}
	if (req.HomeScore != nil && *req.HomeScore < 0) || (req.AwayScore != nil && *req.AwayScore < 0) {
		writeError(w, http.StatusBadRequest, "scores must be non-negative")
		return
	}

	match, err := s.store.UpdateMatch(id, services.MatchUpdate{
		Sport:     req.Sport,
		HomeTeam:  req.HomeTeam,
		AwayTeam:  req.AwayTeam,
		Status:    req.Status,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		HomeScore: req.HomeScore,
		AwayScore: req.AwayScore,
	})
	if err != nil {
		if errors.Is(err, services.ErrNoUpdateFields) {
			writeError(w, http.StatusBadRequest, "no fields to update")
			return
		}
		if services.IsConstraintError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Errorf("Failed to update match %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to update match")
		return
	}
	if match == nil {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}

	writeJSON(w, http.StatusOK, match)
}

// handleDeleteMatch 删除比赛。外键无级联，先删解说再删比赛
func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	if _, err := s.store.DeleteCommentaryByMatch(id); err != nil {
		logger.Errorf("Failed to delete commentary for match %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete match")
		return
	}
	if _, err := s.store.DeleteMatch(id); err != nil {
		logger.Errorf("Failed to delete match %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete match")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleCreateCommentary 为比赛添加解说
func (s *Server) handleCreateCommentary(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	var req createCommentaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	entry, err := s.store.CreateCommentary(services.NewCommentary{
		MatchID:   id,
		Minute:    req.Minute,
		Sequence:  req.Sequence,
		Period:    req.Period,
		EventType: req.EventType,
		Actor:     req.Actor,
		Team:      req.Team,
		Message:   req.Message,
		Metadata:  req.Metadata,
		Tags:      req.Tags,
	})
	if err != nil {
		if services.IsForeignKeyError(err) {
			writeError(w, http.StatusNotFound, "match not found")
			return
		}
		if services.IsConstraintError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Errorf("Failed to create commentary for match %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to create commentary")
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// handleDeleteCommentary 删除比赛的全部解说
func (s *Server) handleDeleteCommentary(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	if _, err := s.store.DeleteCommentaryByMatch(id); err != nil {
		logger.Errorf("Failed to delete commentary for match %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete commentary")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID 解析路径中的比赛ID，路由正则保证其为数字
func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
