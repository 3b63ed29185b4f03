package app

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sleepleague/sleepleague/internal/ctxutil"
	"github.com/sleepleague/sleepleague/internal/db"
	"github.com/sleepleague/sleepleague/internal/export"
	"github.com/sleepleague/sleepleague/internal/leaderboard"
	"github.com/sleepleague/sleepleague/internal/models"
	"github.com/sleepleague/sleepleague/internal/rules"
	"github.com/sleepleague/sleepleague/internal/scoring"
)

type createGroupRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		s.writeErr(w, http.StatusUnauthorized, "missing X-User-ID", nil)
		return
	}
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		s.writeErr(w, http.StatusBadRequest, "group name required", err)
		return
	}
	group, err := db.CreateGroup(r.Context(), s.db, req.Name, db.NewJoinCode(), userID)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to create group", err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

type joinGroupRequest struct {
	JoinCode string `json:"joinCode"`
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		s.writeErr(w, http.StatusUnauthorized, "missing X-User-ID", nil)
		return
	}
	var req joinGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JoinCode == "" {
		s.writeErr(w, http.StatusBadRequest, "join code required", err)
		return
	}
	group, err := db.GetGroupByJoinCode(r.Context(), s.db, req.JoinCode)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to look up group", err)
		return
	}
	if group == nil {
		s.writeErr(w, http.StatusNotFound, "unknown join code", nil)
		return
	}
	if err := db.AddMember(r.Context(), s.db, group.ID, userID); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to join group", err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

type submitSleepRequest struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	SleepMinutes int     `json:"sleepMinutes"`
	Source       string  `json:"source"`
	Confidence   string  `json:"confidence"`
	Note         *string `json:"note,omitempty"`
}

func (s *Server) handleSubmitSleep(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	userID := callerID(r)
	if userID == "" {
		s.writeErr(w, http.StatusUnauthorized, "missing X-User-ID", nil)
		return
	}

	var req submitSleepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, http.StatusBadRequest, "bad payload", err)
		return
	}
	if req.SleepMinutes < 0 || req.SleepMinutes > 1440 {
		s.writeErr(w, http.StatusBadRequest, "sleepMinutes must be within 0..1440", nil)
		return
	}
	if !models.ValidSource(req.Source) {
		s.writeErr(w, http.StatusBadRequest, "unknown source", nil)
		return
	}
	if !models.ValidConfidence(req.Confidence) {
		s.writeErr(w, http.StatusBadRequest, "unknown confidence", nil)
		return
	}
	day, err := parseDay(req.Date, s.cfg.Location)
	if err != nil {
		s.writeErr(w, http.StatusBadRequest, "bad date", err)
		return
	}

	ctx := ctxutil.WithUserID(ctxutil.WithGroupID(r.Context(), groupID), userID)
	member, err := db.IsMember(ctx, s.db, groupID, userID)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to check membership", err)
		return
	}
	if !member {
		s.writeErr(w, http.StatusForbidden, "not a member of this group", nil)
		return
	}

	entry, err := db.UpsertSleepEntry(ctx, s.db, models.SleepEntry{
		GroupID:      groupID,
		UserID:       userID,
		Day:          day,
		SleepMinutes: req.SleepMinutes,
		Source:       req.Source,
		Confidence:   req.Confidence,
		Note:         req.Note,
	})
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to submit sleep entry", err)
		return
	}

	// Новый отчёт сразу пересчитывает день.
	if _, err := s.engine.Recompute(ctx, groupID, day); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to rescore the day", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type setRulesRequest struct {
	Mode           rules.Mode      `json:"mode"`
	ActiveFromDate string          `json:"activeFromDate,omitempty"` // defaults to today
	Config         json.RawMessage `json:"config"`
}

func (s *Server) handleSetRules(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	userID := callerID(r)
	if userID == "" {
		s.writeErr(w, http.StatusUnauthorized, "missing X-User-ID", nil)
		return
	}

	group, err := db.GetGroup(r.Context(), s.db, groupID)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to look up group", err)
		return
	}
	if group == nil {
		s.writeErr(w, http.StatusNotFound, "unknown group", nil)
		return
	}
	if group.OwnerID != userID {
		s.writeErr(w, http.StatusForbidden, "only the owner can change rules", nil)
		return
	}

	var req setRulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErr(w, http.StatusBadRequest, "bad payload", err)
		return
	}
	// Правила проверяются здесь, при записи; движок их больше не валидирует.
	ruleSet, err := rules.Parse(req.Mode, req.Config)
	if err != nil {
		s.writeErr(w, http.StatusBadRequest, err.Error(), err)
		return
	}
	activeFrom, err := parseDay(req.ActiveFromDate, s.cfg.Location)
	if err != nil {
		s.writeErr(w, http.StatusBadRequest, "bad activeFromDate", err)
		return
	}

	cfg, err := db.InsertScoringConfig(r.Context(), s.db, models.ScoringConfig{
		GroupID:    groupID,
		Mode:       req.Mode,
		ActiveFrom: activeFrom,
		Rules:      ruleSet,
	})
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to store rules", err)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

// handleRecalculate re-runs the engine for today and yesterday, matching
// what a late submission could have changed.
func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	loc := s.cfg.Location
	today, _ := parseDay("", loc)

	results := make(map[string]scoring.Result, 2)
	for _, day := range []time.Time{today.AddDate(0, 0, -1), today} {
		res, err := s.engine.Recompute(r.Context(), groupID, day)
		if err != nil {
			s.writeErr(w, http.StatusInternalServerError, "recalculation failed", err)
			return
		}
		results[day.Format("2006-01-02")] = res
	}

	if results[today.Format("2006-01-02")].Status == scoring.StatusNoConfig {
		// Отличаем «правила ещё не заданы» от «посчитали, но активности нет».
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  scoring.StatusNoConfig,
			"message": "scoring is not configured for this group yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": scoring.StatusComputed, "days": results})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	loc := s.cfg.Location

	to, err := parseDay(r.URL.Query().Get("to"), loc)
	if err != nil {
		s.writeErr(w, http.StatusBadRequest, "bad to date", err)
		return
	}
	from, err := parseDay(r.URL.Query().Get("from"), loc)
	if err != nil {
		s.writeErr(w, http.StatusBadRequest, "bad from date", err)
		return
	}
	if r.URL.Query().Get("from") == "" {
		from = to.AddDate(0, 0, -30)
	}

	members, err := db.ListMembers(r.Context(), s.db, groupID)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to load members", err)
		return
	}
	events, err := db.ListScoreEventsRange(r.Context(), s.db, groupID, from, to)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to load events", err)
		return
	}
	entries, err := db.ListSleepEntriesRange(r.Context(), s.db, groupID, from, to)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to load entries", err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboard.RangeStats(members, events, entries))
}

func (s *Server) handleScorecard(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	day, err := parseDay(r.URL.Query().Get("date"), s.cfg.Location)
	if err != nil {
		s.writeErr(w, http.StatusBadRequest, "bad date", err)
		return
	}

	members, err := db.ListMembers(r.Context(), s.db, groupID)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to load members", err)
		return
	}
	entries, err := db.ListSleepEntriesForDay(r.Context(), s.db, groupID, day)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to load entries", err)
		return
	}
	events, err := db.ListScoreEventsForDay(r.Context(), s.db, groupID, day)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to load events", err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboard.DailyScorecard(members, entries, events))
}

func (s *Server) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	loc := s.cfg.Location

	to, err := parseDay(r.URL.Query().Get("to"), loc)
	if err != nil {
		s.writeErr(w, http.StatusBadRequest, "bad to date", err)
		return
	}
	from, err := parseDay(r.URL.Query().Get("from"), loc)
	if err != nil {
		s.writeErr(w, http.StatusBadRequest, "bad from date", err)
		return
	}
	if r.URL.Query().Get("from") == "" {
		from = to.AddDate(0, 0, -30)
	}

	group, err := db.GetGroup(r.Context(), s.db, groupID)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to look up group", err)
		return
	}
	if group == nil {
		s.writeErr(w, http.StatusNotFound, "unknown group", nil)
		return
	}
	members, err := db.ListMembers(r.Context(), s.db, groupID)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to load members", err)
		return
	}
	events, err := db.ListScoreEventsRange(r.Context(), s.db, groupID, from, to)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to load events", err)
		return
	}
	entries, err := db.ListSleepEntriesRange(r.Context(), s.db, groupID, from, to)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to load entries", err)
		return
	}

	f, err := export.HistoryWorkbook(members, events, entries)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "failed to build workbook", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(group.Name, from, to)+`"`)
	if err := f.Write(w); err != nil {
		s.log.Warn("history export write failed", zap.Error(err))
	}
}

func (s *Server) handleAdminBackup(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if !s.isAdmin(userID) {
		s.writeErr(w, http.StatusForbidden, "admin only", nil)
		return
	}
	ctx, cancel := ctxutil.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()
	out, err := s.backup.TriggerBackup(ctx)
	if err != nil {
		s.writeErr(w, http.StatusBadGateway, "backup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": out})
}

func (s *Server) isAdmin(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range s.cfg.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
