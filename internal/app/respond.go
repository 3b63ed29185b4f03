package app

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sleepleague/sleepleague/internal/metrics"
	"github.com/sleepleague/sleepleague/internal/observability"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeErr(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		s.log.Warn(msg, zap.Error(err))
		if status >= 500 {
			metrics.HandlerErrors.Inc()
			observability.CaptureErr(err)
		}
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// callerID — идентификация на границе; проверка подлинности вне зоны
// ответственности сервиса.
func callerID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// parseDay accepts YYYY-MM-DD; empty means "today" in the service location.
func parseDay(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	d, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	return d, nil
}
