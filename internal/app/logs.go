package app

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Sor85/miao-kit/internal/reqlog"
)

const defaultLogLimit = 50

// getLogs обработчик журнала обращений к изображениям
func (s *Server) getLogs(w http.ResponseWriter, r *http.Request) {
	filter := reqlog.Filter{
		TimeRange:  r.URL.Query().Get("timeRange"),
		Method:     r.URL.Query().Get("method"),
		Status:     r.URL.Query().Get("status"),
		Collection: r.URL.Query().Get("collection"),
	}
	s.respondLogs(w, r, s.accessLog, filter)
}

// getForwardLogs обработчик журнала переадресаций
func (s *Server) getForwardLogs(w http.ResponseWriter, r *http.Request) {
	filter := reqlog.Filter{
		TimeRange: r.URL.Query().Get("timeRange"),
		Method:    r.URL.Query().Get("method"),
		Status:    r.URL.Query().Get("status"),
		Mode:      r.URL.Query().Get("mode"),
		RuleID:    r.URL.Query().Get("ruleId"),
	}
	s.respondLogs(w, r, s.forwardLog, filter)
}

// respondLogs отвечает отфильтрованным срезом журнала.
// сводка считается по полному журналу, а не по отобранным записям
func (s *Server) respondLogs(w http.ResponseWriter, r *http.Request, log *reqlog.Log, filter reqlog.Filter) {
	filtered := log.Filter(filter)

	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	limited := filtered
	if len(limited) > limit {
		limited = limited[:limit]
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"logs":     limited,
		"stats":    log.Stats(),
		"filtered": len(filtered),
	})
}

// getLogByID обработчик одной записи журнала обращений
func (s *Server) getLogByID(w http.ResponseWriter, r *http.Request) {
	s.respondLogByID(w, r, s.accessLog)
}

// getForwardLogByID обработчик одной записи журнала переадресаций
func (s *Server) getForwardLogByID(w http.ResponseWriter, r *http.Request) {
	s.respondLogByID(w, r, s.forwardLog)
}

func (s *Server) respondLogByID(w http.ResponseWriter, r *http.Request, log *reqlog.Log) {
	entry, err := log.GetByID(s.param(r, "id"))
	if err != nil {
		if errors.Is(err, reqlog.ErrEntryNotFound) {
			s.writeError(w, http.StatusNotFound, "запись журнала не найдена")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

// clearLogs обработчик очистки журнала обращений
func (s *Server) clearLogs(w http.ResponseWriter, r *http.Request) {
	count := s.accessLog.Clear()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "журнал очищен",
		"count":   count,
	})
}

// clearForwardLogs обработчик очистки журнала переадресаций
func (s *Server) clearForwardLogs(w http.ResponseWriter, r *http.Request) {
	count := s.forwardLog.Clear()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "журнал переадресаций очищен",
		"count":   count,
	})
}
