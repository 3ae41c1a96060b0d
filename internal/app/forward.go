package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sor85/miao-kit/internal/model"
	"github.com/Sor85/miao-kit/internal/storage"
)

// skipHeaders заголовки уровня соединения, которые нельзя копировать из ответа
// вышестоящего сервера: соединением с клиентом управляет наш сервер
var skipHeaders = []string{"Transfer-Encoding", "Connection", "Keep-Alive"}

// forward проверяет запрос по правилам переадресации. правила читаются из файла
// на каждый запрос, чтобы изменения применялись сразу. выигрывает первое правило
// в порядке хранения, источник которого совпадает с путем или является его
// префиксом до разделителя - без выбора самого длинного префикса
func (s *Server) forward(w http.ResponseWriter, r *http.Request) bool {
	rule, ok := matchRule(s.rules.List(), r.URL.Path)
	if !ok {
		return false
	}

	targetURL := rule.Target + strings.TrimPrefix(r.URL.Path, rule.Source)
	if r.URL.RawQuery != "" {
		targetURL += "?" + r.URL.RawQuery
	}

	start := time.Now()
	switch rule.Mode {
	case model.ModeProxy:
		s.proxyRequest(w, r, rule, targetURL, start)
	default:
		// запись уходит в журнал до отправки редиректа
		s.forwardLog.Append(s.newForwardEntry(r, rule, targetURL, http.StatusFound, 0, start, ""))
		http.Redirect(w, r, targetURL, http.StatusFound)
	}
	return true
}

// matchRule ищет первое правило, чей источник совпадает с путем
// или является его префиксом, за которым идет "/"
func matchRule(rules []model.Rule, path string) (model.Rule, bool) {
	for _, rule := range rules {
		if path == rule.Source || strings.HasPrefix(path, rule.Source+"/") {
			return rule, true
		}
	}
	return model.Rule{}, false
}

// proxyRequest прозрачно пересылает запрос вышестоящему серверу.
// редиректы не преследуются, любой статус ответа передается клиенту как есть.
// при обрыве клиента контекст запроса отменяет и исходящий вызов
func (s *Server) proxyRequest(w http.ResponseWriter, r *http.Request, rule model.Rule, targetURL string, start time.Time) {
	req, err := http.NewRequestWithContext(r.Context(), r.Method, targetURL, r.Body)
	if err != nil {
		s.proxyError(w, r, rule, targetURL, http.StatusInternalServerError, start, err)
		return
	}
	req.Header = r.Header.Clone()
	if target, err := url.Parse(rule.Target); err == nil {
		req.Host = target.Host
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.proxyError(w, r, rule, targetURL, http.StatusInternalServerError, start, err)
		return
	}
	defer resp.Body.Close()

	header := w.Header()
	for key, values := range resp.Header {
		if skipHeader(key) {
			continue
		}
		for _, v := range values {
			header.Add(key, v)
		}
	}
	w.WriteHeader(resp.StatusCode)

	size, copyErr := io.Copy(w, resp.Body)
	message := ""
	if copyErr != nil {
		message = copyErr.Error()
	}
	s.forwardLog.Append(s.newForwardEntry(r, rule, targetURL, resp.StatusCode, size, start, message))
}

// proxyError пишет ошибку переадресации в журнал и отвечает клиенту общим 500
// без деталей: подробности доступны только в журнале переадресаций
func (s *Server) proxyError(w http.ResponseWriter, r *http.Request, rule model.Rule, targetURL string, status int, start time.Time, err error) {
	s.logger.Error("ошибка переадресации",
		slog.String("источник", rule.Source),
		slog.String("цель", targetURL),
		slog.String("ошибка", err.Error()),
	)
	s.forwardLog.Append(s.newForwardEntry(r, rule, targetURL, status, 0, start, err.Error()))
	s.writeError(w, http.StatusInternalServerError, "не удалось переадресовать запрос")
}

func skipHeader(key string) bool {
	for _, h := range skipHeaders {
		if strings.EqualFold(h, key) {
			return true
		}
	}
	return false
}

func (s *Server) newForwardEntry(r *http.Request, rule model.Rule, targetURL string, status int, size int64, start time.Time, errorMessage string) model.LogEntry {
	ruleName := rule.Name
	if ruleName == "" {
		ruleName = "правило без названия"
	}
	return model.LogEntry{
		ID:           "fwd-" + uuid.New().String(),
		Timestamp:    time.Now(),
		Method:       r.Method,
		SourcePath:   r.URL.Path,
		Query:        queryMap(r),
		TargetURL:    targetURL,
		ForwardMode:  rule.Mode,
		RuleName:     ruleName,
		RuleID:       rule.ID,
		Status:       status,
		Duration:     fmt.Sprintf("%dms", time.Since(start).Milliseconds()),
		IP:           clientIP(r),
		UserAgent:    r.UserAgent(),
		ResponseSize: size,
		Success:      status >= 200 && status < 400,
		ErrorMessage: errorMessage,
	}
}

// ruleRequest тело запроса создания и обновления правила
type ruleRequest struct {
	Name      string `json:"name"`
	Mode      string `json:"mode"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	KeepQuery *bool  `json:"keepQuery"`
}

// getRules обработчик списка правил переадресации
func (s *Server) getRules(w http.ResponseWriter, r *http.Request) {
	list := s.rules.List()
	if list == nil {
		list = []model.Rule{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rules": list})
}

// createRule обработчик добавления правила
func (s *Server) createRule(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRule(w, r)
	if !ok {
		return
	}

	rule := model.Rule{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Mode:      ruleMode(req.Mode),
		Source:    req.Source,
		Target:    req.Target,
		KeepQuery: req.KeepQuery == nil || *req.KeepQuery,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.rules.Add(rule); err != nil {
		s.rulesError(w, err, "добавление правила")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rule": rule})
}

// updateRule обработчик обновления правила по id
func (s *Server) updateRule(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRule(w, r)
	if !ok {
		return
	}

	updated, err := s.rules.Update(s.param(r, "id"), model.Rule{
		Name:      req.Name,
		Mode:      ruleMode(req.Mode),
		Source:    req.Source,
		Target:    req.Target,
		KeepQuery: req.KeepQuery == nil || *req.KeepQuery,
	})
	if err != nil {
		s.rulesError(w, err, "обновление правила")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rule": updated})
}

// deleteRule обработчик удаления правила по id
func (s *Server) deleteRule(w http.ResponseWriter, r *http.Request) {
	if err := s.rules.Delete(s.param(r, "id")); err != nil {
		s.rulesError(w, err, "удаление правила")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) decodeRule(w http.ResponseWriter, r *http.Request) (ruleRequest, bool) {
	req := ruleRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "некорректное тело запроса"})
		return ruleRequest{}, false
	}
	if req.Source == "" || req.Target == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "не заданы источник или цель"})
		return ruleRequest{}, false
	}
	return req, true
}

func (s *Server) rulesError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, storage.ErrRuleSourceExists):
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "исходный путь уже занят"})
	case errors.Is(err, storage.ErrRuleNotFound):
		s.writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "правило не найдено"})
	default:
		s.logger.Error(op, slog.String("ошибка", err.Error()))
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "не удалось сохранить правила"})
	}
}

func ruleMode(mode string) string {
	if mode == model.ModeProxy {
		return model.ModeProxy
	}
	return model.ModeRedirect
}
