package app

import (
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sor85/miao-kit/internal/fsutil"
	"github.com/Sor85/miao-kit/internal/model"
)

// serveImage отдает файл по пути /коллекция/файл. возвращает false,
// если путь не похож на изображение - тогда очередь за другими обработчиками.
// обращения с gallery=1 поступают из сетки предпросмотра и в журнал не пишутся
func (s *Server) serveImage(w http.ResponseWriter, r *http.Request) bool {
	collection, filename, ok := splitImagePath(r.URL.Path)
	if !ok || !fsutil.ValidName(collection) || !fsutil.IsImage(filename) {
		return false
	}
	path := filepath.Join(s.Config.UploadDir, collection, filename)
	if !fsutil.Exists(path) {
		return false
	}

	isRandom := r.URL.Query().Get("random") == "1"
	isGallery := r.URL.Query().Get("gallery") == "1"
	start := time.Now()

	lw := loggingResponseWriter{
		ResponseWriter: w,
		responseData:   &responseData{},
	}
	http.ServeFile(&lw, r, path)

	if isGallery {
		return true
	}

	status := lw.responseData.status
	if status == 0 {
		status = http.StatusOK
	}
	s.accessLog.Append(model.LogEntry{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		Method:       r.Method,
		Path:         r.URL.Path,
		Query:        queryMap(r),
		Status:       status,
		Duration:     fmt.Sprintf("%dms", time.Since(start).Milliseconds()),
		IP:           clientIP(r),
		UserAgent:    r.UserAgent(),
		ResponseSize: lw.responseData.size,
		Success:      status >= 200 && status < 400,
		IsRandom:     isRandom,
	})
	return true
}

// randomImage выбирает случайное изображение коллекции и отвечает редиректом
// на прямой путь с меткой random=1: в журнал попадет само обращение к файлу,
// а не редирект, иначе одна логическая выдача считалась бы дважды
func (s *Server) randomImage(w http.ResponseWriter, r *http.Request) bool {
	name := strings.Trim(r.URL.Path, "/")
	if !fsutil.ValidName(name) {
		return false
	}
	dir := filepath.Join(s.Config.UploadDir, name)
	if !fsutil.Exists(dir) {
		return false
	}

	images, err := fsutil.ListImages(dir)
	if err != nil {
		http.Error(w, "не удалось прочитать коллекцию", http.StatusInternalServerError)
		return true
	}
	if len(images) == 0 {
		http.Error(w, "в коллекции нет изображений", http.StatusNotFound)
		return true
	}

	picked := images[rand.Intn(len(images))]
	target := fmt.Sprintf("/%s/%s?random=1", url.PathEscape(name), url.PathEscape(picked))
	http.Redirect(w, r, target, http.StatusFound)
	return true
}

// splitImagePath разбирает путь вида /коллекция/файл
func splitImagePath(path string) (collection, filename string, ok bool) {
	// r.URL.Path уже раскодирован пакетом net/http
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], filepath.Base(parts[1]), true
}
