package app

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sor85/miao-kit/internal/model"
)

type contextKey string

const bodyCaptureKey contextKey = "bodyCapture"

// bodyCapture позволяет обработчику загрузки передать поля формы
// в запись журнала, которую создает middleware после ответа
type bodyCapture struct {
	fields map[string]string
}

func captureFrom(ctx context.Context) *bodyCapture {
	capture, _ := ctx.Value(bodyCaptureKey).(*bodyCapture)
	return capture
}

type responseData struct {
	status int
	size   int64
}

type loggingResponseWriter struct {
	http.ResponseWriter
	responseData *responseData
}

func (r *loggingResponseWriter) Write(b []byte) (int, error) {
	if r.responseData.status == 0 {
		r.responseData.status = http.StatusOK
	}
	size, err := r.ResponseWriter.Write(b)
	r.responseData.size += int64(size)
	return size, err
}

func (r *loggingResponseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.responseData.status = statusCode
}

// withUploadLog пишет запросы загрузки в журнал обращений.
// запись добавляется после того, как ответ уже отправлен,
// и не может сломать сам ответ
func (s *Server) withUploadLog(h http.Handler) http.Handler {
	logFn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lw := loggingResponseWriter{
			ResponseWriter: w,
			responseData:   &responseData{},
		}
		capture := &bodyCapture{}
		r = r.WithContext(context.WithValue(r.Context(), bodyCaptureKey, capture))

		h.ServeHTTP(&lw, r)

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
			RequestBody:  capture.fields,
			ResponseSize: lw.responseData.size,
			Success:      status >= 200 && status < 400,
		})
	}

	return http.HandlerFunc(logFn)
}

type (
	gzipWriter struct {
		http.ResponseWriter
		gzw         *gzip.Writer
		wroteHeader bool
		passthrough bool
	}
	gzipReader struct {
		orig io.ReadCloser
		gzr  *gzip.Reader
	}
)

// WriteHeader решает судьбу сжатия по уже выставленным заголовкам ответа:
// если обработчик сам задал Content-Encoding (ответ вышестоящего сервера при
// переадресации), тело уходит без изменений, иначе включается сжатие
// и снимается Content-Length, ставший неверным
func (gzw *gzipWriter) WriteHeader(statusCode int) {
	if !gzw.wroteHeader {
		gzw.wroteHeader = true
		if gzw.Header().Get("Content-Encoding") != "" {
			gzw.passthrough = true
		} else {
			gzw.Header().Set("Content-Encoding", "gzip")
			gzw.Header().Del("Content-Length")
		}
	}
	gzw.ResponseWriter.WriteHeader(statusCode)
}

func (gzw *gzipWriter) Write(p []byte) (int, error) {
	if !gzw.wroteHeader {
		gzw.WriteHeader(http.StatusOK)
	}
	if gzw.passthrough {
		return gzw.ResponseWriter.Write(p)
	}
	return gzw.gzw.Write(p)
}

func (gzr *gzipReader) Read(p []byte) (n int, err error) {
	return gzr.gzr.Read(p)
}

func (gzr *gzipReader) Close() error {
	if err := gzr.orig.Close(); err != nil {
		return err
	}
	return gzr.gzr.Close()
}

func withGZIP(h http.Handler) http.Handler {
	zfunc := func(w http.ResponseWriter, r *http.Request) {
		newWriter := w

		if gzipValidContenType(r.Header) {
			cw := &gzipWriter{
				ResponseWriter: w,
				gzw:            gzip.NewWriter(w),
			}
			newWriter = cw
			defer func() {
				if cw.wroteHeader && !cw.passthrough {
					cw.gzw.Close()
				}
			}()
		}

		if strings.Contains(r.Header.Get("content-encoding"), "gzip") {
			// оборачиваем тело запроса в io.Reader с поддержкой декомпрессии
			rzip, err := gzip.NewReader(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			gzr := &gzipReader{
				orig: r.Body,
				gzr:  rzip,
			}
			r.Body = gzr
			defer gzr.Close()
		}

		h.ServeHTTP(newWriter, r)
	}
	return http.HandlerFunc(zfunc)
}

func gzipValidContenType(header http.Header) bool {
	validContentType := []string{
		"text/html",
		"application/json",
	}
	if !strings.Contains(header.Get("accept-encoding"), "gzip") {
		return false
	}
	for _, ct := range validContentType {
		if strings.Contains(header.Get("content-type"), ct) {
			return true
		}
	}
	return false
}
