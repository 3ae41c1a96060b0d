// пакет app собирает http-сервер сервиса --
// коллекции изображений, загрузку, переадресацию и журналы запросов
package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/Sor85/miao-kit/internal/collections"
	"github.com/Sor85/miao-kit/internal/config"
	"github.com/Sor85/miao-kit/internal/fsutil"
	"github.com/Sor85/miao-kit/internal/reqlog"
	"github.com/Sor85/miao-kit/internal/storage"
	"github.com/Sor85/miao-kit/internal/storage/order"
	"github.com/Sor85/miao-kit/internal/storage/rules"
)

type Server struct {
	Config config.Config

	logger      *slog.Logger
	collections *collections.Manager
	rules       storage.RuleStorager
	accessLog   *reqlog.Log
	forwardLog  *reqlog.Log
	client      *http.Client
}

func NewServer(cfg config.Config, log *slog.Logger) (*Server, error) {
	if err := fsutil.EnsureDir(cfg.UploadDir); err != nil {
		return nil, fmt.Errorf("создание корня загрузок. %w", err)
	}
	orderStore := order.NewStore(cfg.OrderFile, log)
	return &Server{
		Config:      cfg,
		logger:      log,
		collections: collections.NewManager(cfg.UploadDir, orderStore),
		rules:       rules.NewStore(cfg.RulesFile, log),
		accessLog:   reqlog.NewLog(cfg.MaxLogs),
		forwardLog:  reqlog.NewLog(cfg.MaxLogs),
		client: &http.Client{
			// редиректы вышестоящего сервера отдаются клиенту как есть
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("запуск сервера",
		slog.String("адрес", s.Config.Address),
		slog.String("каталог загрузок", s.Config.UploadDir),
	)
	return http.ListenAndServe(s.Config.Address, s.Handler())
}

// Handler собирает маршруты сервиса. пути, не занятые явными маршрутами,
// уходят в цепочку fallback: правила переадресации, затем отдача изображений.
// сжатие ответов включается только на собственных json-ручках:
// ответы переадресации и файлы отдаются байт в байт
func (s *Server) Handler() http.Handler {
	mux := chi.NewRouter()

	mux.Route("/api", func(r chi.Router) {
		r.Use(withGZIP)
		r.Route("/collections", func(r chi.Router) {
			r.Post("/-order", s.saveOrder)
			r.Post("/{collection}", s.createCollection)
			r.Put("/{collection}", s.renameCollection)
			r.Delete("/{collection}", s.deleteCollection)
		})
		r.Route("/images", func(r chi.Router) {
			r.Post("/check-conflicts/{collection}", s.checkConflicts)
			r.Delete("/{collection}/{filename}", s.deleteImage)
		})
		r.Route("/logs", func(r chi.Router) {
			r.Get("/", s.getLogs)
			r.Get("/{id}", s.getLogByID)
			r.Delete("/", s.clearLogs)
		})
		r.Route("/forward", func(r chi.Router) {
			r.Route("/logs", func(r chi.Router) {
				r.Get("/", s.getForwardLogs)
				r.Get("/{id}", s.getForwardLogByID)
				r.Delete("/", s.clearForwardLogs)
			})
			r.Route("/rules", func(r chi.Router) {
				r.Get("/", s.getRules)
				r.Post("/", s.createRule)
				r.Put("/{id}", s.updateRule)
				r.Delete("/{id}", s.deleteRule)
			})
		})
	})

	mux.Group(func(r chi.Router) {
		r.Use(withGZIP, s.withUploadLog)
		r.Post("/upload", s.upload)
		r.Post("/upload/{collection}", s.upload)
	})

	mux.Group(func(r chi.Router) {
		r.Use(withGZIP)
		r.Get("/collections", s.listCollections)
		r.Get("/collections/{collection}", s.collectionDetail)
	})

	mux.NotFound(s.fallback)
	mux.MethodNotAllowed(s.fallback)

	return mux
}

// fallback обрабатывает пути без явного маршрута:
// сначала правила переадресации, затем прямое обращение к изображению,
// затем случайное изображение коллекции
func (s *Server) fallback(w http.ResponseWriter, r *http.Request) {
	if s.forward(w, r) {
		return
	}
	if r.Method == http.MethodGet {
		if s.serveImage(w, r) {
			return
		}
		if s.randomImage(w, r) {
			return
		}
	}
	http.NotFound(w, r)
}

// writeJSON отвечает json с отступами, как и остальные ручки сервиса
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.logger.Error("кодирование ответа", slog.String("ошибка", err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError отвечает json с полем error, стек клиенту не уходит
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// param достает параметр маршрута и снимает url-экранирование
func (s *Server) param(r *http.Request, name string) string {
	value := chi.URLParam(r, name)
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}

// clientIP возвращает адрес клиента без порта
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// queryMap переводит параметры запроса в плоскую карту для записи журнала
func queryMap(r *http.Request) map[string]string {
	values := r.URL.Query()
	if len(values) == 0 {
		return nil
	}
	query := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}
	return query
}
