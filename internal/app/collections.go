package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Sor85/miao-kit/internal/collections"
	"github.com/Sor85/miao-kit/internal/model"
)

// listCollections обработчик списка коллекций в сохраненном порядке
func (s *Server) listCollections(w http.ResponseWriter, r *http.Request) {
	list, err := s.collections.List()
	if err != nil {
		s.logger.Error("список коллекций", "ошибка", err.Error())
		s.writeError(w, http.StatusInternalServerError, "не удалось получить список коллекций")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"collections": list})
}

// collectionDetail обработчик содержимого коллекции
func (s *Server) collectionDetail(w http.ResponseWriter, r *http.Request) {
	name := s.param(r, "collection")
	images, err := s.collections.Detail(name)
	if errors.Is(err, collections.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "коллекция не найдена")
		return
	}
	if err != nil {
		s.logger.Error("содержимое коллекции", "ошибка", err.Error())
		s.writeError(w, http.StatusInternalServerError, "не удалось прочитать коллекцию")
		return
	}
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, fmt.Sprintf("/%s/%s", name, img))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"collection": name,
		"images":     images,
		"urls":       urls,
	})
}

// createCollection обработчик создания коллекции
func (s *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	name := s.param(r, "collection")
	err := s.collections.Create(name)
	switch {
	case errors.Is(err, collections.ErrInvalidName):
		s.writeError(w, http.StatusBadRequest, "имя коллекции не задано или недопустимо")
	case errors.Is(err, collections.ErrExists):
		s.writeError(w, http.StatusBadRequest, "коллекция уже существует")
	case err != nil:
		s.logger.Error("создание коллекции", "ошибка", err.Error())
		s.writeError(w, http.StatusInternalServerError, "не удалось создать коллекцию")
	default:
		s.writeJSON(w, http.StatusOK, map[string]string{
			"message":    "коллекция создана",
			"collection": name,
		})
	}
}

// renameCollection обработчик переименования коллекции
func (s *Server) renameCollection(w http.ResponseWriter, r *http.Request) {
	oldName := s.param(r, "collection")

	req := model.RenameCollectionRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "некорректное тело запроса")
		return
	}

	err := s.collections.Rename(oldName, req.NewName)
	switch {
	case errors.Is(err, collections.ErrInvalidName):
		s.writeError(w, http.StatusBadRequest, "новое имя не задано или недопустимо")
	case errors.Is(err, collections.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "коллекция не найдена")
	case errors.Is(err, collections.ErrExists):
		s.writeError(w, http.StatusBadRequest, "новое имя уже занято")
	case err != nil:
		s.logger.Error("переименование коллекции", "ошибка", err.Error())
		s.writeError(w, http.StatusInternalServerError, "не удалось переименовать коллекцию")
	default:
		s.writeJSON(w, http.StatusOK, map[string]string{
			"message": "коллекция переименована",
			"oldName": oldName,
			"newName": req.NewName,
		})
	}
}

// deleteCollection обработчик удаления коллекции вместе с содержимым
func (s *Server) deleteCollection(w http.ResponseWriter, r *http.Request) {
	name := s.param(r, "collection")
	err := s.collections.Delete(name)
	switch {
	case errors.Is(err, collections.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "коллекция не найдена")
	case err != nil:
		s.logger.Error("удаление коллекции", "ошибка", err.Error())
		s.writeError(w, http.StatusInternalServerError, "не удалось удалить коллекцию")
	default:
		s.writeJSON(w, http.StatusOK, map[string]string{
			"message":    "коллекция удалена",
			"collection": name,
		})
	}
}

// saveOrder обработчик сохранения порядка коллекций целиком
func (s *Server) saveOrder(w http.ResponseWriter, r *http.Request) {
	req := model.SaveOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Order == nil {
		s.writeError(w, http.StatusBadRequest, "порядок должен быть массивом имен")
		return
	}
	s.collections.SaveOrder(req.Order)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "порядок сохранен",
		"order":   req.Order,
	})
}
