package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Sor85/miao-kit/internal/fsutil"
	"github.com/Sor85/miao-kit/internal/model"
)

// upload принимает multipart-форму с файлами и раскладывает их по коллекции.
// файлы неподдерживаемых типов молча пропускаются: клиент сравнивает count
// с числом отправленных файлов и сам понимает, что партия прошла частично
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	collection := s.param(r, "collection")
	replace := r.URL.Query().Get("replace") == "true"

	mr, err := r.MultipartReader()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "ожидается multipart запрос")
		return
	}

	var (
		dir      string
		fields   map[string]string
		uploaded = make([]model.UploadedFile, 0)
	)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "не удалось прочитать форму")
			return
		}

		// обычное поле формы: имя коллекции может прийти и так
		if part.FileName() == "" {
			value, _ := io.ReadAll(io.LimitReader(part, maxFieldSize))
			if fields == nil {
				fields = make(map[string]string)
			}
			fields[part.FormName()] = string(value)
			if part.FormName() == "collection" && collection == "" {
				collection = string(value)
			}
			continue
		}

		if collection == "" {
			s.writeError(w, http.StatusBadRequest, "не указана коллекция")
			return
		}
		if !fsutil.ValidName(collection) {
			s.writeError(w, http.StatusBadRequest, "недопустимое имя коллекции")
			return
		}
		if dir == "" {
			dir = filepath.Join(s.Config.UploadDir, collection)
			if err := fsutil.EnsureDir(dir); err != nil {
				s.logger.Error("создание каталога коллекции", slog.String("ошибка", err.Error()))
				s.writeError(w, http.StatusInternalServerError, "не удалось создать каталог коллекции")
				return
			}
		}

		name := fsutil.FixEncoding(filepath.Base(part.FileName()))
		if !s.Config.AllowedType(part.Header.Get("Content-Type")) {
			s.logger.Warn("пропущен файл неподдерживаемого типа",
				slog.String("файл", name),
				slog.String("тип", part.Header.Get("Content-Type")),
			)
			continue
		}

		finalName, err := s.saveFile(dir, name, part, replace)
		if errors.Is(err, errFileTooLarge) {
			s.writeError(w, http.StatusBadRequest,
				fmt.Sprintf("файл %s больше допустимых %d байт", name, s.Config.MaxFileSize))
			return
		}
		if err != nil {
			s.logger.Error("сохранение файла", slog.String("файл", name), slog.String("ошибка", err.Error()))
			s.writeError(w, http.StatusInternalServerError, "не удалось сохранить файл")
			return
		}

		uploaded = append(uploaded, model.UploadedFile{
			Filename: finalName,
			URL:      fmt.Sprintf("/%s/%s", collection, finalName),
		})
	}

	if collection == "" {
		s.writeError(w, http.StatusBadRequest, "не указана коллекция")
		return
	}

	if capture := captureFrom(r.Context()); capture != nil && len(fields) > 0 {
		capture.fields = fields
	}

	s.writeJSON(w, http.StatusOK, model.UploadResponse{
		Collection: collection,
		Count:      len(uploaded),
		Files:      uploaded,
		Replaced:   replace,
	})
}

var errFileTooLarge = errors.New("файл слишком большой")

// maxFieldSize предел значения обычного поля формы, попадающего в журнал
const maxFieldSize = 1 << 20

// saveFile записывает один файл партии. в режиме замены существующий файл
// перезаписывается, иначе имя получает числовой суффикс до первого свободного.
// файл больше лимита отбрасывается и прерывает всю партию
func (s *Server) saveFile(dir, name string, src io.Reader, replace bool) (string, error) {
	var (
		dst       *os.File
		finalName string
		err       error
	)
	if replace {
		finalName = name
		dst, err = fsutil.CreateReplace(dir, name)
	} else {
		dst, finalName, err = fsutil.CreateUnique(dir, name)
	}
	if err != nil {
		return "", err
	}

	written, err := io.Copy(dst, io.LimitReader(src, s.Config.MaxFileSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(dir, finalName))
		return "", fmt.Errorf("запись файла %s. %w", finalName, err)
	}
	if written > s.Config.MaxFileSize {
		_ = os.Remove(filepath.Join(dir, finalName))
		return "", errFileTooLarge
	}
	return finalName, nil
}

// checkConflicts проверяет, какие из имен уже заняты в коллекции.
// сравнение точное: возможные суффиксы после починки кодировки не предсказываются
func (s *Server) checkConflicts(w http.ResponseWriter, r *http.Request) {
	collection := s.param(r, "collection")

	req := model.CheckConflictsRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Filenames == nil {
		s.writeError(w, http.StatusBadRequest, "параметры запроса некорректны")
		return
	}

	conflicts := make([]string, 0)
	dir := filepath.Join(s.Config.UploadDir, collection)
	if fsutil.ValidName(collection) && fsutil.Exists(dir) {
		existing, err := fsutil.ListImages(dir)
		if err != nil {
			s.logger.Error("проверка конфликтов", slog.String("ошибка", err.Error()))
			s.writeError(w, http.StatusInternalServerError, "не удалось прочитать коллекцию")
			return
		}
		existingSet := make(map[string]struct{}, len(existing))
		for _, name := range existing {
			existingSet[name] = struct{}{}
		}
		for _, name := range req.Filenames {
			if _, ok := existingSet[name]; ok {
				conflicts = append(conflicts, name)
			}
		}
	}

	s.writeJSON(w, http.StatusOK, model.CheckConflictsResponse{Conflicts: conflicts})
}

// deleteImage удаляет одно изображение коллекции
func (s *Server) deleteImage(w http.ResponseWriter, r *http.Request) {
	collection := s.param(r, "collection")
	filename := filepath.Base(s.param(r, "filename"))

	path := filepath.Join(s.Config.UploadDir, collection, filename)
	if !fsutil.ValidName(collection) || !fsutil.Exists(path) {
		s.writeError(w, http.StatusNotFound, "изображение не найдено")
		return
	}
	if err := os.Remove(path); err != nil {
		s.logger.Error("удаление изображения", slog.String("ошибка", err.Error()))
		s.writeError(w, http.StatusInternalServerError, "не удалось удалить изображение")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message":  "изображение удалено",
		"filename": filename,
	})
}
