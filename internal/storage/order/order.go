// пакет order хранит порядок отображения коллекций в json-файле
package order

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sync"
)

type Store struct {
	mu   sync.Mutex
	file string
	log  *slog.Logger
}

func NewStore(file string, log *slog.Logger) *Store {
	return &Store{
		file: file,
		log:  log,
	}
}

func (s *Store) Load() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) Save(order []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(order)
}

func (s *Store) Add(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := s.load()
	for _, n := range saved {
		if n == name {
			return
		}
	}
	s.save(append(saved, name))
}

func (s *Store) Rename(oldName, newName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := s.load()
	for i, n := range saved {
		if n == oldName {
			saved[i] = newName
			s.save(saved)
			return
		}
	}
}

func (s *Store) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := s.load()
	for i, n := range saved {
		if n == name {
			s.save(append(saved[:i], saved[i+1:]...))
			return
		}
	}
}

// load читает файл порядка. отсутствующий или нечитаемый файл равнозначен пустому
func (s *Store) load() []string {
	body, err := os.ReadFile(s.file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		s.log.Error("чтение файла порядка", slog.String("файл", s.file), slog.String("ошибка", err.Error()))
		return nil
	}
	var saved []string
	if err := json.Unmarshal(body, &saved); err != nil {
		s.log.Error("разбор файла порядка", slog.String("файл", s.file), slog.String("ошибка", err.Error()))
		return nil
	}
	return saved
}

// save перезаписывает файл целиком. ошибка записи попадает только в лог
func (s *Store) save(order []string) {
	body, err := json.MarshalIndent(order, "", "  ")
	if err != nil {
		s.log.Error("кодирование файла порядка", slog.String("ошибка", err.Error()))
		return
	}
	if err := os.WriteFile(s.file, body, 0o644); err != nil {
		s.log.Error("запись файла порядка", slog.String("файл", s.file), slog.String("ошибка", err.Error()))
	}
}

// Merge объединяет сохраненный порядок с актуальным списком каталогов:
// сначала сохраненные имена, которые еще существуют, в своем порядке,
// затем новые каталоги в порядке обхода файловой системы
func Merge(all, saved []string) []string {
	allSet := make(map[string]struct{}, len(all))
	for _, n := range all {
		allSet[n] = struct{}{}
	}
	merged := make([]string, 0, len(all))
	orderedSet := make(map[string]struct{}, len(saved))
	for _, n := range saved {
		if _, ok := allSet[n]; ok {
			merged = append(merged, n)
			orderedSet[n] = struct{}{}
		}
	}
	for _, n := range all {
		if _, ok := orderedSet[n]; !ok {
			merged = append(merged, n)
		}
	}
	return merged
}
