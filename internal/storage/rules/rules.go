// пакет rules хранит правила переадресации в json-документе {"rules": [...]}
package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/Sor85/miao-kit/internal/model"
	"github.com/Sor85/miao-kit/internal/storage"
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

// List возвращает все правила в порядке хранения.
// поврежденный или отсутствующий файл равнозначен пустому списку:
// переадресация в таком случае просто не срабатывает, остальные маршруты живут
func (s *Store) List() []model.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) Add(rule model.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := s.load()
	for _, r := range saved {
		if r.Source == rule.Source {
			return storage.ErrRuleSourceExists
		}
	}
	return s.save(append(saved, rule))
}

func (s *Store) Update(id string, rule model.Rule) (model.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := s.load()
	index := -1
	for i, r := range saved {
		if r.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return model.Rule{}, storage.ErrRuleNotFound
	}
	for i, r := range saved {
		if i != index && r.Source == rule.Source {
			return model.Rule{}, storage.ErrRuleSourceExists
		}
	}

	updated := saved[index]
	updated.Name = rule.Name
	updated.Mode = rule.Mode
	updated.Source = rule.Source
	updated.Target = rule.Target
	updated.KeepQuery = rule.KeepQuery
	updated.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	saved[index] = updated

	if err := s.save(saved); err != nil {
		return model.Rule{}, err
	}
	return updated, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := s.load()
	for i, r := range saved {
		if r.ID == id {
			return s.save(append(saved[:i], saved[i+1:]...))
		}
	}
	return storage.ErrRuleNotFound
}

func (s *Store) load() []model.Rule {
	body, err := os.ReadFile(s.file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		s.log.Error("чтение файла правил", slog.String("файл", s.file), slog.String("ошибка", err.Error()))
		return nil
	}
	doc := model.RulesDocument{}
	if err := json.Unmarshal(body, &doc); err != nil {
		s.log.Error("разбор файла правил", slog.String("файл", s.file), slog.String("ошибка", err.Error()))
		return nil
	}
	return doc.Rules
}

func (s *Store) save(saved []model.Rule) error {
	if saved == nil {
		saved = []model.Rule{}
	}
	body, err := json.MarshalIndent(model.RulesDocument{Rules: saved}, "", "  ")
	if err != nil {
		return fmt.Errorf("кодирование файла правил. %w", err)
	}
	if err := os.WriteFile(s.file, body, 0o644); err != nil {
		return fmt.Errorf("запись файла правил. %w", err)
	}
	return nil
}
