// пакет reqlog реализует ограниченный журнал запросов в памяти.
// записи хранятся от новых к старым, при переполнении вытесняется самая старая.
// журнал не переживает перезапуск процесса - это осознанное упрощение
package reqlog

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sor85/miao-kit/internal/model"
)

var ErrEntryNotFound = errors.New("запись журнала не найдена")

// Filter независимые условия отбора записей. пустое значение или "all" отключает условие
type Filter struct {
	// TimeRange количество часов от текущего момента либо "all"
	TimeRange string
	// Method метод запроса, сравнивается без учета регистра
	Method string
	// Status "success" или "error"
	Status string
	// Collection имя коллекции, ищется как подстрока "/имя" в пути (только журнал обращений)
	Collection string
	// Mode режим переадресации (только журнал переадресаций)
	Mode string
	// RuleID идентификатор правила (только журнал переадресаций)
	RuleID string
}

// Stats сводка по всему журналу, независимо от фильтров
type Stats struct {
	Total   int            `json:"total"`
	Success int            `json:"success"`
	Error   int            `json:"error"`
	Methods map[string]int `json:"methods"`
	Modes   map[string]int `json:"modes,omitempty"`
}

type Log struct {
	mu      sync.Mutex
	max     int
	entries []model.LogEntry
}

// NewLog создает журнал, хранящий не больше max записей
func NewLog(max int) *Log {
	return &Log{
		max:     max,
		entries: make([]model.LogEntry, 0, max),
	}
}

// Append вставляет запись в начало журнала и вытесняет самую старую при переполнении
func (l *Log) Append(entry model.LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]model.LogEntry{entry}, l.entries...)
	if len(l.entries) > l.max {
		l.entries = l.entries[:l.max]
	}
}

// List возвращает копию всех записей от новых к старым
func (l *Log) List() []model.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := make([]model.LogEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// GetByID ищет запись линейным проходом. журнал маленький, индекс не нужен
func (l *Log) GetByID(id string) (model.LogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return model.LogEntry{}, ErrEntryNotFound
}

// Filter возвращает записи, прошедшие все условия, с сохранением порядка
func (l *Log) Filter(f Filter) []model.LogEntry {
	entries := l.List()
	filtered := make([]model.LogEntry, 0, len(entries))
	cutoff, withCutoff := f.cutoff()
	for _, e := range entries {
		if withCutoff && e.Timestamp.Before(cutoff) {
			continue
		}
		if enabled(f.Method) && !strings.EqualFold(e.Method, f.Method) {
			continue
		}
		if f.Status == "success" && !e.Success {
			continue
		}
		if f.Status == "error" && e.Success {
			continue
		}
		if enabled(f.Collection) && !strings.Contains(e.Path, "/"+f.Collection) {
			continue
		}
		if enabled(f.Mode) && e.ForwardMode != f.Mode {
			continue
		}
		if enabled(f.RuleID) && e.RuleID != f.RuleID {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// Stats считает сводку по полному журналу: интерфейс показывает общее
// состояние рядом с отфильтрованным списком
func (l *Log) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	stats := Stats{
		Total:   len(l.entries),
		Methods: make(map[string]int),
	}
	for _, e := range l.entries {
		if e.Success {
			stats.Success++
		} else {
			stats.Error++
		}
		stats.Methods[e.Method]++
		if e.ForwardMode != "" {
			if stats.Modes == nil {
				stats.Modes = make(map[string]int)
			}
			stats.Modes[e.ForwardMode]++
		}
	}
	return stats
}

// Clear очищает журнал и возвращает число удаленных записей
func (l *Log) Clear() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := len(l.entries)
	l.entries = l.entries[:0]
	return count
}

func enabled(value string) bool {
	return value != "" && value != "all"
}

func (f Filter) cutoff() (time.Time, bool) {
	if !enabled(f.TimeRange) {
		return time.Time{}, false
	}
	hours, err := strconv.Atoi(f.TimeRange)
	if err != nil || hours <= 0 {
		return time.Time{}, false
	}
	return time.Now().Add(-time.Duration(hours) * time.Hour), true
}
