package storage

import (
	"errors"

	"github.com/Sor85/miao-kit/internal/model"
)

var (
	ErrRuleNotFound     = errors.New("правило не найдено")
	ErrRuleSourceExists = errors.New("исходный путь уже занят")
)

// OrderStorager контракт хранилища порядка коллекций.
// ошибки записи не возвращаются: файл маленький, операции редкие,
// неудачная запись пишется в лог оператора и лечится следующей мутацией
type OrderStorager interface {
	// Load читает сохраненный порядок. нечитаемый файл равнозначен пустому
	Load() []string

	// Save перезаписывает порядок целиком без проверки существования коллекций
	Save(order []string)

	// Add дописывает имя в конец порядка, если его там еще нет
	Add(name string)

	// Rename заменяет имя на новое, сохраняя позицию. отсутствующее имя не добавляется
	Rename(oldName, newName string)

	// Remove убирает имя из порядка
	Remove(name string)
}

// RuleStorager контракт хранилища правил переадресации
type RuleStorager interface {
	// List возвращает все правила. нечитаемый файл равнозначен пустому списку
	List() []model.Rule

	// Add добавляет правило. источник должен быть уникален среди всех правил
	Add(rule model.Rule) error

	// Update обновляет правило по id, не меняя id и дату создания
	Update(id string, rule model.Rule) (model.Rule, error)

	// Delete удаляет правило по id
	Delete(id string) error
}
