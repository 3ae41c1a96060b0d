// пакет collections управляет жизненным циклом коллекций изображений.
// коллекция - это каталог внутри корня загрузок, база данных - сама файловая система
package collections

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Sor85/miao-kit/internal/fsutil"
	"github.com/Sor85/miao-kit/internal/storage"
	"github.com/Sor85/miao-kit/internal/storage/order"
)

var (
	ErrInvalidName = errors.New("недопустимое имя коллекции")
	ErrExists      = errors.New("коллекция уже существует")
	ErrNotFound    = errors.New("коллекция не найдена")
)

type Manager struct {
	uploadDir string
	order     storage.OrderStorager
}

func NewManager(uploadDir string, orderStore storage.OrderStorager) *Manager {
	return &Manager{
		uploadDir: uploadDir,
		order:     orderStore,
	}
}

// Dir возвращает путь каталога коллекции
func (m *Manager) Dir(name string) string {
	return filepath.Join(m.uploadDir, name)
}

// Create создает каталог коллекции и дописывает имя в порядок, если его там нет
func (m *Manager) Create(name string) error {
	if !fsutil.ValidName(name) {
		return ErrInvalidName
	}
	dir := m.Dir(name)
	if fsutil.Exists(dir) {
		return ErrExists
	}
	if err := fsutil.EnsureDir(dir); err != nil {
		return fmt.Errorf("создание коллекции %s. %w", name, err)
	}
	m.order.Add(name)
	return nil
}

// Rename атомарно переименовывает каталог и обновляет имя в порядке на месте.
// коллекция, которой не было в порядке, в него не добавляется
func (m *Manager) Rename(oldName, newName string) error {
	if !fsutil.ValidName(newName) {
		return ErrInvalidName
	}
	if !fsutil.ValidName(oldName) {
		return ErrNotFound
	}
	oldDir := m.Dir(oldName)
	newDir := m.Dir(newName)
	if !fsutil.Exists(oldDir) {
		return ErrNotFound
	}
	if fsutil.Exists(newDir) {
		return ErrExists
	}
	if err := os.Rename(oldDir, newDir); err != nil {
		return fmt.Errorf("переименование коллекции %s. %w", oldName, err)
	}
	m.order.Rename(oldName, newName)
	return nil
}

// Delete рекурсивно удаляет каталог коллекции и убирает имя из порядка
func (m *Manager) Delete(name string) error {
	if !fsutil.ValidName(name) {
		return ErrNotFound
	}
	dir := m.Dir(name)
	if !fsutil.Exists(dir) {
		return ErrNotFound
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("удаление коллекции %s. %w", name, err)
	}
	m.order.Remove(name)
	return nil
}

// List возвращает коллекции в сохраненном порядке, новые каталоги добавляются в хвост.
// имена из порядка без каталога на диске отбрасываются при чтении и не записываются
// обратно до следующей мутации
func (m *Manager) List() ([]string, error) {
	if err := fsutil.EnsureDir(m.uploadDir); err != nil {
		return nil, fmt.Errorf("создание корня загрузок. %w", err)
	}
	all, err := fsutil.ListDirs(m.uploadDir)
	if err != nil {
		return nil, err
	}
	return order.Merge(all, m.order.Load()), nil
}

// Detail возвращает имена изображений коллекции
func (m *Manager) Detail(name string) ([]string, error) {
	if !fsutil.ValidName(name) {
		return nil, ErrNotFound
	}
	dir := m.Dir(name)
	if !fsutil.Exists(dir) {
		return nil, ErrNotFound
	}
	return fsutil.ListImages(dir)
}

// SaveOrder перезаписывает сохраненный порядок целиком. состав не проверяется:
// расхождения с диском лечатся при следующем List
func (m *Manager) SaveOrder(saved []string) {
	m.order.Save(saved)
}
