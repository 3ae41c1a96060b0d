// пакет fsutil содержит примитивы работы с каталогами и файлами коллекций
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// imageExtensions расширения файлов, считающихся изображениями
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".svg":  {},
}

// IsImage проверяет расширение файла по списку разрешенных
func IsImage(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ValidName проверяет, что имя не пустое и не выходит за пределы своего каталога
func ValidName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	if name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// EnsureDir создает каталог вместе с родительскими, если его еще нет
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// Exists проверяет существование файла или каталога
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FixEncoding чинит имя файла, пришедшее в однобайтовой кодировке:
// байты latin1 заново читаются как utf-8. если перечитать не получилось,
// имя возвращается без изменений
func FixEncoding(name string) string {
	raw, err := charmap.ISO8859_1.NewEncoder().String(name)
	if err != nil || !utf8.ValidString(raw) {
		return name
	}
	return raw
}

// ListDirs возвращает имена подкаталогов dir
func ListDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("чтение каталога %s. %w", dir, err)
	}
	dirs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}

// ListImages возвращает имена файлов-изображений в каталоге dir
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("чтение каталога %s. %w", dir, err)
	}
	images := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && IsImage(e.Name()) {
			images = append(images, e.Name())
		}
	}
	sort.Strings(images)
	return images, nil
}

// CreateUnique создает в dir новый файл с именем name. если имя занято,
// перед расширением добавляется числовой суффикс в скобках: name(1).png, name(2).png и так далее.
// файл открывается в эксклюзивном режиме, поэтому две параллельные загрузки
// не получат одно и то же имя
func CreateUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := name
	for counter := 1; ; counter++ {
		f, err := os.OpenFile(filepath.Join(dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("создание файла %s. %w", candidate, err)
		}
		candidate = fmt.Sprintf("%s(%d)%s", base, counter, ext)
	}
}

// CreateReplace создает файл с именем name, перезаписывая существующий
func CreateReplace(dir, name string) (*os.File, error) {
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("создание файла %s. %w", name, err)
	}
	return f, nil
}
