package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImage(t *testing.T) {
	tests := []struct {
		name string
		file string
		want bool
	}{
		{"jpg строчными", "cat.jpg", true},
		{"jpeg", "cat.jpeg", true},
		{"png прописными", "CAT.PNG", true},
		{"gif", "x.gif", true},
		{"webp", "x.webp", true},
		{"svg", "logo.svg", true},
		{"без расширения", "cat", false},
		{"текстовый файл", "notes.txt", false},
		{"расширение в середине", "cat.png.txt", false},
	}
	for _, tt := range tests {
		assert.EqualValues(t, tt.want, IsImage(tt.file), tt.name)
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"обычное имя", "wallpapers", true},
		{"имя с пробелом внутри", "мои обои", true},
		{"пустая строка", "", false},
		{"только пробелы", "   ", false},
		{"точка", ".", false},
		{"две точки", "..", false},
		{"выход из каталога", "../etc", false},
		{"прямой слеш", "a/b", false},
		{"обратный слеш", `a\b`, false},
	}
	for _, tt := range tests {
		assert.EqualValues(t, tt.want, ValidName(tt.value), tt.name)
	}
}

func TestFixEncoding(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		// utf-8 байты имени "кот.png", прочитанные как latin1
		{"битая кодировка", "ÐºÐ¾Ñ.png", "кот.png"},
		{"обычное ascii-имя", "cat.png", "cat.png"},
		// символ вне latin1 закодировать нельзя - имя остается как есть
		{"имя уже в utf-8", "кот.png", "кот.png"},
		{"пустая строка", "", ""},
	}
	for _, tt := range tests {
		assert.EqualValues(t, tt.want, FixEncoding(tt.value), tt.name)
	}
}

func TestListDirsAndImages(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, EnsureDir(filepath.Join(root, "alpha")))
	require.NoError(t, EnsureDir(filepath.Join(root, "beta")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "alpha", "a.png"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "alpha", "b.JPG"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "alpha", "notes.txt"), []byte("x"), 0o644))

	dirs, err := ListDirs(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, dirs)

	images, err := ListImages(filepath.Join(root, "alpha"))
	require.NoError(t, err)
	assert.EqualValues(t, []string{"a.png", "b.JPG"}, images)

	_, err = ListImages(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestCreateUnique(t *testing.T) {
	dir := t.TempDir()

	expected := []string{"f.png", "f(1).png", "f(2).png"}
	for _, want := range expected {
		f, name, err := CreateUnique(dir, "f.png")
		require.NoError(t, err)
		require.NoError(t, f.Close())
		assert.EqualValues(t, want, name)
	}

	// файл без расширения тоже получает суффикс
	f, name, err := CreateUnique(dir, "raw")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.EqualValues(t, "raw", name)
	f, name, err = CreateUnique(dir, "raw")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.EqualValues(t, "raw(1)", name)
}

func TestCreateReplace(t *testing.T) {
	dir := t.TempDir()

	f, err := CreateReplace(dir, "f.png")
	require.NoError(t, err)
	_, err = f.WriteString("первая версия")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = CreateReplace(dir, "f.png")
	require.NoError(t, err)
	_, err = f.WriteString("вторая")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	body, err := os.ReadFile(filepath.Join(dir, "f.png"))
	require.NoError(t, err)
	assert.EqualValues(t, "вторая", string(body))
}
