package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ticolibre/score-cards/pkg/sanitize"
)

// ErrNotFound возвращается, когда файла с запрошенным именем нет в хранилище.
var ErrNotFound = errors.New("file not found")

// FileStore — плоский каталог файлов с безопасными именами. Имя очищается и
// при записи, и при чтении, так что наружу каталог не просвечивает.
type FileStore interface {
	Put(name string, content []byte) (string, error)
	Get(name string) ([]byte, error)
	Resolve(name string) (string, error)
}

type localStore struct {
	dir    string
	logger zerolog.Logger
}

// NewLocalStore создаёт хранилище в каталоге dir. Пустой dir означает
// временный каталог, который живёт столько же, сколько процесс.
func NewLocalStore(dir string, logger zerolog.Logger) (FileStore, error) {
	if dir == "" {
		tmp, err := os.MkdirTemp("", "score-cards-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create storage dir: %w", err)
		}
		dir = tmp
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}

	logger.Info().Str("dir", dir).Msg("File store ready")

	return &localStore{dir: dir, logger: logger}, nil
}

// Put записывает content под очищенным именем и возвращает это имя.
// Существующий файл молча перезаписывается.
func (s *localStore) Put(name string, content []byte) (string, error) {
	safe := sanitize.Filename(name)
	if safe == "" {
		return "", fmt.Errorf("file name %q is empty after sanitization", name)
	}

	// Пишем во временный файл и переименовываем: параллельное скачивание
	// не должно увидеть недописанный документ. Ведущая точка гарантирует,
	// что Resolve такой файл не найдёт — очищенные имена с точки не начинаются
	tmp, err := os.CreateTemp(s.dir, ".tmp-"+safe+"-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write %s: %w", safe, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write %s: %w", safe, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, safe)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store %s: %w", safe, err)
	}

	return safe, nil
}

// Resolve возвращает путь к файлу с очищенным именем либо ErrNotFound,
// что бы ни попросил клиент.
func (s *localStore) Resolve(name string) (string, error) {
	safe := sanitize.Filename(name)
	if safe == "" {
		return "", ErrNotFound
	}

	path := filepath.Join(s.dir, safe)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}

	return path, nil
}

func (s *localStore) Get(name string) ([]byte, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	return content, nil
}
