package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists attachment bytes outside the database.
type Store interface {
	Save(fileName string, data []byte) (string, error)
	Open(key string) ([]byte, error)
	Remove(key string) error
}

// localStore keeps blobs on the local filesystem under a configured root.
// Keys are opaque; the original file name only survives as an extension hint.
type localStore struct {
	root string
}

// NewLocalStore creates the root directory if needed.
func NewLocalStore(root string) (Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &localStore{root: root}, nil
}

func (s *localStore) Save(fileName string, data []byte) (string, error) {
	key := uuid.NewString()
	if ext := filepath.Ext(fileName); ext != "" && len(ext) <= 10 {
		key += ext
	}
	if err := os.WriteFile(filepath.Join(s.root, key), data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return key, nil
}

func (s *localStore) Open(key string) ([]byte, error) {
	if strings.Contains(key, "/") || strings.Contains(key, "..") {
		return nil, fmt.Errorf("invalid blob key %q", key)
	}
	data, err := os.ReadFile(filepath.Join(s.root, key))
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

func (s *localStore) Remove(key string) error {
	if strings.Contains(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("invalid blob key %q", key)
	}
	if err := os.Remove(filepath.Join(s.root, key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
