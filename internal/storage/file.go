package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"hazard-admin/internal/models"

	"go.uber.org/zap"
)

// FileStore keeps the list in <dir>/<namespace>.json.
type FileStore struct {
	path string
	logr *zap.Logger
}

func NewFileStore(dir, namespace string, logr *zap.Logger) *FileStore {
	return &FileStore{
		path: filepath.Join(dir, namespace+".json"),
		logr: logr,
	}
}

// Path is the file the list is written to.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Save(_ context.Context, zones []models.HazardZone) error {
	b, err := encodeZones(zones)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// Atomic-ish write: tmp then rename.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context) ([]models.HazardZone, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.HazardZone{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return decodeZones(b, s.path, s.logr), nil
}
