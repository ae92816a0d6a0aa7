package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mlecomte/papote/internal/models"
)

// FileStore keeps the whole user collection in a single JSON file. The mutex
// only serializes file access; it does not close the read-modify-write window
// between LoadAll and SaveAll.
type FileStore struct {
	path string
	log  *logrus.Logger

	mu sync.Mutex
}

func New(path string, log *logrus.Logger) (*FileStore, error) {
	s := &FileStore{path: path, log: log}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.write([]models.User{}); err != nil {
			return nil, fmt.Errorf("initialize user store: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat user store: %w", err)
	}
	return s, nil
}

func (s *FileStore) LoadAll() ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user store: %w", err)
	}

	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		// Availability over durability: a corrupt file degrades to an
		// empty collection instead of failing the request.
		s.log.WithError(err).WithField("path", s.path).
			Warn("user store is corrupt, treating it as empty")
		return []models.User{}, nil
	}

	models.NormalizeUsers(users)
	return users, nil
}

func (s *FileStore) SaveAll(users []models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(users)
}

// write replaces the file content atomically via a temp file and rename, so
// readers never observe a partial write.
func (s *FileStore) write(users []models.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write user store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace user store: %w", err)
	}
	return nil
}
