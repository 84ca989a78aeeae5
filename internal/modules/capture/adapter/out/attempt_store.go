package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"fitlab/internal/modules/capture/domain"
	captureout "fitlab/internal/modules/capture/port/out"
	apperrors "fitlab/internal/platform/errors"
)

type fileAttempt struct {
	SchemaVersion int `json:"schema_version"`
	domain.Attempt
}

// FileAttemptStore keeps the current attempt in <workspace>/.fitlab so
// separate CLI runs can drive one attempt.
type FileAttemptStore struct {
	fs   afero.Fs
	path string
}

func NewFileAttemptStore(fsys afero.Fs, workspacePath string) captureout.AttemptStore {
	return &FileAttemptStore{fs: fsys, path: filepath.Join(workspacePath, ".fitlab", "active-attempt.json")}
}

func (s *FileAttemptStore) SaveActive(_ context.Context, attempt domain.Attempt) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create attempt dir: %w", err)
	}
	payload, err := json.MarshalIndent(fileAttempt{SchemaVersion: domain.SchemaVersion, Attempt: attempt}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write attempt: %w", err)
	}
	return nil
}

func (s *FileAttemptStore) LoadActive(_ context.Context) (domain.Attempt, error) {
	payload, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Attempt{}, apperrors.ErrNoActiveAttempt
		}
		return domain.Attempt{}, fmt.Errorf("read attempt: %w", err)
	}
	stored := fileAttempt{}
	if err := json.Unmarshal(payload, &stored); err != nil {
		return domain.Attempt{}, fmt.Errorf("decode attempt: %w", err)
	}
	if stored.ID == "" {
		return domain.Attempt{}, apperrors.ErrNoActiveAttempt
	}
	if stored.SchemaVersion > domain.SchemaVersion {
		return domain.Attempt{}, fmt.Errorf("attempt schema %d is newer than supported %d", stored.SchemaVersion, domain.SchemaVersion)
	}
	return stored.Attempt, nil
}

func (s *FileAttemptStore) ClearActive(_ context.Context) error {
	if err := s.fs.Remove(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("clear attempt: %w", err)
	}
	return nil
}

// MemoryAttemptStore serves long-running processes like the TUI and the
// HTTP server.
type MemoryAttemptStore struct {
	mu      sync.Mutex
	attempt *domain.Attempt
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{}
}

func (s *MemoryAttemptStore) SaveActive(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempt = &attempt
	return nil
}

func (s *MemoryAttemptStore) LoadActive(_ context.Context) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt == nil {
		return domain.Attempt{}, apperrors.ErrNoActiveAttempt
	}
	return *s.attempt, nil
}

func (s *MemoryAttemptStore) ClearActive(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempt = nil
	return nil
}
