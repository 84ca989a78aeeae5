package out

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"fitlab/internal/modules/catalog/domain"
	catalogout "fitlab/internal/modules/catalog/port/out"
	"fitlab/internal/platform/category"
)

type YAMLDefinitionStore struct {
	fs   afero.Fs
	path string
}

func NewYAMLDefinitionStore(fs afero.Fs, workspacePath string) catalogout.DefinitionStore {
	return &YAMLDefinitionStore{fs: fs, path: filepath.Join(workspacePath, "tests.yaml")}
}

type catalogFile struct {
	SchemaVersion int          `yaml:"schema_version"`
	Tests         []testRecord `yaml:"tests"`
}

type testRecord struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	Description  string        `yaml:"description,omitempty"`
	Category     string        `yaml:"category"`
	Instructions []string      `yaml:"instructions,omitempty"`
	Duration     time.Duration `yaml:"duration"`
	Difficulty   string        `yaml:"difficulty"`
}

// List serves the built-in catalog until a tests.yaml exists.
func (s *YAMLDefinitionStore) List(_ context.Context) ([]domain.TestDefinition, error) {
	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return nil, fmt.Errorf("stat catalog: %w", err)
	}
	if !exists {
		return domain.DefaultDefinitions(), nil
	}
	payload, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	file := catalogFile{}
	decoder := yaml.NewDecoder(bytes.NewReader(payload))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", s.path, err)
	}
	if file.SchemaVersion > domain.SchemaVersion {
		return nil, fmt.Errorf("catalog schema version %d is newer than supported %d", file.SchemaVersion, domain.SchemaVersion)
	}
	out := make([]domain.TestDefinition, 0, len(file.Tests))
	for _, rec := range file.Tests {
		out = append(out, domain.TestDefinition{
			ID:           rec.ID,
			Name:         rec.Name,
			Description:  rec.Description,
			Category:     category.Parse(rec.Category),
			Instructions: rec.Instructions,
			Duration:     rec.Duration,
			Difficulty:   domain.Difficulty(rec.Difficulty),
		})
	}
	return out, nil
}

func (s *YAMLDefinitionStore) SaveAll(_ context.Context, defs []domain.TestDefinition, overwrite bool) (string, error) {
	if !overwrite {
		exists, err := afero.Exists(s.fs, s.path)
		if err != nil {
			return "", fmt.Errorf("stat catalog: %w", err)
		}
		if exists {
			return "", fmt.Errorf("%w: %s", domain.ErrCatalogExists, s.path)
		}
	}
	file := catalogFile{SchemaVersion: domain.SchemaVersion, Tests: make([]testRecord, 0, len(defs))}
	for _, def := range defs {
		file.Tests = append(file.Tests, testRecord{
			ID:           def.ID,
			Name:         def.Name,
			Description:  def.Description,
			Category:     string(def.Category),
			Instructions: def.Instructions,
			Duration:     def.Duration,
			Difficulty:   string(def.Difficulty),
		})
	}
	payload, err := yaml.Marshal(file)
	if err != nil {
		return "", fmt.Errorf("marshal catalog: %w", err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", fmt.Errorf("create catalog dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write catalog: %w", err)
	}
	return s.path, nil
}
