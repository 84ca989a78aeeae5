package out

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fitlab/internal/modules/analytics/domain"
	analyticsout "fitlab/internal/modules/analytics/port/out"

	"github.com/spf13/afero"
)

type FileManifestStore struct {
	fs       afero.Fs
	basePath string
	path     string
}

// NewFileManifestStore reads <basePath>/plugins/plugins.json. Relative
// binaries resolve against basePath.
func NewFileManifestStore(fs afero.Fs, basePath string) analyticsout.ManifestStore {
	return &FileManifestStore{fs: fs, basePath: basePath, path: filepath.Join(basePath, "plugins", "plugins.json")}
}

func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	b, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Manifest{}, nil
		}
		return nil, fmt.Errorf("read plugin registry: %w", err)
	}
	var manifests []domain.Manifest
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&manifests); err != nil {
		return nil, fmt.Errorf("decode plugin registry: %w", err)
	}
	for i := range manifests {
		if manifests[i].Binary != "" && !filepath.IsAbs(manifests[i].Binary) {
			manifests[i].Binary = filepath.Clean(filepath.Join(s.basePath, manifests[i].Binary))
		}
	}
	return manifests, nil
}
