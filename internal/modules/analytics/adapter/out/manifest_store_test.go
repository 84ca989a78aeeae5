package out_test

import (
	"context"
	"path/filepath"
	"testing"

	analyticsout "fitlab/internal/modules/analytics/adapter/out"

	"github.com/spf13/afero"
)

func TestFileManifestStoreLoadMissingReturnsEmpty(t *testing.T) {
	t.Parallel()
	store := analyticsout.NewFileManifestStore(afero.NewMemMapFs(), "/ws")
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 0 {
		t.Fatalf("expected empty manifests, got %d", len(manifests))
	}
}

func TestFileManifestStoreResolvesRelativeBinary(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	raw := `[
  {
    "name": "norms",
    "version": "1.0.0",
    "binary": "plugins/norms/norms-plugin",
    "sha256": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
    "enabled": true,
    "capabilities": ["analyze"]
  }
]`
	if err := afero.WriteFile(fs, "/ws/plugins/plugins.json", []byte(raw), 0o644); err != nil {
		t.Fatalf("write plugins.json: %v", err)
	}
	manifests, err := analyticsout.NewFileManifestStore(fs, "/ws").Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 1 {
		t.Fatalf("expected one manifest, got %d", len(manifests))
	}
	if want := filepath.Clean("/ws/plugins/norms/norms-plugin"); manifests[0].Binary != want {
		t.Fatalf("expected %s, got %s", want, manifests[0].Binary)
	}
}

func TestFileManifestStoreRejectsUnknownField(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	raw := `[{"name": "norms", "version": "1.0.0", "binary": "/opt/norms", "sha256": "", "enabled": true, "capabilities": ["analyze"], "tty": true}]`
	if err := afero.WriteFile(fs, "/ws/plugins/plugins.json", []byte(raw), 0o644); err != nil {
		t.Fatalf("write plugins.json: %v", err)
	}
	if _, err := analyticsout.NewFileManifestStore(fs, "/ws").Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
