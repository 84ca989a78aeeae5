package architecture_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHexagonalLayerImports(t *testing.T) {
	t.Parallel()
	fset := token.NewFileSet()
	root := filepath.Join("..", "modules")
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		slash := filepath.ToSlash(path)
		module := moduleName(slash)
		layer := detectLayer(slash)
		if module == "" || layer == "" {
			return nil
		}
		node, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return parseErr
		}
		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if !strings.Contains(importPath, "fitlab/internal/modules/") {
				continue
			}
			if violatesLayerRule(module, layer, importPath) {
				t.Fatalf("forbidden import in %s (%s): %s", slash, layer, importPath)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk modules: %v", err)
	}
}

func moduleName(path string) string {
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "modules" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func detectLayer(path string) string {
	for _, layer := range []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"} {
		if strings.Contains(path, "/"+layer+"/") {
			return layer
		}
	}
	return ""
}

func isPortIn(path string) bool {
	return strings.Contains(path, "/port/in/") || strings.HasSuffix(path, "/port/in")
}

func isDTO(path string) bool {
	return strings.Contains(path, "/dto/") || strings.HasSuffix(path, "/dto")
}

// hasSegment matches a layer directory anywhere in an import path,
// including as its last element.
func hasSegment(importPath, segment string) bool {
	return strings.Contains(importPath, "/"+segment+"/") || strings.HasSuffix(importPath, "/"+segment)
}

func violatesLayerRule(module, layer, importPath string) bool {
	sameModule := strings.Contains(importPath, "/internal/modules/"+module+"/")
	if !sameModule {
		if hasSegment(importPath, "service") || hasSegment(importPath, "adapter") || hasSegment(importPath, "usecase") {
			return true
		}
		if isPortIn(importPath) || isDTO(importPath) {
			return false
		}
	}

	switch layer {
	case "adapter/in":
		return !isPortIn(importPath) && !isDTO(importPath)
	case "usecase":
		return hasSegment(importPath, "adapter")
	case "service":
		return hasSegment(importPath, "adapter") || hasSegment(importPath, "usecase")
	case "domain":
		return hasSegment(importPath, "adapter") || hasSegment(importPath, "usecase") || hasSegment(importPath, "service")
	default:
		return false
	}
}

func TestLayerRuleCases(t *testing.T) {
	t.Parallel()
	const base = "fitlab/internal/modules/"
	cases := []struct {
		module, layer, importPath string
		violates                  bool
	}{
		{"capture", "usecase", base + "results/port/in", false},
		{"capture", "usecase", base + "catalog/dto", false},
		{"capture", "adapter/out", base + "analytics/port/in", false},
		{"capture", "adapter/in", base + "capture/dto", false},
		{"capture", "usecase", base + "results/adapter/out", true},
		{"capture", "service", base + "results/service", true},
		{"capture", "adapter/in", base + "capture/service", true},
		{"results", "domain", base + "results/service", true},
		{"results", "service", base + "results/usecase", true},
	}
	for _, tc := range cases {
		if got := violatesLayerRule(tc.module, tc.layer, tc.importPath); got != tc.violates {
			t.Fatalf("%s/%s importing %s: expected violation=%t, got %t", tc.module, tc.layer, tc.importPath, tc.violates, got)
		}
	}
}

// Capture reaches the catalog and the results store, and nothing else,
// through their inbound ports.
func TestCaptureDependsOnPortsOnly(t *testing.T) {
	t.Parallel()
	fset := token.NewFileSet()
	seen := map[string]bool{}
	err := filepath.WalkDir(filepath.Join("..", "modules", "capture"), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		node, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return parseErr
		}
		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if !strings.Contains(importPath, "fitlab/internal/modules/") || moduleName(importPath) == "capture" {
				continue
			}
			if !isPortIn(importPath) && !isDTO(importPath) {
				t.Fatalf("capture file %s reaches past a port: %s", filepath.ToSlash(path), importPath)
			}
			seen[importPath] = true
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk capture: %v", err)
	}
	for _, want := range []string{"fitlab/internal/modules/catalog/port/in", "fitlab/internal/modules/results/port/in"} {
		if !seen[want] {
			t.Fatalf("expected capture to depend on %s, got %v", want, seen)
		}
	}
}
