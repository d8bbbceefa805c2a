// Package catalog loads template sources from manifest files so whole
// template sets can ship on disk or embedded and land in a registry in one
// call. A manifest maps template names to entries: an inline string, a list
// of lines joined with newlines, or a {file: path} reference resolved
// relative to the manifest.
package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tplreg/pkg/registry"
)

// Load parses a single manifest file within fsys and returns its template
// sources by name.
func Load(fsys fs.FS, manifestPath string) (map[string]string, error) {
	data, err := fs.ReadFile(fsys, manifestPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", manifestPath, err)
	}

	raw, err := parseManifest(data, manifestPath)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(raw))
	for name, value := range raw {
		id := strings.TrimSpace(name)
		if id == "" {
			return nil, fmt.Errorf("catalog: file %s defines an empty template name", manifestPath)
		}
		src, err := normalizeEntry(fsys, manifestPath, id, value)
		if err != nil {
			return nil, err
		}
		out[id] = src
	}
	return out, nil
}

// LoadFS walks the provided filesystem and merges every manifest found.
// When fsys is nil or holds no manifests, the returned map is empty. A
// template name defined by two manifests is an error.
func LoadFS(fsys fs.FS) (map[string]string, error) {
	out := make(map[string]string)
	if fsys == nil {
		return out, nil
	}

	origin := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isManifest(p) {
			return nil
		}

		loaded, err := Load(fsys, p)
		if err != nil {
			return err
		}
		for name, src := range loaded {
			if prev, exists := origin[name]; exists {
				return fmt.Errorf("catalog: duplicate template %q (files %s and %s)", name, prev, p)
			}
			origin[name] = p
			out[name] = src
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Register loads every manifest in fsys into the registry.
func Register(reg *registry.Registry, fsys fs.FS) error {
	loaded, err := LoadFS(fsys)
	if err != nil {
		return err
	}
	for name, src := range loaded {
		reg.Register(name, src)
	}
	return nil
}

func parseManifest(data []byte, manifestPath string) (map[string]any, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("catalog: file %s is empty", manifestPath)
	}

	raw := map[string]any{}
	switch strings.ToLower(path.Ext(manifestPath)) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("catalog: parse %s: %w", manifestPath, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("catalog: parse %s: %w", manifestPath, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("catalog: parse %s: %w", manifestPath, err)
		}
	default:
		return nil, fmt.Errorf("catalog: unsupported manifest format %s", manifestPath)
	}
	return raw, nil
}

func normalizeEntry(fsys fs.FS, manifestPath, name string, value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []any:
		parts := make([]string, len(v))
		for i, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return "", fmt.Errorf("catalog: template %q (file %s) has a non-string line at index %d", name, manifestPath, i)
			}
			parts[i] = s
		}
		return strings.Join(parts, "\n"), nil
	case map[string]any:
		ref, _ := v["file"].(string)
		if strings.TrimSpace(ref) == "" {
			return "", fmt.Errorf("catalog: template %q (file %s) needs a file reference", name, manifestPath)
		}
		full := path.Join(path.Dir(manifestPath), ref)
		data, err := fs.ReadFile(fsys, full)
		if err != nil {
			return "", fmt.Errorf("catalog: template %q: read %s: %w", name, full, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("catalog: template %q (file %s) has unsupported value type %T", name, manifestPath, value)
	}
}

func isManifest(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".json", ".yaml", ".yml", ".toml":
		return true
	default:
		return false
	}
}
