package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/albertocavalcante/go-blendlaunch/selector"
)

// selectorsKey is the settings key holding the selector map.
const selectorsKey = "build_selectors"

// filePermissions keeps settings readable by the owner only.
const filePermissions = 0o600

// Format is a settings file encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatOf picks the format from the file extension.
// Anything that is not .yaml or .yml is treated as JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Load reads settings from path and applies defaults.
// A missing file is not an error.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return Parse(data, FormatOf(path))
}

// Parse decodes settings data in the given format and applies defaults.
func Parse(data []byte, format Format) (*Settings, error) {
	var s Settings
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse settings YAML: %w", err)
		}
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			break
		}
		std, err := hujson.Standardize(bytes.Clone(data))
		if err != nil {
			return nil, fmt.Errorf("parse settings JSON: %w", err)
		}
		if err := json.Unmarshal(std, &s); err != nil {
			return nil, fmt.Errorf("parse settings JSON: %w", err)
		}
	}
	applyDefaults(&s)
	return &s, nil
}

// Marshal encodes s in the given format. Map keys are sorted, so equal
// settings always produce identical bytes.
func (s *Settings) Marshal(format Format) ([]byte, error) {
	if format == FormatYAML {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes s to path in the format given by its extension, creating the
// parent directory if needed. Comments in an existing JSONC file are not kept.
func (s *Settings) Save(path string) error {
	data, err := s.Marshal(FormatOf(path))
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return writeFile(path, data)
}

// SaveSelectors replaces the selector map in the settings file at path and
// leaves every other key as it is on disk. Comments survive in both JSONC
// and YAML files. A missing file is created holding only the selectors.
func SaveSelectors(path string, store *selector.Store) error {
	selectors := store.ToMap()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read settings: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		fresh := &Settings{}
		fresh.SetSelectors(store)
		return fresh.Save(path)
	}

	if FormatOf(path) == FormatYAML {
		data, err = patchYAML(data, selectors)
	} else {
		data, err = patchJSON(data, selectors)
	}
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func patchJSON(data []byte, selectors map[string]string) ([]byte, error) {
	v, err := hujson.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse settings JSON: %w", err)
	}
	value, err := json.Marshal(selectors)
	if err != nil {
		return nil, err
	}
	patch := fmt.Sprintf(`[{"op": "add", "path": "/%s", "value": %s}]`, selectorsKey, value)
	if err := v.Patch([]byte(patch)); err != nil {
		return nil, fmt.Errorf("update %s: %w", selectorsKey, err)
	}
	v.Format()
	return v.Pack(), nil
}

func patchYAML(data []byte, selectors map[string]string) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse settings YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse settings YAML: top level is not a mapping")
	}

	var value yaml.Node
	if err := value.Encode(selectors); err != nil {
		return nil, err
	}
	root := doc.Content[0]
	replaced := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == selectorsKey {
			value.HeadComment = root.Content[i+1].HeadComment
			value.LineComment = root.Content[i+1].LineComment
			root.Content[i+1] = &value
			replaced = true
			break
		}
	}
	if !replaced {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: selectorsKey}
		root.Content = append(root.Content, key, &value)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
