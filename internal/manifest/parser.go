package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// LoadSource reads the extension manifest source at path. JSON and YAML
// are both accepted.
func LoadSource(path string) (Source, error) {
	data, err := readFile(path)
	if err != nil {
		return Source{}, err
	}

	var src Source
	if err := decode(path, data, &src); err != nil {
		return Source{}, fmt.Errorf("parsing extension manifest %s: %w", path, err)
	}
	if err := src.validateIdentity(); err != nil {
		return Source{}, fmt.Errorf("extension manifest %s: %w", path, err)
	}
	return src, nil
}

// LoadVersion reads the "version" field of a package.json file.
func LoadVersion(path string) (string, error) {
	data, err := readFile(path)
	if err != nil {
		return "", err
	}

	var pkg struct {
		Version string `yaml:"version" json:"version"`
	}
	if err := decode(path, data, &pkg); err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}
	if pkg.Version == "" {
		return "", fmt.Errorf("%s has no version", path)
	}
	return pkg.Version, nil
}

func (s Source) validateIdentity() error {
	if s.Module == "" {
		return errors.New("module is required")
	}
	if !ValidModuleID(s.Module) {
		return fmt.Errorf("module %q must be a CamelCase identifier", s.Module)
	}
	if s.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// decode uses encoding/json for .json files, since JSON indented with tabs
// is not valid YAML, and YAML for everything else.
func decode(path string, data []byte, v any) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
