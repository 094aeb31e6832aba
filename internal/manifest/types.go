package manifest

import (
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Source is the extension manifest source: the module identity and
// compatibility constraints maintained by the extension author.
type Source struct {
	Module             string      `yaml:"module" json:"module"`
	Name               string      `yaml:"name" json:"name"`
	Description        string      `yaml:"description" json:"description"`
	Author             string      `yaml:"author" json:"author"`
	PHP                Constraints `yaml:"php" json:"php"`
	AcceptableVersions Constraints `yaml:"acceptableVersions" json:"acceptableVersions"`
	// Version is read from package.json, not from extension.json.
	Version string `yaml:"-" json:"-"`
}

// ModuleHyphen returns the hyphenated form of the module identifier used
// for frontend directories and package file names.
func (s Source) ModuleHyphen() string {
	return Hyphenate(s.Module)
}

// Constraints is a list of version constraints. In YAML/JSON it may be
// written as a single string or as a list of strings.
type Constraints []string

// UnmarshalYAML accepts both a scalar and a sequence.
func (c *Constraints) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			*c = nil
			return nil
		}
		*c = Constraints{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*c = list
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}

// UnmarshalJSON accepts both a string and an array of strings.
func (c *Constraints) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*c = nil
		} else {
			*c = Constraints{one}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected a string or a list of strings: %w", err)
	}
	*c = list
	return nil
}

// PackageManifest is the manifest.json embedded at the root of a package
// archive and read by the host's extension installer.
type PackageManifest struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Author             string   `json:"author"`
	PHP                []string `json:"php"`
	AcceptableVersions []string `json:"acceptableVersions"`
	Version            string   `json:"version"`
	SkipBackup         bool     `json:"skipBackup"`
	ReleaseDate        string   `json:"releaseDate"`
}

// ReleaseDateLayout is the date format of PackageManifest.ReleaseDate.
const ReleaseDateLayout = "2006-01-02"
