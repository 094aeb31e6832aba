// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	EnvPrefix   string `yaml:"env_prefix"`
	GoModule    string `yaml:"go_module"`
	HostName    string `yaml:"host_name"`
	HostProject string `yaml:"host_project"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:     "extkit",
			DisplayName: "ExtKit",
			Description: "Build, install and package EspoCRM extensions",
			EnvPrefix:   "EXTKIT",
			GoModule:    "github.com/agentx-labs/extkit",
			HostName:    "EspoCRM",
			HostProject: "espocrm",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "extkit").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// EnvPrefix returns the environment variable prefix (e.g., "EXTKIT").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path.
func GoModule() string { load(); return defaults.GoModule }

// HostName returns the display name of the host application (e.g., "EspoCRM").
func HostName() string { load(); return defaults.HostName }

// HostProject returns the repository name of the host application. GitHub
// archives of the host unpack into "<HostProject>-<ref>".
func HostProject() string { load(); return defaults.HostProject }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("PROJECT") → "EXTKIT_PROJECT".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
