package layout

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentx-labs/extkit/internal/branding"
)

// Directory and file name constants for the project convention.
const (
	SiteDir       = "site"
	SourceDir     = "src"
	SourceFiles   = "files"
	TestsDir      = "tests"
	BuildDir      = "build"
	ScratchDir    = "tmp"
	ExtensionsDir = "extensions"
	ScriptsDir    = "php_scripts"

	ConfigFile    = "config.json"
	ExtensionFile = "extension.json"
	PackageFile   = "package.json"
	ManifestFile  = "manifest.json"

	FetchArchiveFile = "archive.zip"
)

// Permission constants.
const (
	DirPerm  os.FileMode = 0755
	FilePerm os.FileMode = 0644
)

// Layout holds the absolute project root all other paths derive from.
type Layout struct {
	Root string
}

// Resolve returns a Layout rooted at dir. An empty dir falls back to the
// EXTKIT_PROJECT environment variable and then to the working directory.
func Resolve(dir string) (Layout, error) {
	if dir == "" {
		dir = os.Getenv(branding.EnvVar("PROJECT"))
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Layout{}, fmt.Errorf("resolving working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Layout{}, fmt.Errorf("resolving project root %s: %w", dir, err)
	}
	return Layout{Root: abs}, nil
}

// Site returns the working tree root holding the installed host.
func (l Layout) Site() string { return filepath.Join(l.Root, SiteDir) }

// Source returns the extension source tree (src/).
func (l Layout) Source() string { return filepath.Join(l.Root, SourceDir) }

// SourceFiles returns the part of the source tree that mirrors the host layout (src/files/).
func (l Layout) SourceFiles() string { return filepath.Join(l.Source(), SourceFiles) }

// Tests returns the extension test tree (tests/).
func (l Layout) Tests() string { return filepath.Join(l.Root, TestsDir) }

// Build returns the package output directory.
func (l Layout) Build() string { return filepath.Join(l.Root, BuildDir) }

// Scratch returns the staging directory used while packaging.
func (l Layout) Scratch() string { return filepath.Join(l.Build(), ScratchDir) }

// Extensions returns the drop directory scanned for prebuilt packages.
func (l Layout) Extensions() string { return filepath.Join(l.Root, ExtensionsDir) }

// Scripts returns the directory holding project-supplied PHP scripts.
func (l Layout) Scripts() string { return filepath.Join(l.Root, ScriptsDir) }

// ConfigFile returns the default settings file path.
func (l Layout) ConfigFile() string { return filepath.Join(l.Root, ConfigFile) }

// ExtensionFile returns the extension manifest source path.
func (l Layout) ExtensionFile() string { return filepath.Join(l.Root, ExtensionFile) }

// PackageFile returns the path of the file carrying the extension version.
func (l Layout) PackageFile() string { return filepath.Join(l.Root, PackageFile) }

// FetchArchive returns the temporary download location inside the working tree.
func (l Layout) FetchArchive() string { return filepath.Join(l.Site(), FetchArchiveFile) }

// SettingsFile returns the generated host settings file.
func (l Layout) SettingsFile() string { return filepath.Join(l.Site(), "data", "config.php") }

// InstallerState returns the file the host installer persists between steps.
func (l Layout) InstallerState() string { return filepath.Join(l.Site(), "install", "config.php") }

// PackagePath returns build/<hyphenated-module>-<version>.zip.
func (l Layout) PackagePath(moduleHyphen, version string) string {
	return filepath.Join(l.Build(), moduleHyphen+"-"+version+".zip")
}

// ModulePaths lists where a module's merged copies live under a host tree.
type ModulePaths struct {
	Backend          string
	Frontend         string
	UnitTests        string
	IntegrationTests string
}

// Module returns the merged-module locations for module inside the working tree.
func (l Layout) Module(module, moduleHyphen string) ModulePaths {
	site := l.Site()
	return ModulePaths{
		Backend:          BackendDir(site, module),
		Frontend:         filepath.Join(site, "client", "modules", moduleHyphen),
		UnitTests:        filepath.Join(site, "tests", "unit", "Espo", "Modules", module),
		IntegrationTests: filepath.Join(site, "tests", "integration", "Espo", "Modules", module),
	}
}

// BackendDir returns application/Espo/Modules/<module> under root. Root is
// either the working tree or the "files" directory of a staged package.
func BackendDir(root, module string) string {
	return filepath.Join(root, "application", "Espo", "Modules", module)
}
