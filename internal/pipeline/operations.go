package pipeline

import (
	"fmt"
	"strings"

	"github.com/agentx-labs/extkit/internal/stage"
)

// Mode is a command-line mode flag.
type Mode string

// Modes, in the order their operations are composed.
const (
	ModeAll             Mode = "all"
	ModeFetch           Mode = "fetch"
	ModeInstall         Mode = "install"
	ModeCopy            Mode = "copy"
	ModeComposerInstall Mode = "composer-install"
	ModeRebuild         Mode = "rebuild"
	ModeAfterInstall    Mode = "after-install"
	ModeExtension       Mode = "extension"
)

var canonicalModes = []Mode{
	ModeAll,
	ModeFetch,
	ModeInstall,
	ModeCopy,
	ModeComposerInstall,
	ModeRebuild,
	ModeAfterInstall,
	ModeExtension,
}

// Operation is a named, fixed sequence of stages.
type Operation struct {
	Name   string
	Stages []stage.Name
}

// Macro-operations.
var (
	Full = Operation{Name: "full", Stages: []stage.Name{
		stage.Fetch,
		stage.Install,
		stage.InstallExtensions,
		stage.MergeExtension,
		stage.ResolveDependencies,
		stage.Rebuild,
		stage.PostInstallHook,
		stage.SetOwnership,
	}}
	InstallOnly = Operation{Name: "install-only", Stages: []stage.Name{
		stage.Install,
		stage.InstallExtensions,
		stage.SetOwnership,
	}}
	FetchOnly               = Operation{Name: "fetch-only", Stages: []stage.Name{stage.Fetch}}
	MergeOnly               = Operation{Name: "merge-only", Stages: []stage.Name{stage.MergeExtension, stage.SetOwnership}}
	PostInstallOnly         = Operation{Name: "post-install-only", Stages: []stage.Name{stage.PostInstallHook}}
	PackageOnly             = Operation{Name: "package-only", Stages: []stage.Name{stage.Package}}
	RebuildOnly             = Operation{Name: "rebuild-only", Stages: []stage.Name{stage.Rebuild}}
	ResolveDependenciesOnly = Operation{Name: "resolve-dependencies-only", Stages: []stage.Name{stage.ResolveDependencies}}
)

var operations = map[Mode]Operation{
	ModeAll:             Full,
	ModeFetch:           FetchOnly,
	ModeInstall:         InstallOnly,
	ModeCopy:            MergeOnly,
	ModeComposerInstall: ResolveDependenciesOnly,
	ModeRebuild:         RebuildOnly,
	ModeAfterInstall:    PostInstallOnly,
	ModeExtension:       PackageOnly,
}

// Modes returns every mode in composition order.
func Modes() []Mode {
	out := make([]Mode, len(canonicalModes))
	copy(out, canonicalModes)
	return out
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.TrimPrefix(strings.TrimSpace(s), "--"))
	if _, ok := operations[m]; !ok {
		return "", fmt.Errorf("unknown mode %q", s)
	}
	return m, nil
}

// OperationFor returns the macro-operation a mode triggers.
func OperationFor(m Mode) (Operation, bool) {
	op, ok := operations[m]
	return op, ok
}

// installSide reports whether m is superseded by ModeAll.
func installSide(m Mode) bool {
	return m != ModeAll && m != ModeExtension
}
