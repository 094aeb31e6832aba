package stage

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/agentx-labs/extkit/internal/config"
	"github.com/agentx-labs/extkit/internal/layout"
	"github.com/agentx-labs/extkit/internal/platform"
	"github.com/agentx-labs/extkit/internal/process"
)

// Name identifies a stage.
type Name string

// Stage names.
const (
	Fetch               Name = "fetch"
	Install             Name = "install"
	InstallExtensions   Name = "install-extensions"
	MergeExtension      Name = "merge-extension"
	ResolveDependencies Name = "resolve-dependencies"
	Rebuild             Name = "rebuild"
	PostInstallHook     Name = "post-install"
	SetOwnership        Name = "set-ownership"
	Package             Name = "package"
)

// Fetcher downloads the archive of a ref. *archive.Transport implements it.
type Fetcher interface {
	Fetch(ctx context.Context, repository, ref, destPath string) error
}

// Env carries everything a stage needs. It is shared read-only by all
// stages of a run.
type Env struct {
	Config    config.Config
	Layout    layout.Layout
	Runner    process.Runner
	Transport Fetcher
	Logger    *log.Logger
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

func (e *Env) log() *log.Logger {
	if e.Logger == nil {
		return log.New(io.Discard)
	}
	return e.Logger
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// run executes cmd with the configured secrets masked in any display.
// deleteTree removes path, noting at debug level when entries disappeared
// underneath the removal.
func (e *Env) deleteTree(path string) error {
	vanished, err := platform.DeleteTree(path)
	if vanished {
		e.log().Debug("entries vanished during removal", "path", path)
	}
	return err
}

func (e *Env) run(ctx context.Context, cmd process.Command) error {
	cmd.Secrets = append(cmd.Secrets, e.Config.Secrets()...)
	return e.Runner.Run(ctx, cmd)
}

// Stage is a named, re-runnable unit of pipeline work.
type Stage struct {
	Name  Name
	Title string
	// BestEffort stages never abort the enclosing run.
	BestEffort bool
	// Tools are the external programs the stage may invoke.
	Tools []string
	Run   func(ctx context.Context, env *Env) error
}

var registry = []Stage{
	{Name: Fetch, Title: "Fetch host application", Run: runFetch},
	{Name: Install, Title: "Install host application", Tools: []string{"npm", "grunt", "php"}, Run: runInstall},
	{Name: InstallExtensions, Title: "Install packaged extensions", Tools: []string{"php"}, Run: runInstallExtensions},
	{Name: MergeExtension, Title: "Merge extension into working tree", Run: runMergeExtension},
	{Name: ResolveDependencies, Title: "Resolve module dependencies", Tools: []string{"composer"}, Run: runResolveDependencies},
	{Name: Rebuild, Title: "Rebuild host application", Tools: []string{"php"}, Run: runRebuild},
	{Name: PostInstallHook, Title: "Run post-install script", Tools: []string{"php"}, Run: runPostInstallHook},
	{Name: SetOwnership, Title: "Fix file ownership", BestEffort: true, Tools: []string{"chown"}, Run: runSetOwnership},
	{Name: Package, Title: "Build extension package", Tools: []string{"composer"}, Run: runPackage},
}

// All returns every stage in declaration order.
func All() []Stage {
	out := make([]Stage, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the stage called name.
func Lookup(name Name) (Stage, bool) {
	for _, s := range registry {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(name Name) Stage {
	s, ok := Lookup(name)
	if !ok {
		panic("stage: unknown stage " + string(name))
	}
	return s
}
