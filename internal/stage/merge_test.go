package stage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/agentx-labs/extkit/internal/layout"
	"github.com/agentx-labs/extkit/internal/platform"
)

func TestMergeExtensionUnionCopy(t *testing.T) {
	env, runner := newTestEnv(t)
	site := env.Layout.Site()
	src := env.Layout.SourceFiles()

	writeFile(t, filepath.Join(site, "index.php"), "host index")
	writeFile(t, filepath.Join(site, "application", "Espo", "Resources", "i18n.json"), "host i18n")
	writeFile(t, filepath.Join(src, "application", "Espo", "Resources", "i18n.json"), "ext i18n")
	writeFile(t, filepath.Join(src, "application", "Espo", "Modules", "SalesPack", "Module.php"), "module")
	writeFile(t, filepath.Join(env.Layout.Tests(), "unit", "Espo", "Modules", "SalesPack", "ModuleTest.php"), "test")

	if err := runMergeExtension(context.Background(), env); err != nil {
		t.Fatalf("merge: %v", err)
	}

	checks := map[string]string{
		"index.php":                                        "host index",
		"application/Espo/Resources/i18n.json":             "ext i18n",
		"application/Espo/Modules/SalesPack/Module.php":    "module",
		"tests/unit/Espo/Modules/SalesPack/ModuleTest.php": "test",
	}
	for rel, want := range checks {
		if got := readFile(t, filepath.Join(site, filepath.FromSlash(rel))); got != want {
			t.Errorf("%s = %q, want %q", rel, got, want)
		}
	}
	if len(runner.calls) != 0 {
		t.Errorf("merge should not run commands, got %v", runner.lines())
	}
}

func TestMergeExtensionRemovesStaleModule(t *testing.T) {
	env, _ := newTestEnv(t)
	ext := env.Config.Extension
	mod := env.Layout.Module(ext.Module, ext.ModuleHyphen())

	writeFile(t, filepath.Join(mod.Backend, "Removed.php"), "old")
	writeFile(t, filepath.Join(mod.Frontend, "removed.js"), "old")
	writeFile(t, filepath.Join(mod.UnitTests, "RemovedTest.php"), "old")
	writeFile(t, filepath.Join(mod.IntegrationTests, "RemovedTest.php"), "old")
	writeFile(t, filepath.Join(env.Layout.SourceFiles(), "client", "modules", "sales-pack", "main.js"), "new")

	if err := runMergeExtension(context.Background(), env); err != nil {
		t.Fatalf("merge: %v", err)
	}

	for _, stale := range []string{
		filepath.Join(mod.Backend, "Removed.php"),
		filepath.Join(mod.Frontend, "removed.js"),
		filepath.Join(mod.UnitTests, "RemovedTest.php"),
		filepath.Join(mod.IntegrationTests, "RemovedTest.php"),
	} {
		if platform.Exists(stale) {
			t.Errorf("%s should have been removed", stale)
		}
	}
	if got := readFile(t, filepath.Join(mod.Frontend, "main.js")); got != "new" {
		t.Errorf("main.js = %q", got)
	}
}

func TestMergeExtensionMissingSource(t *testing.T) {
	env, _ := newTestEnv(t)

	err := runMergeExtension(context.Background(), env)
	var ioErr *platform.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if ioErr.Path != env.Layout.SourceFiles() {
		t.Errorf("path = %s", ioErr.Path)
	}
}

func TestResolveDependencies(t *testing.T) {
	env, runner := newTestEnv(t)
	dir := layout.BackendDir(env.Layout.Site(), "SalesPack")

	if err := runResolveDependencies(context.Background(), env); err != nil {
		t.Fatalf("no manifest: %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("no command should run without composer.json, got %v", runner.lines())
	}

	writeFile(t, filepath.Join(dir, "composer.json"), "{}")
	if err := runResolveDependencies(context.Background(), env); err != nil {
		t.Fatalf("with manifest: %v", err)
	}
	if want := []string{"composer install --no-dev --ignore-platform-reqs"}; !reflect.DeepEqual(runner.lines(), want) {
		t.Errorf("commands = %q, want %q", runner.lines(), want)
	}
	if runner.calls[0].Dir != dir {
		t.Errorf("dir = %s, want %s", runner.calls[0].Dir, dir)
	}
}
