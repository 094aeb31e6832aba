package stage

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/agentx-labs/extkit/internal/platform"
)

// runMergeExtension removes previously merged copies of the module from
// the working tree and union-copies the extension sources and tests in.
func runMergeExtension(_ context.Context, env *Env) error {
	logger := env.log()
	ext := env.Config.Extension
	src := env.Layout.SourceFiles()

	if !platform.IsDir(src) {
		return &platform.IOError{Op: "merge", Path: src, Err: fs.ErrNotExist}
	}

	logger.Info("Copying extension to instance...")

	mod := env.Layout.Module(ext.Module, ext.ModuleHyphen())
	for _, stale := range []struct{ what, path string }{
		{"backend", mod.Backend},
		{"frontend", mod.Frontend},
		{"unit test", mod.UnitTests},
		{"integration test", mod.IntegrationTests},
	} {
		if !platform.Exists(stale.path) {
			continue
		}
		logger.Info(fmt.Sprintf("Removing %s files...", stale.what))
		if err := env.deleteTree(stale.path); err != nil {
			return err
		}
	}

	logger.Info("Copying files...")
	if err := platform.CopyTree(src, env.Layout.Site()); err != nil {
		return err
	}

	tests := env.Layout.Tests()
	if !platform.IsDir(tests) {
		logger.Debug("no tests to copy", "dir", tests)
		return nil
	}
	return platform.CopyTree(tests, filepath.Join(env.Layout.Site(), "tests"))
}
