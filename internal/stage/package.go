package stage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/agentx-labs/extkit/internal/archive"
	"github.com/agentx-labs/extkit/internal/layout"
	"github.com/agentx-labs/extkit/internal/manifest"
	"github.com/agentx-labs/extkit/internal/platform"
)

// runPackage builds build/<module-hyphen>-<version>.zip from a scratch
// copy of the extension source. The scratch directory is removed on every
// exit path.
func runPackage(ctx context.Context, env *Env) (err error) {
	logger := env.log()
	ext := env.Config.Extension

	m, err := manifest.NewPackageManifest(ext, env.now())
	if err != nil {
		return err
	}

	logger.Info("Building extension package...", "module", ext.Module, "version", ext.Version)

	build := env.Layout.Build()
	if err := os.MkdirAll(build, layout.DirPerm); err != nil {
		return &platform.IOError{Op: "mkdir", Path: build, Err: err}
	}
	output := env.Layout.PackagePath(ext.ModuleHyphen(), ext.Version)
	if err := platform.RemoveFile(output); err != nil {
		return err
	}

	scratch := env.Layout.Scratch()
	if err := env.deleteTree(scratch); err != nil {
		return err
	}
	defer func() {
		if cleanupErr := env.deleteTree(scratch); cleanupErr != nil && err == nil {
			err = cleanupErr
		}
	}()

	if err := platform.CopyTree(env.Layout.Source(), scratch); err != nil {
		return err
	}

	moduleDir := layout.BackendDir(filepath.Join(scratch, layout.SourceFiles), ext.Module)
	if err := composerInstall(ctx, env, moduleDir); err != nil {
		return err
	}
	if err := stripComposerMetadata(moduleDir); err != nil {
		return err
	}

	if err := m.WriteFile(filepath.Join(scratch, layout.ManifestFile)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := archive.Build(scratch, output); err != nil {
		return err
	}

	logger.Info("Package has been built.", "path", output)
	return nil
}
