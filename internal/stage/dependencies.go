package stage

import (
	"context"
	"path/filepath"

	"github.com/agentx-labs/extkit/internal/layout"
	"github.com/agentx-labs/extkit/internal/platform"
	"github.com/agentx-labs/extkit/internal/process"
)

// composerMetadata are the dependency-manager files stripped from packages.
var composerMetadata = []string{"composer.json", "composer.lock", "composer.phar"}

func runResolveDependencies(ctx context.Context, env *Env) error {
	return composerInstall(ctx, env, layout.BackendDir(env.Layout.Site(), env.Config.Extension.Module))
}

// composerInstall installs production dependencies in dir. A directory
// without composer.json has nothing to resolve.
func composerInstall(ctx context.Context, env *Env, dir string) error {
	logger := env.log()
	if !platform.Exists(filepath.Join(dir, "composer.json")) {
		logger.Debug("no composer.json, skipping dependencies", "dir", dir)
		return nil
	}

	logger.Info("Running composer install...")
	return env.run(ctx, process.Command{
		Name:  "composer",
		Args:  []string{"install", "--no-dev", "--ignore-platform-reqs"},
		Dir:   dir,
		Quiet: true,
	})
}

func stripComposerMetadata(dir string) error {
	for _, name := range composerMetadata {
		if err := platform.RemoveFile(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
