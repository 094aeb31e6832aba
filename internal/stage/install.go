package stage

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/agentx-labs/extkit/internal/branding"
	"github.com/agentx-labs/extkit/internal/platform"
	"github.com/agentx-labs/extkit/internal/process"
)

// mergeConfigsScript and afterInstallScript live in the project's scripts
// directory.
const (
	mergeConfigsScript = "merge_configs.php"
	afterInstallScript = "after_install.php"
)

// requireWorkingTree fails unless a fetched host tree is present.
func requireWorkingTree(env *Env) error {
	site := env.Layout.Site()
	if !platform.Exists(filepath.Join(site, filepath.FromSlash(installerScript))) {
		return &platform.IOError{
			Op:   "install",
			Path: site,
			Err:  fmt.Errorf("working tree not populated: %w", fs.ErrNotExist),
		}
	}
	return nil
}

func runInstall(ctx context.Context, env *Env) error {
	logger := env.log()
	site := env.Layout.Site()

	if err := requireWorkingTree(env); err != nil {
		return err
	}
	steps := InstallSteps(env.Config)
	for _, step := range steps {
		if err := step.Validate(); err != nil {
			return err
		}
	}
	logger.Info(fmt.Sprintf("Installing %s instance...", branding.HostName()))

	logger.Info("Creating config...")
	if err := writeSettings(env); err != nil {
		return err
	}
	if err := platform.RemoveFile(env.Layout.InstallerState()); err != nil {
		return err
	}

	logger.Info(fmt.Sprintf("Building %s...", branding.HostName()))
	for _, cmd := range []process.Command{
		{Name: "npm", Args: []string{"ci"}, Dir: site, Quiet: true},
		{Name: "grunt", Dir: site, Quiet: true},
	} {
		if err := env.run(ctx, cmd); err != nil {
			return err
		}
	}

	for _, step := range steps {
		logger.Info("Install: "+step.Action+"...", "step", step.Action)
		if err := env.run(ctx, step.Command(site)); err != nil {
			return fmt.Errorf("installer step %s: %w", step.Action, err)
		}
	}

	logger.Info("Merge configs...")
	return runScript(ctx, env, mergeConfigsScript, true)
}

// runScript runs a project-supplied PHP script from the scripts directory.
func runScript(ctx context.Context, env *Env, script string, quiet bool) error {
	dir := env.Layout.Scripts()
	path := filepath.Join(dir, script)
	if !platform.Exists(path) {
		return &platform.IOError{Op: "run", Path: path, Err: fs.ErrNotExist}
	}
	return env.run(ctx, process.Command{Name: "php", Args: []string{script}, Dir: dir, Quiet: quiet})
}
