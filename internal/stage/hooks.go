package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentx-labs/extkit/internal/branding"
	"github.com/agentx-labs/extkit/internal/platform"
	"github.com/agentx-labs/extkit/internal/process"
)

func runRebuild(ctx context.Context, env *Env) error {
	if err := requireWorkingTree(env); err != nil {
		return err
	}
	env.log().Info(fmt.Sprintf("Rebuilding %s instance...", branding.HostName()))
	return env.run(ctx, process.Command{Name: "php", Args: []string{"rebuild.php"}, Dir: env.Layout.Site()})
}

func runPostInstallHook(ctx context.Context, env *Env) error {
	if err := requireWorkingTree(env); err != nil {
		return err
	}
	env.log().Info("Running after-install script...")
	return runScript(ctx, env, afterInstallScript, false)
}

// OwnerSpec renders owner[:group] for chown. It is empty when no owner is
// configured.
func OwnerSpec(owner, group string) string {
	owner = strings.TrimSpace(owner)
	group = strings.TrimSpace(group)
	if owner == "" {
		return ""
	}
	if group == "" {
		return owner
	}
	return owner + ":" + group
}

func runSetOwnership(ctx context.Context, env *Env) error {
	logger := env.log()
	if !platform.SupportsOwnership() {
		logger.Info("Skipping ownership fix-up: not supported on this platform")
		return nil
	}
	spec := OwnerSpec(env.Config.Install.DefaultOwner, env.Config.Install.DefaultGroup)
	if spec == "" {
		logger.Info("Skipping ownership fix-up: no default owner configured")
		return nil
	}
	site := env.Layout.Site()
	if !platform.IsDir(site) {
		logger.Info("Skipping ownership fix-up: no working tree", "dir", site)
		return nil
	}

	logger.Info("Setting files ownership...", "owner", spec)
	return env.run(ctx, process.Command{Name: "chown", Args: []string{"-R", spec, "."}, Dir: site, Quiet: true})
}
