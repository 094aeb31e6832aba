package stage

import (
	"context"
	"errors"
	"reflect"
	"runtime"
	"testing"

	"github.com/agentx-labs/extkit/internal/platform"
	"github.com/agentx-labs/extkit/internal/process"
)

func TestRebuildAndPostInstall(t *testing.T) {
	env, runner := newTestEnv(t)
	prepareInstall(t, env)

	if err := runRebuild(context.Background(), env); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if err := runPostInstallHook(context.Background(), env); err != nil {
		t.Fatalf("post-install: %v", err)
	}

	want := []string{"php rebuild.php", "php after_install.php"}
	if got := runner.lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("commands = %q, want %q", got, want)
	}
	if runner.calls[0].Dir != env.Layout.Site() || runner.calls[1].Dir != env.Layout.Scripts() {
		t.Errorf("unexpected dirs: %s, %s", runner.calls[0].Dir, runner.calls[1].Dir)
	}
	if runner.calls[0].Quiet || runner.calls[1].Quiet {
		t.Error("rebuild and after-install output should be streamed")
	}
}

func TestPostInstallMissingScript(t *testing.T) {
	env, runner := newTestEnv(t)
	populateWorkingTree(t, env)

	err := runPostInstallHook(context.Background(), env)
	var ioErr *platform.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("no command should run, got %v", runner.lines())
	}
}

func TestOwnerSpec(t *testing.T) {
	tests := []struct{ owner, group, want string }{
		{"www-data", "www-data", "www-data:www-data"},
		{"www-data", "", "www-data"},
		{"", "staff", ""},
		{" ", " ", ""},
	}
	for _, tt := range tests {
		if got := OwnerSpec(tt.owner, tt.group); got != tt.want {
			t.Errorf("OwnerSpec(%q, %q) = %q, want %q", tt.owner, tt.group, got, tt.want)
		}
	}
}

func TestSetOwnership(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("ownership is skipped on windows")
	}
	env, runner := newTestEnv(t)
	populateWorkingTree(t, env)

	if err := runSetOwnership(context.Background(), env); err != nil {
		t.Fatalf("set ownership: %v", err)
	}
	if want := []string{"chown -R www-data:www-data ."}; !reflect.DeepEqual(runner.lines(), want) {
		t.Errorf("commands = %q, want %q", runner.lines(), want)
	}

	runner.calls = nil
	runner.failOn = func(process.Command) bool { return true }
	err := runSetOwnership(context.Background(), env)
	var pe *process.ProcessError
	if !errors.As(err, &pe) {
		t.Errorf("expected the failure to be reported, got %v", err)
	}
}

func TestSetOwnershipSkipsWithoutOwner(t *testing.T) {
	env, runner := newTestEnv(t)
	populateWorkingTree(t, env)
	env.Config.Install.DefaultOwner = ""

	if err := runSetOwnership(context.Background(), env); err != nil {
		t.Fatalf("set ownership: %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("no command should run, got %v", runner.lines())
	}
}
