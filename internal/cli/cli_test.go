package cli

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/agentx-labs/extkit/internal/pipeline"
	"github.com/agentx-labs/extkit/internal/stage"
	"github.com/charmbracelet/fang"
)

// executeCommand runs the root command with args and returns its stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(resetFlags)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags() {
	for _, f := range modeFlags {
		*f = false
	}
	dryRun = false
	projectDir = ""
	configFile = ""
	branchOverride = ""
	verbose = false
	quiet = false
	configShowJSON = false
	versionShort = false
	versionJSON = false
}

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"config.json": `{
	"espocrm": {"repository": "https://github.com/espocrm/espocrm", "branch": "stable"},
	"database": {"host": "localhost", "dbname": "espo", "user": "root", "password": "s3cret"},
	"install": {"siteUrl": "http://localhost", "adminUsername": "admin", "adminPassword": "adm1n"}
}`,
		"extension.json": `{"module": "SalesPack", "name": "Sales Pack", "acceptableVersions": [">=8.0.0"]}`,
		"package.json":   `{"version": "1.0.3"}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestSelectedModes(t *testing.T) {
	t.Cleanup(resetFlags)
	*modeFlags[pipeline.ModeExtension] = true
	*modeFlags[pipeline.ModeFetch] = true

	want := []pipeline.Mode{pipeline.ModeFetch, pipeline.ModeExtension}
	if got := selectedModes(); !reflect.DeepEqual(got, want) {
		t.Errorf("selectedModes() = %v, want %v", got, want)
	}
}

func TestEveryModeHasAFlag(t *testing.T) {
	for _, m := range pipeline.Modes() {
		if rootCmd.Flags().Lookup(string(m)) == nil {
			t.Errorf("no --%s flag", m)
		}
		if modeUsage[m] == "" {
			t.Errorf("no usage for --%s", m)
		}
	}
}

func TestDryRunPrintsPlan(t *testing.T) {
	out, err := executeCommand(t, "--install", "--fetch", "--dry-run", "--project", t.TempDir())
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}

	order := []string{"fetch", "install", "install-extensions", "set-ownership"}
	last := -1
	for _, name := range order {
		i := strings.Index(out, ". "+name)
		if i < 0 {
			t.Fatalf("plan missing %s:\n%s", name, out)
		}
		if i < last {
			t.Errorf("%s out of order:\n%s", name, out)
		}
		last = i
	}
	if strings.Contains(out, "rebuild") {
		t.Errorf("unexpected stage in plan:\n%s", out)
	}
}

func TestPlanCommand(t *testing.T) {
	out, err := executeCommand(t, "plan", "all", "extension")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(out, "--all --extension") {
		t.Errorf("header missing modes:\n%s", out)
	}
	if strings.Index(out, ". package") > strings.Index(out, ". set-ownership") {
		t.Errorf("set-ownership should be last:\n%s", out)
	}

	if _, err := executeCommand(t, "plan", "deploy"); err == nil {
		t.Error("expected unknown mode error")
	}
}

func TestPlanCommandListsModes(t *testing.T) {
	out, err := executeCommand(t, "plan")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	for _, m := range pipeline.Modes() {
		if !strings.Contains(out, "--"+string(m)) {
			t.Errorf("mode %s not listed:\n%s", m, out)
		}
	}
}

func TestConfigShowMasksPasswords(t *testing.T) {
	dir := writeProject(t)

	out, err := executeCommand(t, "config", "show", "--project", dir, "--branch", "8.4")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "s3cret") || strings.Contains(out, "adm1n") {
		t.Errorf("password leaked:\n%s", out)
	}
	for _, want := range []string{"***", "branch: \"8.4\"", "module: SalesPack"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigShowMissingProject(t *testing.T) {
	if _, err := executeCommand(t, "config", "show", "--project", t.TempDir()); err == nil {
		t.Error("expected an error for a project without config.json")
	}
}

func TestVersionShort(t *testing.T) {
	buildVersion = "1.2.3"
	out, err := executeCommand(t, "version", "--short")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "1.2.3" {
		t.Errorf("version --short = %q", out)
	}
}

func TestDoctor(t *testing.T) {
	dir := writeProject(t)
	if err := os.MkdirAll(filepath.Join(dir, "src", "files"), 0755); err != nil {
		t.Fatal(err)
	}

	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(name string) (string, error) {
		if name == "grunt" {
			return "", exec.ErrNotFound
		}
		return "/usr/bin/" + name, nil
	}

	out, err := executeCommand(t, "doctor", "--project", dir)
	if err == nil || !strings.Contains(err.Error(), "1 problem") {
		t.Fatalf("expected one problem, got %v\n%s", err, out)
	}
	for _, want := range []string{"[MISS] grunt not found", "[ OK ] composer found at /usr/bin/composer", "[ OK ] SalesPack 1.0.3 from stable"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = executeCommand(t, "doctor", "copy", "--project", dir)
	if err != nil {
		t.Fatalf("doctor copy: %v\n%s", err, out)
	}
	if strings.Contains(out, "grunt") {
		t.Errorf("copy should not need grunt:\n%s", out)
	}
}

func TestPrintErrorNamesFailedStage(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, fang.Styles{}, &pipeline.StageError{Stage: stage.Package, Err: errors.New("zip: disk full")})

	out := buf.String()
	for _, want := range []string{"package failed", "zip: disk full", "--verbose"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintErrorFallsBackForOtherErrors(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, fang.Styles{}, errors.New("unknown flag: --nope"))

	if out := buf.String(); !strings.Contains(out, "unknown flag: --nope") || strings.Contains(out, "failed") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestPrintErrorPlainWhenNotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stderr")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	printError(f, fang.Styles{}, &pipeline.StageError{Stage: stage.Rebuild, Err: errors.New("exit status 255")})

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "Error: stage rebuild: exit status 255\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
