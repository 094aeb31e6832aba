package manifest

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func validSource() Source {
	return Source{
		Module:             "SalesPack",
		Name:               "Sales Pack",
		Description:        "Sales tooling",
		Author:             "Acme",
		PHP:                Constraints{">=8.1"},
		AcceptableVersions: Constraints{">=8.0.0"},
		Version:            "1.4.2",
	}
}

func TestHyphenate(t *testing.T) {
	tests := map[string]string{
		"MyModule":   "my-module",
		"SalesPack":  "sales-pack",
		"CRMTools":   "crm-tools",
		"Module2Go":  "module2-go",
		"Simple":     "simple",
		"ABC":        "abc",
		"AdvancedUI": "advanced-ui",
	}
	for in, want := range tests {
		if got := Hyphenate(in); got != want {
			t.Errorf("Hyphenate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidModuleID(t *testing.T) {
	for _, id := range []string{"SalesPack", "X", "Module2"} {
		if !ValidModuleID(id) {
			t.Errorf("ValidModuleID(%q) = false", id)
		}
	}
	for _, id := range []string{"", "salesPack", "Sales-Pack", "Sales/Pack", "../x"} {
		if ValidModuleID(id) {
			t.Errorf("ValidModuleID(%q) = true", id)
		}
	}
}

func TestLoadSourceJSON(t *testing.T) {
	path := writeTemp(t, "extension.json", `{
	"module": "SalesPack",
	"name": "Sales Pack",
	"description": "Sales tooling",
	"author": "Acme",
	"php": ">=8.1",
	"acceptableVersions": [">=8.0.0", "<9"]
}`)

	src, err := LoadSource(path)
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if src.Module != "SalesPack" || src.Name != "Sales Pack" {
		t.Errorf("unexpected identity: %+v", src)
	}
	if len(src.PHP) != 1 || src.PHP[0] != ">=8.1" {
		t.Errorf("PHP = %v, want scalar promoted to list", src.PHP)
	}
	if len(src.AcceptableVersions) != 2 {
		t.Errorf("AcceptableVersions = %v", src.AcceptableVersions)
	}
	if src.ModuleHyphen() != "sales-pack" {
		t.Errorf("ModuleHyphen = %q", src.ModuleHyphen())
	}
}

func TestLoadSourceYAML(t *testing.T) {
	path := writeTemp(t, "extension.yaml", `module: SalesPack
name: Sales Pack
acceptableVersions: ">=8.0.0"
php:
  - ">=8.1"
`)

	src, err := LoadSource(path)
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if len(src.AcceptableVersions) != 1 || src.AcceptableVersions[0] != ">=8.0.0" {
		t.Errorf("AcceptableVersions = %v", src.AcceptableVersions)
	}
	if len(src.PHP) != 1 {
		t.Errorf("PHP = %v", src.PHP)
	}
}

func TestLoadSourceRejectsBadModule(t *testing.T) {
	path := writeTemp(t, "extension.json", `{"module": "sales-pack", "name": "x"}`)
	if _, err := LoadSource(path); err == nil {
		t.Fatal("expected error for non-CamelCase module")
	}

	path = writeTemp(t, "extension.json", `{"name": "x"}`)
	if _, err := LoadSource(path); err == nil {
		t.Fatal("expected error for missing module")
	}
}

func TestLoadSourceMissingFile(t *testing.T) {
	if _, err := LoadSource(filepath.Join(t.TempDir(), "extension.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadVersion(t *testing.T) {
	path := writeTemp(t, "package.json", `{"name": "sales-pack", "version": "1.4.2", "devDependencies": {"grunt": "^1.0.0"}}`)
	v, err := LoadVersion(path)
	if err != nil {
		t.Fatalf("LoadVersion: %v", err)
	}
	if v != "1.4.2" {
		t.Errorf("version = %q", v)
	}

	path = writeTemp(t, "package.json", `{"name": "x"}`)
	if _, err := LoadVersion(path); err == nil {
		t.Error("expected error for missing version")
	}
}

func TestNewPackageManifest(t *testing.T) {
	now := time.Date(2026, 3, 7, 23, 59, 0, 0, time.UTC)
	m, err := NewPackageManifest(validSource(), now)
	if err != nil {
		t.Fatalf("NewPackageManifest: %v", err)
	}
	if m.ReleaseDate != "2026-03-07" {
		t.Errorf("ReleaseDate = %q", m.ReleaseDate)
	}
	if !m.SkipBackup {
		t.Error("SkipBackup should be true")
	}
	if m.Version != "1.4.2" {
		t.Errorf("Version = %q", m.Version)
	}
}

func TestNewPackageManifestReleaseDateIsUTC(t *testing.T) {
	instant := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
	for _, zone := range []*time.Location{
		time.FixedZone("UTC+14", 14*3600),
		time.FixedZone("UTC-12", -12*3600),
	} {
		m, err := NewPackageManifest(validSource(), instant.In(zone))
		if err != nil {
			t.Fatalf("NewPackageManifest: %v", err)
		}
		if m.ReleaseDate != "2026-03-14" {
			t.Errorf("ReleaseDate in %s = %q, want 2026-03-14", zone, m.ReleaseDate)
		}
	}
}

func TestNewPackageManifestRejectsBadVersion(t *testing.T) {
	src := validSource()
	src.Version = "one.two"
	if _, err := NewPackageManifest(src, time.Now()); err == nil {
		t.Fatal("expected error for non-semver version")
	}
}

func TestNewPackageManifestRejectsBadConstraint(t *testing.T) {
	src := validSource()
	src.AcceptableVersions = Constraints{">=banana"}
	if _, err := NewPackageManifest(src, time.Now()); err == nil {
		t.Fatal("expected error for invalid constraint")
	}
}

func TestNewPackageManifestRequiresAcceptableVersions(t *testing.T) {
	src := validSource()
	src.AcceptableVersions = nil

	_, err := NewPackageManifest(src, time.Now())
	var invalid *InvalidManifestError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want *InvalidManifestError", err)
	}
	if len(invalid.Issues) == 0 {
		t.Error("expected schema issues")
	}
}

func TestValidateReportsIssues(t *testing.T) {
	result, err := Validate([]byte(`{"name": "", "version": "1.0.0", "acceptableVersions": [], "releaseDate": "07/03/2026", "skipBackup": true}`))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid result")
	}

	paths := map[string]bool{}
	for _, issue := range result.Issues {
		paths[issue.Path] = true
	}
	for _, want := range []string{"/name", "/acceptableVersions", "/releaseDate"} {
		if !paths[want] {
			t.Errorf("missing issue for %s in %+v", want, result.Issues)
		}
	}
}

func TestWriteFile(t *testing.T) {
	m, err := NewPackageManifest(validSource(), time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := m.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n    \"name\": \"Sales Pack\"") {
		t.Errorf("manifest not indented with 4 spaces:\n%s", data)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("manifest is not JSON: %v", err)
	}
	for _, key := range []string{"name", "description", "author", "php", "acceptableVersions", "version", "skipBackup", "releaseDate"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("manifest missing %q", key)
		}
	}
	if len(fields) != 8 {
		t.Errorf("manifest has %d fields, want 8", len(fields))
	}
}
