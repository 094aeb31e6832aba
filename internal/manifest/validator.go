package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/package-manifest.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue represents a single validation error from the schema.
type ValidationIssue struct {
	Path    string // Instance location (e.g., "/version")
	Message string
	Keyword string
}

// InvalidManifestError carries the schema issues of a rejected manifest.
type InvalidManifestError struct {
	Issues []ValidationIssue
}

func (e *InvalidManifestError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path != "" {
			parts = append(parts, issue.Path+": "+issue.Message)
		} else {
			parts = append(parts, issue.Message)
		}
	}
	return "invalid package manifest: " + strings.Join(parts, "; ")
}

// getSchema compiles the embedded JSON schema once and returns it.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("package-manifest.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("package-manifest.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Validate validates raw manifest JSON against the package manifest schema.
// The error return is for parse or schema compilation failures; schema
// violations are reported in the ValidationResult.
func Validate(data []byte) (*ValidationResult, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing manifest JSON: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}
	return &ValidationResult{Valid: false, Issues: extractIssues(validationErr)}, nil
}

// extractIssues walks the ValidationError tree and returns leaf-level issues.
func extractIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	collectValidationIssues(ve, &issues)
	if len(issues) == 0 {
		return []ValidationIssue{{Message: ve.Error()}}
	}
	return issues
}

func collectValidationIssues(ve *jsonschema.ValidationError, issues *[]ValidationIssue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectValidationIssues(cause, issues)
		}
		return
	}

	path := ""
	if len(ve.InstanceLocation) > 0 {
		path = "/" + strings.Join(ve.InstanceLocation, "/")
	}

	keyword, msg := "", ""
	if ve.ErrorKind != nil {
		if kwPath := ve.ErrorKind.KeywordPath(); len(kwPath) > 0 {
			keyword = kwPath[len(kwPath)-1]
		}
		msg = ve.ErrorKind.LocalizedString(printer)
	}
	*issues = append(*issues, ValidationIssue{Path: path, Message: msg, Keyword: keyword})
}

// CheckConstraints verifies that the version is valid semver and that every
// compatibility entry parses as a semver constraint.
func (s Source) CheckConstraints() error {
	var errs []error
	if _, err := semver.NewVersion(strings.TrimPrefix(s.Version, "v")); err != nil {
		errs = append(errs, fmt.Errorf("version %q: %w", s.Version, err))
	}
	for _, c := range s.AcceptableVersions {
		if _, err := semver.NewConstraint(c); err != nil {
			errs = append(errs, fmt.Errorf("acceptableVersions %q: %w", c, err))
		}
	}
	for _, c := range s.PHP {
		if _, err := semver.NewConstraint(c); err != nil {
			errs = append(errs, fmt.Errorf("php %q: %w", c, err))
		}
	}
	return errors.Join(errs...)
}

// NewPackageManifest derives the package manifest for src, released on now.
func NewPackageManifest(src Source, now time.Time) (*PackageManifest, error) {
	if err := src.CheckConstraints(); err != nil {
		return nil, err
	}

	php := []string(src.PHP)
	if php == nil {
		php = []string{}
	}
	m := &PackageManifest{
		Name:               src.Name,
		Description:        src.Description,
		Author:             src.Author,
		PHP:                php,
		AcceptableVersions: []string(src.AcceptableVersions),
		Version:            src.Version,
		SkipBackup:         true,
		ReleaseDate:        now.UTC().Format(ReleaseDateLayout),
	}
	if _, err := m.Marshal(); err != nil {
		return nil, err
	}
	return m, nil
}

// Marshal renders the manifest as 4-space indented JSON after checking it
// against the schema.
func (m *PackageManifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshaling package manifest: %w", err)
	}

	result, err := Validate(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &InvalidManifestError{Issues: result.Issues}
	}
	return data, nil
}

// WriteFile writes the manifest to path, replacing any stale file.
func (m *PackageManifest) WriteFile(path string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing stale manifest %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}
