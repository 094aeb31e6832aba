package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/extkit/internal/platform"
)

// Extract expands the zip at archivePath into destDir. When every entry of
// the archive lives under one top-level directory, that wrapper is
// flattened: its contents become the direct contents of destDir and the
// wrapper is removed. The name of the flattened wrapper is returned, or ""
// when the archive was already flat.
func Extract(archivePath, destDir string) (wrapper string, err error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		if r != nil {
			r.Close()
		}
		return "", &ExtractError{Archive: archivePath, Err: err}
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil && err == nil {
			err = &ExtractError{Archive: archivePath, Err: closeErr}
		}
	}()

	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return "", &ExtractError{Archive: archivePath, Err: err}
	}
	if err := os.MkdirAll(absDest, 0o755); err != nil {
		return "", &ExtractError{Archive: archivePath, Err: err}
	}

	for _, file := range r.File {
		if err := extractEntry(file, absDest); err != nil {
			return "", &ExtractError{Archive: archivePath, Err: err}
		}
	}

	wrapper = singleRoot(r.File)
	if wrapper == "" {
		return "", nil
	}
	if err := flatten(absDest, wrapper); err != nil {
		return "", &ExtractError{Archive: archivePath, Err: fmt.Errorf("flattening %s: %w", wrapper, err)}
	}
	return wrapper, nil
}

func extractEntry(file *zip.File, destDir string) error {
	destPath := filepath.Join(destDir, filepath.FromSlash(file.Name))

	// Validate path doesn't escape destination.
	rel, err := filepath.Rel(destDir, destPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("invalid path in archive: %s", file.Name)
	}

	if file.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0o755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	return extractFile(file, destPath)
}

func extractFile(file *zip.File, destPath string) (err error) {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return platform.Chmod(destPath, mode)
}

// singleRoot returns the top-level directory shared by every entry, or ""
// if entries live at the archive root or under several directories.
func singleRoot(files []*zip.File) string {
	root := ""
	for _, file := range files {
		name := strings.TrimPrefix(file.Name, "./")
		first, _, nested := strings.Cut(name, "/")
		if !nested && !file.FileInfo().IsDir() {
			return ""
		}
		if first == "" {
			return ""
		}
		if root == "" {
			root = first
		} else if root != first {
			return ""
		}
	}
	return root
}

// flatten moves destDir/wrapper up into destDir. The wrapper is renamed
// first so that an entry inside it that shares the wrapper's name cannot
// collide with the wrapper itself.
func flatten(destDir, wrapper string) error {
	wrapperPath := filepath.Join(destDir, wrapper)
	staging := filepath.Join(destDir, ".flatten-"+wrapper)
	if platform.Exists(staging) {
		return errors.New("staging directory already exists: " + staging)
	}
	if err := os.Rename(wrapperPath, staging); err != nil {
		return err
	}
	return platform.MoveDirContents(staging, destDir)
}
