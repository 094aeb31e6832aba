package platform

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Exists reports whether path exists. Broken symlinks count as existing.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// DeleteRecursive removes path and everything under it. A missing path is a
// no-op. Callers that want to know whether the removal raced with another
// process use DeleteTree.
func DeleteRecursive(path string) error {
	_, err := DeleteTree(path)
	return err
}

// DeleteTree removes path and everything under it. When the removal fails
// but path is gone afterwards, something else deleted entries underneath it
// while it ran; that is reported through vanished rather than as an error.
func DeleteTree(path string) (vanished bool, err error) {
	removeErr := os.RemoveAll(path)
	if removeErr == nil {
		return false, nil
	}
	if _, statErr := os.Lstat(path); errors.Is(statErr, fs.ErrNotExist) {
		return true, nil
	}
	return false, &IOError{Op: "delete", Path: path, Err: removeErr}
}

// RemoveFile deletes a single file if present.
func RemoveFile(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return &IOError{Op: "remove", Path: path, Err: err}
}

// MoveDirContents moves every entry of src into dst and then removes src.
// Directories that already exist in dst are merged; files are replaced.
func MoveDirContents(src, dst string) error {
	info, err := os.Stat(dst)
	if err != nil {
		return &IOError{Op: "move", Path: dst, Err: err}
	}
	if !info.IsDir() {
		return &IOError{Op: "move", Path: dst, Err: errors.New("destination is not a directory")}
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return &IOError{Op: "move", Path: src, Err: err}
	}

	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		if err := moveEntry(from, to, entry); err != nil {
			return err
		}
	}

	if err := DeleteRecursive(src); err != nil {
		return err
	}
	return nil
}

func moveEntry(from, to string, entry fs.DirEntry) error {
	existing, err := os.Lstat(to)
	switch {
	case err == nil && existing.IsDir() && entry.IsDir():
		return MoveDirContents(from, to)
	case err == nil:
		if err := DeleteRecursive(to); err != nil {
			return err
		}
	case !errors.Is(err, fs.ErrNotExist):
		return &IOError{Op: "move", Path: to, Err: err}
	}

	if err := os.Rename(from, to); err != nil {
		// Rename fails across filesystems; fall back to copy + delete.
		if copyErr := CopyTree(from, to); copyErr != nil {
			return copyErr
		}
		return DeleteRecursive(from)
	}
	return nil
}

// CopyTree merge-copies src into dst. Files with the same relative path are
// overwritten; files that only exist in dst are left untouched. src may be
// a single file, in which case it is copied to dst.
func CopyTree(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return &IOError{Op: "copy", Path: src, Err: err}
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return copySymlink(src, dst)
	case info.IsDir():
		return copyDir(src, dst, info.Mode().Perm())
	case info.Mode().IsRegular():
		return copyFile(src, dst, info.Mode().Perm())
	default:
		// Sockets, devices and pipes are not part of a source tree.
		return nil
	}
}

func copyDir(src, dst string, perm os.FileMode) error {
	if existing, err := os.Lstat(dst); err == nil && !existing.IsDir() {
		if err := RemoveFile(dst); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dst, perm|0700); err != nil {
		return &IOError{Op: "copy", Path: dst, Err: err}
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return &IOError{Op: "copy", Path: src, Err: err}
	}
	for _, entry := range entries {
		if err := CopyTree(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	if existing, err := os.Lstat(dst); err == nil && (existing.IsDir() || existing.Mode()&os.ModeSymlink != 0) {
		if err := DeleteRecursive(dst); err != nil {
			return err
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return &IOError{Op: "copy", Path: src, Err: err}
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return &IOError{Op: "copy", Path: dst, Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return &IOError{Op: "copy", Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return &IOError{Op: "copy", Path: dst, Err: err}
	}
	return Chmod(dst, perm)
}

// copySymlink recreates the link at dst. A relative target that does not
// resolve from dst is rewritten to the absolute path it resolved to from
// src, so copying a tree elsewhere never leaves a dangling link.
func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return &IOError{Op: "copy", Path: src, Err: err}
	}
	if !filepath.IsAbs(target) {
		original := filepath.Join(filepath.Dir(src), target)
		if !Exists(filepath.Join(filepath.Dir(dst), target)) && Exists(original) {
			if abs, err := filepath.Abs(original); err == nil {
				target = abs
			}
		}
	}
	if err := DeleteRecursive(dst); err != nil {
		return err
	}
	if err := os.Symlink(target, dst); err != nil {
		return &IOError{Op: "copy", Path: dst, Err: fmt.Errorf("recreating symlink: %w", err)}
	}
	return nil
}
