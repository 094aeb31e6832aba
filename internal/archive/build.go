package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Build packs the contents of sourceDir into a zip at outputPath. Entries
// are relative to sourceDir, so sourceDir itself does not appear as a path
// prefix. The archive is written to a temporary file next to outputPath and
// renamed into place only on success.
func Build(sourceDir, outputPath string) (err error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return &ArchiveError{Path: outputPath, Err: err}
	}
	if !info.IsDir() {
		return &ArchiveError{Path: outputPath, Err: fmt.Errorf("%s is not a directory", sourceDir)}
	}

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".extkit-*.zip.part")
	if err != nil {
		return &ArchiveError{Path: outputPath, Err: err}
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(tmp)
	b := &builder{zw: zw, visiting: make(map[string]bool)}
	if walkErr := b.addTree(sourceDir, ""); walkErr != nil {
		zw.Close()
		tmp.Close()
		return &ArchiveError{Path: outputPath, Err: walkErr}
	}

	if err := zw.Close(); err != nil {
		tmp.Close()
		return &ArchiveError{Path: outputPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &ArchiveError{Path: outputPath, Err: err}
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		return &ArchiveError{Path: outputPath, Err: err}
	}
	return nil
}

// builder writes directory trees into a zip. Symlinks are followed;
// visiting holds the resolved paths of the directories being walked so that a
// link back into one of them is reported instead of looping.
type builder struct {
	zw       *zip.Writer
	visiting map[string]bool
}

// addTree adds the contents of dir with entry names prefixed by prefix.
func (b *builder) addTree(dir, prefix string) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dir, err)
	}
	if b.visiting[resolved] {
		return fmt.Errorf("symlink cycle at %s", dir)
	}
	b.visiting[resolved] = true
	defer delete(b.visiting, resolved)

	return filepath.WalkDir(resolved, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}
		if rel == "." {
			return nil
		}
		return b.addEntry(path, prefix+filepath.ToSlash(rel), d)
	})
}

func (b *builder) addEntry(path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("following symlink %s: %w", path, err)
		}
		if target.IsDir() {
			if err := b.addDirHeader(name, target); err != nil {
				return err
			}
			return b.addTree(path, name+"/")
		}
		info = target
	}

	switch {
	case info.IsDir():
		return b.addDirHeader(name, info)
	case info.Mode().IsRegular():
		return b.addFile(path, name, info)
	default:
		// Sockets, devices and pipes have no place in a package.
		return nil
	}
}

func (b *builder) addDirHeader(name string, info fs.FileInfo) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("creating header for %s: %w", name, err)
	}
	header.Name = name + "/"
	_, err = b.zw.CreateHeader(header)
	return err
}

func (b *builder) addFile(path, name string, info fs.FileInfo) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("creating header for %s: %w", name, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := b.zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("creating entry %s: %w", name, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
