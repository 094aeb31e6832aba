package stage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentx-labs/extkit/internal/platform"
	"github.com/agentx-labs/extkit/internal/process"
)

// PackagedExtensions lists the *.zip files in dir in lexical order. A
// missing directory yields no packages.
func PackagedExtensions(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &platform.IOError{Op: "read", Path: dir, Err: err}
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".zip") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func runInstallExtensions(ctx context.Context, env *Env) error {
	logger := env.log()

	packages, err := PackagedExtensions(env.Layout.Extensions())
	if err != nil {
		return err
	}
	if len(packages) == 0 {
		logger.Debug("no packaged extensions", "dir", env.Layout.Extensions())
		return nil
	}
	if err := requireWorkingTree(env); err != nil {
		return err
	}

	logger.Info("Installing extensions from 'extensions' directory...")
	site := env.Layout.Site()
	for _, pkg := range packages {
		logger.Info("Install: "+filepath.Base(pkg), "package", pkg)
		cmd := process.Command{
			Name:  "php",
			Args:  []string{"command.php", "extension", "--file=" + pkg},
			Dir:   site,
			Quiet: true,
		}
		if err := env.run(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}
