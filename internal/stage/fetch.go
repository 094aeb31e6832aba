package stage

import (
	"context"
	"fmt"
	"os"

	"github.com/agentx-labs/extkit/internal/archive"
	"github.com/agentx-labs/extkit/internal/branding"
	"github.com/agentx-labs/extkit/internal/layout"
	"github.com/agentx-labs/extkit/internal/platform"
)

// runFetch replaces the working tree with a fresh, flattened copy of the
// configured ref.
func runFetch(ctx context.Context, env *Env) error {
	logger := env.log()
	site := env.Layout.Site()
	host := env.Config.Host

	logger.Info(fmt.Sprintf("Fetching %s repository...", branding.HostName()), "ref", host.Branch)

	if err := env.deleteTree(site); err != nil {
		return err
	}
	if err := os.MkdirAll(site, layout.DirPerm); err != nil {
		return &platform.IOError{Op: "mkdir", Path: site, Err: err}
	}

	archivePath := env.Layout.FetchArchive()
	if err := env.Transport.Fetch(ctx, host.Repository, host.Branch, archivePath); err != nil {
		return err
	}

	logger.Info("Unzipping...")
	wrapper, err := archive.Extract(archivePath, site)
	if removeErr := platform.RemoveFile(archivePath); removeErr != nil && err == nil {
		err = removeErr
	}
	if err != nil {
		return err
	}

	if want := archive.WrapperName(branding.HostProject(), host.Branch); wrapper != "" && wrapper != want {
		logger.Debug("unexpected archive root", "got", wrapper, "want", want)
	}
	return nil
}
