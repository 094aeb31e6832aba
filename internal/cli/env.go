package cli

import (
	"io"
	"os"

	"github.com/agentx-labs/extkit/internal/archive"
	"github.com/agentx-labs/extkit/internal/branding"
	"github.com/agentx-labs/extkit/internal/config"
	"github.com/agentx-labs/extkit/internal/layout"
	"github.com/agentx-labs/extkit/internal/process"
	"github.com/agentx-labs/extkit/internal/stage"
	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

func newLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: branding.CLIName()})
	switch {
	case verbose:
		logger.SetLevel(log.DebugLevel)
	case quiet:
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// loadProject resolves the project layout and reads its configuration.
func loadProject() (layout.Layout, config.Config, error) {
	l, err := layout.Resolve(projectDir)
	if err != nil {
		return layout.Layout{}, config.Config{}, err
	}

	settings := configFile
	if settings == "" {
		settings = l.ConfigFile()
	}
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile:    settings,
		ExtensionFile: l.ExtensionFile(),
		PackageFile:   l.PackageFile(),
		Branch:        branchOverride,
	})
	if err != nil {
		return layout.Layout{}, config.Config{}, err
	}
	return l, cfg, nil
}

func newEnv(logger *log.Logger) (*stage.Env, error) {
	l, cfg, err := loadProject()
	if err != nil {
		return nil, err
	}

	var opts []archive.Option
	if !quiet && term.IsTerminal(int(os.Stderr.Fd())) {
		opts = append(opts, archive.WithProgress(os.Stderr))
	}

	return &stage.Env{
		Config:    cfg,
		Layout:    l,
		Runner:    &process.ExecRunner{Logger: logger},
		Transport: archive.New(opts...),
		Logger:    logger,
	}, nil
}
