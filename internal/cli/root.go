package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/agentx-labs/extkit/internal/branding"
	"github.com/agentx-labs/extkit/internal/pipeline"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

// Global flags.
var (
	projectDir     string
	configFile     string
	branchOverride string
	verbose        bool
	quiet          bool
)

var dryRun bool

// modeFlags holds one bool flag per pipeline mode.
var modeFlags = map[pipeline.Mode]*bool{}

var modeUsage = map[pipeline.Mode]string{
	pipeline.ModeAll:             "Fetch, install and merge the extension, then rebuild and run the after-install script",
	pipeline.ModeFetch:           "Download the configured branch into the working tree",
	pipeline.ModeInstall:         "Run the host installer and install packaged extensions",
	pipeline.ModeCopy:            "Copy the extension sources into the working tree",
	pipeline.ModeComposerInstall: "Install the merged module's composer dependencies",
	pipeline.ModeRebuild:         "Rebuild the host application",
	pipeline.ModeAfterInstall:    "Run php_scripts/after_install.php",
	pipeline.ModeExtension:       "Build the extension package into build/",
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` sets up a local ` + branding.HostName() + ` instance for extension
development and packages the extension for distribution.

Select what to do with one or more mode flags. Combined modes run as a
single ordered plan; use --dry-run or the plan command to inspect it.`,
	Example: `  ` + branding.CLIName() + ` --all
  ` + branding.CLIName() + ` --fetch --install --branch 8.4
  ` + branding.CLIName() + ` --copy --composer-install
  ` + branding.CLIName() + ` --extension`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&projectDir, "project", "p", "", "Project root (default: $"+branding.EnvVar("PROJECT")+" or the current directory)")
	pf.StringVar(&configFile, "config", "", "Settings file (default: <project>/config.json)")
	pf.StringVarP(&branchOverride, "branch", "b", "", "Override the configured "+branding.HostName()+" branch")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log external commands and debug details")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	f := rootCmd.Flags()
	for _, m := range pipeline.Modes() {
		modeFlags[m] = f.Bool(string(m), false, modeUsage[m])
	}
	f.BoolVar(&dryRun, "dry-run", false, "Print the resolved plan without running it")
}

// selectedModes returns the modes whose flags are set.
func selectedModes() []pipeline.Mode {
	var modes []pipeline.Mode
	for _, m := range pipeline.Modes() {
		if *modeFlags[m] {
			modes = append(modes, m)
		}
	}
	return modes
}

func runRoot(cmd *cobra.Command, args []string) error {
	modes := selectedModes()
	if len(modes) == 0 {
		return cmd.Help()
	}

	plan, err := pipeline.Resolve(modes...)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if dryRun {
		printPlan(out, plan)
		return nil
	}

	logger := newLogger(cmd.ErrOrStderr())
	env, err := newEnv(logger)
	if err != nil {
		return err
	}

	report, err := pipeline.Run(cmd.Context(), env, plan)
	if err != nil {
		return err
	}
	if !quiet {
		printReport(out, report)
	}
	return nil
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", buildVersion, buildCommit, buildDate)
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(printError),
	)
}
