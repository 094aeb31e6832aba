package cli

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/agentx-labs/extkit/internal/layout"
	"github.com/agentx-labs/extkit/internal/pipeline"
	"github.com/agentx-labs/extkit/internal/platform"
	"github.com/spf13/cobra"
)

// lookPath is replaced in tests.
var lookPath = exec.LookPath

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor [mode...]",
	Short: "Check that the project and required tools are in place",
	Long: `Run diagnostic checks for the given modes (default: all and extension):
the external programs their stages invoke, the project files and the
configuration.`,
	ValidArgs: modeNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		modes := []pipeline.Mode{pipeline.ModeAll, pipeline.ModeExtension}
		if len(args) > 0 {
			modes = modes[:0]
			for _, arg := range args {
				m, err := pipeline.ParseMode(arg)
				if err != nil {
					return err
				}
				modes = append(modes, m)
			}
		}
		plan, err := pipeline.Resolve(modes...)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		problems := checkTools(out, plan.Tools())

		l, err := layout.Resolve(projectDir)
		if err != nil {
			return fmt.Errorf("resolving project root: %w", err)
		}
		problems += checkProject(out, l)
		problems += checkConfig(out)

		if problems > 0 {
			return fmt.Errorf("doctor found %d problem(s)", problems)
		}
		return nil
	},
}

func checkTools(w io.Writer, tools []string) int {
	fmt.Fprintln(w, "Tools check:")
	if len(tools) == 0 {
		fmt.Fprintln(w, "  [INFO] No external tools needed")
		return 0
	}
	missing := 0
	for _, name := range tools {
		path, err := lookPath(name)
		if err != nil {
			fmt.Fprintf(w, "  [MISS] %s not found\n", name)
			missing++
			continue
		}
		fmt.Fprintf(w, "  [ OK ] %s found at %s\n", name, path)
	}
	return missing
}

func checkProject(w io.Writer, l layout.Layout) int {
	fmt.Fprintf(w, "Project check (%s):\n", l.Root)
	problems := 0
	for _, f := range []string{l.ConfigFile(), l.ExtensionFile(), l.PackageFile()} {
		if !platform.Exists(f) {
			fmt.Fprintf(w, "  [MISS] %s does not exist\n", f)
			problems++
			continue
		}
		fmt.Fprintf(w, "  [ OK ] %s exists\n", f)
	}

	if platform.IsDir(l.SourceFiles()) {
		fmt.Fprintf(w, "  [ OK ] %s exists\n", l.SourceFiles())
	} else {
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", l.SourceFiles())
		problems++
	}

	for _, dir := range []string{l.Tests(), l.Extensions(), l.Scripts()} {
		if platform.IsDir(dir) {
			fmt.Fprintf(w, "  [ OK ] %s exists\n", dir)
		} else {
			fmt.Fprintf(w, "  [INFO] %s not present\n", dir)
		}
	}
	return problems
}

func checkConfig(w io.Writer) int {
	fmt.Fprintln(w, "Configuration check:")
	_, cfg, err := loadProject()
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return 1
	}
	fmt.Fprintf(w, "  [ OK ] %s %s from %s\n", cfg.Extension.Module, cfg.Extension.Version, cfg.Host.Branch)
	return 0
}
