package cli

import (
	"fmt"

	"github.com/agentx-labs/extkit/internal/pipeline"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(planCmd)
}

var planCmd = &cobra.Command{
	Use:   "plan [mode...]",
	Short: "Show the stages the given modes run",
	Long: `Print the ordered stage plan for a combination of modes, without
reading the configuration or touching the filesystem. Without arguments,
list every mode and the operation it triggers.`,
	Example: `  extkit plan fetch install
  extkit plan all extension`,
	ValidArgs: modeNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, m := range pipeline.Modes() {
				op, _ := pipeline.OperationFor(m)
				fmt.Fprintln(out, stepStyle.Render(fmt.Sprintf("%-20s", "--"+string(m)))+stageNames(op.Stages))
			}
			return nil
		}

		modes := make([]pipeline.Mode, 0, len(args))
		for _, arg := range args {
			m, err := pipeline.ParseMode(arg)
			if err != nil {
				return err
			}
			modes = append(modes, m)
		}
		plan, err := pipeline.Resolve(modes...)
		if err != nil {
			return err
		}
		printPlan(out, plan)
		return nil
	},
}

func modeNames() []string {
	var out []string
	for _, m := range pipeline.Modes() {
		out = append(out, string(m))
	}
	return out
}
