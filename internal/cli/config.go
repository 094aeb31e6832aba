package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var configShowJSON bool

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "Print as JSON")
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the project settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved settings with passwords masked",
	Long: `Print the settings every stage sees: config.json merged with
environment overrides, plus the extension manifest source. Passwords are
masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadProject()
		if err != nil {
			return err
		}
		redacted := cfg.Redacted()

		if configShowJSON {
			out, err := json.MarshalIndent(redacted, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		out, err := yaml.Marshal(redacted)
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}
