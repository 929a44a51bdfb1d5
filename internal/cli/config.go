package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
)

var configDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect claimassist configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Print the configuration after merging defaults, the config file, the
environment and flags, as YAML. The LLM API key is never printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var (
			cfg *common.Config
			err error
		)
		if configDefaults {
			cfg = common.DefaultConfig()
		} else if cfg, err = loadConfig(); err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		if cfgFile != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "# config file: %s\n", cfgFile)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&configDefaults, "defaults", false, "show built-in defaults only")
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
