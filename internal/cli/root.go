package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/anucodes-hub/ClaimAssist-AI/internal/app"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	version = "dev"

	// newApp builds the analysis stack; tests swap in a canned engine.
	newApp = app.New
)

var rootCmd = &cobra.Command{
	Use:   "claimassist",
	Short: "Analyze insurance claim documents",
	Long: `claimassist reads an insurance claim document (PDF, JPEG or PNG),
extracts the claim fields, checks them against the claim rules and
recommends approve, review or reject together with a health score.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CLAIMASSIST_*, OPENAI_API_KEY)
3. Config file (--config)
4. Defaults`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command; ctx cancellation stops long-running
// subcommands such as watch and mcp.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion stamps the version reported by `version` and the MCP server.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
}

// loadConfig resolves defaults, the config file, the environment and the
// persistent log flags, in that order of precedence.
func loadConfig() (*common.Config, error) {
	v := common.NewViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, common.NewAppError(common.CodeInvalidConfiguration,
				fmt.Sprintf("read config file %q", cfgFile), errors.Join(common.ErrInvalidConfiguration, err))
		}
	}
	if logLevel != "" {
		v.Set("log.level", logLevel)
	}
	if logFormat != "" {
		v.Set("log.format", logFormat)
	}
	return common.DecodeConfig(v)
}

// stack is what every analysis subcommand needs.
type stack struct {
	cfg    *common.Config
	logger *slog.Logger
	app    *app.App
}

// setup loads config, builds the stderr logger and the analysis stack.
// Results go to stdout, so logs never interleave with them.
func setup(cmd *cobra.Command) (*stack, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := common.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	a, err := newApp(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &stack{cfg: cfg, logger: logger, app: a}, nil
}

// Main runs the CLI and returns the process exit code.
func Main(ctx context.Context) int {
	if err := ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
