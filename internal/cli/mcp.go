package cli

import (
	"github.com/spf13/cobra"

	"github.com/anucodes-hub/ClaimAssist-AI/internal/ingest"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/tool"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the analyze_claim tool over MCP stdio",
	Long: `Start a Model Context Protocol server on stdin/stdout exposing the
analyze_claim tool. Logs go to stderr.

MCP client configuration:
  {
    "mcpServers": {
      "claimassist": {
        "command": "/path/to/claimassist",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	st, err := setup(cmd)
	if err != nil {
		return err
	}
	loader := ingest.NewFSIngestor(st.cfg.Document.MaxBytes, false, st.logger)
	tools := tool.NewTools(st.app.Processor, loader, st.cfg.Document.MaxBytes, st.logger)

	st.logger.Info("mcp.serve.start", "engine", st.app.Engine.Name())
	return tool.RunStdio(cmd.Context(), tool.NewServer(tools, version))
}
