package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer returns an MCP server exposing the claim tools.
func NewServer(t *Tools, version string) *mcp.Server {
	impl := &mcp.Implementation{
		Name:    "claimassist",
		Version: version,
	}
	server := mcp.NewServer(impl, nil)
	mcp.AddTool(server, MetadataAnalyzeClaim, t.AnalyzeClaim)
	return server
}

// RunStdio serves the tools over stdin/stdout until ctx is done.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
