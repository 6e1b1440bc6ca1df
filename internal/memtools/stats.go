package memtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/designmem/internal/memory"
)

// StatsTool handles the design_stats MCP tool.
type StatsTool struct {
	store *memory.Store
}

// NewStatsTool creates a StatsTool with the given archive.
func NewStatsTool(store *memory.Store) *StatsTool {
	return &StatsTool{store: store}
}

// Definition returns the MCP tool definition for design_stats.
func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("design_stats",
		mcp.WithDescription(
			"Show archive statistics: sessions, commands, dependency edges, workflows, "+
				"and how commands and workflows break down by type.",
		),
	)
}

// Handle processes the design_stats tool call.
func (t *StatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := t.store.Stats()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get stats: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString("## Design Archive Statistics\n\n")
	fmt.Fprintf(&sb, "- **Sessions**: %d\n", stats.TotalSessions)
	fmt.Fprintf(&sb, "- **Commands**: %d\n", stats.TotalCommands)
	fmt.Fprintf(&sb, "- **Dependencies**: %d\n", stats.TotalDependencies)
	fmt.Fprintf(&sb, "- **Workflows**: %d\n", stats.TotalWorkflows)
	fmt.Fprintf(&sb, "- **Categories**: %s\n", histogram(stats.Categories))
	fmt.Fprintf(&sb, "- **Workflow types**: %s\n", histogram(stats.WorkflowTypes))
	return mcp.NewToolResultText(sb.String()), nil
}
