package memtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/designmem/internal/memory"
)

// SessionsTool handles the design_sessions MCP tool.
type SessionsTool struct {
	store *memory.Store
}

// NewSessionsTool creates a SessionsTool.
func NewSessionsTool(store *memory.Store) *SessionsTool {
	return &SessionsTool{store: store}
}

// Definition returns the MCP tool definition for design_sessions.
func (t *SessionsTool) Definition() mcp.Tool {
	return mcp.NewTool("design_sessions",
		mcp.WithDescription("List the most recently archived design sessions."),
		mcp.WithNumber("limit",
			mcp.Description("Max sessions (default: 5, max: 20)"),
		),
	)
}

// Handle processes the design_sessions tool call.
func (t *SessionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := t.store.RecentSessions(intArg(req, "limit", 5))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list sessions: %v", err)), nil
	}
	if len(sessions) == 0 {
		return mcp.NewToolResultText("No archived design sessions."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Recent design sessions (%d)\n\n", len(sessions))
	for _, s := range sessions {
		fmt.Fprintf(&b, "- **%s** created %s | %d commands | %d workflows | longest chain %d\n",
			s.ID, s.CreatedAt, s.CommandCount, s.WorkflowCount, s.LongestChain)
	}
	return mcp.NewToolResultText(b.String()), nil
}
