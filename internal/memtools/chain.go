package memtools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/designmem/internal/memory"
)

// ChainTool handles the design_chain MCP tool.
type ChainTool struct {
	store *memory.Store
}

// NewChainTool creates a ChainTool.
func NewChainTool(store *memory.Store) *ChainTool {
	return &ChainTool{store: store}
}

// Definition returns the MCP tool definition for design_chain.
func (t *ChainTool) Definition() mcp.Tool {
	return mcp.NewTool("design_chain",
		mcp.WithDescription(
			"Walk the dependency graph of an archived session from one command node, "+
				"in both directions: what it was built from and what was built on it.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Archived session id"),
		),
		mcp.WithString("node_id",
			mcp.Required(),
			mcp.Description("Command node id, e.g. BooleanUnion_4"),
		),
		mcp.WithNumber("depth",
			mcp.Description("How many hops to follow (default: 2, max: 5)"),
		),
	)
}

// Handle processes the design_chain tool call.
func (t *ChainTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	nodeID := req.GetString("node_id", "")
	if sessionID == "" || nodeID == "" {
		return mcp.NewToolResultError("'session_id' and 'node_id' are required"), nil
	}

	res, err := t.store.BuildChain(sessionID, nodeID, intArg(req, "depth", 2))
	if errors.Is(err, memory.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("node %s not found in session %s", nodeID, sessionID)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build chain: %v", err)), nil
	}
	return mcp.NewToolResultText(formatChain(res)), nil
}

func formatChain(r *memory.ChainResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Dependency chain for %s\n\n", r.Root.NodeID)
	fmt.Fprintf(&b, "**Category:** %s/%s\n", r.Root.Category, r.Root.Stage)
	fmt.Fprintf(&b, "**Design intent:** %s\n\n", r.Root.DesignIntent)

	if len(r.Connected) == 0 {
		b.WriteString("No dependencies or dependents.\n")
		return b.String()
	}

	byDepth := make(map[int][]memory.ChainNode)
	for _, n := range r.Connected {
		byDepth[n.Depth] = append(byDepth[n.Depth], n)
	}
	for d := 1; d <= r.MaxDepth; d++ {
		nodes, ok := byDepth[d]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "## Depth %d\n\n", d)
		for _, n := range nodes {
			arrow := "->"
			if n.Direction == memory.DirectionDependent {
				arrow = "<-"
			}
			fmt.Fprintf(&b, "- %s %s [%s] (%s)\n", arrow, n.NodeID, n.Category, n.Direction)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "**Total:** %d connected nodes across %d level(s)\n", r.TotalNodes, r.MaxDepth)
	return b.String()
}
