package memtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/designmem/internal/design"
	"github.com/HendryAvila/designmem/internal/memory"
)

// SearchTool handles the design_search MCP tool.
type SearchTool struct {
	store *memory.Store
}

// NewSearchTool creates a SearchTool.
func NewSearchTool(store *memory.Store) *SearchTool {
	return &SearchTool{store: store}
}

func enumStrings[T ~string](vals []T) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}

// Definition returns the MCP tool definition for design_search.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("design_search",
		mcp.WithDescription(
			"Full-text search over archived commands: command names, design intents, "+
				"semantic intents and categories. Use this to find how a shape was built before.",
		),
		mcp.WithString("query",
			mcp.Description("Keywords, e.g. 'fillet' or 'boolean union'. Empty lists the latest commands."),
		),
		mcp.WithString("session_id",
			mcp.Description("Restrict to one session"),
		),
		mcp.WithString("category",
			mcp.Description("Filter by command category"),
			mcp.Enum(enumStrings(design.Categories())...),
		),
		mcp.WithString("stage",
			mcp.Description("Filter by workflow stage"),
			mcp.Enum(enumStrings(design.Stages())...),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 10, max: 20)"),
		),
	)
}

// Handle processes the design_search tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	results, err := t.store.SearchCommands(query, memory.SearchOptions{
		SessionID: req.GetString("session_id", ""),
		Category:  req.GetString("category", ""),
		Stage:     req.GetString("stage", ""),
		Limit:     intArg(req, "limit", 10),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No archived commands match your query."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d commands:\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s in %s (%s/%s)\n    %s\n",
			i+1, r.NodeID, r.SessionID, r.Category, r.Stage, r.DesignIntent)
		if r.Intent != "" {
			fmt.Fprintf(&b, "    %s\n", memory.Truncate(r.Intent, 200))
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(withFooter(b.String())), nil
}
