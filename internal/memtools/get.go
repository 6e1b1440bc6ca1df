package memtools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/designmem/internal/memory"
)

// GetTool handles the design_get MCP tool.
type GetTool struct {
	store *memory.Store
}

// NewGetTool creates a GetTool.
func NewGetTool(store *memory.Store) *GetTool {
	return &GetTool{store: store}
}

// Definition returns the MCP tool definition for design_get.
func (t *GetTool) Definition() mcp.Tool {
	return mcp.NewTool("design_get",
		mcp.WithDescription(
			"Retrieve an archived design memory by session id. Use design_sessions or "+
				"design_search to find session ids.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Archived session id"),
		),
		mcp.WithString("detail_level",
			mcp.Description(
				"Level of detail: 'summary' (node ids, categories and counts), "+
					"'standard' (default, adds design intents and workflows), "+
					"'full' (the complete JSON document with geometry and transformations).",
			),
			mcp.Enum(memory.DetailLevelValues()...),
		),
	)
}

// Handle processes the design_get tool call.
func (t *GetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("session_id", "")
	if id == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}
	level := memory.ParseDetailLevel(req.GetString("detail_level", ""))

	doc, err := t.store.GetMemory(id)
	if errors.Is(err, memory.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("session %q is not archived", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load session: %v", err)), nil
	}

	if level == memory.DetailFull {
		data, err := doc.ToJSON()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode session: %v", err)), nil
		}
		return mcp.NewToolResultText(withFooter(string(data))), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Design memory %s\n\n", doc.SessionID)
	fmt.Fprintf(&b, "Created: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Original geometry: %d objects\n\n", len(doc.OriginalGeometryIDs))
	formatCommands(&b, doc.Commands, level)
	formatAnalysis(&b, doc.Analysis, level)
	if level == memory.DetailSummary {
		b.WriteString(memory.SummaryFooter)
	}
	return mcp.NewToolResultText(withFooter(b.String())), nil
}
