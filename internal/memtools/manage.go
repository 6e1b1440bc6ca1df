package memtools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/designmem/internal/memory"
	"github.com/HendryAvila/designmem/internal/session"
)

// ─── DeleteTool ─────────────────────────────────────────────────────────────

// DeleteTool handles the design_delete MCP tool.
type DeleteTool struct {
	store *memory.Store
}

// NewDeleteTool creates a DeleteTool with the given archive.
func NewDeleteTool(store *memory.Store) *DeleteTool {
	return &DeleteTool{store: store}
}

// Definition returns the MCP tool definition for design_delete.
func (t *DeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("design_delete",
		mcp.WithDescription(
			"Permanently remove an archived design session. Exported JSON files are not touched. "+
				"Requires confirm=true.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Archived session id to delete"),
		),
		mcp.WithBoolean("confirm",
			mcp.Description("Must be true to delete"),
		),
	)
}

// Handle processes the design_delete tool call.
func (t *DeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("session_id", "")
	if id == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}
	if !boolArg(req, "confirm", false) {
		return mcp.NewToolResultError("deletion is permanent: call again with confirm=true"), nil
	}

	err := t.store.DeleteSession(id)
	if errors.Is(err, memory.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("session %q is not archived", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete session: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Session %s deleted from the archive", id)), nil
}

// ─── ImportTool ─────────────────────────────────────────────────────────────

// ImportTool handles the design_import MCP tool.
type ImportTool struct {
	store *memory.Store
}

// NewImportTool creates an ImportTool with the given archive.
func NewImportTool(store *memory.Store) *ImportTool {
	return &ImportTool{store: store}
}

// Definition returns the MCP tool definition for design_import.
func (t *ImportTool) Definition() mcp.Tool {
	return mcp.NewTool("design_import",
		mcp.WithDescription(
			"Load a design memory JSON file (as written on capture stop) into the archive, "+
				"replacing any archived copy of the same session.",
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to a session_<id>_<timestamp>.json file"),
		),
	)
}

// Handle processes the design_import tool call.
func (t *ImportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("'path' is required"), nil
	}
	doc, err := session.Load(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.store.SaveMemory(ctx, doc); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to archive session: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Imported session %s (%d commands)", doc.SessionID, len(doc.Commands))), nil
}
