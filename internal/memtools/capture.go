package memtools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/designmem/internal/journal"
	"github.com/HendryAvila/designmem/internal/memory"
	"github.com/HendryAvila/designmem/internal/session"
)

// CaptureStartTool handles the design_capture_start MCP tool.
type CaptureStartTool struct {
	mgr *session.Manager
}

// NewCaptureStartTool creates a CaptureStartTool.
func NewCaptureStartTool(mgr *session.Manager) *CaptureStartTool {
	return &CaptureStartTool{mgr: mgr}
}

// Definition returns the MCP tool definition for design_capture_start.
func (t *CaptureStartTool) Definition() mcp.Tool {
	return mcp.NewTool("design_capture_start",
		mcp.WithDescription(
			"Start capturing a design session. Every operation recorded afterwards is enriched "+
				"with geometric semantics and dependency edges. A session that is already open "+
				"is discarded without being saved.",
		),
	)
}

// Handle processes the design_capture_start tool call.
func (t *CaptureStartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prev := t.mgr.Status()
	st := t.mgr.Start()

	var b strings.Builder
	fmt.Fprintf(&b, "Capture session %s started at %s.", st.SessionID, st.StartedAt.Format(time.RFC3339))
	if prev.Active {
		fmt.Fprintf(&b, "\nDiscarded open session %s (%d commands).", prev.SessionID, prev.CommandCount)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── CaptureRecordTool ──────────────────────────────────────────────────────

// CaptureRecordTool handles the design_capture_record MCP tool.
type CaptureRecordTool struct {
	mgr *session.Manager
}

// NewCaptureRecordTool creates a CaptureRecordTool.
func NewCaptureRecordTool(mgr *session.Manager) *CaptureRecordTool {
	return &CaptureRecordTool{mgr: mgr}
}

// Definition returns the MCP tool definition for design_capture_record.
func (t *CaptureRecordTool) Definition() mcp.Tool {
	return mcp.NewTool("design_capture_record",
		mcp.WithDescription(
			"Record one completed CAD operation in the open capture session. "+
				"The event carries the command name, created and affected object ids, "+
				"raw parameters, pre-operation placements and post-operation geometry facts.",
		),
		mcp.WithObject("event",
			mcp.Required(),
			mcp.Description(
				`Operation event, e.g. {"command":"Move","affected":["b1"],`+
					`"before":[{"id":"b1","center":{"x":0,"y":0,"z":0}}],`+
					`"objects":[{"id":"b1","type":"brep","boundingBox":{"min":{...},"max":{...}}}]}`,
			),
		),
	)
}

// Handle processes the design_capture_record tool call.
func (t *CaptureRecordTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := rawJSONArg(req, "event")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ev, err := journal.Decode(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cmd, err := t.mgr.Record(ev.Operation())
	if errors.Is(err, session.ErrNoSession) {
		return mcp.NewToolResultError("no capture session is open: call design_capture_start first"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to record: %v", err)), nil
	}

	var b strings.Builder
	rel := cmd.Relationships
	fmt.Fprintf(&b, "Recorded %s [%s/%s]\n", cmd.NodeID(), rel.Category, rel.WorkflowStage)
	fmt.Fprintf(&b, "Intent: %s\n", cmd.Intent)
	fmt.Fprintf(&b, "Design intent: %s\n", rel.DesignIntent)
	if len(rel.DependsOn) > 0 {
		fmt.Fprintf(&b, "Depends on: %s\n", strings.Join(rel.DependsOn, ", "))
	}
	for _, tr := range cmd.Transformations {
		fmt.Fprintf(&b, "Transformed %s: %s", tr.ObjectID, tr.Type)
		if tr.TranslationVector != nil {
			fmt.Fprintf(&b, " by %s (distance %.3f)", tr.TranslationVector, tr.TranslationDistance)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── CaptureStopTool ────────────────────────────────────────────────────────

// CaptureStopTool handles the design_capture_stop MCP tool.
type CaptureStopTool struct {
	mgr *session.Manager
}

// NewCaptureStopTool creates a CaptureStopTool.
func NewCaptureStopTool(mgr *session.Manager) *CaptureStopTool {
	return &CaptureStopTool{mgr: mgr}
}

// Definition returns the MCP tool definition for design_capture_stop.
func (t *CaptureStopTool) Definition() mcp.Tool {
	return mcp.NewTool("design_capture_stop",
		mcp.WithDescription(
			"Stop the open capture session, run workflow analysis and save the design memory. "+
				"Sessions with no recorded commands are not saved.",
		),
	)
}

// Handle processes the design_capture_stop tool call.
func (t *CaptureStopTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := t.mgr.Stop(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return mcp.NewToolResultError("no capture session is open"), nil
	}
	if doc == nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to stop session: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Session %s stopped\n\n", doc.SessionID)
	switch {
	case len(doc.Commands) == 0:
		b.WriteString("No commands were recorded; nothing was saved.\n")
	case err != nil:
		fmt.Fprintf(&b, "WARNING: the design memory could not be saved: %v\n", err)
	default:
		b.WriteString("Design memory saved.\n")
	}
	formatAnalysis(&b, doc.Analysis, memory.DetailStandard)
	return mcp.NewToolResultText(b.String()), nil
}

// ─── CaptureStatusTool ──────────────────────────────────────────────────────

// CaptureStatusTool handles the design_capture_status MCP tool.
type CaptureStatusTool struct {
	mgr *session.Manager
}

// NewCaptureStatusTool creates a CaptureStatusTool.
func NewCaptureStatusTool(mgr *session.Manager) *CaptureStatusTool {
	return &CaptureStatusTool{mgr: mgr}
}

// Definition returns the MCP tool definition for design_capture_status.
func (t *CaptureStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("design_capture_status",
		mcp.WithDescription(
			"Show the open capture session: recorded commands, dependencies and the running analysis.",
		),
		mcp.WithString("detail_level",
			mcp.Description(
				"Level of detail: 'summary' (node ids and counts), "+
					"'standard' (default, adds intents and workflows), "+
					"'full' (same as standard for a live session).",
			),
			mcp.Enum(memory.DetailLevelValues()...),
		),
	)
}

// Handle processes the design_capture_status tool call.
func (t *CaptureStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	level := memory.ParseDetailLevel(req.GetString("detail_level", ""))

	st := t.mgr.Status()
	if !st.Active {
		return mcp.NewToolResultText("No capture session is open."), nil
	}
	cmds, analysis, err := t.mgr.Snapshot()
	if err != nil {
		// Stopped between Status and Snapshot.
		return mcp.NewToolResultText("No capture session is open."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Capture session %s\n\n", st.SessionID)
	fmt.Fprintf(&b, "Started: %s\n", st.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Commands: %d\n\n", len(cmds))
	formatCommands(&b, cmds, level)
	formatAnalysis(&b, analysis, level)
	if level == memory.DetailSummary {
		b.WriteString(memory.SummaryFooter)
	}
	return mcp.NewToolResultText(withFooter(b.String())), nil
}
