// Package resources implements MCP resource handlers for design capture.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (designmem://...) following MCP conventions.
package resources

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/designmem/internal/design"
	"github.com/HendryAvila/designmem/internal/memory"
	"github.com/HendryAvila/designmem/internal/session"
)

const (
	CaptureURI = "designmem://capture/status"
	RecentURI  = "designmem://archive/recent"
)

// recentLimit is how many archived sessions the recent resource lists.
const recentLimit = 10

// Handler manages designmem resource endpoints. store may be nil when the
// archive is disabled.
type Handler struct {
	mgr   *session.Manager
	store *memory.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(mgr *session.Manager, store *memory.Store) *Handler {
	return &Handler{mgr: mgr, store: store}
}

// CaptureStatus is the JSON body of the capture status resource.
type CaptureStatus struct {
	Active       bool             `json:"active"`
	SessionID    string           `json:"sessionId,omitempty"`
	StartedAt    *time.Time       `json:"startedAt,omitempty"`
	CommandCount int              `json:"commandCount"`
	Commands     []string         `json:"commands,omitempty"`
	Analysis     *design.Analysis `json:"analysis,omitempty"`
}

// CaptureResource returns the MCP resource definition for the open session.
func (h *Handler) CaptureResource() mcp.Resource {
	return mcp.NewResource(
		CaptureURI,
		"Design Capture Status",
		mcp.WithResourceDescription("The open capture session: node ids and running workflow analysis"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleCapture returns the open capture session as JSON.
func (h *Handler) HandleCapture(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	st := h.mgr.Status()
	out := CaptureStatus{Active: st.Active}
	if st.Active {
		cmds, analysis, err := h.mgr.Snapshot()
		if err == nil {
			started := st.StartedAt
			out.SessionID = st.SessionID
			out.StartedAt = &started
			out.CommandCount = len(cmds)
			out.Analysis = analysis
			for _, c := range cmds {
				out.Commands = append(out.Commands, c.NodeID())
			}
		} else {
			out.Active = false
		}
	}
	return jsonResource(req.Params.URI, out)
}

// RecentResource returns the MCP resource definition for archived sessions.
func (h *Handler) RecentResource() mcp.Resource {
	return mcp.NewResource(
		RecentURI,
		"Recent Design Sessions",
		mcp.WithResourceDescription(fmt.Sprintf("The %d most recently archived design sessions", recentLimit)),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleRecent returns the most recently archived sessions as JSON.
func (h *Handler) HandleRecent(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.store == nil {
		return errorResource(req.Params.URI, "design archive is disabled"), nil
	}
	sessions, err := h.store.RecentSessions(recentLimit)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	if sessions == nil {
		sessions = []memory.SessionSummary{}
	}
	return jsonResource(req.Params.URI, sessions)
}
