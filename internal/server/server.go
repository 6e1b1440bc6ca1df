// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates the capture manager, the
// design archive and the exporters, and injects them into the tools,
// prompts and resources that depend on them. No business logic lives here.
package server

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HendryAvila/designmem/internal/config"
	"github.com/HendryAvila/designmem/internal/memory"
	"github.com/HendryAvila/designmem/internal/memtools"
	"github.com/HendryAvila/designmem/internal/prompts"
	"github.com/HendryAvila/designmem/internal/resources"
	"github.com/HendryAvila/designmem/internal/session"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Capture holds the session manager and the archive it persists to.
// Store is nil when the archive is disabled or failed to open.
type Capture struct {
	Manager *session.Manager
	Store   *memory.Store
}

// NewCapture builds a session manager whose stopped sessions go to the
// design archive and, when cfg.ExportDir is set, to JSON files.
//
// The archive is optional: if it cannot be opened a warning is logged and
// capture keeps working without it. The returned cleanup function closes
// the archive; it is always non-nil and safe to call.
func NewCapture(cfg config.Config, log *zap.Logger) (*Capture, func()) {
	if log == nil {
		log = zap.NewNop()
	}

	cleanup := noop
	var persist session.Persisters
	c := &Capture{}

	if cfg.Archive.Enabled {
		store, err := memory.New(cfg.Memory())
		if err != nil {
			log.Warn("design archive disabled", zap.Error(err))
		} else {
			c.Store = store
			persist = append(persist, store)
			cleanup = func() {
				if err := store.Close(); err != nil {
					log.Warn("design archive close", zap.Error(err))
				}
			}
		}
	}
	if cfg.ExportDir != "" {
		persist = append(persist, session.NewFileStore(cfg.ExportDir))
	}

	c.Manager = session.NewManager(persist, log)
	return c, cleanup
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. Capture tools are always available; archive
// tools are registered only when the archive opened.
//
// The returned cleanup function must be called on shutdown (typically
// via defer).
func New(cfg config.Config, log *zap.Logger) (*server.MCPServer, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, noop, err
	}
	c, cleanup := NewCapture(cfg, log)

	s := server.NewMCPServer(
		"designmem",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions(c.Store != nil)),
	)

	registerCaptureTools(s, c.Manager)
	if c.Store != nil {
		registerArchiveTools(s, c.Store)
	}

	// --- Prompts ---

	capturePrompt := prompts.NewCapturePrompt()
	s.AddPrompt(capturePrompt.Definition(), capturePrompt.Handle)

	if c.Store != nil {
		reviewPrompt := prompts.NewReviewPrompt()
		s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)
	}

	// --- Resources ---

	rh := resources.NewHandler(c.Manager, c.Store)
	s.AddResource(rh.CaptureResource(), rh.HandleCapture)
	if c.Store != nil {
		s.AddResource(rh.RecentResource(), rh.HandleRecent)
	}

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when the archive
// is disabled or hasn't been initialized.
func noop() {}

// registerCaptureTools registers the live capture tools.
func registerCaptureTools(s *server.MCPServer, mgr *session.Manager) {
	start := memtools.NewCaptureStartTool(mgr)
	s.AddTool(start.Definition(), start.Handle)

	record := memtools.NewCaptureRecordTool(mgr)
	s.AddTool(record.Definition(), record.Handle)

	stop := memtools.NewCaptureStopTool(mgr)
	s.AddTool(stop.Definition(), stop.Handle)

	status := memtools.NewCaptureStatusTool(mgr)
	s.AddTool(status.Definition(), status.Handle)
}

// registerArchiveTools registers the tools that query the design archive.
func registerArchiveTools(s *server.MCPServer, ms *memory.Store) {
	// --- Query & retrieval ---
	sessions := memtools.NewSessionsTool(ms)
	s.AddTool(sessions.Definition(), sessions.Handle)

	get := memtools.NewGetTool(ms)
	s.AddTool(get.Definition(), get.Handle)

	search := memtools.NewSearchTool(ms)
	s.AddTool(search.Definition(), search.Handle)

	chain := memtools.NewChainTool(ms)
	s.AddTool(chain.Definition(), chain.Handle)

	stats := memtools.NewStatsTool(ms)
	s.AddTool(stats.Definition(), stats.Handle)

	// --- Management ---
	del := memtools.NewDeleteTool(ms)
	s.AddTool(del.Definition(), del.Handle)

	imp := memtools.NewImportTool(ms)
	s.AddTool(imp.Definition(), imp.Handle)
}

// serverInstructions returns the system instructions that tell the AI
// how to use designmem.
func serverInstructions(archive bool) string {
	text := `You have access to designmem, a design-memory server for CAD modelling sessions.

## CAPTURING A SESSION

1. Call design_capture_start before the user begins modelling.
2. After every completed CAD operation call design_capture_record with one event:
   - command: the command name (Box, Move, BooleanUnion, Fillet, ...)
   - created / affected: ids of new and modified objects
   - parameters: raw command parameters
   - before: placements of affected objects before the operation (needed for transforms)
   - objects: resulting geometry (bounding boxes, curve and surface facts)
3. Call design_capture_stop when the user is done. The session is analysed
   (workflow patterns, longest dependency chain) and saved.

design_capture_status shows the open session without stopping it.
Only one session is open at a time; starting a new one discards the old one.

## WHAT THE ANALYSIS MEANS

- Each command gets a category (primitive, curve, surface, transformation,
  boolean, editing, analysis, other) and a workflow stage (creation,
  modification, finishing, analysis, other).
- Dependencies are inferred from command order: booleans use the two most
  recent solids, lofts and sweeps the two most recent curves, modifications
  the most recent creation, finishing steps the most recent solid.
- Node ids look like Move_2: command name plus sequence number.
`
	if !archive {
		return text + `
The design archive is disabled in this installation: stopped sessions are
only exported as JSON files, and archive search tools are unavailable.
`
	}
	return text + `
## QUERYING THE ARCHIVE

- design_sessions: recently archived sessions
- design_get: one full session (detail_level summary | standard | full)
- design_search: full-text search over command names and intents,
  filterable by category and stage
- design_chain: what a command depends on and what depends on it
- design_stats: archive-wide counts
- design_delete / design_import: manage archived sessions

Start with detail_level=summary and drill down only when needed.
`
}
