// Package session owns one capture session: the append-only command log,
// its dependency graph, and the list of original geometry ids.
//
// Record runs the enrichment pipeline for each completed operation:
// semantic extraction, transformation tracking, classification and
// dependency inference, then append. A Session is single-threaded; use a
// Manager when several callers share one.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HendryAvila/designmem/internal/design"
	"github.com/HendryAvila/designmem/internal/geom"
	"github.com/HendryAvila/designmem/internal/graph"
	"github.com/HendryAvila/designmem/internal/semantic"
	"github.com/HendryAvila/designmem/internal/transform"
	"github.com/HendryAvila/designmem/internal/workflow"
)

// ErrFinalized is returned by Record once the session has been finalized.
var ErrFinalized = errors.New("session already finalized")

// Operation is one completed host operation, as reported to Record.
type Operation struct {
	Name       string
	Timestamp  time.Time // zero means "now"
	Created    []string
	Affected   []string
	Parameters design.Attributes
	Before     []transform.State
	Geometry   geom.Querier
}

// GraphView is the read-only surface of the session's dependency graph.
type GraphView interface {
	Node(id string) (graph.Node, bool)
	Nodes() []graph.Node
	Len() int
	LongestChain() []string
}

// Session is one capture session.
type Session struct {
	id        string
	createdAt time.Time
	clock     func() time.Time
	log       *zap.Logger

	extractor *semantic.Extractor
	tracker   *transform.Tracker
	graph     *graph.Graph

	commands  []design.Command
	originals []string
	seen      map[string]bool
	creations int
	final     *design.DesignMemory
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithID fixes the session id instead of generating a UUID.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// New starts an empty session.
func New(opts ...Option) *Session {
	s := &Session{
		clock: time.Now,
		log:   zap.NewNop(),
		seen:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.createdAt = s.clock().UTC()
	s.log = s.log.With(zap.String("session", s.id))
	s.extractor = semantic.NewExtractor(s.log)
	s.tracker = transform.NewTracker(s.log)
	s.graph = graph.New(s.log)
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// CreatedAt returns the session start time.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Len returns the number of recorded commands.
func (s *Session) Len() int { return len(s.commands) }

// Finalized reports whether Finalize has been called.
func (s *Session) Finalized() bool { return s.final != nil }

// Graph returns the dependency graph.
func (s *Session) Graph() GraphView { return s.graph }

// Record enriches op and appends it as the next command. The returned
// command is a copy.
func (s *Session) Record(op Operation) (design.Command, error) {
	if s.final != nil {
		return design.Command{}, ErrFinalized
	}

	seq := len(s.commands) + 1
	kind := design.ParseKind(op.Name)
	ts := op.Timestamp
	if ts.IsZero() {
		ts = s.clock()
	}

	params := design.DefaultParameters(kind, op.Name)
	for k, v := range op.Parameters {
		params[k] = v.Clone()
	}

	sem := s.extractor.Extract(semantic.Input{
		Name:       op.Name,
		Created:    op.Created,
		Affected:   op.Affected,
		Parameters: params,
		Geometry:   op.Geometry,
	})
	tracked := s.tracker.Track(transform.Input{
		Name:    op.Name,
		Created: op.Created,
		Before:  op.Before,
		After:   op.Geometry,
	})
	transform.Annotate(sem.Attributes, tracked)

	category, stage := design.Classify(kind)
	intent := design.DesignIntent(stage, category, op.Name, s.creations)
	if stage == design.StageCreation {
		s.creations++
	}

	entry := graph.Entry{
		ID:       design.NodeID(op.Name, seq),
		Sequence: seq,
		Kind:     kind,
		Category: category,
		Stage:    stage,
	}
	deps := s.graph.Add(entry)

	cmd := design.Command{
		Sequence:   seq,
		Name:       op.Name,
		Timestamp:  ts.UTC(),
		Parameters: params,
		Semantic:   sem.Attributes,
		Intent:     sem.Intent,
		Relationships: design.Relationships{
			Category:           category,
			WorkflowStage:      stage,
			DesignIntent:       intent,
			DependsOn:          deps,
			TransformsGeometry: transformed(category, op, tracked),
		},
		Geometry:        sem.Snapshots,
		Transformations: tracked.Records,
	}
	s.commands = append(s.commands, cmd)

	for _, id := range op.Created {
		if !s.seen[id] {
			s.seen[id] = true
			s.originals = append(s.originals, id)
		}
	}

	s.log.Debug("command recorded",
		zap.String("node", entry.ID),
		zap.String("category", string(category)),
		zap.Strings("depends_on", deps))
	return cmd.Clone(), nil
}

// transformed lists the geometry a transformation command acted on. For
// duplications that is the source objects, never the new copies. For
// other transforms it is the tracked objects when any resolved, otherwise
// the affected ids.
func transformed(c design.Category, op Operation, r transform.Result) []string {
	if c != design.CategoryTransformation {
		return []string{}
	}
	if design.ParseKind(op.Name).IsDuplication() {
		return append([]string{}, op.Affected...)
	}
	if len(r.Records) > 0 {
		ids := make([]string, len(r.Records))
		for i, rec := range r.Records {
			ids[i] = rec.ObjectID
		}
		return ids
	}
	return append([]string{}, op.Affected...)
}

// Commands returns copies of the recorded commands in sequence order.
func (s *Session) Commands() []design.Command {
	out := make([]design.Command, len(s.commands))
	for i, c := range s.commands {
		out[i] = c.Clone()
	}
	return out
}

// OriginalGeometryIDs returns every created id, once each, in first-seen order.
func (s *Session) OriginalGeometryIDs() []string {
	return append([]string{}, s.originals...)
}

// Analyze computes the aggregate analysis of the commands so far.
func (s *Session) Analyze() *design.Analysis {
	return workflow.Summarize(s.commands, s.graph)
}

// Finalize freezes the session and returns its design memory. Later
// calls return the same document.
func (s *Session) Finalize() (*design.DesignMemory, error) {
	if s.final != nil {
		return s.final, nil
	}
	s.final = &design.DesignMemory{
		SessionID:           s.id,
		CreatedAt:           s.createdAt,
		Commands:            s.Commands(),
		OriginalGeometryIDs: s.OriginalGeometryIDs(),
		Analysis:            s.Analyze(),
	}
	s.log.Info("session finalized",
		zap.Int("commands", len(s.commands)),
		zap.Int("workflows", len(s.final.Analysis.Workflows)))
	return s.final, nil
}
