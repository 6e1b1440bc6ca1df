package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HendryAvila/designmem/internal/design"
)

// ErrNoSession is returned when an operation needs an active session.
var ErrNoSession = errors.New("no active capture session")

// Persister stores a finalized design memory.
type Persister interface {
	SaveMemory(ctx context.Context, m *design.DesignMemory) error
}

// Persisters fans a document out to several persisters in order. Every
// persister is tried even when an earlier one fails; the failures are
// joined.
type Persisters []Persister

// SaveMemory implements Persister.
func (ps Persisters) SaveMemory(ctx context.Context, m *design.DesignMemory) error {
	var errs []error
	for _, p := range ps {
		if p == nil {
			continue
		}
		if err := p.SaveMemory(ctx, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Status describes the manager's current session.
type Status struct {
	Active       bool
	SessionID    string
	StartedAt    time.Time
	CommandCount int
}

// Manager runs at most one session at a time on behalf of concurrent
// callers such as MCP handlers and journal tailers.
type Manager struct {
	mu      sync.Mutex
	current *Session
	persist Persister
	opts    []Option
	log     *zap.Logger
}

// NewManager creates a manager. persist may be nil, in which case stopped
// sessions are only returned, never stored. opts apply to every session.
func NewManager(persist Persister, log *zap.Logger, opts ...Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		persist: persist,
		opts:    append([]Option{WithLogger(log)}, opts...),
		log:     log,
	}
}

// Start begins a new session, discarding any session still open.
func (m *Manager) Start() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.log.Info("discarding open session", zap.String("session", m.current.ID()),
			zap.Int("commands", m.current.Len()))
	}
	m.current = New(m.opts...)
	return m.statusLocked()
}

// Record appends op to the current session.
func (m *Manager) Record(op Operation) (design.Command, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return design.Command{}, ErrNoSession
	}
	return m.current.Record(op)
}

// Stop finalizes the current session and hands it to the persister. Empty
// sessions are returned but not persisted. The session is closed even
// when persisting fails.
func (m *Manager) Stop(ctx context.Context) (*design.DesignMemory, error) {
	m.mu.Lock()
	s := m.current
	m.current = nil
	m.mu.Unlock()

	if s == nil {
		return nil, ErrNoSession
	}
	doc, err := s.Finalize()
	if err != nil {
		return nil, fmt.Errorf("finalizing session %s: %w", s.ID(), err)
	}
	if s.Len() == 0 {
		m.log.Info("empty session not persisted", zap.String("session", s.ID()))
		return doc, nil
	}
	if m.persist != nil {
		if err := m.persist.SaveMemory(ctx, doc); err != nil {
			return doc, fmt.Errorf("persisting session %s: %w", s.ID(), err)
		}
	}
	return doc, nil
}

// Discard closes the current session without finalizing or persisting
// it. It reports whether a session was open.
func (m *Manager) Discard() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return false
	}
	m.log.Info("session discarded", zap.String("session", m.current.ID()),
		zap.Int("commands", m.current.Len()))
	m.current = nil
	return true
}

// Status reports on the current session.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

// Snapshot returns the commands and running analysis of the current
// session without finalizing it.
func (m *Manager) Snapshot() ([]design.Command, *design.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, nil, ErrNoSession
	}
	return m.current.Commands(), m.current.Analyze(), nil
}

func (m *Manager) statusLocked() Status {
	if m.current == nil {
		return Status{}
	}
	return Status{
		Active:       true,
		SessionID:    m.current.ID(),
		StartedAt:    m.current.CreatedAt(),
		CommandCount: m.current.Len(),
	}
}
