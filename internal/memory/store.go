// Package memory is the persistent archive of finalized design memories.
//
// It uses SQLite with FTS5 full-text search. Each archived session keeps
// its full JSON document plus denormalized command, dependency and
// workflow rows so that search, chain traversal and statistics run in SQL.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/HendryAvila/designmem/internal/design"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrNotFound is returned when a session or node is not archived.
var ErrNotFound = errors.New("not found")

// ─── Types ───────────────────────────────────────────────────────────────────

// SessionSummary is a compact view of an archived session.
type SessionSummary struct {
	ID            string `json:"id"`
	CreatedAt     string `json:"created_at"`
	ArchivedAt    string `json:"archived_at"`
	CommandCount  int    `json:"command_count"`
	WorkflowCount int    `json:"workflow_count"`
	LongestChain  int    `json:"longest_chain"`
}

// CommandHit is one command row returned by search.
type CommandHit struct {
	SessionID    string  `json:"session_id"`
	Sequence     int     `json:"sequence"`
	NodeID       string  `json:"node_id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Stage        string  `json:"stage"`
	DesignIntent string  `json:"design_intent"`
	Intent       string  `json:"intent"`
	Timestamp    string  `json:"timestamp"`
	Rank         float64 `json:"rank"`
}

// SearchOptions holds filters for command search.
type SearchOptions struct {
	SessionID string `json:"session_id,omitempty"`
	Category  string `json:"category,omitempty"`
	Stage     string `json:"stage,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// Chain directions.
const (
	DirectionDependency = "dependency"
	DirectionDependent  = "dependent"
)

// ChainNode is one node reached while walking a dependency chain.
type ChainNode struct {
	NodeID    string `json:"node_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Direction string `json:"direction"`
	Depth     int    `json:"depth"`
}

// ChainResult is the output of BuildChain.
type ChainResult struct {
	Root       CommandHit  `json:"root"`
	Connected  []ChainNode `json:"connected"`
	TotalNodes int         `json:"total_nodes"`
	MaxDepth   int         `json:"max_depth"`
}

// Stats holds aggregate archive statistics.
type Stats struct {
	TotalSessions     int            `json:"total_sessions"`
	TotalCommands     int            `json:"total_commands"`
	TotalDependencies int            `json:"total_dependencies"`
	TotalWorkflows    int            `json:"total_workflows"`
	Categories        map[string]int `json:"categories"`
	WorkflowTypes     map[string]int `json:"workflow_types"`
}

// ExportData is the full serializable dump of the archive.
type ExportData struct {
	Version    string                `json:"version"`
	ExportedAt string                `json:"exported_at"`
	Sessions   []design.DesignMemory `json:"sessions"`
}

// ImportResult holds counts of imported records.
type ImportResult struct {
	SessionsImported int `json:"sessions_imported"`
	SessionsSkipped  int `json:"sessions_skipped"`
	CommandsImported int `json:"commands_imported"`
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds archive configuration.
type Config struct {
	DataDir           string
	MaxSearchResults  int
	MaxRecentSessions int
	MaxChainDepth     int
}

// DefaultConfig returns the default configuration for the archive.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:           filepath.Join(home, ".designmem"),
		MaxSearchResults:  20,
		MaxRecentSessions: 20,
		MaxChainDepth:     5,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the design-memory archive backed by SQLite + FTS5.
type Store struct {
	db    *sql.DB
	cfg   Config
	hooks storeHooks
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

type storeHooks struct {
	exec    func(db execer, query string, args ...any) (sql.Result, error)
	query   func(db queryer, query string, args ...any) (*sql.Rows, error)
	beginTx func(db *sql.DB) (*sql.Tx, error)
	commit  func(tx *sql.Tx) error
}

func (s *Store) execHook(db execer, query string, args ...any) (sql.Result, error) {
	if s.hooks.exec != nil {
		return s.hooks.exec(db, query, args...)
	}
	return db.Exec(query, args...)
}

func (s *Store) queryHook(db queryer, query string, args ...any) (*sql.Rows, error) {
	if s.hooks.query != nil {
		return s.hooks.query(db, query, args...)
	}
	return db.Query(query, args...)
}

func (s *Store) beginTxHook() (*sql.Tx, error) {
	if s.hooks.beginTx != nil {
		return s.hooks.beginTx(s.db)
	}
	return s.db.Begin()
}

func (s *Store) commitHook(tx *sql.Tx) error {
	if s.hooks.commit != nil {
		return s.hooks.commit(tx)
	}
	return tx.Commit()
}

// New creates a new Store with the given configuration.
// It creates the data directory if needed, opens SQLite with WAL mode,
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("memory: create data dir: %w", err)
	}
	if cfg.MaxSearchResults <= 0 {
		cfg.MaxSearchResults = 20
	}
	if cfg.MaxRecentSessions <= 0 {
		cfg.MaxRecentSessions = 20
	}
	if cfg.MaxChainDepth <= 0 {
		cfg.MaxChainDepth = 5
	}

	dbPath := filepath.Join(cfg.DataDir, "designs.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("memory: open database: %w", err)
	}

	// Pragmas are per connection; a single connection keeps them applied
	// and serializes writers.
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("memory: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("memory: migration: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id            TEXT PRIMARY KEY,
			created_at    TEXT    NOT NULL,
			archived_at   TEXT    NOT NULL DEFAULT (datetime('now')),
			command_count INTEGER NOT NULL DEFAULT 0,
			longest_chain INTEGER NOT NULL DEFAULT 0,
			document      TEXT    NOT NULL
		);

		CREATE TABLE IF NOT EXISTS commands (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id    TEXT    NOT NULL,
			sequence      INTEGER NOT NULL,
			node_id       TEXT    NOT NULL,
			name          TEXT    NOT NULL,
			category      TEXT    NOT NULL,
			stage         TEXT    NOT NULL,
			design_intent TEXT    NOT NULL DEFAULT '',
			intent        TEXT    NOT NULL DEFAULT '',
			timestamp     TEXT    NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE,
			UNIQUE (session_id, sequence)
		);

		CREATE INDEX IF NOT EXISTS idx_cmd_session  ON commands(session_id);
		CREATE INDEX IF NOT EXISTS idx_cmd_node     ON commands(session_id, node_id);
		CREATE INDEX IF NOT EXISTS idx_cmd_category ON commands(category);

		CREATE VIRTUAL TABLE IF NOT EXISTS commands_fts USING fts5(
			name,
			design_intent,
			intent,
			category,
			content='commands',
			content_rowid='id'
		);

		CREATE TABLE IF NOT EXISTS dependencies (
			session_id TEXT NOT NULL,
			from_node  TEXT NOT NULL,
			to_node    TEXT NOT NULL,
			position   INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (session_id, from_node, to_node),
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_dep_to ON dependencies(session_id, to_node);

		CREATE TABLE IF NOT EXISTS workflows (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id    TEXT NOT NULL,
			type          TEXT NOT NULL,
			description   TEXT NOT NULL,
			design_intent TEXT NOT NULL,
			members       TEXT NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_wf_session ON workflows(session_id);
	`
	if _, err := s.execHook(s.db, schema); err != nil {
		return err
	}

	// Create FTS triggers (idempotent)
	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='trigger' AND name='cmd_fts_insert'",
	).Scan(&name)

	if err == sql.ErrNoRows {
		triggers := `
			CREATE TRIGGER cmd_fts_insert AFTER INSERT ON commands BEGIN
				INSERT INTO commands_fts(rowid, name, design_intent, intent, category)
				VALUES (new.id, new.name, new.design_intent, new.intent, new.category);
			END;

			CREATE TRIGGER cmd_fts_delete AFTER DELETE ON commands BEGIN
				INSERT INTO commands_fts(commands_fts, rowid, name, design_intent, intent, category)
				VALUES ('delete', old.id, old.name, old.design_intent, old.intent, old.category);
			END;
		`
		if _, err := s.execHook(s.db, triggers); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	return nil
}

// ─── Save / Load ─────────────────────────────────────────────────────────────

// SaveMemory archives a finalized design memory, replacing any earlier
// copy of the same session.
func (s *Store) SaveMemory(ctx context.Context, m *design.DesignMemory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m == nil || m.SessionID == "" {
		return fmt.Errorf("memory: save: missing session id")
	}
	doc, err := m.ToJSON()
	if err != nil {
		return fmt.Errorf("memory: encode session %s: %w", m.SessionID, err)
	}

	tx, err := s.beginTxHook()
	if err != nil {
		return fmt.Errorf("memory: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := s.deleteRows(tx, m.SessionID); err != nil {
		return fmt.Errorf("memory: replace session %s: %w", m.SessionID, err)
	}
	if _, err := s.insertMemory(tx, m, string(doc)); err != nil {
		return err
	}
	if err := s.commitHook(tx); err != nil {
		return fmt.Errorf("memory: commit: %w", err)
	}
	return nil
}

// insertMemory writes the session row and its denormalized children.
// It returns the number of command rows written.
func (s *Store) insertMemory(tx *sql.Tx, m *design.DesignMemory, doc string) (int, error) {
	chain := 0
	if m.Analysis != nil {
		chain = len(m.Analysis.LongestDependencyChain)
	}
	if _, err := s.execHook(tx,
		`INSERT INTO sessions (id, created_at, archived_at, command_count, longest_chain, document)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.SessionID, m.CreatedAt.UTC().Format(time.RFC3339Nano), Now(), len(m.Commands), chain, doc,
	); err != nil {
		return 0, fmt.Errorf("memory: insert session %s: %w", m.SessionID, err)
	}

	for _, c := range m.Commands {
		if _, err := s.execHook(tx,
			`INSERT INTO commands (session_id, sequence, node_id, name, category, stage, design_intent, intent, timestamp)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.SessionID, c.Sequence, c.NodeID(), c.Name,
			string(c.Relationships.Category), string(c.Relationships.WorkflowStage),
			c.Relationships.DesignIntent, c.Intent, c.Timestamp.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return 0, fmt.Errorf("memory: insert command %s: %w", c.NodeID(), err)
		}
		for i, dep := range c.Relationships.DependsOn {
			if _, err := s.execHook(tx,
				`INSERT OR IGNORE INTO dependencies (session_id, from_node, to_node, position) VALUES (?, ?, ?, ?)`,
				m.SessionID, c.NodeID(), dep, i,
			); err != nil {
				return 0, fmt.Errorf("memory: insert dependency %s -> %s: %w", c.NodeID(), dep, err)
			}
		}
	}

	if m.Analysis != nil {
		for _, w := range m.Analysis.Workflows {
			if _, err := s.execHook(tx,
				`INSERT INTO workflows (session_id, type, description, design_intent, members) VALUES (?, ?, ?, ?, ?)`,
				m.SessionID, w.Type, w.Description, w.DesignIntent, strings.Join(w.Members, ","),
			); err != nil {
				return 0, fmt.Errorf("memory: insert workflow: %w", err)
			}
		}
	}
	return len(m.Commands), nil
}

// GetMemory returns the archived document for a session.
func (s *Store) GetMemory(sessionID string) (*design.DesignMemory, error) {
	var doc string
	err := s.db.QueryRow(`SELECT document FROM sessions WHERE id = ?`, sessionID).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %q: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("memory: get session %s: %w", sessionID, err)
	}
	return design.FromJSON([]byte(doc))
}

// DeleteSession removes an archived session and its rows.
func (s *Store) DeleteSession(sessionID string) error {
	tx, err := s.beginTxHook()
	if err != nil {
		return fmt.Errorf("memory: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	n, err := s.deleteRows(tx, sessionID)
	if err != nil {
		return fmt.Errorf("memory: delete session %s: %w", sessionID, err)
	}
	if n == 0 {
		return fmt.Errorf("session %q: %w", sessionID, ErrNotFound)
	}
	return s.commitHook(tx)
}

// deleteRows removes a session and its children, returning the number of
// session rows removed. Commands go first so the FTS trigger sees them.
func (s *Store) deleteRows(tx *sql.Tx, sessionID string) (int64, error) {
	for _, q := range []string{
		`DELETE FROM commands WHERE session_id = ?`,
		`DELETE FROM dependencies WHERE session_id = ?`,
		`DELETE FROM workflows WHERE session_id = ?`,
	} {
		if _, err := s.execHook(tx, q, sessionID); err != nil {
			return 0, err
		}
	}
	res, err := s.execHook(tx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ─── Sessions ────────────────────────────────────────────────────────────────

// RecentSessions returns the most recently archived sessions.
func (s *Store) RecentSessions(limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > s.cfg.MaxRecentSessions {
		limit = s.cfg.MaxRecentSessions
	}

	rows, err := s.queryHook(s.db, `
		SELECT s.id, s.created_at, s.archived_at, s.command_count, s.longest_chain,
		       (SELECT COUNT(*) FROM workflows w WHERE w.session_id = s.id) AS workflow_count
		FROM sessions s
		ORDER BY s.archived_at DESC, s.created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []SessionSummary
	for rows.Next() {
		var ss SessionSummary
		if err := rows.Scan(&ss.ID, &ss.CreatedAt, &ss.ArchivedAt, &ss.CommandCount, &ss.LongestChain, &ss.WorkflowCount); err != nil {
			return nil, err
		}
		results = append(results, ss)
	}
	return results, rows.Err()
}

// ─── Search (FTS5) ───────────────────────────────────────────────────────────

const commandColumns = `c.session_id, c.sequence, c.node_id, c.name, c.category, c.stage, c.design_intent, c.intent, c.timestamp`

// SearchCommands runs a full-text query over command names, intents and
// categories. An empty query returns the most recent commands.
func (s *Store) SearchCommands(query string, opts SearchOptions) ([]CommandHit, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > s.cfg.MaxSearchResults {
		limit = s.cfg.MaxSearchResults
	}

	var (
		sqlStr string
		args   []any
	)
	ftsQuery := sanitizeFTS(query)
	if ftsQuery == "" {
		sqlStr = `SELECT ` + commandColumns + `, 0 FROM commands c WHERE 1=1`
	} else {
		sqlStr = `SELECT ` + commandColumns + `, fts.rank
			FROM commands_fts fts
			JOIN commands c ON c.id = fts.rowid
			WHERE commands_fts MATCH ?`
		args = append(args, ftsQuery)
	}
	if opts.SessionID != "" {
		sqlStr += " AND c.session_id = ?"
		args = append(args, opts.SessionID)
	}
	if opts.Category != "" {
		sqlStr += " AND c.category = ?"
		args = append(args, opts.Category)
	}
	if opts.Stage != "" {
		sqlStr += " AND c.stage = ?"
		args = append(args, opts.Stage)
	}
	if ftsQuery == "" {
		sqlStr += " ORDER BY c.id DESC LIMIT ?"
	} else {
		sqlStr += " ORDER BY fts.rank LIMIT ?"
	}
	args = append(args, limit)

	rows, err := s.queryHook(s.db, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []CommandHit
	for rows.Next() {
		var h CommandHit
		if err := rows.Scan(
			&h.SessionID, &h.Sequence, &h.NodeID, &h.Name, &h.Category, &h.Stage,
			&h.DesignIntent, &h.Intent, &h.Timestamp, &h.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, h)
	}
	return results, rows.Err()
}

// ─── Chains ──────────────────────────────────────────────────────────────────

func (s *Store) command(sessionID, nodeID string) (*CommandHit, error) {
	var h CommandHit
	err := s.db.QueryRow(`SELECT `+commandColumns+` FROM commands c WHERE c.session_id = ? AND c.node_id = ?`,
		sessionID, nodeID,
	).Scan(&h.SessionID, &h.Sequence, &h.NodeID, &h.Name, &h.Category, &h.Stage, &h.DesignIntent, &h.Intent, &h.Timestamp)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("node %q in session %q: %w", nodeID, sessionID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

type edge struct {
	other     string
	direction string
}

func (s *Store) edges(sessionID, nodeID string) ([]edge, error) {
	rows, err := s.queryHook(s.db, `
		SELECT to_node, 'dependency', position FROM dependencies WHERE session_id = ? AND from_node = ?
		UNION ALL
		SELECT from_node, 'dependent', position FROM dependencies WHERE session_id = ? AND to_node = ?
		ORDER BY 2, 3`,
		sessionID, nodeID, sessionID, nodeID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []edge
	for rows.Next() {
		var e edge
		var pos int
		if err := rows.Scan(&e.other, &e.direction, &pos); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// BuildChain walks the archived dependency edges of a session breadth-first
// from nodeID, in both directions, up to maxDepth hops.
func (s *Store) BuildChain(sessionID, nodeID string, maxDepth int) (*ChainResult, error) {
	if maxDepth <= 0 {
		maxDepth = 2
	}
	if maxDepth > s.cfg.MaxChainDepth {
		maxDepth = s.cfg.MaxChainDepth
	}

	root, err := s.command(sessionID, nodeID)
	if err != nil {
		return nil, err
	}

	type queueItem struct {
		id    string
		depth int
	}
	visited := map[string]bool{nodeID: true}
	queue := []queueItem{{id: nodeID, depth: 0}}
	var connected []ChainNode
	actualMaxDepth := 0

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.depth >= maxDepth {
			continue
		}

		edges, err := s.edges(sessionID, current.id)
		if err != nil {
			return nil, fmt.Errorf("getting edges for %s: %w", current.id, err)
		}
		for _, e := range edges {
			if visited[e.other] {
				continue
			}
			visited[e.other] = true

			c, err := s.command(sessionID, e.other)
			if err != nil {
				continue // edge to a node that was never archived
			}
			depth := current.depth + 1
			connected = append(connected, ChainNode{
				NodeID:    c.NodeID,
				Name:      c.Name,
				Category:  c.Category,
				Direction: e.direction,
				Depth:     depth,
			})
			if depth > actualMaxDepth {
				actualMaxDepth = depth
			}
			queue = append(queue, queueItem{id: e.other, depth: depth})
		}
	}

	return &ChainResult{
		Root:       *root,
		Connected:  connected,
		TotalNodes: len(connected),
		MaxDepth:   actualMaxDepth,
	}, nil
}

// ─── Stats ───────────────────────────────────────────────────────────────────

// Stats returns aggregate counts across the archive.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{
		Categories:    map[string]int{},
		WorkflowTypes: map[string]int{},
	}

	_ = s.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&stats.TotalSessions)
	_ = s.db.QueryRow("SELECT COUNT(*) FROM commands").Scan(&stats.TotalCommands)
	_ = s.db.QueryRow("SELECT COUNT(*) FROM dependencies").Scan(&stats.TotalDependencies)
	_ = s.db.QueryRow("SELECT COUNT(*) FROM workflows").Scan(&stats.TotalWorkflows)

	if err := s.countInto(stats.Categories, "SELECT category, COUNT(*) FROM commands GROUP BY category"); err != nil {
		return stats, err
	}
	if err := s.countInto(stats.WorkflowTypes, "SELECT type, COUNT(*) FROM workflows GROUP BY type"); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *Store) countInto(dst map[string]int, query string) error {
	rows, err := s.queryHook(s.db, query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err == nil {
			dst[k] = n
		}
	}
	return rows.Err()
}

// ─── Export / Import ─────────────────────────────────────────────────────────

// Export dumps every archived document, oldest first.
func (s *Store) Export() (*ExportData, error) {
	data := &ExportData{
		Version:    "1",
		ExportedAt: Now(),
		Sessions:   []design.DesignMemory{},
	}

	rows, err := s.queryHook(s.db, "SELECT id, document FROM sessions ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("export sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		m, err := design.FromJSON([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("export session %s: %w", id, err)
		}
		data.Sessions = append(data.Sessions, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// Import loads an export. Sessions already archived are skipped.
func (s *Store) Import(data *ExportData) (*ImportResult, error) {
	tx, err := s.beginTxHook()
	if err != nil {
		return nil, fmt.Errorf("import: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result := &ImportResult{}
	for i := range data.Sessions {
		m := &data.Sessions[i]
		var exists int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM sessions WHERE id = ?`, m.SessionID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("import session %s: %w", m.SessionID, err)
		}
		if exists > 0 {
			result.SessionsSkipped++
			continue
		}
		doc, err := m.ToJSON()
		if err != nil {
			return nil, fmt.Errorf("import session %s: %w", m.SessionID, err)
		}
		n, err := s.insertMemory(tx, m, string(doc))
		if err != nil {
			return nil, fmt.Errorf("import session %s: %w", m.SessionID, err)
		}
		result.SessionsImported++
		result.CommandsImported += n
	}

	if err := s.commitHook(tx); err != nil {
		return nil, fmt.Errorf("import: commit: %w", err)
	}
	return result, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// sanitizeFTS quotes every word so user input cannot inject FTS5 syntax.
func sanitizeFTS(query string) string {
	var quoted []string
	for _, w := range strings.Fields(query) {
		w = strings.ReplaceAll(w, `"`, "")
		if w == "" {
			continue
		}
		quoted = append(quoted, `"`+w+`"`)
	}
	return strings.Join(quoted, " ")
}

// Truncate shortens s to at most max bytes, adding "..." when cut.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Now returns the current UTC time in SQLite datetime format.
func Now() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}
