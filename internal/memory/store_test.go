package memory_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/HendryAvila/designmem/internal/design"
	"github.com/HendryAvila/designmem/internal/memory"
	"github.com/HendryAvila/designmem/internal/session"
)

// newTestStore creates a Store backed by a temp directory for isolation.
func newTestStore(t *testing.T) *memory.Store {
	t.Helper()
	cfg := memory.Config{
		DataDir:           t.TempDir(),
		MaxSearchResults:  20,
		MaxRecentSessions: 20,
		MaxChainDepth:     5,
	}
	s, err := memory.New(cfg)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// newMemory records names in a fresh session and finalizes it.
func newMemory(t *testing.T, id string, names ...string) *design.DesignMemory {
	t.Helper()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	s := session.New(session.WithID(id), session.WithClock(clock))
	for _, n := range names {
		if _, err := s.Record(session.Operation{Name: n}); err != nil {
			t.Fatalf("Record(%s): %v", n, err)
		}
	}
	m, err := s.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return m
}

// modelling is Box_1, Move_2 -> Box_1, Sphere_3,
// BooleanUnion_4 -> [Sphere_3, Move_2], Fillet_5 -> BooleanUnion_4.
var modelling = []string{"Box", "Move", "Sphere", "BooleanUnion", "Fillet"}

func saveMemory(t *testing.T, s *memory.Store, m *design.DesignMemory) {
	t.Helper()
	if err := s.SaveMemory(context.Background(), m); err != nil {
		t.Fatalf("SaveMemory(%s): %v", m.SessionID, err)
	}
}

// ─── New / Initialization ───────────────────────────────────────────────────

func TestNew_CreatesDBFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := memory.New(memory.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(dir, "designs.db")); err != nil {
		t.Fatalf("expected designs.db: %v", err)
	}
}

func TestNew_MigrationIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		s, err := memory.New(memory.Config{DataDir: dir})
		if err != nil {
			t.Fatalf("New() #%d error: %v", i, err)
		}
		s.Close()
	}
}

func TestNew_WALMode(t *testing.T) {
	s := newTestStore(t)
	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := memory.DefaultConfig()
	if !strings.HasSuffix(cfg.DataDir, ".designmem") {
		t.Errorf("DataDir = %q, want suffix .designmem", cfg.DataDir)
	}
	if cfg.MaxSearchResults <= 0 || cfg.MaxChainDepth != 5 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

// ─── Save / Get ─────────────────────────────────────────────────────────────

func TestSaveMemory_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	m := newMemory(t, "sess-1", modelling...)
	saveMemory(t, s, m)

	got, err := s.GetMemory("sess-1")
	if err != nil {
		t.Fatalf("GetMemory: %v", err)
	}
	if got.SessionID != m.SessionID || len(got.Commands) != len(m.Commands) {
		t.Fatalf("got %s with %d commands", got.SessionID, len(got.Commands))
	}
	if diff := cmp.Diff(m.Analysis.LongestDependencyChain, got.Analysis.LongestDependencyChain); diff != "" {
		t.Errorf("longest chain mismatch (-want +got):\n%s", diff)
	}
	if got.Commands[3].Relationships.DesignIntent != m.Commands[3].Relationships.DesignIntent {
		t.Errorf("design intent not preserved")
	}
}

func TestSaveMemory_ReplacesSameSession(t *testing.T) {
	s := newTestStore(t)
	saveMemory(t, s, newMemory(t, "sess-1", "Box"))
	saveMemory(t, s, newMemory(t, "sess-1", "Box", "Move"))

	stats, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalSessions != 1 || stats.TotalCommands != 2 {
		t.Errorf("stats = %+v, want 1 session with 2 commands", stats)
	}

	// The replaced commands must be gone from the index too.
	hits, err := s.SearchCommands("Box", memory.SearchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("Box hits = %d, want 1", len(hits))
	}
}

func TestSaveMemory_RejectsMissingID(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveMemory(context.Background(), &design.DesignMemory{}); err == nil {
		t.Fatal("expected error for missing session id")
	}
}

func TestSaveMemory_CancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.SaveMemory(ctx, newMemory(t, "x", "Box")); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestGetMemory_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetMemory("missing")
	if !errors.Is(err, memory.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestStore(t)
	saveMemory(t, s, newMemory(t, "sess-1", modelling...))

	if err := s.DeleteSession("sess-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := s.GetMemory("sess-1"); !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("GetMemory after delete: %v", err)
	}
	hits, err := s.SearchCommands("Fillet", memory.SearchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits after delete, got %d", len(hits))
	}
	if err := s.DeleteSession("sess-1"); !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

// ─── Sessions ───────────────────────────────────────────────────────────────

func TestRecentSessions(t *testing.T) {
	s := newTestStore(t)
	saveMemory(t, s, newMemory(t, "a", "Box"))
	saveMemory(t, s, newMemory(t, "b", modelling...))

	got, err := s.RecentSessions(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d sessions, want 2", len(got))
	}
	byID := map[string]memory.SessionSummary{}
	for _, ss := range got {
		byID[ss.ID] = ss
	}
	b := byID["b"]
	if b.CommandCount != 5 || b.LongestChain != 4 {
		t.Errorf("summary b = %+v, want 5 commands and chain 4", b)
	}
	if b.WorkflowCount == 0 {
		t.Error("expected workflows for session b")
	}

	limited, err := s.RecentSessions(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d", len(limited))
	}
}

// ─── Search ─────────────────────────────────────────────────────────────────

func TestSearchCommands(t *testing.T) {
	s := newTestStore(t)
	saveMemory(t, s, newMemory(t, "a", modelling...))
	saveMemory(t, s, newMemory(t, "b", "Circle", "Extrude"))

	tests := []struct {
		name  string
		query string
		opts  memory.SearchOptions
		want  []string
	}{
		{"by name", "Fillet", memory.SearchOptions{}, []string{"Fillet_5"}},
		{"by design intent", "Expanding", memory.SearchOptions{SessionID: "a"}, []string{"Sphere_3"}},
		{"by category", "boolean", memory.SearchOptions{}, []string{"BooleanUnion_4"}},
		{"session filter", "Starting", memory.SearchOptions{SessionID: "b"}, []string{"Circle_1"}},
		{"category filter", "", memory.SearchOptions{Category: "surface"}, []string{"Extrude_2"}},
		{"stage filter", "", memory.SearchOptions{SessionID: "a", Stage: "finishing"}, []string{"Fillet_5"}},
		{"no match", "kubernetes", memory.SearchOptions{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := s.SearchCommands(tt.query, tt.opts)
			if err != nil {
				t.Fatalf("SearchCommands: %v", err)
			}
			var got []string
			for _, h := range hits {
				got = append(got, h.NodeID)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("hits mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearchCommands_EmptyQueryReturnsRecent(t *testing.T) {
	s := newTestStore(t)
	saveMemory(t, s, newMemory(t, "a", modelling...))

	hits, err := s.SearchCommands("   ", memory.SearchOptions{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 || hits[0].NodeID != "Fillet_5" {
		t.Errorf("got %+v, want the two latest commands", hits)
	}
}

func TestSearchCommands_HostileInput(t *testing.T) {
	s := newTestStore(t)
	saveMemory(t, s, newMemory(t, "a", "Box"))

	for _, q := range []string{`"`, `Box OR`, `'; DROP TABLE commands; --`, `name:*`, `(Box`} {
		if _, err := s.SearchCommands(q, memory.SearchOptions{}); err != nil {
			t.Errorf("SearchCommands(%q) error: %v", q, err)
		}
	}
	if _, err := s.GetMemory("a"); err != nil {
		t.Errorf("archive damaged: %v", err)
	}
}

func TestSearchCommands_LimitCapped(t *testing.T) {
	s, err := memory.New(memory.Config{DataDir: t.TempDir(), MaxSearchResults: 3})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	saveMemory(t, s, newMemory(t, "a", "Box", "Box", "Box", "Box", "Box"))

	hits, err := s.SearchCommands("Box", memory.SearchOptions{Limit: 50})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 {
		t.Errorf("got %d hits, want 3", len(hits))
	}
}

// ─── Chains ─────────────────────────────────────────────────────────────────

func TestBuildChain(t *testing.T) {
	s := newTestStore(t)
	saveMemory(t, s, newMemory(t, "a", modelling...))

	tests := []struct {
		name  string
		depth int
		want  map[string]string // node -> direction
	}{
		{"one hop", 1, map[string]string{
			"Box_1":          memory.DirectionDependency,
			"BooleanUnion_4": memory.DirectionDependent,
		}},
		{"two hops", 2, map[string]string{
			"Box_1":          memory.DirectionDependency,
			"BooleanUnion_4": memory.DirectionDependent,
			"Sphere_3":       memory.DirectionDependency,
			"Fillet_5":       memory.DirectionDependent,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.BuildChain("a", "Move_2", tt.depth)
			if err != nil {
				t.Fatalf("BuildChain: %v", err)
			}
			if res.Root.NodeID != "Move_2" {
				t.Errorf("root = %s", res.Root.NodeID)
			}
			got := map[string]string{}
			for _, n := range res.Connected {
				got[n.NodeID] = n.Direction
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("connected mismatch (-want +got):\n%s", diff)
			}
			if res.TotalNodes != len(tt.want) || res.MaxDepth != tt.depth {
				t.Errorf("total=%d maxDepth=%d", res.TotalNodes, res.MaxDepth)
			}
		})
	}
}

func TestBuildChain_NotFound(t *testing.T) {
	s := newTestStore(t)
	saveMemory(t, s, newMemory(t, "a", "Box"))

	if _, err := s.BuildChain("a", "Sphere_9", 2); !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.BuildChain("other", "Box_1", 2); !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBuildChain_IsolatedNode(t *testing.T) {
	s := newTestStore(t)
	saveMemory(t, s, newMemory(t, "a", "Box", "Distance"))

	res, err := s.BuildChain("a", "Distance_2", 3)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalNodes != 0 || len(res.Connected) != 0 {
		t.Errorf("expected no connected nodes, got %+v", res.Connected)
	}
}

// ─── Stats ──────────────────────────────────────────────────────────────────

func TestStats(t *testing.T) {
	s := newTestStore(t)
	saveMemory(t, s, newMemory(t, "a", modelling...))

	stats, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalSessions != 1 || stats.TotalCommands != 5 {
		t.Errorf("stats = %+v", stats)
	}
	// Move_2->Box_1, BooleanUnion_4->Sphere_3, BooleanUnion_4->Move_2, Fillet_5->BooleanUnion_4
	if stats.TotalDependencies != 4 {
		t.Errorf("dependencies = %d, want 4", stats.TotalDependencies)
	}
	want := map[string]int{"primitive": 2, "transformation": 1, "boolean": 1, "editing": 1}
	if diff := cmp.Diff(want, stats.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	if stats.WorkflowTypes[design.WorkflowBooleanOperation] != 1 {
		t.Errorf("workflow types = %v", stats.WorkflowTypes)
	}
}

func TestStats_Empty(t *testing.T) {
	s := newTestStore(t)
	stats, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalSessions != 0 || len(stats.Categories) != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func TestTruncate(t *testing.T) {
	if got := memory.Truncate("abcdef", 3); got != "abc..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := memory.Truncate("abc", 3); got != "abc" {
		t.Errorf("Truncate = %q", got)
	}
}

func TestNow_Format(t *testing.T) {
	if _, err := time.Parse("2006-01-02 15:04:05", memory.Now()); err != nil {
		t.Errorf("Now() not in SQLite datetime format: %v", err)
	}
}
