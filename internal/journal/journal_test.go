package journal_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/HendryAvila/designmem/internal/geom"
	"github.com/HendryAvila/designmem/internal/journal"
	"github.com/HendryAvila/designmem/internal/session"
)

func boxPtr(lo, hi geom.Vec3) *geom.BoundingBox {
	b := geom.Box(lo, hi)
	return &b
}

// boxThenMove is a Box at the origin followed by a Move of (3,4,0).
func boxThenMove() []journal.Event {
	before := boxPtr(geom.V(0, 0, 0), geom.V(10, 10, 5))
	after := boxPtr(geom.V(3, 4, 0), geom.V(13, 14, 5))
	return []journal.Event{
		{
			Command: "Box",
			Created: []string{"b1"},
			Objects: []journal.Object{{ID: "b1", Type: "extrusion", BoundingBox: before}},
		},
		{
			Command:  "Move",
			Affected: []string{"b1"},
			Before:   []journal.Placement{{ID: "b1", BoundingBox: before}},
			Objects:  []journal.Object{{ID: "b1", Type: "extrusion", BoundingBox: after}},
		},
	}
}

func encode(t *testing.T, evs ...journal.Event) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := journal.NewWriter(&buf)
	for _, ev := range evs {
		if err := w.Write(ev); err != nil {
			t.Fatalf("Write(%s): %v", ev.Command, err)
		}
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr string
	}{
		{"minimal", `{"command":"Box"}`, ""},
		{"full object", `{"command":"Line","created":["c1"],"objects":[{"id":"c1","type":"curve","curve":{"length":5,"degree":1}}]}`, ""},
		{"missing command", `{"created":["a"]}`, "Command is required"},
		{"empty id", `{"command":"Box","created":[""]}`, "Created[0] is required"},
		{"bad type", `{"command":"Box","objects":[{"id":"a","type":"voxel"}]}`, "must be one of"},
		{"negative length", `{"command":"Line","objects":[{"id":"a","curve":{"length":-1}}]}`, "must be >= 0"},
		{"not json", `Box`, "decoding event"},
		{"placement with center", `{"command":"Move","affected":["b1"],"before":[{"id":"b1","center":{"x":1,"y":2,"z":3}}]}`, ""},
		{"placement without position", `{"command":"Move","affected":["b1"],"before":[{"id":"b1"}]}`, "Before[0].Center is required when BoundingBox is missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := journal.Decode([]byte(tt.line))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEventOperation(t *testing.T) {
	evs := boxThenMove()
	op := evs[1].Operation()

	if op.Name != "Move" || len(op.Before) != 1 {
		t.Fatalf("op = %+v", op)
	}
	if diff := cmp.Diff(geom.V(5, 5, 2.5), op.Before[0].Center); diff != "" {
		t.Errorf("center from box mismatch (-want +got):\n%s", diff)
	}
	box, ok := op.Geometry.BoundingBox("b1")
	if !ok || box.Min != geom.V(3, 4, 0) {
		t.Errorf("geometry box = %+v, %v", box, ok)
	}

	if (journal.Event{Command: "Distance"}).Operation().Geometry != nil {
		t.Error("event without objects should have no querier")
	}
}

func TestEventOperation_UnlocatedPlacementDropped(t *testing.T) {
	ev := journal.Event{
		Command:  "Move",
		Affected: []string{"b1", "b2"},
		Before: []journal.Placement{
			{ID: "b1"},
			{ID: "b2", BoundingBox: boxPtr(geom.V(0, 0, 0), geom.V(2, 2, 2))},
		},
		Objects: []journal.Object{
			{ID: "b1", Type: "brep", BoundingBox: boxPtr(geom.V(9, 9, 0), geom.V(11, 11, 2))},
			{ID: "b2", Type: "brep", BoundingBox: boxPtr(geom.V(1, 0, 0), geom.V(3, 2, 2))},
		},
	}
	op := ev.Operation()
	if len(op.Before) != 1 || op.Before[0].ID != "b2" {
		t.Fatalf("before = %+v, want only b2", op.Before)
	}

	// Recorded, the object without a prior position gets no transformation.
	s := session.New()
	if _, err := s.Record(session.Operation{Name: "Box", Created: []string{"b1", "b2"}}); err != nil {
		t.Fatal(err)
	}
	cmd, err := s.Record(op)
	if err != nil {
		t.Fatal(err)
	}
	if len(cmd.Transformations) != 1 || cmd.Transformations[0].ObjectID != "b2" {
		t.Errorf("transformations = %+v, want only b2", cmd.Transformations)
	}
}

func TestReplay(t *testing.T) {
	s := session.New()
	stats, err := journal.Replay(context.Background(), bytes.NewReader(encode(t, boxThenMove()...)), s, nil)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if stats.Recorded != 2 || stats.Skipped != 0 {
		t.Errorf("stats = %+v", stats)
	}

	cmds := s.Commands()
	mv := cmds[1]
	if diff := cmp.Diff([]string{"Box_1"}, mv.Relationships.DependsOn); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
	if len(mv.Transformations) != 1 || mv.Transformations[0].TranslationDistance != 5 {
		t.Errorf("transformations = %+v", mv.Transformations)
	}
}

func TestReplay_SkipsMalformedLines(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	input := strings.Join([]string{
		`{"command":"Box","created":["b1"]}`,
		``,
		`not json`,
		`{"created":["x"]}`,
		`{"command":"Sphere","created":["s1"]}`,
	}, "\n")

	s := session.New()
	stats, err := journal.Replay(context.Background(), strings.NewReader(input), s, zap.New(core))
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if stats.Recorded != 2 || stats.Skipped != 2 {
		t.Errorf("stats = %+v, want 2 recorded and 2 skipped", stats)
	}
	warned := logs.FilterMessage("skipping journal line").All()
	if len(warned) != 2 || warned[0].ContextMap()["line"] != int64(3) {
		t.Errorf("warnings = %+v", warned)
	}
	if s.Len() != 2 {
		t.Errorf("session has %d commands", s.Len())
	}
}

func TestReplay_SkipsOversizedLine(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	huge := `{"command":"Line","parameters":{"note":"` + strings.Repeat("x", 5<<20) + `"}}`
	input := strings.Join([]string{
		`{"command":"Box","created":["b1"]}`,
		huge,
		`{"command":"Sphere","created":["s1"]}`,
	}, "\n")

	s := session.New()
	stats, err := journal.Replay(context.Background(), strings.NewReader(input), s, zap.New(core))
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if stats.Recorded != 2 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 2 recorded and 1 skipped", stats)
	}
	warned := logs.FilterMessage("skipping journal line").All()
	if len(warned) != 1 || warned[0].ContextMap()["line"] != int64(2) {
		t.Errorf("warnings = %+v", warned)
	}
	cmds := s.Commands()
	if len(cmds) != 2 || cmds[1].NodeID() != "Sphere_2" {
		t.Errorf("commands = %d", len(cmds))
	}
}

func TestReplay_RecorderErrorStops(t *testing.T) {
	s := session.New()
	if _, err := s.Finalize(); err != nil {
		t.Fatal(err)
	}
	_, err := journal.Replay(context.Background(), strings.NewReader(`{"command":"Box"}`), s, nil)
	if !errors.Is(err, session.ErrFinalized) {
		t.Fatalf("err = %v, want ErrFinalized", err)
	}
}

func TestReplay_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := journal.Replay(ctx, strings.NewReader(`{"command":"Box"}`), session.New(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestWriter_RejectsInvalid(t *testing.T) {
	var buf bytes.Buffer
	if err := journal.NewWriter(&buf).Write(journal.Event{}); err == nil {
		t.Fatal("expected validation error")
	}
	if buf.Len() != 0 {
		t.Error("invalid event was written")
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.ndjson")
	evs := boxThenMove()
	if err := os.WriteFile(path, encode(t, evs[0]), 0o644); err != nil {
		t.Fatal(err)
	}

	mgr := session.NewManager(nil, nil)
	mgr.Start()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan journal.Stats, 1)
	go func() {
		stats, err := journal.Tail(ctx, path, mgr, nil)
		if err != nil {
			t.Errorf("Tail: %v", err)
		}
		done <- stats
	}()

	waitFor(t, "existing event", func() bool { return mgr.Status().CommandCount == 1 })

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	line := encode(t, evs[1])
	// A line split across two writes is only recorded once complete.
	if _, err := f.Write(line[:10]); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write(line[10:]); err != nil {
		t.Fatal(err)
	}
	f.Close()

	waitFor(t, "appended event", func() bool { return mgr.Status().CommandCount == 2 })
	cancel()

	stats := <-done
	if stats.Recorded != 2 {
		t.Errorf("stats = %+v", stats)
	}
	cmds, _, err := mgr.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if cmds[1].NodeID() != "Move_2" {
		t.Errorf("second command = %s", cmds[1].NodeID())
	}
}

func TestTail_MissingJournalThenCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.ndjson")
	mgr := session.NewManager(nil, nil)
	mgr.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _, _ = journal.Tail(ctx, path, mgr, nil) }()

	// Give the watcher a moment to register before the file appears.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"command":"Sphere"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "created journal", func() bool { return mgr.Status().CommandCount == 1 })
}
