package memory_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func openSmokeDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteSmokeTest(t *testing.T) {
	db := openSmokeDB(t, "smoke.db")

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		t.Fatalf("failed to enable WAL mode: %v", err)
	}
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected WAL mode, got %q", mode)
	}
}

func TestFTS5SmokeTest(t *testing.T) {
	db := openSmokeDB(t, "fts5.db")

	_, err := db.Exec(`
		CREATE TABLE cmds (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, intent TEXT NOT NULL);
		CREATE VIRTUAL TABLE cmds_fts USING fts5(name, intent, content='cmds', content_rowid='id');
		CREATE TRIGGER cmds_ai AFTER INSERT ON cmds BEGIN
			INSERT INTO cmds_fts(rowid, name, intent) VALUES (new.id, new.name, new.intent);
		END;
		CREATE TRIGGER cmds_ad AFTER DELETE ON cmds BEGIN
			INSERT INTO cmds_fts(cmds_fts, rowid, name, intent) VALUES('delete', old.id, old.name, old.intent);
		END;
	`)
	if err != nil {
		t.Fatalf("failed to create FTS5 schema: %v", err)
	}

	rows := []struct{ name, intent string }{
		{"Box", "Created box 10.0 x 10.0 x 5.0 at (5.0, 5.0, 2.5)"},
		{"Move", "Moved 1 object by 5.0 units"},
		{"BooleanUnion", "Combined 2 objects with union"},
		{"Fillet", "Rounded edges with radius 1.0"},
	}
	for _, r := range rows {
		if _, err := db.Exec("INSERT INTO cmds (name, intent) VALUES (?, ?)", r.name, r.intent); err != nil {
			t.Fatalf("failed to insert %q: %v", r.name, err)
		}
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"single word", `"Fillet"`, 1},
		{"phrase", `"with union"`, 1},
		{"or", `"Moved" OR "Rounded"`, 2},
		{"no match", `"loft"`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n int
			err := db.QueryRow(
				"SELECT COUNT(*) FROM cmds c JOIN cmds_fts f ON c.id = f.rowid WHERE cmds_fts MATCH ?",
				tt.query,
			).Scan(&n)
			if err != nil {
				t.Fatalf("FTS5 search failed for %q: %v", tt.query, err)
			}
			if n != tt.want {
				t.Errorf("query %q: got %d results, want %d", tt.query, n, tt.want)
			}
		})
	}

	if _, err := db.Exec("DELETE FROM cmds WHERE name = 'Fillet'"); err != nil {
		t.Fatal(err)
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM cmds_fts WHERE cmds_fts MATCH '"Fillet"'`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("deleted row still indexed")
	}
}

func TestSQLiteBusyTimeout(t *testing.T) {
	db := openSmokeDB(t, "busy.db")
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		t.Fatalf("failed to set busy_timeout: %v", err)
	}
	var timeout int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("failed to query busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Fatalf("expected busy_timeout=5000, got %d", timeout)
	}
}
