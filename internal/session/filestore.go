package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/HendryAvila/designmem/internal/design"
)

// timeNow is replaced in tests to pin export file names.
var timeNow = time.Now

// FileStore writes finalized design memories as indented JSON files named
// session_<id>_<yyyymmdd_hhmmss>.json under Dir.
type FileStore struct {
	Dir string
}

// NewFileStore creates a file-backed persister rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// FileName returns the export file name for a session saved at t.
func FileName(sessionID string, t time.Time) string {
	return fmt.Sprintf("session_%s_%s.json", sessionID, t.Format("20060102_150405"))
}

// SaveMemory implements Persister.
func (fs *FileStore) SaveMemory(_ context.Context, m *design.DesignMemory) error {
	_, err := fs.Save(m)
	return err
}

// Save writes m and returns the path of the new file.
func (fs *FileStore) Save(m *design.DesignMemory) (string, error) {
	data, err := m.ToJSON()
	if err != nil {
		return "", fmt.Errorf("marshaling design memory: %w", err)
	}
	if err := os.MkdirAll(fs.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(fs.Dir, FileName(m.SessionID, timeNow()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Load reads a design memory file.
func Load(path string) (*design.DesignMemory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session file %q not found", path)
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	m, err := design.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// List returns the session files in Dir, oldest name first. A missing
// directory is not an error.
func (fs *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(fs.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading export directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "session_") || filepath.Ext(name) != ".json" {
			continue
		}
		out = append(out, filepath.Join(fs.Dir, name))
	}
	sort.Strings(out)
	return out, nil
}
