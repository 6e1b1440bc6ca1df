package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Tail records the events already in the journal at path and then follows
// it, recording each complete line as it is appended, until ctx is done.
// The journal need not exist yet. A journal that shrinks is treated as
// rewritten and read again from the start.
func Tail(ctx context.Context, path string, rec Recorder, log *zap.Logger) (Stats, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return Stats{}, fmt.Errorf("creating journal watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory so creation and replacement are seen too.
	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		return Stats{}, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	t := &tailer{path: path, applier: newApplier(rec, log)}
	if err := t.drain(); err != nil {
		return t.stats, err
	}

	for {
		select {
		case <-ctx.Done():
			return t.stats, nil
		case ev, ok := <-w.Events:
			if !ok {
				return t.stats, nil
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := t.drain(); err != nil {
				return t.stats, err
			}
		case err, ok := <-w.Errors:
			if !ok {
				return t.stats, nil
			}
			t.log.Warn("journal watch error", zap.String("path", path), zap.Error(err))
		}
	}
}

type tailer struct {
	*applier
	path    string
	offset  int64
	partial []byte
}

// drain reads everything appended since the last call and applies each
// complete line. A trailing incomplete line is kept for the next call.
func (t *tailer) drain() error {
	f, err := os.Open(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat journal: %w", err)
	}
	if info.Size() < t.offset {
		t.log.Info("journal truncated, reading from start", zap.String("path", t.path))
		t.offset, t.partial = 0, nil
	}
	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return fmt.Errorf("seeking journal: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("reading journal: %w", err)
	}
	t.offset += int64(len(data))

	buf := append(t.partial, data...)
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		if err := t.apply(buf[:i]); err != nil {
			return err
		}
		buf = buf[i+1:]
	}
	t.partial = append([]byte(nil), buf...)
	return nil
}
