package journal

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/HendryAvila/designmem/internal/design"
	"github.com/HendryAvila/designmem/internal/session"
)

// maxLine bounds a single journal line. Events with dense curve point
// lists can be large. Longer lines are skipped.
const maxLine = 4 << 20

var errLineTooLong = fmt.Errorf("line longer than %d bytes", maxLine)

// Recorder accepts operations. Both *session.Session and *session.Manager
// satisfy it.
type Recorder interface {
	Record(op session.Operation) (design.Command, error)
}

// Stats counts what a replay or tail consumed.
type Stats struct {
	Recorded int
	Skipped  int
}

// applier turns journal lines into recorded operations. Malformed lines
// are skipped with a warning; recorder failures are returned.
type applier struct {
	rec   Recorder
	log   *zap.Logger
	line  int
	stats Stats
}

func newApplier(rec Recorder, log *zap.Logger) *applier {
	if log == nil {
		log = zap.NewNop()
	}
	return &applier{rec: rec, log: log}
}

func (a *applier) apply(raw []byte) error {
	a.line++
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if len(raw) > maxLine {
		a.skip(errLineTooLong)
		return nil
	}
	ev, err := Decode(raw)
	if err != nil {
		a.skip(err)
		return nil
	}
	cmd, err := a.rec.Record(ev.Operation())
	if err != nil {
		return fmt.Errorf("line %d: recording %s: %w", a.line, ev.Command, err)
	}
	a.stats.Recorded++
	a.log.Debug("journal event recorded", zap.Int("line", a.line), zap.String("node", cmd.NodeID()))
	return nil
}

func (a *applier) skip(err error) {
	a.stats.Skipped++
	a.log.Warn("skipping journal line", zap.Int("line", a.line), zap.Error(err))
}

// Replay records every event in r, in order, until EOF or ctx is done.
func Replay(ctx context.Context, r io.Reader, rec Recorder, log *zap.Logger) (Stats, error) {
	a := newApplier(rec, log)
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := readLine(br)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return a.stats, ctxErr
		}
		switch {
		case errors.Is(err, errLineTooLong):
			a.line++
			a.skip(err)
			continue
		case err != nil && !errors.Is(err, io.EOF):
			return a.stats, fmt.Errorf("reading journal: %w", err)
		}
		if len(line) > 0 || err == nil {
			if err := a.apply(line); err != nil {
				return a.stats, err
			}
		}
		if err != nil {
			return a.stats, nil
		}
	}
}

// readLine returns the next line including its newline, or io.EOF with
// whatever trails the last newline. A line longer than maxLine is read to
// its end and dropped, and errLineTooLong is returned in its place.
func readLine(br *bufio.Reader) ([]byte, error) {
	var line []byte
	long := false
	for {
		chunk, err := br.ReadSlice('\n')
		if !long {
			line = append(line, chunk...)
			if len(bytes.TrimRight(line, "\r\n")) > maxLine {
				long, line = true, nil
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if long && (err == nil || errors.Is(err, io.EOF)) {
			return nil, errLineTooLong
		}
		return line, err
	}
}
