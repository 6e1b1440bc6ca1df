package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HendryAvila/designmem/internal/design"
	"github.com/HendryAvila/designmem/internal/journal"
	dmserver "github.com/HendryAvila/designmem/internal/server"
	"github.com/HendryAvila/designmem/internal/session"
)

var printDoc bool

var replayCmd = &cobra.Command{
	Use:   "replay <journal>",
	Short: "Analyse a recorded operation journal as one session",
	Long: `Replay reads a newline-delimited JSON journal of CAD operations, records
them into a new session, runs workflow analysis and saves the result to the
archive and the export directory. Malformed lines, including lines longer
than 4 MiB, are logged and skipped.

Use "-" to read the journal from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cleanup := dmserver.NewCapture(cfg, logger)
		defer cleanup()

		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening journal: %w", err)
			}
			defer f.Close()
			r = f
		}

		doc, stats, err := replay(cmd.Context(), c.Manager, r, logger)
		if err != nil {
			return err
		}
		return report(cmd.OutOrStdout(), doc, stats)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <journal>...",
	Short: "Follow live journals until interrupted, then save the session",
	Long: `Watch records every event already in the given journals and then follows
them as the CAD host appends to them. All journals feed one session. On
SIGINT or SIGTERM the session is stopped, analysed and saved.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, cleanup := dmserver.NewCapture(cfg, logger)
		defer cleanup()

		doc, stats, err := watch(ctx, c.Manager, args, logger)
		if err != nil {
			return err
		}
		return report(cmd.OutOrStdout(), doc, stats)
	},
}

func init() {
	replayCmd.Flags().BoolVar(&printDoc, "json", false, "Print the full design memory as JSON")
	watchCmd.Flags().BoolVar(&printDoc, "json", false, "Print the full design memory as JSON")
}

// replay records every event of r into a fresh session and stops it.
func replay(ctx context.Context, mgr *session.Manager, r io.Reader, log *zap.Logger) (*design.DesignMemory, journal.Stats, error) {
	mgr.Start()
	stats, err := journal.Replay(ctx, r, mgr, log)
	if err != nil {
		mgr.Discard()
		return nil, stats, err
	}
	doc, err := mgr.Stop(ctx)
	if doc == nil {
		return nil, stats, err
	}
	if err != nil {
		// Analysis succeeded; report it even though saving failed.
		log.Error("session not saved", zap.String("session", doc.SessionID), zap.Error(err))
	}
	return doc, stats, nil
}

// watch tails every path into one session until ctx is done or a tailer
// fails, then stops the session.
func watch(ctx context.Context, mgr *session.Manager, paths []string, log *zap.Logger) (*design.DesignMemory, journal.Stats, error) {
	st := mgr.Start()
	log.Info("watching journals", zap.String("session", st.SessionID), zap.Strings("paths", paths))

	results := make([]journal.Stats, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			s, err := journal.Tail(gctx, p, mgr, log)
			results[i] = s
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			return nil
		})
	}
	tailErr := g.Wait()

	var total journal.Stats
	for _, s := range results {
		total.Recorded += s.Recorded
		total.Skipped += s.Skipped
	}

	// ctx is done here; saving must not inherit its cancellation.
	doc, err := mgr.Stop(context.WithoutCancel(ctx))
	if doc == nil {
		return nil, total, errors.Join(tailErr, err)
	}
	if err != nil {
		log.Error("session not saved", zap.String("session", doc.SessionID), zap.Error(err))
	}
	return doc, total, tailErr
}

// report prints a short analysis summary, or the whole document with --json.
func report(w io.Writer, doc *design.DesignMemory, stats journal.Stats) error {
	if printDoc {
		data, err := doc.ToJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	fmt.Fprintf(w, "Session %s: %d commands recorded, %d lines skipped\n",
		doc.SessionID, stats.Recorded, stats.Skipped)
	printAnalysis(w, doc.Analysis)
	return nil
}
