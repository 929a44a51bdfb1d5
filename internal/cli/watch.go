package cli

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/anucodes-hub/ClaimAssist-AI/internal/async"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/ingest"
)

var (
	watchWorkers     int
	watchQueueSize   int
	watchInitialScan bool
	watchDebounce    time.Duration
	watchDrain       time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>...",
	Short: "Analyze claim documents as they appear in directories",
	Long: `Watch follows one or more directories (recursively) and analyzes every
PDF, JPEG or PNG file that is created or rewritten there. Each result is
printed as one JSON line on stdout. Interrupt to stop; queued files are
drained before exit.

Example:
  claimassist watch ./inbox
  claimassist watch ./inbox ./scans --initial-scan --workers 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchWorkers, "workers", runtime.NumCPU(), "number of concurrent analyses")
	watchCmd.Flags().IntVar(&watchQueueSize, "queue-size", 256, "pending file buffer")
	watchCmd.Flags().BoolVar(&watchInitialScan, "initial-scan", false, "analyze files already present at start")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet period before a changed file is analyzed")
	watchCmd.Flags().DurationVar(&watchDrain, "drain-timeout", 30*time.Second, "how long to wait for queued files on exit")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	st, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	lines := newLineWriter(cmd.OutOrStdout())
	sink := func(o async.Outcome) {
		r := newRecord(o.Job.Path, o.HashHex, o.Result, o.Err)
		r.JobID = o.Job.ID
		r.Elapsed = o.Duration.Round(time.Millisecond).String()
		if err := lines.write(r); err != nil {
			st.logger.Error("watch.output.failed", "path", o.Job.Path, "err", err)
		}
	}

	loader := ingest.NewFSIngestor(st.cfg.Document.MaxBytes, true, st.logger)
	queue := async.NewProcessorQueue(st.app.Processor, loader, sink, st.logger,
		async.WithWorkers(watchWorkers),
		async.WithQueueSize(watchQueueSize),
		async.WithProcessTimeout(st.cfg.Extract.OCRTimeout*2),
	)

	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       args,
		InitialScan: watchInitialScan,
		Debounce:    watchDebounce,
		SkipHidden:  true,
		Logger:      st.logger,
	})
	if err != nil {
		queue.Shutdown(context.Background())
		return fmt.Errorf("watch: %w", err)
	}
	st.logger.Info("watch.started", "roots", args, "workers", watchWorkers)

	err = pump(ctx, queue, paths, errs, st.logger.Warn)

	drainCtx, cancel := context.WithTimeout(context.Background(), watchDrain)
	defer cancel()
	queue.Shutdown(drainCtx)
	st.logger.Info("watch.stopped")
	return err
}

// pump enqueues watched paths until both channels close. Watcher errors are
// reported and do not stop the loop.
func pump(ctx context.Context, q async.Queue, paths <-chan string, errs <-chan error, warn func(string, ...any)) error {
	for paths != nil || errs != nil {
		select {
		case p, ok := <-paths:
			if !ok {
				paths = nil
				continue
			}
			if err := q.Enqueue(ctx, async.NewJob(p)); err != nil {
				if errors.Is(err, async.ErrQueueClosed) || ctx.Err() != nil {
					return nil
				}
				return err
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			warn("watch.error", "err", err)
		}
	}
	return nil
}
