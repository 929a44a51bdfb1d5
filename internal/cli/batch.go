package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/export"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/ingest"
)

var (
	batchWorkers    int
	batchOut        string
	batchJSONL      bool
	batchSkipHidden bool
	batchTimeout    time.Duration
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Analyze every claim document under a directory",
	Long: `Batch walks a directory for PDF, JPEG and PNG files, analyzes them
concurrently and writes an XLSX report with a Claims sheet (one row per
file) and a Flags sheet (one row per flag).

A file that cannot be read or analyzed is reported on its row and does not
stop the batch.

Example:
  claimassist batch ./claims
  claimassist batch ./claims --out report.xlsx --workers 8 --jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&batchWorkers, "workers", runtime.NumCPU(), "number of concurrent analyses")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "output XLSX path (default: claims.xlsx next to the directory)")
	batchCmd.Flags().BoolVar(&batchJSONL, "jsonl", false, "also print one JSON line per file on stdout")
	batchCmd.Flags().BoolVar(&batchSkipHidden, "skip-hidden", true, "skip hidden files and directories")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	st, err := setup(cmd)
	if err != nil {
		return err
	}

	out := batchOut
	if out == "" {
		out = filepath.Join(filepath.Dir(filepath.Clean(dir)), "claims.xlsx")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	ingestor := ingest.NewFSIngestor(st.cfg.Document.MaxBytes, batchSkipHidden, st.logger)
	paths, stats, err := ingestor.Discover(ctx, dir)
	if err != nil {
		return fmt.Errorf("discover %s: %w", dir, err)
	}
	st.logger.Info("batch.discover.ok", "dir", dir, "scanned", stats.Scanned, "matched", stats.Matched, "skipped", stats.Skipped, "failed", stats.Failed)

	var lines *lineWriter
	if batchJSONL {
		lines = newLineWriter(cmd.OutOrStdout())
	}

	rows := make([]export.Row, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(batchWorkers, 1))
	for i, path := range paths {
		g.Go(func() error {
			row := export.Row{Path: path}
			loaded, err := ingestor.Load(path)
			if err == nil {
				row.HashHex = loaded.HashHex
				row.Result, err = st.app.Processor.Analyze(gctx, loaded.Document)
			}
			if err != nil {
				// Cancellation aborts the batch; any other failure is per file.
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				st.logger.Warn("batch.file.failed", "path", path, "err", err)
				row.Err = err
			}
			rows[i] = row
			if lines != nil {
				return lines.write(newRecord(path, row.HashHex, row.Result, row.Err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("batch %s: %w", dir, err)
	}

	data, err := export.NewService(st.logger).ExportClaimsXLSX(ctx, rows)
	if err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	summary := summarize(rows)
	st.logger.Info("batch.complete", "files", len(rows), "approved", summary[constants.ActionApprove],
		"review", summary[constants.ActionReview], "rejected", summary[constants.ActionReject], "failed", summary[""], "output", out)

	if !batchJSONL {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Batch analysis complete!\n")
		fmt.Fprintf(w, "- Files analyzed: %d\n", len(rows)-summary[""])
		fmt.Fprintf(w, "- Approve: %d\n", summary[constants.ActionApprove])
		fmt.Fprintf(w, "- Review: %d\n", summary[constants.ActionReview])
		fmt.Fprintf(w, "- Reject: %d\n", summary[constants.ActionReject])
		fmt.Fprintf(w, "- Failures: %d\n", summary[""])
		fmt.Fprintf(w, "- Output: %s\n", out)
	}
	return nil
}

// summarize counts rows per action; failed rows count under "".
func summarize(rows []export.Row) map[constants.Action]int {
	out := make(map[constants.Action]int, 4)
	for _, r := range rows {
		if r.Err != nil {
			out[""]++
			continue
		}
		out[r.Result.Action]++
	}
	return out
}
