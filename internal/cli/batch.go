package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/pipeline"
	"github.com/ppiankov/vigil/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchFile    string
	batchAll     bool
	batchMD      bool
	metricsAddr  string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [session-ids...]",
	Short: "Analyze many sessions in parallel",
	Long: `Batch analyzes multiple sessions concurrently:
- Session IDs come from arguments, a file (one per line) or --all
- Sessions are analyzed with a bounded worker pool
- A JSON (and optionally Markdown) report is written per session
- Results are reported in input order

Example:
  vigil batch call-001 call-002
  vigil batch --file sessions.txt --concurrency 8
  vigil batch --all --output-dir ./reports --markdown --metrics-addr :9090`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "file with session IDs, one per line")
	batchCmd.Flags().BoolVar(&batchAll, "all", false, "analyze every session in the store")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory for reports (default: output.json_dir)")
	batchCmd.Flags().BoolVar(&batchMD, "markdown", false, "also write Markdown reports")
	batchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := commandContext(batchTimeout)
	defer cancel()

	ids := append([]string(nil), args...)
	if batchAll {
		all, err := a.store.Sessions(ctx)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		ids = append(ids, all...)
	}
	ids = worker.Dedupe(ids)
	if len(ids) == 0 && batchFile == "" {
		return fmt.Errorf("no sessions to analyze: pass session IDs, --file or --all")
	}

	workers := concurrency
	if workers < 1 {
		workers = a.cfg.Concurrency.Workers
	}
	dir := outputDir
	if dir == "" {
		dir = a.cfg.Output.JSONDir
	}
	writeMD := batchMD || a.cfg.Output.Markdown

	addr := metricsAddr
	if addr == "" {
		addr = a.cfg.Metrics.Addr
	}
	if addr != "" {
		go func() {
			if err := a.metrics.Serve(ctx, addr, a.logger); err != nil {
				a.logger.WithError(err).Error("Metrics endpoint failed")
			}
		}()
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Vigil Batch Analysis\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	if batchFile != "" {
		fmt.Fprintf(os.Stderr, "  Sessions:     %d + %s\n", len(ids), batchFile)
	} else {
		fmt.Fprintf(os.Stderr, "  Sessions:     %d\n", len(ids))
	}
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", dir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if addr != "" {
		fmt.Fprintf(os.Stderr, "  Metrics:      http://%s/metrics\n", addr)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(a.pipeline(), workers)
	var results []*worker.AnalysisResult
	if batchFile != "" {
		results, err = processor.ProcessFile(ctx, batchFile, ids...)
		if err != nil {
			return err
		}
	} else {
		results = processor.ProcessSessions(ctx, ids)
	}
	if len(results) == 0 {
		return fmt.Errorf("no sessions to analyze: %s lists no session IDs", batchFile)
	}

	renderer := pipeline.NewRenderer()
	bySeverity := make(map[model.Severity]int)
	reports := make(map[string]bool, len(results))
	var missing, failures int

	for _, result := range results {
		if result.Error != nil {
			if errors.Is(result.Error, model.ErrNotFound) {
				missing++
				fmt.Fprintf(os.Stderr, "- %s: no transcript\n", result.SessionID)
				continue
			}
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.SessionID, result.Error)
			continue
		}

		record := result.Record
		bySeverity[record.Severity]++

		slug := reportName(record.SessionID, reports)
		if err := renderer.RenderJSON(record, filepath.Join(dir, slug+".json")); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", record.SessionID, err)
			continue
		}
		if writeMD {
			if err := renderer.RenderMarkdown(record, filepath.Join(dir, slug+".md")); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", record.SessionID, err)
				continue
			}
		}

		if slug != sanitizeFilename(record.SessionID) {
			fmt.Fprintf(os.Stderr, "✓ %s: %s (score %d) -> %s.json\n", record.SessionID, record.Severity, record.Score, slug)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s: %s (score %d)\n", record.SessionID, record.Severity, record.Score)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:        %d sessions\n", len(results))
	fmt.Fprintf(os.Stderr, "  HIGH_RISK:    %d\n", bySeverity[model.SeverityHighRisk])
	fmt.Fprintf(os.Stderr, "  SUSPICIOUS:   %d\n", bySeverity[model.SeveritySuspicious])
	fmt.Fprintf(os.Stderr, "  SAFE:         %d\n", bySeverity[model.SeveritySafe])
	fmt.Fprintf(os.Stderr, "  Missing:      %d\n", missing)
	fmt.Fprintf(os.Stderr, "  Failures:     %d\n", failures)
	fmt.Fprintf(os.Stderr, "  Output:       %s\n", dir)
	fmt.Fprintf(os.Stderr, "\n")

	if failures > 0 {
		return fmt.Errorf("%d of %d sessions failed", failures, len(results))
	}
	return nil
}
