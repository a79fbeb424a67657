package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON        string
	outMD          string
	outputFormat   string
	analyzeTimeout time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <session-id>",
	Short: "Analyze one session's transcript and store the threat record",
	Long: `Analyze reads the stored transcript and translations of a session and:
- Matches threat keywords per segment in the segment's language
- Matches the base-language translation of each segment
- Aggregates category counts across the session
- Calculates a threat score and severity
- Stores an explainable analysis record, replacing any earlier one

Example:
  vigil analyze call-2024-001
  vigil analyze call-2024-001 --output json
  vigil analyze call-2024-001 --json reports/call.json --md reports/call.md`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "stdout format (text, json, markdown)")
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "also write the record as JSON to this path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "also write the record as Markdown to this path")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", time.Minute, "analysis timeout")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	sessionID := args[0]
	if err := checkOutputFormat(outputFormat); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := commandContext(analyzeTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing session: %s\n", sessionID)
		fmt.Fprintf(os.Stderr, "Dictionaries: %s (base %s)\n\n", a.dicts.Source(), a.dicts.BaseLanguage())
	}

	record, err := a.pipeline().AnalyzeSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("no transcript for session %s: transcribe audio before analyzing", sessionID)
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	renderer := pipeline.NewRenderer()
	if outJSON != "" {
		if err := renderer.RenderJSON(record, outJSON); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ JSON report: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(record, outMD); err != nil {
			return fmt.Errorf("write Markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Markdown report: %s\n", outMD)
		}
	}

	return writeRecord(cmd.OutOrStdout(), record, outputFormat)
}

func checkOutputFormat(format string) error {
	switch format {
	case "text", "json", "markdown", "md":
		return nil
	default:
		return fmt.Errorf("unknown output format %q (supported: text, json, markdown)", format)
	}
}

// writeRecord renders a record to w in the requested format
func writeRecord(w io.Writer, record *model.ThreatAnalysisRecord, format string) error {
	renderer := pipeline.NewRenderer()
	switch format {
	case "json":
		return renderer.WriteJSON(w, record)
	case "markdown", "md":
		_, err := io.WriteString(w, renderer.Markdown(record))
		return err
	default:
		renderer.RenderSummary(w, record)
		return nil
	}
}
