package cli

import (
	"errors"
	"fmt"

	"github.com/ppiankov/vigil/internal/model"
	"github.com/spf13/cobra"
)

var showFormat string

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the latest stored analysis of a session",
	Long: `Show prints the most recent analysis record stored for a session
without re-running the analysis.

Example:
  vigil show call-001
  vigil show call-001 --output markdown > call-001.md`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List sessions with stored transcripts",
	Args:  cobra.NoArgs,
	RunE:  runSessions,
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(sessionsCmd)

	showCmd.Flags().StringVarP(&showFormat, "output", "o", "text", "output format (text, json, markdown)")
}

func runShow(cmd *cobra.Command, args []string) error {
	sessionID := args[0]
	if err := checkOutputFormat(showFormat); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := commandContext(0)
	defer cancel()

	record, err := a.store.LatestAnalysis(ctx, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("no analysis stored for session %s: run 'vigil analyze %s' first", sessionID, sessionID)
		}
		return fmt.Errorf("load analysis: %w", err)
	}

	return writeRecord(cmd.OutOrStdout(), record, showFormat)
}

func runSessions(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := commandContext(0)
	defer cancel()

	ids, err := a.store.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, id := range ids {
		status := "not analyzed"
		if record, err := a.store.LatestAnalysis(ctx, id); err == nil {
			status = fmt.Sprintf("%s (score %d)", record.Severity, record.Score)
		} else if !errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("load analysis of %s: %w", id, err)
		}
		_, _ = fmt.Fprintf(out, "%s\t%s\n", id, status)
	}
	return nil
}
