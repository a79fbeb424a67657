package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/vigil/internal/ingest"
	"github.com/spf13/cobra"
)

var (
	ingestFormat   string
	ingestLanguage string
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [session-id] <file>",
	Short: "Import an existing transcript into the store",
	Long: `Ingest stores a transcript produced elsewhere so it can be analyzed.

Supported formats (detected from the file extension):
  .srt          SubRip subtitles
  .vtt          WebVTT subtitles (cue markup is stripped)
  .json, .yaml  session documents with segments and optional translations

Segments without a language take --language, or are guessed from their
script (Devanagari as Hindi, Arabic script as Urdu, otherwise the base
language). When the session ID is omitted, the document's session_id is used.

Example:
  vigil ingest call-001 call-001.srt --language hindi
  vigil ingest call-002 call-002.vtt
  vigil ingest session.yaml`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestFormat, "format", "", "force the input format (srt, vtt, json, yaml)")
	ingestCmd.Flags().StringVar(&ingestLanguage, "language", "", "language of segments that do not declare one")
}

func runIngest(cmd *cobra.Command, args []string) error {
	sessionID, path := "", args[0]
	if len(args) == 2 {
		sessionID, path = args[0], args[1]
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := commandContext(0)
	defer cancel()

	ing := ingest.NewIngester(a.store, a.logger)
	result, err := ing.IngestFile(ctx, sessionID, path, ingest.Options{
		Format:   ingestFormat,
		Language: ingestLanguage,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Ingested %d segments and %d translations into session %s (%s)\n",
		result.Segments, result.Translations, result.SessionID, result.Format)
	if result.Dropped > 0 {
		fmt.Fprintf(os.Stderr, "! Dropped %d translations without a matching segment\n", result.Dropped)
	}
	return nil
}
