package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/vigil/internal/speech"
	"github.com/spf13/cobra"
)

var (
	audioLanguage     string
	speechProvider    string
	userAgent         string
	maxAudioBytes     int64
	transcribeTimeout time.Duration
	analyzeAfter      bool
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe <session-id> <audio>",
	Short: "Transcribe session audio and store segments and translations",
	Long: `Transcribe converts a recording (local file or http(s) URL) into
transcript segments and stores them under the session. Segments that are not
in the base language are translated and the translations stored alongside.

Kashmiri audio is transcribed with the Urdu model.

Providers:
  mock    deterministic offline engine (text files become one segment per line)
  openai  Whisper transcription and chat-completion translation
          (needs speech.api_key, VIGIL_SPEECH_API_KEY or OPENAI_API_KEY)

Example:
  vigil transcribe call-001 call-001.wav --language hindi
  vigil transcribe call-002 https://recordings.example.com/call-002.mp3 --provider openai
  vigil transcribe call-003 call-003.txt --analyze`,
	Args: cobra.ExactArgs(2),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().StringVar(&audioLanguage, "language", "", "spoken language hint (english, hindi, urdu, kashmiri); empty = detect")
	transcribeCmd.Flags().StringVar(&speechProvider, "provider", "", "speech provider (default: speech.provider)")
	transcribeCmd.Flags().StringVar(&userAgent, "ua", "Vigil/0.1 (+https://github.com/ppiankov/vigil)", "HTTP User-Agent for remote audio")
	transcribeCmd.Flags().Int64Var(&maxAudioBytes, "max-bytes", 100_000_000, "max audio bytes to read")
	transcribeCmd.Flags().DurationVar(&transcribeTimeout, "timeout", 10*time.Minute, "overall transcription timeout")
	transcribeCmd.Flags().BoolVar(&analyzeAfter, "analyze", false, "analyze the session after transcription")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	sessionID, src := args[0], args[1]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := commandContext(transcribeTimeout)
	defer cancel()

	speechCfg := a.cfg.Speech
	if speechProvider != "" {
		speechCfg.Provider = speechProvider
	}

	engine, err := speech.NewEngine(speechCfg, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	if verbose {
		fmt.Fprintf(os.Stderr, "Transcribing: %s\n", src)
		fmt.Fprintf(os.Stderr, "Engine: %s\n", engine.Name())
		fmt.Fprintln(os.Stderr)
	}

	loader := speech.NewAudioLoader(speechCfg.Timeout, userAgent, maxAudioBytes, speech.ProxyFor(speechCfg))
	audio, err := loader.Load(ctx, src, audioLanguage)
	if err != nil {
		return fmt.Errorf("load audio: %w", err)
	}

	transcriber := speech.NewTranscriber(engine, a.store, a.dicts, a.metrics, a.logger)
	result, err := transcriber.Transcribe(ctx, sessionID, audio)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "✓ Transcribed %d segments into session %s (%s)\n", len(result.Segments), sessionID, result.Language)
	_, _ = fmt.Fprintf(out, "✓ Stored %d translations\n", len(result.Translations))
	if result.Failed > 0 {
		fmt.Fprintf(os.Stderr, "! %d segments could not be translated and will be matched in their own language only\n", result.Failed)
	}

	if !analyzeAfter {
		return nil
	}

	record, err := a.pipeline().AnalyzeSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return writeRecord(out, record, "text")
}
