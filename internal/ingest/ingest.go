// Package ingest imports existing transcripts into the store. Subtitle
// files (SRT, WebVTT) and session documents (JSON, YAML) are supported.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ppiankov/vigil/internal/model"
	"github.com/sirupsen/logrus"
)

// Format identifies a transcript file format
type Format string

const (
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats
var Formats = []Format{FormatSRT, FormatVTT, FormatJSON, FormatYAML}

// DetectFormat returns forced when set, otherwise the format implied by the
// file extension
func DetectFormat(path, forced string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(forced))
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	switch name {
	case "srt":
		return FormatSRT, nil
	case "vtt", "webvtt":
		return FormatVTT, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "":
		return "", fmt.Errorf("cannot detect format of %s: no extension (use --format)", path)
	default:
		return "", fmt.Errorf("unsupported transcript format: %s (supported: srt, vtt, json, yaml)", name)
	}
}

// Document is a session transcript ready to be stored
type Document struct {
	SessionID    string                    `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Language     string                    `json:"language,omitempty" yaml:"language,omitempty"`
	Segments     []model.TranscriptSegment `json:"segments" yaml:"segments"`
	Translations model.TranslationLookup   `json:"translations,omitempty" yaml:"translations,omitempty"`
}

// Parse reads a transcript in the given format. language applies to
// segments that do not carry one; when empty it is guessed from the
// segment's script.
func Parse(r io.Reader, format Format, language string) (*Document, error) {
	var (
		doc *Document
		err error
	)

	switch format {
	case FormatSRT:
		doc, err = parseSRT(r)
	case FormatVTT:
		doc, err = parseVTT(r)
	case FormatJSON:
		doc, err = parseJSON(r)
	case FormatYAML:
		doc, err = parseYAML(r)
	default:
		return nil, fmt.Errorf("unsupported transcript format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}

	if language == "" {
		language = doc.Language
	}
	doc.normalize(language)
	return doc, nil
}

// normalize assigns missing IDs and languages and drops blank segments
func (d *Document) normalize(language string) {
	language = strings.ToLower(strings.TrimSpace(language))

	// Generated IDs must not collide with explicit ones anywhere in the file
	taken := make(map[string]bool, len(d.Segments))
	for _, seg := range d.Segments {
		if seg.ID != "" {
			taken[seg.ID] = true
		}
	}

	segments := d.Segments[:0]
	for _, seg := range d.Segments {
		seg.Text = strings.TrimSpace(seg.Text)
		if seg.Text == "" {
			continue
		}
		if seg.ID == "" {
			n := len(segments) + 1
			for taken[segmentID(n)] {
				n++
			}
			seg.ID = segmentID(n)
			taken[seg.ID] = true
		}
		seg.Language = strings.ToLower(strings.TrimSpace(seg.Language))
		if seg.Language == "" {
			seg.Language = language
		}
		if seg.Language == "" {
			seg.Language = guessLanguage(seg.Text)
		}
		segments = append(segments, seg)
	}
	d.Segments = segments
}

func segmentID(i int) string {
	return fmt.Sprintf("seg-%04d", i)
}

// guessLanguage picks a language from the dominant script: Devanagari is
// read as Hindi, Arabic script as Urdu, anything else as the base language
func guessLanguage(text string) string {
	var devanagari, arabic, latin int
	for _, r := range text {
		switch {
		case unicode.In(r, unicode.Devanagari):
			devanagari++
		case unicode.In(r, unicode.Arabic):
			arabic++
		case unicode.In(r, unicode.Latin):
			latin++
		}
	}

	switch {
	case devanagari > arabic && devanagari > latin:
		return "hindi"
	case arabic > devanagari && arabic > latin:
		return "urdu"
	default:
		return model.BaseLanguage
	}
}

// SegmentWriter stores imported transcripts
type SegmentWriter interface {
	SaveSegments(ctx context.Context, sessionID string, segments []model.TranscriptSegment) error
	SaveTranslations(ctx context.Context, sessionID string, translations model.TranslationLookup) error
}

// Options controls one import
type Options struct {
	Format   string // forced format; empty = detect from extension
	Language string // default segment language; empty = guess per segment
}

// Result summarizes one import
type Result struct {
	SessionID    string
	Format       Format
	Segments     int
	Translations int
	Dropped      int // translations for segments not in the document
}

// Ingester imports transcript files into a store
type Ingester struct {
	writer SegmentWriter
	logger *logrus.Entry
}

// NewIngester creates an ingester writing to w
func NewIngester(w SegmentWriter, logger *logrus.Logger) *Ingester {
	return &Ingester{
		writer: w,
		logger: logger.WithField("component", "ingest"),
	}
}

// IngestFile parses path and stores it under sessionID. An empty sessionID
// falls back to the document's own session_id.
func (i *Ingester) IngestFile(ctx context.Context, sessionID, path string, opts Options) (*Result, error) {
	format, err := DetectFormat(path, opts.Format)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := Parse(f, format, opts.Language)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return i.Ingest(ctx, sessionID, format, doc)
}

// Ingest stores a parsed document
func (i *Ingester) Ingest(ctx context.Context, sessionID string, format Format, doc *Document) (*Result, error) {
	switch {
	case sessionID == "":
		sessionID = doc.SessionID
	case doc.SessionID != "" && doc.SessionID != sessionID:
		i.logger.WithFields(logrus.Fields{
			"session_id":  sessionID,
			"document_id": doc.SessionID,
		}).Warn("Document session ID overridden")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}
	if len(doc.Segments) == 0 {
		return nil, fmt.Errorf("transcript has no segments")
	}

	known := make(map[string]bool, len(doc.Segments))
	for _, seg := range doc.Segments {
		known[seg.ID] = true
	}

	result := &Result{
		SessionID: sessionID,
		Format:    format,
		Segments:  len(doc.Segments),
	}

	translations := make(model.TranslationLookup, len(doc.Translations))
	for id, text := range doc.Translations {
		text = strings.TrimSpace(text)
		if !known[id] || text == "" {
			result.Dropped++
			continue
		}
		translations[id] = text
	}
	result.Translations = len(translations)

	if err := i.writer.SaveSegments(ctx, sessionID, doc.Segments); err != nil {
		return nil, fmt.Errorf("save segments: %w", err)
	}
	if len(translations) > 0 {
		if err := i.writer.SaveTranslations(ctx, sessionID, translations); err != nil {
			return nil, fmt.Errorf("save translations: %w", err)
		}
	}

	entry := i.logger.WithFields(logrus.Fields{
		"session_id":   sessionID,
		"format":       format,
		"segments":     result.Segments,
		"translations": result.Translations,
	})
	if result.Dropped > 0 {
		entry.WithField("dropped", result.Dropped).Warn("Translations without a matching segment dropped")
	}
	entry.Info("Transcript ingested")

	return result, nil
}
