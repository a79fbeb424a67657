package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/vigil/internal/model"
)

// Renderer writes analysis records as JSON, Markdown or a terminal summary
type Renderer struct{}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// WriteJSON encodes the record as indented JSON
func (r *Renderer) WriteJSON(w io.Writer, record *model.ThreatAnalysisRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(record)
}

// RenderJSON writes the record to a JSON file, creating parent directories
func (r *Renderer) RenderJSON(record *model.ThreatAnalysisRecord, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return r.WriteJSON(w, record)
	})
}

// RenderMarkdown writes the record to a Markdown file
func (r *Renderer) RenderMarkdown(record *model.ThreatAnalysisRecord, path string) error {
	return writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, r.Markdown(record))
		return err
	})
}

// Markdown formats the record as a Markdown report
func (r *Renderer) Markdown(record *model.ThreatAnalysisRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Threat analysis: %s\n\n", record.SessionID)
	fmt.Fprintf(&b, "**Severity:** %s (%s)  \n", record.Severity.Label(), record.Severity)
	fmt.Fprintf(&b, "**Score:** %d  \n", record.Score)
	fmt.Fprintf(&b, "**Segments:** %d analyzed, %d with matches  \n", record.SegmentsAnalyzed, record.ChunksInvolved)
	if !record.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "**Analyzed at:** %s  \n", record.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(&b, "\n%s\n", record.Summary)

	if len(record.Details) > 0 {
		b.WriteString("\n## Details\n\n")
		for _, d := range record.Details {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}

	if len(record.TriggeredKeywords) > 0 {
		b.WriteString("\n## Triggered keywords\n\n")
		b.WriteString("| Keyword | Category | Language | Count |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, k := range record.TriggeredKeywords {
			fmt.Fprintf(&b, "| %s | %s | %s | %d |\n", k.Word, k.Category.Label(), k.Language, k.Count)
		}
	}

	if len(record.Examples) > 0 {
		b.WriteString("\n## Examples\n\n")
		for _, ex := range record.Examples {
			fmt.Fprintf(&b, "> %s\n\n", ex)
		}
	}

	b.WriteString("\n## Score breakdown\n\n")
	for _, c := range model.Categories {
		if pts := record.Breakdown.Categories[c]; pts > 0 {
			fmt.Fprintf(&b, "- %s: +%d\n", c.Label(), pts)
		}
	}
	if record.Breakdown.Bonus > 0 {
		fmt.Fprintf(&b, "- Bonus: +%d\n", record.Breakdown.Bonus)
	}
	fmt.Fprintf(&b, "- **Total: %d**\n", record.Breakdown.Total())

	return b.String()
}

// RenderSummary prints a short terminal summary
func (r *Renderer) RenderSummary(w io.Writer, record *model.ThreatAnalysisRecord) {
	icon := "✓"
	switch record.Severity {
	case model.SeveritySuspicious:
		icon = "!"
	case model.SeverityHighRisk:
		icon = "✗"
	}

	fmt.Fprintf(w, "\n%s %s: %s (score %d)\n", icon, record.SessionID, record.Severity.Label(), record.Score)
	fmt.Fprintf(w, "  %s\n", record.Summary)

	if len(record.TriggeredKeywords) > 0 {
		words := make([]string, 0, len(record.TriggeredKeywords))
		for _, k := range record.TriggeredKeywords {
			words = append(words, fmt.Sprintf("%s×%d", k.Word, k.Count))
		}
		fmt.Fprintf(w, "  Keywords: %s\n", strings.Join(words, ", "))
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
