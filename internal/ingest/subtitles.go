package ingest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/vigil/internal/model"
	"golang.org/x/net/html"
)

var (
	// inline cue timestamps such as <00:00:05.000> are not valid tags to the
	// HTML tokenizer and would survive as text
	cueTimestampRe = regexp.MustCompile(`<\d{1,2}:[\d:.]+>`)

	// SSA override blocks such as {\an8} that some SRT files carry
	ssaOverrideRe = regexp.MustCompile(`\{\\[^}]*\}`)
)

// parseSRT reads SubRip cues. Cue numbers are ignored; segments are
// numbered in file order.
func parseSRT(r io.Reader) (*Document, error) {
	blocks, err := readBlocks(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	for _, block := range blocks {
		timing := 0
		for timing < len(block) && !strings.Contains(block[timing], "-->") {
			timing++
		}
		if timing == len(block) {
			continue
		}

		start, err := parseCueStart(block[timing])
		if err != nil {
			return nil, err
		}
		doc.Segments = append(doc.Segments, model.TranscriptSegment{
			Text:      cueText(block[timing+1:]),
			StartTime: start,
		})
	}
	return doc, nil
}

// parseVTT reads WebVTT cues. Cue identifiers become segment IDs.
func parseVTT(r io.Reader) (*Document, error) {
	blocks, err := readBlocks(r)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 || !strings.HasPrefix(blocks[0][0], "WEBVTT") {
		return nil, fmt.Errorf("missing WEBVTT header")
	}

	doc := &Document{}
	for _, block := range blocks[1:] {
		switch {
		case strings.HasPrefix(block[0], "NOTE"),
			strings.HasPrefix(block[0], "STYLE"),
			strings.HasPrefix(block[0], "REGION"):
			continue
		}

		id := ""
		timing := 0
		if !strings.Contains(block[0], "-->") {
			id = strings.TrimSpace(block[0])
			timing = 1
		}
		if timing >= len(block) || !strings.Contains(block[timing], "-->") {
			return nil, fmt.Errorf("cue %q has no timing line", block[0])
		}

		start, err := parseCueStart(block[timing])
		if err != nil {
			return nil, err
		}
		doc.Segments = append(doc.Segments, model.TranscriptSegment{
			ID:        id,
			Text:      cueText(block[timing+1:]),
			StartTime: start,
		})
	}
	return doc, nil
}

// readBlocks splits input into groups of non-blank lines
func readBlocks(r io.Reader) ([][]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		blocks  [][]string
		current []string
		first   = true
	)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks, nil
}

// parseCueStart returns the start of a "start --> end [settings]" line
func parseCueStart(line string) (float64, error) {
	start, _, ok := strings.Cut(line, "-->")
	if !ok {
		return 0, fmt.Errorf("invalid cue timing: %q", line)
	}
	return parseTimestamp(strings.TrimSpace(start))
}

// parseTimestamp accepts hh:mm:ss,mmm (SRT) and [hh:]mm:ss.mmm (WebVTT)
func parseTimestamp(ts string) (float64, error) {
	parts := strings.Split(strings.Replace(ts, ",", ".", 1), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp: %q", ts)
	}

	seconds, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil || seconds < 0 || seconds >= 60 {
		return 0, fmt.Errorf("invalid timestamp: %q", ts)
	}

	total := seconds
	multiplier := 60.0
	for i := len(parts) - 2; i >= 0; i-- {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timestamp: %q", ts)
		}
		total += float64(n) * multiplier
		multiplier *= 60
	}
	return total, nil
}

// cueText joins cue lines and strips markup: voice and class spans,
// styling tags, inline timestamps and entities
func cueText(lines []string) string {
	raw := strings.Join(lines, " ")
	raw = cueTimestampRe.ReplaceAllString(raw, "")
	raw = ssaOverrideRe.ReplaceAllString(raw, "")

	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			sb.Write(z.Text())
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
