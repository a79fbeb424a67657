package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/vigil/internal/model"
)

// Analyzer analyzes one session
type Analyzer interface {
	AnalyzeSession(ctx context.Context, sessionID string) (*model.ThreatAnalysisRecord, error)
}

// AnalysisJob analyzes a single session
type AnalysisJob struct {
	SessionID string
	Analyzer  Analyzer
}

// Execute executes the analysis job
func (j *AnalysisJob) Execute(ctx context.Context) Result {
	record, err := j.Analyzer.AnalyzeSession(ctx, j.SessionID)
	return &AnalysisResult{
		SessionID: j.SessionID,
		Record:    record,
		Error:     err,
	}
}

// AnalysisResult is the outcome of one session's analysis
type AnalysisResult struct {
	SessionID string
	Record    *model.ThreatAnalysisRecord
	Error     error
}

// GetError returns the error from the analysis
func (r *AnalysisResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many sessions concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessSessions analyzes the sessions and returns one result per session
// in input order
func (b *BatchProcessor) ProcessSessions(ctx context.Context, sessionIDs []string) []*AnalysisResult {
	if len(sessionIDs) == 0 {
		return []*AnalysisResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, id := range sessionIDs {
		pool.Submit(&AnalysisJob{
			SessionID: id,
			Analyzer:  b.analyzer,
		})
	}

	results := pool.Wait()

	// Sessions the pool never reached still get a result so callers can
	// count them as failed
	out := make([]*AnalysisResult, len(sessionIDs))
	for i, id := range sessionIDs {
		if result, ok := results[i].(*AnalysisResult); ok && result != nil {
			out[i] = result
			continue
		}
		err := pool.Err()
		if err == nil {
			err = context.Canceled
		}
		out[i] = &AnalysisResult{
			SessionID: id,
			Error:     fmt.Errorf("session not analyzed: %w", err),
		}
	}
	return out
}

// ProcessFile reads session IDs from a file and analyzes them after any
// extra IDs. Repeated IDs are analyzed once.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string, extra ...string) ([]*AnalysisResult, error) {
	ids, err := ReadSessionIDsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read session IDs: %w", err)
	}

	return b.ProcessSessions(ctx, Dedupe(append(append([]string(nil), extra...), ids...))), nil
}

// ReadSessionIDsFromFile reads session IDs from a file (one per line).
// Blank lines and # comments are skipped; duplicates keep their first position.
func ReadSessionIDsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var ids []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			ids = append(ids, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return ids, nil
}

// Dedupe removes repeated session IDs, keeping first occurrences
func Dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
