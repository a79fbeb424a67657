package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/vigil/internal/analyze"
	"github.com/ppiankov/vigil/internal/explain"
	"github.com/ppiankov/vigil/internal/extract"
	"github.com/ppiankov/vigil/internal/metrics"
	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/score"
	"github.com/ppiankov/vigil/internal/store"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Pipeline orchestrates the analysis of one session: fetch, match,
// aggregate, score, explain, persist
type Pipeline struct {
	source    store.TranscriptSource
	sink      store.AnalysisSink
	analyzer  *analyze.ChunkAnalyzer
	scorer    *score.Scorer
	explainer *explain.Generator

	logger  *logrus.Entry
	metrics *metrics.Recorder
	now     func() time.Time
	newID   func() string
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger (default: the logrus standard logger)
func WithLogger(logger *logrus.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger.WithField("component", "pipeline")
	}
}

// WithMetrics records every analysis on r
func WithMetrics(r *metrics.Recorder) Option {
	return func(p *Pipeline) {
		p.metrics = r
	}
}

// WithClock overrides the record timestamp source
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithIDGenerator overrides record ID generation
func WithIDGenerator(newID func() string) Option {
	return func(p *Pipeline) {
		p.newID = newID
	}
}

// New creates a pipeline that reads from source and writes to sink
func New(matcher *extract.Matcher, source store.TranscriptSource, sink store.AnalysisSink, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:    source,
		sink:      sink,
		analyzer:  analyze.NewChunkAnalyzer(matcher),
		scorer:    score.NewScorer(),
		explainer: explain.NewGenerator(),
		logger:    logrus.StandardLogger().WithField("component", "pipeline"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AnalyzeSession runs the full analysis of a session and persists the
// resulting record. A session without transcript segments yields
// model.ErrNotFound and nothing is persisted.
func (p *Pipeline) AnalyzeSession(ctx context.Context, sessionID string) (*model.ThreatAnalysisRecord, error) {
	start := time.Now()
	log := p.logger.WithField("session", sessionID)

	// 1. Fetch segments and translations concurrently
	var (
		segments       []model.TranscriptSegment
		translations   model.TranslationLookup
		translationErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		segments, err = p.source.TranscriptSegments(gctx, sessionID)
		if err != nil {
			return fmt.Errorf("fetch transcript: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// Translations are optional; a failure only disables translation matching
		translations, translationErr = p.source.Translations(gctx, sessionID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(segments) == 0 {
		p.metrics.RecordNotFound()
		return nil, fmt.Errorf("session %s: %w", sessionID, model.ErrNotFound)
	}

	if translationErr != nil {
		log.WithError(translationErr).Warn("Translations unavailable, analyzing source text only")
		translations = nil
	} else if len(translations) == 0 {
		log.Debug("No translations stored for session")
	}

	// 2. Match each segment
	chunks := p.analyzer.AnalyzeAll(segments, translations)

	// 3. Fold into the session aggregate
	agg := analyze.Aggregate(chunks)

	// 4. Score
	threat := p.scorer.Calculate(agg)

	// 5. Explain (reads the score, never changes it)
	exp := p.explainer.Explain(threat.Severity, threat.Score, agg.AllMatches, threat.Breakdown, agg.ChunksInvolved)

	// 6. Assemble and persist
	record := &model.ThreatAnalysisRecord{
		ID:                p.newID(),
		SessionID:         sessionID,
		Score:             threat.Score,
		Severity:          threat.Severity,
		TriggeredKeywords: exp.TriggeredKeywords,
		Breakdown:         threat.Breakdown,
		Explanation:       exp.Text(),
		Summary:           exp.Summary,
		Details:           exp.Details,
		Examples:          exp.Examples,
		ChunksInvolved:    agg.ChunksInvolved,
		SegmentsAnalyzed:  len(segments),
		Signals:           threat.Signals,
		CreatedAt:         p.now(),
	}

	if err := p.sink.SaveAnalysis(ctx, record); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}

	duration := time.Since(start)
	p.metrics.RecordAnalysis(string(record.Severity), record.Score, duration)

	log.WithFields(logrus.Fields{
		"score":    record.Score,
		"severity": record.Severity,
		"matches":  agg.TotalMatches,
		"segments": len(segments),
		"duration": duration,
	}).Info("Session analyzed")

	return record, nil
}
