// Package store is the persistence collaborator of the analysis pipeline.
// It supplies transcript segments and translations and keeps the most
// recent analysis record of each session.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/vigil/internal/cache"
	"github.com/ppiankov/vigil/internal/model"
	"github.com/sirupsen/logrus"
)

// TranscriptSource supplies the pipeline's inputs
type TranscriptSource interface {
	// TranscriptSegments returns a session's segments ordered by start time.
	// An unknown session yields an empty slice, not an error.
	TranscriptSegments(ctx context.Context, sessionID string) ([]model.TranscriptSegment, error)

	// Translations returns segment ID -> base-language text; may be empty
	Translations(ctx context.Context, sessionID string) (model.TranslationLookup, error)
}

// AnalysisSink receives finished analysis records. Saving a record
// supersedes any earlier record of the same session.
type AnalysisSink interface {
	SaveAnalysis(ctx context.Context, record *model.ThreatAnalysisRecord) error
}

// Store is the full persistence surface used by the CLI
type Store interface {
	TranscriptSource
	AnalysisSink

	// SaveSegments upserts segments by ID within the session
	SaveSegments(ctx context.Context, sessionID string, segments []model.TranscriptSegment) error

	// SaveTranslations upserts translations by segment ID within the session
	SaveTranslations(ctx context.Context, sessionID string, translations model.TranslationLookup) error

	// LatestAnalysis returns the most recent record or model.ErrNotFound
	LatestAnalysis(ctx context.Context, sessionID string) (*model.ThreatAnalysisRecord, error)

	// Sessions lists sessions that have transcript segments, sorted
	Sessions(ctx context.Context) ([]string, error)

	// ClearTranscript removes a session's segments and translations
	ClearTranscript(ctx context.Context, sessionID string) error

	// Namespace identifies this store's data in caches shared with other stores
	Namespace() string

	Close() error
}

// Open creates the configured store, wrapped in a record cache when enabled
func Open(cfg model.StoreConfig, cacheCfg model.CacheConfig, logger *logrus.Logger) (Store, error) {
	var (
		s   Store
		err error
	)

	switch strings.ToLower(cfg.Driver) {
	case "sqlite", "":
		s, err = OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
	case "memory":
		// Records already live in memory and vanish with the process, so a
		// disk cache would only outlive them
		cacheCfg.Enabled = false
		s = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store driver: %s (supported: sqlite, memory)", cfg.Driver)
	}

	logger.WithFields(logrus.Fields{
		"component": "store",
		"driver":    cfg.Driver,
		"path":      cfg.Path,
		"cache":     cacheCfg.Enabled,
		"namespace": s.Namespace(),
	}).Debug("Store opened")

	if !cacheCfg.Enabled {
		return s, nil
	}

	c := cache.NewLayeredCache(cacheCfg.TTL, cacheCfg.Dir, cacheCfg.TTL)
	return NewCachedStore(s, c, cacheCfg.TTL, logger), nil
}
