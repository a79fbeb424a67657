package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ppiankov/vigil/internal/cache"
	"github.com/ppiankov/vigil/internal/model"
	"github.com/sirupsen/logrus"
)

// CachedStore fronts a Store with a record cache for LatestAnalysis
type CachedStore struct {
	Store
	cache  cache.Cache
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCachedStore wraps s so analysis reads are served from c
func NewCachedStore(s Store, c cache.Cache, ttl time.Duration, logger *logrus.Logger) *CachedStore {
	return &CachedStore{Store: s, cache: c, ttl: ttl, logger: logger}
}

// SaveAnalysis persists the record and refreshes the cached copy
func (s *CachedStore) SaveAnalysis(ctx context.Context, record *model.ThreatAnalysisRecord) error {
	if err := s.Store.SaveAnalysis(ctx, record); err != nil {
		return err
	}

	key := cache.AnalysisKey(s.Namespace(), record.SessionID)
	data, err := json.Marshal(record)
	if err != nil {
		_ = s.cache.Delete(key)
		return nil
	}
	if err := s.cache.Set(key, data, s.ttl); err != nil {
		s.logger.WithError(err).WithField("session", record.SessionID).Warn("Failed to cache analysis")
		_ = s.cache.Delete(key)
	}
	return nil
}

// LatestAnalysis returns the cached record when present
func (s *CachedStore) LatestAnalysis(ctx context.Context, sessionID string) (*model.ThreatAnalysisRecord, error) {
	key := cache.AnalysisKey(s.Namespace(), sessionID)
	if data, found := s.cache.Get(key); found {
		var record model.ThreatAnalysisRecord
		if err := json.Unmarshal(data, &record); err == nil {
			s.logger.WithField("session", sessionID).Debug("Analysis cache hit")
			return &record, nil
		}
		_ = s.cache.Delete(key)
	}

	record, err := s.Store.LatestAnalysis(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(record); err == nil {
		_ = s.cache.Set(key, data, s.ttl)
	}
	return record, nil
}
