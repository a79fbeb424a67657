package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ppiankov/vigil/internal/model"
)

// MemoryStore keeps everything in process memory
type MemoryStore struct {
	id           string
	mu           sync.RWMutex
	segments     map[string][]model.TranscriptSegment
	translations map[string]model.TranslationLookup
	analyses     map[string]model.ThreatAnalysisRecord
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		id:           uuid.NewString(),
		segments:     make(map[string][]model.TranscriptSegment),
		translations: make(map[string]model.TranslationLookup),
		analyses:     make(map[string]model.ThreatAnalysisRecord),
	}
}

// TranscriptSegments returns a copy of the session's segments
func (s *MemoryStore) TranscriptSegments(ctx context.Context, sessionID string) ([]model.TranscriptSegment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.TranscriptSegment, len(s.segments[sessionID]))
	copy(out, s.segments[sessionID])
	return out, nil
}

// Translations returns a copy of the session's translations
func (s *MemoryStore) Translations(ctx context.Context, sessionID string) (model.TranslationLookup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(model.TranslationLookup, len(s.translations[sessionID]))
	for k, v := range s.translations[sessionID] {
		out[k] = v
	}
	return out, nil
}

// SaveSegments upserts segments and keeps them ordered by start time
func (s *MemoryStore) SaveSegments(ctx context.Context, sessionID string, segments []model.TranscriptSegment) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	for _, seg := range segments {
		if seg.ID == "" {
			return fmt.Errorf("segment ID is required")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.segments[sessionID]
	position := make(map[string]int, len(existing))
	for i, seg := range existing {
		position[seg.ID] = i
	}

	for _, seg := range segments {
		if i, ok := position[seg.ID]; ok {
			existing[i] = seg
			continue
		}
		position[seg.ID] = len(existing)
		existing = append(existing, seg)
	}

	sort.SliceStable(existing, func(i, j int) bool {
		return existing[i].StartTime < existing[j].StartTime
	})
	s.segments[sessionID] = existing

	return nil
}

// SaveTranslations upserts translations
func (s *MemoryStore) SaveTranslations(ctx context.Context, sessionID string, translations model.TranslationLookup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lookup := s.translations[sessionID]
	if lookup == nil {
		lookup = make(model.TranslationLookup, len(translations))
		s.translations[sessionID] = lookup
	}
	for k, v := range translations {
		lookup[k] = v
	}
	return nil
}

// SaveAnalysis replaces the session's latest record
func (s *MemoryStore) SaveAnalysis(ctx context.Context, record *model.ThreatAnalysisRecord) error {
	if record == nil || record.SessionID == "" {
		return fmt.Errorf("analysis record must carry a session ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.analyses[record.SessionID] = *record
	return nil
}

// LatestAnalysis returns the session's latest record
func (s *MemoryStore) LatestAnalysis(ctx context.Context, sessionID string) (*model.ThreatAnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.analyses[sessionID]
	if !ok {
		return nil, fmt.Errorf("analysis for session %s: %w", sessionID, model.ErrNotFound)
	}
	return &record, nil
}

// Sessions lists sessions with segments
func (s *MemoryStore) Sessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.segments))
	for id, segs := range s.segments {
		if len(segs) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ClearTranscript removes the session's segments and translations
func (s *MemoryStore) ClearTranscript(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.segments, sessionID)
	delete(s.translations, sessionID)
	return nil
}

// Namespace is unique per store instance
func (s *MemoryStore) Namespace() string {
	return "memory:" + s.id
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
