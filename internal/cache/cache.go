package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// AnalysisKey generates the cache key of a session's latest analysis record.
// namespace identifies the store holding the record so stores sharing a
// cache directory never see each other's records.
func AnalysisKey(namespace, sessionID string) string {
	return "vigil:analysis:v2:" + namespace + ":" + sessionID
}

// fileName hashes a key into a filesystem-safe name
func fileName(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}
