package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Cache provides query result caching
type Cache interface {
	// GetQueryResult retrieves a cached query result by key.
	// Returns nil if not found.
	GetQueryResult(ctx context.Context, key string) (*QueryResult, error)

	// SetQueryResult stores a query result with TTL
	SetQueryResult(ctx context.Context, key string, result *QueryResult, ttl time.Duration) error

	// Invalidate removes all cached query results. Called after new
	// documents land so stale answers do not survive ingestion.
	Invalidate(ctx context.Context) error

	// Close closes the cache connection
	Close() error
}

// QueryResult represents a cached query response
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Source represents a retrieved chunk in query results
type Source struct {
	DocID    string  `json:"doc_id"`
	Section  string  `json:"section"`
	Filename string  `json:"filename"`
	Score    float32 `json:"score"`
	Preview  string  `json:"preview"` // Truncated text preview
}

// GenerateCacheKey derives a stable key from the question and retrieval depth.
func GenerateCacheKey(question string, topK int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%d", question, topK))
	return hex.EncodeToString(sum[:])
}
