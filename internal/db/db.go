// Package db defines the storage contract the repositories depend on.
// Consumers use the narrow sub-interfaces; Store is the composition-root
// facade.
package db

import (
	"context"
	"time"
)

// Store is the database facade combining all sub-interfaces.
type Store interface {
	Pinger
	HashStore
	KVStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides hash-based operations for chunk records. Writes and
// reads are pipelined; chunks are only ever touched a document at a time.
type HashStore interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// KVStore provides plain key-value operations (embedding cache).
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// IndexDefinition describes a vector index over hash keys with a fixed
// chunk schema: tag fields for filtering plus one HNSW cosine vector field.
type IndexDefinition struct {
	Name      string
	Prefix    string
	TagFields []string
	VecField  string
	VecDim    int
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// KNNQuery describes a K-nearest-neighbor search against an FT index.
// Filter, when non-empty, is a prebuilt tag filter such as
// "@document_id:{abc}" applied before the KNN stage.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	Filter       string
	ReturnFields []string
}

// SearchEntry is one hit: the hash key, its returned fields, and the raw
// vector distance (ascending, lower is closer).
type SearchEntry struct {
	Key      string
	Distance float64
	Fields   map[string]string
}

// SearchResult holds FT.SEARCH output.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// Searcher provides KNN search over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}
