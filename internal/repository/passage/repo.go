// Package passage persists embedded chunks per policy area and retrieves the
// nearest ones by vector similarity.
package passage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/kailas-cloud/policypal/internal/db"
	"github.com/kailas-cloud/policypal/internal/domain"
)

// Hash field names of a stored chunk.
const (
	fieldText       = "text"
	fieldDocumentID = "document_id"
	fieldFilename   = "filename"
	fieldChunkIndex = "chunk_index"
	fieldVector     = "vector"
)

// store is the consumer interface for chunk storage (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo stores chunks as hashes under policypal:<collection>:<doc>:<idx> with
// one FT vector index per policy area.
type Repo struct {
	store     store
	vectorDim int
}

// New creates a passage repository.
func New(s store, vectorDim int) *Repo {
	return &Repo{store: s, vectorDim: vectorDim}
}

// EnsureIndexes creates the per-area vector indexes that do not exist yet.
// Called once at startup.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	for _, area := range domain.Areas {
		name := indexName(area)

		exists, err := r.store.IndexExists(ctx, name)
		if err != nil {
			return fmt.Errorf("check index for %s: %w", area, err)
		}
		if exists {
			continue
		}

		def := &db.IndexDefinition{
			Name:      name,
			Prefix:    keyPrefix(area),
			TagFields: []string{fieldDocumentID},
			VecField:  fieldVector,
			VecDim:    r.vectorDim,
		}
		// Another instance may have created the index between the probe and
		// the create.
		if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index for %s: %w", area, err)
		}
	}
	return nil
}

// AddChunks stores embedded chunks of one document in a single pipelined write.
// vectors must be parallel to chunks.
func (r *Repo) AddChunks(
	ctx context.Context, area domain.PolicyArea,
	docID, filename string, chunks []domain.Chunk, vectors [][]float32,
) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}

	items := make([]db.HashSetItem, len(chunks))
	for i, c := range chunks {
		items[i] = db.HashSetItem{
			Key: chunkKey(area, docID, i),
			Fields: map[string]string{
				fieldText:       c.Text,
				fieldDocumentID: docID,
				fieldFilename:   filename,
				fieldChunkIndex: strconv.Itoa(i),
				fieldVector:     encodeVector(vectors[i]),
			},
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store chunks for %s: %w", docID, err)
	}
	return nil
}

// Search returns the topK nearest passages in the given area, ordered by
// ascending distance as ranked by the store.
func (r *Repo) Search(
	ctx context.Context, area domain.PolicyArea, vector []float32, topK int,
) ([]domain.Passage, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    indexName(area),
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{fieldText, fieldDocumentID, fieldFilename},
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", area, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	passages := make([]domain.Passage, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		passages = append(passages, domain.Passage{
			Text:       e.Fields[fieldText],
			DocumentID: e.Fields[fieldDocumentID],
			Filename:   e.Fields[fieldFilename],
			Area:       area,
			Distance:   e.Distance,
		})
	}
	return passages, nil
}

// ListDocuments aggregates stored chunks into per-document summaries across
// all areas, ordered by area then document ID for stable output.
func (r *Repo) ListDocuments(ctx context.Context) ([]domain.DocumentInfo, error) {
	var docs []domain.DocumentInfo

	for _, area := range domain.Areas {
		keys, err := r.store.Scan(ctx, keyPrefix(area)+"*")
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", area, err)
		}
		if len(keys) == 0 {
			continue
		}

		hashes, err := r.store.HGetAllMulti(ctx, keys)
		if err != nil {
			return nil, fmt.Errorf("load chunks for %s: %w", area, err)
		}

		byID := make(map[string]*domain.DocumentInfo)
		for _, fields := range hashes {
			id := fields[fieldDocumentID]
			if id == "" {
				continue
			}
			info, ok := byID[id]
			if !ok {
				info = &domain.DocumentInfo{ID: id, Filename: fields[fieldFilename], Area: area}
				byID[id] = info
			}
			info.ChunkCount++
		}

		areaDocs := make([]domain.DocumentInfo, 0, len(byID))
		for _, info := range byID {
			areaDocs = append(areaDocs, *info)
		}
		sort.Slice(areaDocs, func(i, j int) bool { return areaDocs[i].ID < areaDocs[j].ID })
		docs = append(docs, areaDocs...)
	}

	return docs, nil
}

// DeleteDocument removes every chunk of the document from all areas and
// returns the number of chunks deleted.
func (r *Repo) DeleteDocument(ctx context.Context, docID string) (int, error) {
	var deleted int
	for _, area := range domain.Areas {
		pattern := fmt.Sprintf("%s%s:*", keyPrefix(area), docID)
		keys, err := r.store.Scan(ctx, pattern)
		if err != nil {
			return deleted, fmt.Errorf("scan %s: %w", area, err)
		}
		if len(keys) == 0 {
			continue
		}
		if err := r.store.Del(ctx, keys...); err != nil {
			return deleted, fmt.Errorf("delete chunks in %s: %w", area, err)
		}
		deleted += len(keys)
	}
	return deleted, nil
}

func keyPrefix(area domain.PolicyArea) string {
	return domain.KeyPrefix + area.Collection() + ":"
}

func indexName(area domain.PolicyArea) string {
	return keyPrefix(area) + "idx"
}

func chunkKey(area domain.PolicyArea, docID string, idx int) string {
	return fmt.Sprintf("%s%s:%d", keyPrefix(area), docID, idx)
}

// encodeVector packs a float32 vector as little-endian bytes, the layout the
// FT vector index expects in hash fields.
func encodeVector(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
