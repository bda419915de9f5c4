// Package property stores properties as Valkey/Redis hashes under an FT vector index.
package property

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vrexx/vrexx/internal/db"
	domprop "github.com/vrexx/vrexx/internal/domain/property"
	"github.com/vrexx/vrexx/internal/domain/search/filter"
)

// store is the consumer interface for properties (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRevRange(ctx context.Context, key string, limit int) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// HNSWConfig holds HNSW index tuning parameters.
type HNSWConfig struct {
	M           int // max edges per node (default 16)
	EFConstruct int // construction beam width (default 200)
}

// Repo implements the property index on top of FT.SEARCH.
type Repo struct {
	store      store
	prefix     string
	dimensions int
	hnsw       HNSWConfig
}

// New creates a property repository. prefix namespaces every key (e.g. "vrexx:").
func New(s store, prefix string, dimensions int, hnsw HNSWConfig) *Repo {
	if hnsw.M <= 0 {
		hnsw.M = 16
	}
	if hnsw.EFConstruct <= 0 {
		hnsw.EFConstruct = 200
	}
	return &Repo{store: s, prefix: prefix, dimensions: dimensions, hnsw: hnsw}
}

// EnsureIndex creates the FT index unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(r.indexName()).
		Prefix(r.keyPrefix()).
		Numeric(fieldPrice).
		Numeric(fieldCreatedAt).
		VectorHNSW(fieldVector, "vector", r.dimensions, db.DistanceCosine, r.hnsw.M, r.hnsw.EFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Insert stores a property hash and records it in the creation timeline.
// ID and CreatedAt must already be assigned.
func (r *Repo) Insert(ctx context.Context, p *domprop.Property) error {
	if len(p.Embedding()) != r.dimensions {
		return fmt.Errorf("embedding has %d dimensions, index expects %d", len(p.Embedding()), r.dimensions)
	}
	key := r.key(p.ID())
	if err := r.store.HSet(ctx, key, buildHashFields(p)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	if err := r.store.ZAdd(ctx, r.timelineKey(), float64(p.CreatedAt()), p.ID()); err != nil {
		return fmt.Errorf("zadd %s: %w", r.timelineKey(), err)
	}
	return nil
}

// Nearest returns the property closest to vec, restricted to price <= *priceCeiling
// when a ceiling is given. Nil when nothing matches.
func (r *Repo) Nearest(ctx context.Context, vec []float32, priceCeiling *float64) (*domprop.Property, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName(),
		Vector:       vec,
		K:            1,
		ReturnFields: returnFields,
	}
	if priceCeiling != nil {
		q.Filters = filter.PriceAtMost(*priceCeiling)
	}

	res, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}
	if len(res.Entries) == 0 {
		return nil, nil
	}

	e := res.Entries[0]
	p := parseHashFields(r.idFromKey(e.Key), e.Fields)
	return &p, nil
}

// List returns up to limit properties, newest first, without embeddings.
// The timeline sorted set orders by created_at; equal timestamps fall back to
// descending ID, which is how ZRANGE REV breaks score ties.
func (r *Repo) List(ctx context.Context, limit int) ([]domprop.Property, error) {
	ids, err := r.store.ZRevRange(ctx, r.timelineKey(), limit)
	if err != nil {
		return nil, fmt.Errorf("read timeline: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load properties: %w", err)
	}

	list := make([]domprop.Property, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue // hash removed out of band
		}
		delete(m, fieldVector)
		list = append(list, parseHashFields(ids[i], m))
	}
	return list, nil
}

func (r *Repo) keyPrefix() string {
	return r.prefix + "property:"
}

func (r *Repo) key(id string) string {
	return r.keyPrefix() + id
}

func (r *Repo) idFromKey(key string) string {
	return strings.TrimPrefix(key, r.keyPrefix())
}

func (r *Repo) timelineKey() string {
	return r.prefix + "properties:by_created"
}

func (r *Repo) indexName() string {
	return r.prefix + "idx:properties"
}
