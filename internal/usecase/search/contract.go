package search

import (
	"context"

	"github.com/vrexx/vrexx/internal/domain"
	"github.com/vrexx/vrexx/internal/domain/property"
)

// Index finds the nearest stored property to a query vector.
// A nil property with a nil error means nothing matched.
type Index interface {
	Nearest(ctx context.Context, vector []float32, priceCeiling *float64) (*property.Property, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
