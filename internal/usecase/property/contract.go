package property

import (
	"context"

	"github.com/vrexx/vrexx/internal/domain"
	domprop "github.com/vrexx/vrexx/internal/domain/property"
)

// Repository persists properties with their description embedding.
type Repository interface {
	Insert(ctx context.Context, p *domprop.Property) error
	List(ctx context.Context, limit int) ([]domprop.Property, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
