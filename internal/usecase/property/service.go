// Package property manages the property catalogue: insert with embedding, and listing.
package property

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vrexx/vrexx/internal/domain"
	domprop "github.com/vrexx/vrexx/internal/domain/property"
	"github.com/vrexx/vrexx/internal/metrics"
)

const (
	// DefaultListLimit applies when the caller passes no limit.
	DefaultListLimit = 50
	// MaxListLimit caps a single listing.
	MaxListLimit = 500
)

// Draft is an unvalidated property submission.
type Draft struct {
	Address     string
	Price       float64
	Description string
	Media       domprop.Media
}

// Service coordinates property validation, embedding and storage.
type Service struct {
	repo  Repository
	embed Embedder
	now   func() time.Time
	newID func() string
}

// New creates a property service.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed, now: time.Now, newID: uuid.NewString}
}

// Add validates the draft, embeds its description once and stores it.
func (s *Service) Add(ctx context.Context, d Draft) (domprop.Property, error) {
	p, err := domprop.New(d.Address, d.Price, d.Description, d.Media)
	if err != nil {
		return domprop.Property{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	emb, err := s.embed.Embed(ctx, p.Description())
	if err != nil {
		return domprop.Property{}, fmt.Errorf("embed description: %w", err)
	}

	p = p.WithEmbedding(emb.Embedding).WithID(s.newID(), s.now().UnixMilli())

	if err := s.repo.Insert(ctx, &p); err != nil {
		return domprop.Property{}, fmt.Errorf("insert property: %w", err)
	}

	metrics.PropertiesAddedTotal.Inc()
	return p, nil
}

// List returns stored properties, newest first. limit <= 0 selects DefaultListLimit.
func (s *Service) List(ctx context.Context, limit int) ([]domprop.Property, error) {
	limit, err := NormalizeLimit(limit)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return list, nil
}

// NormalizeLimit applies the default and rejects limits above MaxListLimit.
func NormalizeLimit(limit int) (int, error) {
	switch {
	case limit <= 0:
		return DefaultListLimit, nil
	case limit > MaxListLimit:
		return 0, fmt.Errorf("%w: limit must be at most %d", domain.ErrInvalidInput, MaxListLimit)
	default:
		return limit, nil
	}
}
