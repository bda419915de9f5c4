// Package interaction exposes the conversation log for review.
package interaction

import (
	"context"
	"fmt"

	"github.com/vrexx/vrexx/internal/domain"
	dominter "github.com/vrexx/vrexx/internal/domain/interaction"
)

const (
	// DefaultListLimit applies when the caller passes no limit.
	DefaultListLimit = 100
	// MaxListLimit caps a single listing.
	MaxListLimit = 1000
)

// Service reads logged interactions.
type Service struct {
	repo Repository
}

// New creates an interaction service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns logged interactions, newest first. limit <= 0 selects DefaultListLimit.
func (s *Service) List(ctx context.Context, limit int) ([]dominter.Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		return nil, fmt.Errorf("%w: limit must be at most %d", domain.ErrInvalidInput, MaxListLimit)
	}
	list, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return list, nil
}
