package property

import (
	"fmt"
	"math"
)

// NotAvailable is the sentinel stored for missing media references.
const NotAvailable = "N/A"

// MaxDescriptionSize is the maximum description size in bytes.
const MaxDescriptionSize = 16384

// Media holds optional media references of a listing.
type Media struct {
	PhotoURL    string
	Video360URL string
	RenderURL   string
}

func (m Media) withDefaults() Media {
	if m.PhotoURL == "" {
		m.PhotoURL = NotAvailable
	}
	if m.Video360URL == "" {
		m.Video360URL = NotAvailable
	}
	if m.RenderURL == "" {
		m.RenderURL = NotAvailable
	}
	return m
}

// Property is a listed real-estate unit (immutable value object).
// The embedding is derived from the description once, at creation time.
type Property struct {
	id          string
	address     string
	price       float64
	description string
	media       Media
	embedding   []float32
	createdAt   int64 // unix millis
}

// New validates a listing draft. Missing media references default to NotAvailable.
func New(address string, price float64, description string, media Media) (Property, error) {
	if address == "" {
		return Property{}, fmt.Errorf("address is required")
	}
	if description == "" {
		return Property{}, fmt.Errorf("description is required")
	}
	if len(description) > MaxDescriptionSize {
		return Property{}, fmt.Errorf("description too large (max %d bytes)", MaxDescriptionSize)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return Property{}, fmt.Errorf("price must be a non-negative finite number")
	}
	return Property{
		address:     address,
		price:       price,
		description: description,
		media:       media.withDefaults(),
	}, nil
}

// Reconstruct creates a Property without validation (storage hydration).
func Reconstruct(
	id, address string, price float64, description string,
	media Media, embedding []float32, createdAt int64,
) Property {
	return Property{
		id:          id,
		address:     address,
		price:       price,
		description: description,
		media:       media,
		embedding:   embedding,
		createdAt:   createdAt,
	}
}

// WithEmbedding returns a copy carrying the description embedding.
func (p Property) WithEmbedding(vec []float32) Property {
	p.embedding = append([]float32(nil), vec...)
	return p
}

// WithID returns a copy with the storage identifier and creation time set.
func (p Property) WithID(id string, createdAt int64) Property {
	p.id = id
	p.createdAt = createdAt
	return p
}

// ID returns the storage identifier (empty before insert).
func (p *Property) ID() string { return p.id }

// Address returns the street address.
func (p *Property) Address() string { return p.address }

// Price returns the asking price in euro.
func (p *Property) Price() float64 { return p.price }

// Description returns the free-text description the embedding is derived from.
func (p *Property) Description() string { return p.description }

// Media returns the media references.
func (p *Property) Media() Media { return p.media }

// Embedding returns the description embedding.
func (p *Property) Embedding() []float32 { return p.embedding }

// CreatedAt returns the creation time in unix millis.
func (p *Property) CreatedAt() int64 { return p.createdAt }
