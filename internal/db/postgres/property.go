package postgres

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/vrexx/vrexx/internal/domain/property"
)

// PropertyStore persists properties with their description embedding.
type PropertyStore struct {
	d *DB
}

// Insert stores a property. ID and CreatedAt must already be assigned.
func (s *PropertyStore) Insert(ctx context.Context, p *property.Property) error {
	if len(p.Embedding()) != s.d.dimensions {
		return errors.Errorf("embedding has %d dimensions, table expects %d", len(p.Embedding()), s.d.dimensions)
	}

	stmt := `
		INSERT INTO properties (id, address, price, description, photo_url, video360_url, render_url, embedding, created_ts)
		VALUES (` + placeholders(9) + `)`

	m := p.Media()
	_, err := s.d.db.ExecContext(ctx, stmt,
		p.ID(),
		p.Address(),
		p.Price(),
		p.Description(),
		m.PhotoURL,
		m.Video360URL,
		m.RenderURL,
		pgvector.NewVector(p.Embedding()),
		p.CreatedAt(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert property")
	}
	return nil
}

// Nearest returns the property closest to vec by cosine distance,
// restricted to price <= *priceCeiling when a ceiling is given. Nil when nothing matches.
func (s *PropertyStore) Nearest(ctx context.Context, vec []float32, priceCeiling *float64) (*property.Property, error) {
	query, args := nearestQuery(pgvector.NewVector(vec), priceCeiling)

	row := s.d.db.QueryRowContext(ctx, query, args...)
	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find nearest property")
	}
	return p, nil
}

// List returns up to limit properties, newest first, without embeddings.
func (s *PropertyStore) List(ctx context.Context, limit int) ([]property.Property, error) {
	query := `
		SELECT id, address, price, description, photo_url, video360_url, render_url, created_ts
		FROM properties
		ORDER BY created_ts DESC, id DESC
		LIMIT ` + placeholder(1)

	rows, err := s.d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list properties")
	}
	defer rows.Close()

	list := []property.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan property")
		}
		list = append(list, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// nearestQuery builds the top-1 similarity query; the price filter is applied
// before ordering so an over-budget row is never returned.
func nearestQuery(vec pgvector.Vector, priceCeiling *float64) (string, []any) {
	query := `
		SELECT id, address, price, description, photo_url, video360_url, render_url, created_ts
		FROM properties`
	args := []any{vec}

	if priceCeiling != nil {
		args = append(args, *priceCeiling)
		query += `
		WHERE price <= ` + placeholder(len(args))
	}

	query += `
		ORDER BY embedding <=> ` + placeholder(1) + `
		LIMIT 1`

	return query, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*property.Property, error) {
	var (
		id, address, description string
		price                    float64
		media                    property.Media
		createdTs                int64
	)
	err := row.Scan(
		&id,
		&address,
		&price,
		&description,
		&media.PhotoURL,
		&media.Video360URL,
		&media.RenderURL,
		&createdTs,
	)
	if err != nil {
		return nil, err
	}
	p := property.Reconstruct(id, address, price, description, media, nil, createdTs)
	return &p, nil
}
