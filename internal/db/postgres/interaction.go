package postgres

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/vrexx/vrexx/internal/domain/interaction"
)

// InteractionStore is the append-only conversation log.
type InteractionStore struct {
	d *DB
}

// Append inserts one record.
func (s *InteractionStore) Append(ctx context.Context, rec interaction.Record) error {
	stmt := `INSERT INTO interactions (question, answer, created_at) VALUES (` + placeholders(3) + `)`
	if _, err := s.d.db.ExecContext(ctx, stmt, rec.Question, rec.Answer, rec.Timestamp); err != nil {
		return errors.Wrap(err, "failed to append interaction")
	}
	return nil
}

// List returns up to limit records, newest first.
func (s *InteractionStore) List(ctx context.Context, limit int) ([]interaction.Record, error) {
	query := `
		SELECT question, answer, created_at
		FROM interactions
		ORDER BY created_at DESC, id DESC
		LIMIT ` + placeholder(1)

	rows, err := s.d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list interactions")
	}
	defer rows.Close()

	list := []interaction.Record{}
	for rows.Next() {
		var (
			rec interaction.Record
			at  time.Time
		)
		if err := rows.Scan(&rec.Question, &rec.Answer, &at); err != nil {
			return nil, errors.Wrap(err, "failed to scan interaction")
		}
		rec.Timestamp = at.UTC()
		list = append(list, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
