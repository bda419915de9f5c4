// Package interaction keeps the conversation log in a Valkey/Redis sorted set
// scored by timestamp.
package interaction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	dominter "github.com/vrexx/vrexx/internal/domain/interaction"
)

// store is the consumer interface for the interaction log (ISP).
type store interface {
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRevRange(ctx context.Context, key string, limit int) ([]string, error)
}

// member is the JSON encoding of one sorted-set entry. ID keeps identical
// question/answer pairs at the same millisecond from collapsing into one member.
type member struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"ts"`
}

// Repo implements the interaction log.
type Repo struct {
	store store
	key   string
}

// New creates an interaction repository. prefix namespaces the key (e.g. "vrexx:").
func New(s store, prefix string) *Repo {
	return &Repo{store: s, key: prefix + "interactions"}
}

// Append adds one record.
func (r *Repo) Append(ctx context.Context, rec dominter.Record) error {
	data, err := json.Marshal(member{
		ID:        uuid.NewString(),
		Question:  rec.Question,
		Answer:    rec.Answer,
		Timestamp: rec.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("marshal interaction: %w", err)
	}

	score := float64(rec.Timestamp.UnixMilli())
	if err := r.store.ZAdd(ctx, r.key, score, string(data)); err != nil {
		return fmt.Errorf("zadd %s: %w", r.key, err)
	}
	return nil
}

// List returns up to limit records, newest first.
func (r *Repo) List(ctx context.Context, limit int) ([]dominter.Record, error) {
	raw, err := r.store.ZRevRange(ctx, r.key, limit)
	if err != nil {
		return nil, fmt.Errorf("zrange %s: %w", r.key, err)
	}

	out := make([]dominter.Record, 0, len(raw))
	for _, s := range raw {
		var m member
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return nil, fmt.Errorf("unmarshal interaction: %w", err)
		}
		out = append(out, dominter.New(m.Question, m.Answer, m.Timestamp))
	}
	return out, nil
}
