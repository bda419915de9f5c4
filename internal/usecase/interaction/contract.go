package interaction

import (
	"context"

	dominter "github.com/vrexx/vrexx/internal/domain/interaction"
)

// Repository reads the interaction log.
type Repository interface {
	List(ctx context.Context, limit int) ([]dominter.Record, error)
}
