package agent

import (
	"context"

	"github.com/vrexx/vrexx/internal/domain/interaction"
	"github.com/vrexx/vrexx/internal/usecase/search"
)

// Searcher runs the property retrieval path.
type Searcher interface {
	Search(ctx context.Context, query string) (search.Result, error)
}

// InteractionLog appends answered questions to the conversation log.
type InteractionLog interface {
	Append(ctx context.Context, rec interaction.Record) error
}
