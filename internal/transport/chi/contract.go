package chi

import (
	"context"

	domprop "github.com/vrexx/vrexx/internal/domain/property"
	dominter "github.com/vrexx/vrexx/internal/domain/interaction"
	agentuc "github.com/vrexx/vrexx/internal/usecase/agent"
	healthuc "github.com/vrexx/vrexx/internal/usecase/health"
	propertyuc "github.com/vrexx/vrexx/internal/usecase/property"
)

// Agent answers free-text questions.
type Agent interface {
	Ask(ctx context.Context, question string) (agentuc.Answer, error)
}

// Catalog adds and lists properties.
type Catalog interface {
	Add(ctx context.Context, d propertyuc.Draft) (domprop.Property, error)
	List(ctx context.Context, limit int) ([]domprop.Property, error)
}

// InteractionLog lists logged interactions.
type InteractionLog interface {
	List(ctx context.Context, limit int) ([]dominter.Record, error)
}

// HealthChecker reports dependency health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
