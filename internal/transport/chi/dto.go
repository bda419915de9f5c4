package chi

import (
	"time"

	domprop "github.com/vrexx/vrexx/internal/domain/property"
	dominter "github.com/vrexx/vrexx/internal/domain/interaction"
)

// ErrorCode is a machine-readable error classifier in error responses.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeForbidden         ErrorCode = "forbidden"
	ErrorCodeNotFound          ErrorCode = "not_found"
	ErrorCodeEmbeddingProvider ErrorCode = "embedding_provider_error"
	ErrorCodeVectorDimMismatch ErrorCode = "vector_dim_mismatch"
	ErrorCodeInternal          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RootResponse is returned by GET /.
type RootResponse struct {
	Status       string `json:"status"`
	AuthRequired bool   `json:"auth_required"`
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Text string `json:"text"`
}

// AskResponse is the agent reply.
type AskResponse struct {
	Answer       string `json:"answer"`
	RoutingTrace string `json:"routing_trace"`
}

// PropertyRequest is the body of POST /properties.
type PropertyRequest struct {
	Address     string   `json:"address"`
	Price       *float64 `json:"price"`
	Description string   `json:"description"`
	PhotoURL    string   `json:"photo_url,omitempty"`
	Video360URL string   `json:"video360_url,omitempty"`
	RenderURL   string   `json:"render_url,omitempty"`
}

// PropertySavedResponse acknowledges a stored property.
type PropertySavedResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// Property is a stored listing as returned by the API (embedding omitted).
type Property struct {
	ID          string    `json:"id"`
	Address     string    `json:"address"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photo_url"`
	Video360URL string    `json:"video360_url"`
	RenderURL   string    `json:"render_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// PropertyListResponse is returned by GET /properties.
type PropertyListResponse struct {
	Total int        `json:"total"`
	Items []Property `json:"items"`
}

// LogEntry is one logged interaction.
type LogEntry struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// LogListResponse is returned by GET /logs.
type LogListResponse struct {
	Logs []LogEntry `json:"logs"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ListParams are the query parameters of the listing endpoints.
type ListParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

func propertyToDTO(p *domprop.Property) Property {
	m := p.Media()
	return Property{
		ID:          p.ID(),
		Address:     p.Address(),
		Price:       p.Price(),
		Description: p.Description(),
		PhotoURL:    m.PhotoURL,
		Video360URL: m.Video360URL,
		RenderURL:   m.RenderURL,
		CreatedAt:   time.UnixMilli(p.CreatedAt()).UTC(),
	}
}

func logEntryToDTO(r dominter.Record) LogEntry {
	return LogEntry{Question: r.Question, Answer: r.Answer, Timestamp: r.Timestamp}
}
