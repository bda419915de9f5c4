package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vrexx/vrexx/internal/domain"
	dominter "github.com/vrexx/vrexx/internal/domain/interaction"
	domprop "github.com/vrexx/vrexx/internal/domain/property"
	"github.com/vrexx/vrexx/internal/domain/routing"
	agentuc "github.com/vrexx/vrexx/internal/usecase/agent"
	healthuc "github.com/vrexx/vrexx/internal/usecase/health"
	propertyuc "github.com/vrexx/vrexx/internal/usecase/property"
)

// --- Fakes ---

type fakeAgent struct {
	answer   agentuc.Answer
	err      error
	question string
}

func (f *fakeAgent) Ask(_ context.Context, q string) (agentuc.Answer, error) {
	f.question = q
	return f.answer, f.err
}

type fakeCatalog struct {
	added     propertyuc.Draft
	addErr    error
	list      []domprop.Property
	listErr   error
	listLimit int
}

func (f *fakeCatalog) Add(_ context.Context, d propertyuc.Draft) (domprop.Property, error) {
	f.added = d
	if f.addErr != nil {
		return domprop.Property{}, f.addErr
	}
	p, err := domprop.New(d.Address, d.Price, d.Description, d.Media)
	if err != nil {
		return domprop.Property{}, err
	}
	return p.WithID("prop-1", 1700000000000), nil
}

func (f *fakeCatalog) List(_ context.Context, limit int) ([]domprop.Property, error) {
	f.listLimit = limit
	return f.list, f.listErr
}

type fakeLogs struct {
	records []dominter.Record
	err     error
	limit   int
}

func (f *fakeLogs) List(_ context.Context, limit int) ([]dominter.Record, error) {
	f.limit = limit
	return f.records, f.err
}

type fakeHealth struct {
	report healthuc.Report
}

func (f *fakeHealth) Check(_ context.Context) healthuc.Report { return f.report }

type testDeps struct {
	agent   *fakeAgent
	catalog *fakeCatalog
	logs    *fakeLogs
	health  *fakeHealth
}

func newTestRouter(keys []string) (http.Handler, *testDeps) {
	d := &testDeps{
		agent:   &fakeAgent{},
		catalog: &fakeCatalog{},
		logs:    &fakeLogs{},
		health: &fakeHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}},
	}
	s := NewServer(d.agent, d.catalog, d.logs, d.health, keys, zap.NewNop())
	return s.Router(), d
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// --- Tests ---

func TestRoot(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want bool
	}{
		{"auth disabled", nil, false},
		{"auth enabled", []string{"k"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestRouter(tt.keys)
			rr := do(t, h, "GET", "/", "")

			if rr.Code != http.StatusOK {
				t.Fatalf("status: got %d", rr.Code)
			}
			resp := decode[RootResponse](t, rr)
			if resp.Status != "online" || resp.AuthRequired != tt.want {
				t.Errorf("got %+v", resp)
			}
		})
	}
}

func TestAsk_BothPaths(t *testing.T) {
	h, d := newTestRouter(nil)
	d.agent.answer = agentuc.Answer{
		Text:     "Found: Via Roma 1 at 250000€. Bright flat",
		Decision: routing.Search(300000, true),
	}

	for _, path := range []string{"/ask", "/chiedi-agente"} {
		rr := do(t, h, "POST", path, `{"text":"flat under 300000"}`)

		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status %d, body %s", path, rr.Code, rr.Body.String())
		}
		resp := decode[AskResponse](t, rr)
		if resp.Answer != d.agent.answer.Text {
			t.Errorf("%s: answer %q", path, resp.Answer)
		}
		if resp.RoutingTrace != "RAG: Hybrid Search (Max 300000€)" {
			t.Errorf("%s: trace %q", path, resp.RoutingTrace)
		}
		if d.agent.question != "flat under 300000" {
			t.Errorf("%s: question %q", path, d.agent.question)
		}
	}
}

func TestAsk_MalformedBody(t *testing.T) {
	h, _ := newTestRouter(nil)
	rr := do(t, h, "POST", "/ask", `{"text":`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != ErrorCodeBadRequest {
		t.Errorf("code: got %s", resp.Code)
	}
}

func TestAsk_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   ErrorCode
	}{
		{"invalid input", fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput),
			http.StatusBadRequest, ErrorCodeValidationFailed},
		{"provider", fmt.Errorf("embed: %w", domain.ErrEmbeddingProviderError),
			http.StatusBadGateway, ErrorCodeEmbeddingProvider},
		{"dimension", fmt.Errorf("embed: %w", domain.ErrVectorDimMismatch),
			http.StatusInternalServerError, ErrorCodeVectorDimMismatch},
		{"unknown", errors.New("connection reset by peer"),
			http.StatusInternalServerError, ErrorCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, d := newTestRouter(nil)
			d.agent.err = tt.err

			rr := do(t, h, "POST", "/ask", `{"text":"x"}`)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			resp := decode[ErrorResponse](t, rr)
			if resp.Code != tt.wantCode {
				t.Errorf("code: got %s, want %s", resp.Code, tt.wantCode)
			}
			if strings.Contains(resp.Message, "connection reset") {
				t.Errorf("internal detail leaked: %q", resp.Message)
			}
		})
	}
}

func TestAddProperty_Created(t *testing.T) {
	h, d := newTestRouter(nil)
	body := `{"address":"Via Roma 1","price":250000,"description":"Bright flat","photo_url":"http://x/p.jpg"}`

	rr := do(t, h, "POST", "/aggiungi-immobile", body)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}
	resp := decode[PropertySavedResponse](t, rr)
	if resp.Status != "property saved" || resp.ID != "prop-1" {
		t.Errorf("got %+v", resp)
	}
	if d.catalog.added.Price != 250000 || d.catalog.added.Media.PhotoURL != "http://x/p.jpg" {
		t.Errorf("draft: %+v", d.catalog.added)
	}
	if d.catalog.added.Media.RenderURL != "" {
		t.Errorf("render url should be left for the domain default, got %q", d.catalog.added.Media.RenderURL)
	}
}

func TestAddProperty_MissingPrice(t *testing.T) {
	h, _ := newTestRouter(nil)
	rr := do(t, h, "POST", "/properties", `{"address":"a","description":"d"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rr.Code)
	}
}

func TestAddProperty_ValidationError(t *testing.T) {
	h, d := newTestRouter(nil)
	d.catalog.addErr = fmt.Errorf("%w: address is required", domain.ErrInvalidInput)

	rr := do(t, h, "POST", "/properties", `{"price":1,"description":"d"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rr.Code)
	}
	resp := decode[ErrorResponse](t, rr)
	if !strings.Contains(resp.Message, "address is required") {
		t.Errorf("message: %q", resp.Message)
	}
}

func TestListProperties(t *testing.T) {
	h, d := newTestRouter(nil)
	p := domprop.Reconstruct("id-1", "Via Roma 1", 250000, "Bright flat",
		domprop.Media{PhotoURL: "N/A", Video360URL: "N/A", RenderURL: "N/A"},
		[]float32{0.1}, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).UnixMilli())
	d.catalog.list = []domprop.Property{p}

	rr := do(t, h, "GET", "/lista-immobili?limit=5", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	resp := decode[PropertyListResponse](t, rr)
	if resp.Total != 1 || len(resp.Items) != 1 {
		t.Fatalf("got %+v", resp)
	}
	item := resp.Items[0]
	if item.ID != "id-1" || item.Price != 250000 || item.PhotoURL != "N/A" {
		t.Errorf("item: %+v", item)
	}
	if !item.CreatedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("created_at: %v", item.CreatedAt)
	}
	if d.catalog.listLimit != 5 {
		t.Errorf("limit: got %d, want 5", d.catalog.listLimit)
	}
}

func TestListProperties_DefaultLimitAndEmpty(t *testing.T) {
	h, d := newTestRouter(nil)

	rr := do(t, h, "GET", "/properties", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if d.catalog.listLimit != 0 {
		t.Errorf("limit: got %d, want 0", d.catalog.listLimit)
	}
	if !strings.Contains(rr.Body.String(), `"items":[]`) {
		t.Errorf("empty list should encode as []: %s", rr.Body.String())
	}
}

func TestListProperties_BadLimit(t *testing.T) {
	h, _ := newTestRouter(nil)
	rr := do(t, h, "GET", "/properties?limit=abc", "")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rr.Code)
	}
}

func TestListLogs(t *testing.T) {
	h, d := newTestRouter(nil)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d.logs.records = []dominter.Record{
		dominter.New("mutuo 100000 10", "[TOOL: FinanceEngine (Input: 100000 / 10)] ...", at),
	}

	rr := do(t, h, "GET", "/visualizza-log?limit=10", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	resp := decode[LogListResponse](t, rr)
	if len(resp.Logs) != 1 || resp.Logs[0].Question != "mutuo 100000 10" {
		t.Fatalf("got %+v", resp)
	}
	if !resp.Logs[0].Timestamp.Equal(at) {
		t.Errorf("timestamp: %v", resp.Logs[0].Timestamp)
	}
	if d.logs.limit != 10 {
		t.Errorf("limit: got %d", d.logs.limit)
	}
}

func TestHealth(t *testing.T) {
	h, d := newTestRouter([]string{"secret"})

	rr := do(t, h, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("healthy status: got %d", rr.Code)
	}

	d.health.report = healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckError},
	}
	rr = do(t, h, "GET", "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("degraded status: got %d", rr.Code)
	}
	resp := decode[HealthResponse](t, rr)
	if resp.Status != "degraded" || resp.Checks["database"] != "error" {
		t.Errorf("got %+v", resp)
	}
}

func TestRouter_AuthEnforced(t *testing.T) {
	h, _ := newTestRouter([]string{"secret"})

	rr := do(t, h, "POST", "/ask", `{"text":"x"}`)
	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rr.Code)
	}
}

func TestRouter_RequestIDHeader(t *testing.T) {
	h, _ := newTestRouter(nil)
	rr := do(t, h, "GET", "/", "")

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestRouter_NotFound(t *testing.T) {
	h, _ := newTestRouter(nil)
	rr := do(t, h, "GET", "/nope", "")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != ErrorCodeNotFound {
		t.Errorf("code: %s", resp.Code)
	}
}

func TestRecoverer_ReturnsJSON(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != ErrorCodeInternal {
		t.Errorf("code: %s", resp.Code)
	}
}
