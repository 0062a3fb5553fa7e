package adapters

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/strutweb/strut/pkg/strut"
)

type greetRequest struct {
	Name string `json:"name" validate:"required"`
}

type greetController struct {
	hits int
}

func (g *greetController) Show(id string) *strut.Response {
	g.hits++
	return strut.OK(map[string]string{"id": id})
}

func (g *greetController) Create(body greetRequest) *strut.Response {
	return strut.Created(map[string]string{"greeting": "hello " + body.Name})
}

func (g *greetController) Forbidden() error {
	return strut.ErrForbidden("members only")
}

func traceHeader(next strut.HandlerFunc) strut.HandlerFunc {
	return func(c strut.Context) error {
		c.SetHeader("X-Trace", "1")
		return next(c)
	}
}

func declareGreetings(reg *strut.Registry) {
	strut.DeclareIn[greetController](reg, "/greetings").
		Use(traceHeader).
		Get("Show", "/{id}").Param(0, "id").
		Post("Create", "").Body(0).
		Get("Forbidden", "/locked/door")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newGreetApp binds the greetings controller onto the given adapter under the
// /api prefix and returns the singleton instance.
func newGreetApp(t *testing.T, router strut.Router) *greetController {
	t.Helper()
	reg := strut.NewRegistry()
	declareGreetings(reg)

	ctrl := &greetController{}
	strut.New(strut.Config{
		Router:            router,
		Controllers:       []any{ctrl},
		Registry:          reg,
		GlobalRoutePrefix: "/api",
		Logger:            discardLogger(),
	})
	return ctrl
}

func jsonBody(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return body
}

func TestEchoAdapter_RouteParam(t *testing.T) {
	adapter := NewDefaultEchoAdapter()
	newGreetApp(t, adapter)

	rec := httptest.NewRecorder()
	adapter.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/greetings/42", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := jsonBody(t, rec.Body); body["id"] != "42" {
		t.Errorf("expected id \"42\", got %v", body["id"])
	}
	if rec.Header().Get("X-Trace") != "1" {
		t.Error("controller middleware did not run")
	}
}

func TestEchoAdapter_BodyBinding(t *testing.T) {
	adapter := NewDefaultEchoAdapter()
	newGreetApp(t, adapter)

	req := httptest.NewRequest(http.MethodPost, "/api/greetings", strings.NewReader(`{"name":"alice"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	adapter.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := jsonBody(t, rec.Body); body["greeting"] != "hello alice" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestEchoAdapter_BodyValidationFailure(t *testing.T) {
	adapter := NewDefaultEchoAdapter()
	newGreetApp(t, adapter)

	req := httptest.NewRequest(http.MethodPost, "/api/greetings", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	adapter.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if _, ok := jsonBody(t, rec.Body)["error"]; !ok {
		t.Error("expected validation detail under \"error\"")
	}
}

func TestEchoAdapter_HttpError(t *testing.T) {
	adapter := NewDefaultEchoAdapter()
	newGreetApp(t, adapter)

	rec := httptest.NewRecorder()
	adapter.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/greetings/locked/door", nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	body := jsonBody(t, rec.Body)
	if body["status_code"] != float64(http.StatusForbidden) || body["message"] != "members only" {
		t.Errorf("unexpected error body: %v", body)
	}
}

func TestEchoAdapter_NotFound(t *testing.T) {
	adapter := NewDefaultEchoAdapter()
	newGreetApp(t, adapter)

	rec := httptest.NewRecorder()
	adapter.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nothing/here", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body := jsonBody(t, rec.Body); body["message"] != "Not Found" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestEchoAdapter_SingletonController(t *testing.T) {
	adapter := NewDefaultEchoAdapter()
	ctrl := newGreetApp(t, adapter)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		adapter.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/greetings/1", nil))
	}

	if ctrl.hits != 2 {
		t.Errorf("expected both requests to hit the same instance, hits = %d", ctrl.hits)
	}
}

func TestPatternToEcho(t *testing.T) {
	cases := map[strut.Pattern]string{
		"/users":            "/users",
		"/users/{id}":       "/users/:id",
		"/users/{id:int}":   "/users/:id",
		"/static/{*}":       "/static/*",
		"/static/{path:*}":  "/static/*",
		"/a/{b}/c/{d:uuid}": "/a/:b/c/:d",
	}
	for in, want := range cases {
		if got := patternToEcho(in); got != want {
			t.Errorf("patternToEcho(%q) = %q, want %q", in, got, want)
		}
	}
}
