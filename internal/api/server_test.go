package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ljmurray/squircle/internal/engine"
	"github.com/ljmurray/squircle/internal/geom"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// newTestServer builds a server backed by an engine with no worker, so every
// request resolves through the direct fallback path.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	eng := engine.New(engine.Config{}, testLogger())
	t.Cleanup(eng.Terminate)
	return NewServer(":0", eng, testLogger())
}

func postJSON(t *testing.T, srv *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestGeneratePath(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/v1/paths", `{"width":200,"height":100,"exponent":4}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp pathResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	want := geom.Generate(geom.Params{Width: 200, Height: 100, Exponent: 4})
	if resp.PathData != want {
		t.Errorf("path_data mismatch:\ngot  %q\nwant %q", resp.PathData, want)
	}
	if resp.Strategy != engine.StrategyFallback {
		t.Errorf("strategy = %q, want %q", resp.Strategy, engine.StrategyFallback)
	}
}

func TestGeneratePathMissingField(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"no width", `{"height":100,"exponent":4}`},
		{"no height", `{"width":200,"exponent":4}`},
		{"no exponent", `{"width":200,"height":100}`},
		{"empty object", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, srv, "/v1/paths", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestGeneratePathInvalidJSON(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/v1/paths", `{"width":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error response: %v", err)
	}
	if resp["error"] == "" {
		t.Error("expected error message in response body")
	}
}

func TestGeneratePerCornerPath(t *testing.T) {
	srv := newTestServer(t)

	body := `{"width":200,"height":100,"corners":{"top_left":2,"top_right":4,"bottom_right":6,"bottom_left":8}}`
	rec := postJSON(t, srv, "/v1/paths/corners", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp pathResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	want := geom.GeneratePerCorner(200, 100, geom.CornerExponents{
		TopLeft: 2, TopRight: 4, BottomRight: 6, BottomLeft: 8,
	})
	if resp.PathData != want {
		t.Errorf("path_data mismatch:\ngot  %q\nwant %q", resp.PathData, want)
	}
}

func TestGeneratePerCornerPathMissingCorner(t *testing.T) {
	srv := newTestServer(t)

	body := `{"width":200,"height":100,"corners":{"top_left":2,"top_right":4,"bottom_right":6}}`
	rec := postJSON(t, srv, "/v1/paths/corners", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestEngineStatus(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/engine", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var stats engine.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if stats.WorkerState != engine.WorkerDisabled {
		t.Errorf("worker_state = %q, want %q", stats.WorkerState, engine.WorkerDisabled)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"ok"`)) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/nope", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
