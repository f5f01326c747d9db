package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/kindredlab/kintree/pkg/gen"
	"github.com/kindredlab/kintree/pkg/pipeline"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	s := gen.NewMemStore()
	for _, p := range []gen.Person{
		{ID: "root", Name: "Root", BirthYear: 1960, Parents: []string{"pa", "ma"}},
		{ID: "pa", Name: "Pa", BirthYear: 1930, Children: []string{"root"}},
		{ID: "ma", Name: "Ma", BirthYear: 1932, Children: []string{"root"}},
	} {
		if _, err := s.Add(p); err != nil {
			t.Fatalf("Add(%s): %v", p.ID, err)
		}
	}

	c := New(io.Discard, log.FatalLevel)
	runner := pipeline.NewRunner(s, nil, nil, c.Logger)
	return c.routes(runner, s)
}

func TestServeHealthz(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("response is missing a request id")
	}
}

func TestServeChart(t *testing.T) {
	h := testHandler(t)

	body := strings.NewReader(`{"root_id":"root","ancestor_depth":1}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/charts", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp chartResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.GraphHash == "" {
		t.Error("graph hash missing")
	}
	if resp.Stats.People != 3 {
		t.Errorf("people = %d, want 3", resp.Stats.People)
	}
	if len(resp.Layout.Nodes) != 3 {
		t.Errorf("placed %d nodes, want 3", len(resp.Layout.Nodes))
	}
}

func TestServeChartValidation(t *testing.T) {
	h := testHandler(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing root", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad chart", `{"root_id":"root","chart":"tower"}`, http.StatusBadRequest, "INVALID_CHART"},
		{"unknown person", `{"root_id":"ghost"}`, http.StatusNotFound, "PERSON_NOT_FOUND"},
		{"malformed json", `{`, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/charts", strings.NewReader(tt.body)))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			var e errorBody
			if err := json.NewDecoder(rec.Body).Decode(&e); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
		})
	}
}

func TestServePersonLookup(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/people/pa", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var p gen.Person
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode person: %v", err)
	}
	if p.Name != "Pa" {
		t.Errorf("name = %s, want Pa", p.Name)
	}
}

func TestServePersonNotFound(t *testing.T) {
	h := testHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/people/ghost", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestServeRequestIDPassthrough(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "fixed-id" {
		t.Errorf("request id = %s, want fixed-id", got)
	}
}
