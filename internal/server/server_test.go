package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ankitjha412/clone/internal/detector"
	"github.com/ankitjha412/clone/internal/lookup"
	"github.com/ankitjha412/clone/internal/reference"
)

type staticProvider struct{ data string }

func (p *staticProvider) Name() string { return "static" }

func (p *staticProvider) Lookup(_ context.Context, _ string) (string, error) {
	return p.data, nil
}

func newTestServer(t *testing.T, refDomains []string) *Server {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	refs := reference.New(refDomains)
	cache := lookup.NewCache(&staticProvider{data: "Registrar: Shady Registrations LLC"},
		time.Second, 0, logger)
	engine := detector.New(refs, cache, logger)
	srv := NewServer(Config{}, engine, refs, cache, logger)
	t.Cleanup(srv.Stop)
	return srv
}

func postDetect(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/detect", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestDetectEndpoint(t *testing.T) {
	srv := newTestServer(t, []string{"example.com"})

	rec := postDetect(t, srv, `{"url": "http://example.com/path"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var v detector.Verdict
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.IsClone {
		t.Fatal("verified domain flagged as clone")
	}
	if v.MatchingAccuracy != "100%" {
		t.Fatalf("accuracy = %q, want 100%%", v.MatchingAccuracy)
	}
	if v.Domain != "example.com" {
		t.Fatalf("extracted domain = %q", v.Domain)
	}
}

func TestDetectEndpointClone(t *testing.T) {
	srv := newTestServer(t, []string{"example.com"})

	rec := postDetect(t, srv, `{"url": "examp1e.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var v detector.Verdict
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !v.IsClone {
		t.Fatalf("expected clone verdict, got %+v", v)
	}
	if v.RegistrationInfo != "Registrar: Shady Registrations LLC" {
		t.Fatalf("registration info = %q", v.RegistrationInfo)
	}
}

func TestDetectEndpointInputErrors(t *testing.T) {
	srv := newTestServer(t, []string{"example.com"})

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing field", `{}`, "missing url"},
		{"empty url", `{"url": ""}`, "missing url"},
		{"unparseable url", `{"url": "not a url"}`, "invalid url format"},
		{"malformed json", `{"url": `, "invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postDetect(t, srv, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var resp map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp["error"] != tt.wantMsg {
				t.Fatalf("error = %q, want %q", resp["error"], tt.wantMsg)
			}
		})
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, []string{"example.com", "google.com"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ReferenceDomains != 2 {
		t.Fatalf("reference_domains = %d, want 2", resp.ReferenceDomains)
	}
	if resp.LookupProvider != "static" {
		t.Fatalf("lookup_provider = %q", resp.LookupProvider)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}

	// A caller-provided ID is echoed back.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "test-id-1")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "test-id-1" {
		t.Fatalf("X-Request-ID = %q, want test-id-1", got)
	}
}
