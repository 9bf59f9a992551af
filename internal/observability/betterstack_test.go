package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNormalizeBetterStackEndpoint(t *testing.T) {
	cases := map[string]string{
		"":                            "",
		"   ":                         "",
		"s100.eu.betterstackdata.com": "https://s100.eu.betterstackdata.com",
		"http://localhost:9999":       "http://localhost:9999",
		"https://ingest.example.com":  "https://ingest.example.com",
	}

	for input, want := range cases {
		if got := normalizeBetterStackEndpoint(input); got != want {
			t.Fatalf("normalizeBetterStackEndpoint(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestBetterStackShipperDeliversQueuedLines(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	var tokens []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		tokens = append(tokens, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	shipper := newBetterStackShipper(srv.URL, "token-123", 2*time.Second)
	if _, err := shipper.Write([]byte(`{"msg":"first"}` + "\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := shipper.Write([]byte(`{"msg":"second"}` + "\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shipper.Close(ctx); err != nil {
		t.Fatalf("close shipper: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	joined := strings.Join(bodies, "\n")
	if !strings.Contains(joined, `"first"`) || !strings.Contains(joined, `"second"`) {
		t.Fatalf("expected both lines delivered, got %q", joined)
	}
	for _, token := range tokens {
		if token != "Bearer token-123" {
			t.Fatalf("unexpected Authorization header: %q", token)
		}
	}
}

func TestBetterStackShipperDropsAfterClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	shipper := newBetterStackShipper(srv.URL, "", time.Second)
	if err := shipper.Close(context.Background()); err != nil {
		t.Fatalf("close shipper: %v", err)
	}

	if _, err := shipper.Write([]byte(`{"msg":"late"}`)); err != nil {
		t.Fatalf("write after close should not error, got %v", err)
	}
}
