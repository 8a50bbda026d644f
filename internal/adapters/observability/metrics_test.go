package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"hotel_rating/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record one sample per vector so they show up in the output
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveDB("ratings.get", "ok", 3*time.Millisecond)
	observability.ObserveSession("elevate", "busy")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{
		"hotelrating_http_requests_total",
		"hotelrating_db_operations_total",
		"hotelrating_db_operation_duration_seconds",
		`hotelrating_session_transitions_total{outcome="busy",transition="elevate"}`,
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := t.TempDir() + "/app.log"
	l := observability.NewLogger("prod", path)
	l.Info().Str("k", "v").Msg("hello")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), `"message":"hello"`) {
		t.Fatalf("unexpected log contents: %s", b)
	}
}

func TestMetricsServerExposesAppRegistry(t *testing.T) {
	reg := observability.InitRegistry()
	observability.ObserveDB("schema.resolve", "ok", time.Millisecond)

	srv := observability.NewMetricsServer("127.0.0.1:0", reg)
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("metrics status: %d", res.StatusCode)
	}
	if !strings.Contains(string(body), `hotelrating_db_operations_total{op="schema.resolve",outcome="ok"}`) {
		t.Fatalf("app metrics missing from standalone server:\n%s", body)
	}

	if observability.Serve("", reg) != nil {
		t.Fatalf("empty addr must disable the metrics server")
	}
}
