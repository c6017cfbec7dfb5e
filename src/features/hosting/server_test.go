package hosting

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/interrobot/taskrunner/src/features/config"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestServer(t *testing.T, noCache, metrics bool, gatherer prometheus.Gatherer) *Server {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"index.html":              "<html></html>",
		"vanillats/js/app.js":     "console.log(1);",
		"vanillats/css/style.css": "a{color:red}",
		"fonts/icons.woff2":       "wOF2",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	return NewServer(config.Server{
		Name:    "test",
		Host:    "127.0.0.1",
		Port:    8084,
		Root:    root,
		NoCache: noCache,
		Metrics: metrics,
	}, gatherer)
}

func TestServer_OverridesMIMETypes(t *testing.T) {
	server := newTestServer(t, false, false, nil)

	tests := map[string]string{
		"/vanillats/js/app.js":     "text/javascript",
		"/vanillats/css/style.css": "text/css",
		"/fonts/icons.woff2":       "application/font-woff2",
	}
	for path, want := range tests {
		resp, err := server.app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		if resp.StatusCode != 200 {
			t.Errorf("GET %s: expected 200, got %d", path, resp.StatusCode)
		}
		if got := resp.Header.Get("Content-Type"); got != want {
			t.Errorf("GET %s: expected Content-Type %q, got %q", path, want, got)
		}
	}
}

func TestServer_ServesIndexAndFileContent(t *testing.T) {
	server := newTestServer(t, false, false, nil)

	resp, err := server.app.Test(httptest.NewRequest("GET", "/vanillats/js/app.js", nil))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "console.log(1);" {
		t.Errorf("unexpected body %q", body)
	}

	resp, err = server.app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Errorf("expected index.html, got Content-Type %q", resp.Header.Get("Content-Type"))
	}
	if resp.Header.Get("Cache-Control") != "" {
		t.Errorf("expected no Cache-Control on a caching server, got %q", resp.Header.Get("Cache-Control"))
	}
}

func TestServer_MissingFile(t *testing.T) {
	server := newTestServer(t, false, false, nil)

	resp, err := server.app.Test(httptest.NewRequest("GET", "/missing.js", nil))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Content-Type") == "text/javascript" {
		t.Error("expected no script MIME override on a 404")
	}
}

func TestServer_NoCacheHeaders(t *testing.T) {
	server := newTestServer(t, true, false, nil)

	resp, err := server.app.Test(httptest.NewRequest("GET", "/vanillats/css/style.css", nil))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	want := map[string]string{
		"Cache-Control": "no-cache, no-store, must-revalidate",
		"Pragma":        "no-cache",
		"Expires":       "0",
		"Content-Type":  "text/css",
	}
	for header, value := range want {
		if got := resp.Header.Get(header); got != value {
			t.Errorf("expected %s %q, got %q", header, value, got)
		}
	}
}

func TestServer_HealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "taskrunner_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	server := newTestServer(t, false, true, reg)

	resp, err := server.app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "OK" {
		t.Errorf("expected OK, got %q", body)
	}

	resp, err = server.app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "taskrunner_test_total 1") {
		t.Errorf("expected counter in metrics output, got %q", body)
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	server := newTestServer(t, false, false, prometheus.NewRegistry())

	resp, err := server.app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("expected 404 when metrics are disabled, got %d", resp.StatusCode)
	}
}

func TestServer_ServesRebuiltFileImmediately(t *testing.T) {
	for _, noCache := range []bool{false, true} {
		server := newTestServer(t, noCache, false, nil)
		path := filepath.Join(server.root, "vanillats", "js", "app.js")

		get := func() string {
			t.Helper()
			resp, err := server.app.Test(httptest.NewRequest("GET", "/vanillats/js/app.js", nil))
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			body, _ := io.ReadAll(resp.Body)
			return string(body)
		}

		if got := get(); got != "console.log(1);" {
			t.Fatalf("no_cache=%v: unexpected first body %q", noCache, got)
		}

		rebuilt := "console.log(1);console.log(\"rebuilt bundle\");"
		if err := os.WriteFile(path, []byte(rebuilt), 0644); err != nil {
			t.Fatalf("rewrite: %v", err)
		}
		if got := get(); got != rebuilt {
			t.Errorf("no_cache=%v: expected rebuilt content %q, got %q", noCache, rebuilt, got)
		}
	}
}
