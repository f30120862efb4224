package observability

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsPipelineEvents(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics()

	m.OnFileComplete(ctx, "a", time.Millisecond, nil)
	m.OnFileComplete(ctx, "b", time.Millisecond, errors.New("boom"))
	m.OnFileComplete(ctx, "c", time.Millisecond, nil)

	if got := testutil.ToFloat64(m.files.WithLabelValues("ok")); got != 2 {
		t.Errorf("files{outcome=ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.files.WithLabelValues("error")); got != 1 {
		t.Errorf("files{outcome=error} = %v, want 1", got)
	}

	m.OnDiffComplete(ctx, "a", 1, 0, 3)
	if got := testutil.ToFloat64(m.diffNodes.WithLabelValues("modified")); got != 3 {
		t.Errorf("diff_nodes{status=modified} = %v, want 3", got)
	}

	m.OnRenderComplete(ctx, "mermaid", "text", time.Millisecond, nil)
	if got := testutil.ToFloat64(m.renders.WithLabelValues("mermaid", "text", "ok")); got != 1 {
		t.Errorf("renders = %v, want 1", got)
	}
}

func TestMetricsCacheEvents(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics()

	m.OnCacheHit(ctx, "diagram")
	m.OnCacheMiss(ctx, "diagram")
	m.OnCacheMiss(ctx, "diagram")
	m.OnCacheSet(ctx, "diagram", 512)

	if got := testutil.ToFloat64(m.cacheOps.WithLabelValues("diagram", "miss")); got != 2 {
		t.Errorf("cache misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cacheBytes); got != 512 {
		t.Errorf("cache bytes = %v, want 512", got)
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.OnRequest(context.Background(), "POST", "/v1/render", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `flowlens_http_requests_total{method="POST",route="/v1/render",status="200"} 1`) {
		t.Errorf("metrics output missing request counter:\n%s", body)
	}
}

func TestMetricsWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.OnFileComplete(context.Background(), "a", time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "flowlens.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `flowlens_files_total{outcome="ok"} 1`) {
		t.Errorf("textfile missing file counter:\n%s", data)
	}
}
