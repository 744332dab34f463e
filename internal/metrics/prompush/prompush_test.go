package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"flowback/internal/metrics"
)

func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{name: "missing gateway URL returns error", jobName: "x", wantErr: true},
		{name: "empty job name uses default", gatewayURL: "http://pushgateway:9091", wantJobName: "flowback"},
		{name: "explicit job name is preserved", jobName: "bi-weekly", gatewayURL: "http://pushgateway:9091", wantJobName: "bi-weekly"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend(tt.jobName, tt.gatewayURL)
			if tt.wantErr {
				if err == nil || b != nil {
					t.Fatalf("NewBackend(%q, %q) = %v, %v; want nil, error", tt.jobName, tt.gatewayURL, b, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend: %v", err)
			}
			if b.jobName != tt.wantJobName {
				t.Fatalf("jobName = %q, want %q", b.jobName, tt.wantJobName)
			}
		})
	}
}

func TestIncCounterRoutes(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("flowback", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.IncCounter(metrics.StepTotal, 2, metrics.Labels{"step": "parse", "status": "success"})
	b.IncCounter(metrics.RowsTotal, 5, metrics.Labels{"kind": "merged"})
	b.IncCounter(metrics.RowsTotal, 0.5, metrics.Labels{"kind": "merged"})
	b.IncCounter(metrics.FilesTotal, 1, metrics.Labels{"status": "flagged"})
	b.IncCounter("unknown_metric", 10, metrics.Labels{"kind": "merged"})

	if got := testutil.ToFloat64(b.stepCounter.WithLabelValues("parse", "success")); got != 2 {
		t.Fatalf("step counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(b.rowCounter.WithLabelValues("merged")); got != 5.5 {
		t.Fatalf("row counter = %v, want 5.5", got)
	}
	if got := testutil.ToFloat64(b.fileCounter.WithLabelValues("flagged")); got != 1 {
		t.Fatalf("file counter = %v, want 1", got)
	}
}

func TestNilCollectorsAreSafe(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "s", "status": "success"})
	b.IncCounter(metrics.RowsTotal, 1, metrics.Labels{"kind": "parsed"})
	b.IncCounter(metrics.FilesTotal, 1, metrics.Labels{"status": "failed"})
	b.ObserveHistogram(metrics.StepDuration, 1, metrics.Labels{})
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("flowback", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.ObserveHistogram("other_metric", 2, metrics.Labels{"step": "merge", "status": "success"})
	if n := testutil.CollectAndCount(b.stepDuration); n != 0 {
		t.Fatalf("unknown name recorded %d series", n)
	}
	b.ObserveHistogram(metrics.StepDuration, 1.5, metrics.Labels{"step": "merge", "status": "success"})
	if n := testutil.CollectAndCount(b.stepDuration); n != 1 {
		t.Fatalf("series = %d, want 1", n)
	}
}

func TestFlushPushesToGateway(t *testing.T) {
	t.Parallel()

	type req struct {
		method, path, body string
	}
	reqCh := make(chan req, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		reqCh <- req{r.Method, r.URL.Path, string(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("bi-weekly", server.URL)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter(metrics.FilesTotal, 1, metrics.Labels{"status": "processed"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	var got req
	select {
	case got = <-reqCh:
	default:
		t.Fatalf("Flush did not reach the gateway")
	}
	if got.method != http.MethodPut {
		t.Fatalf("method = %s, want PUT", got.method)
	}
	if !strings.Contains(got.path, "/job/bi-weekly") {
		t.Fatalf("path = %q, want job grouping key", got.path)
	}
	if got.body == "" {
		t.Fatalf("empty push body")
	}
}
