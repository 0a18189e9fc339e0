package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveProbe(t *testing.T) {
	m := New()
	m.ObserveProbe("izipay", "simple", OutcomeSuccess, 120*time.Millisecond)
	m.ObserveProbe("izipay", "simple", OutcomeSuccess, 80*time.Millisecond)
	m.ObserveProbe("shopify", "simple", OutcomeTransportError, time.Second)

	if got := testutil.ToFloat64(m.probesTotal.WithLabelValues("izipay", "simple", OutcomeSuccess)); got != 2 {
		t.Errorf("expected 2 izipay successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.probesTotal.WithLabelValues("shopify", "simple", OutcomeTransportError)); got != 1 {
		t.Errorf("expected 1 shopify transport error, got %v", got)
	}
}

func TestSetProviderUp(t *testing.T) {
	m := New()
	m.SetProviderUp("izipay", true)
	m.SetProviderUp("shopify", false)

	if got := testutil.ToFloat64(m.providerUp.WithLabelValues("izipay")); got != 1 {
		t.Errorf("expected izipay up, got %v", got)
	}
	if got := testutil.ToFloat64(m.providerUp.WithLabelValues("shopify")); got != 0 {
		t.Errorf("expected shopify down, got %v", got)
	}
}

func TestClearProviderUp(t *testing.T) {
	m := New()
	m.SetProviderUp("izipay", true)
	m.SetProviderUp("shopify", true)
	m.ClearProviderUp("izipay")

	if n := testutil.CollectAndCount(m.providerUp); n != 1 {
		t.Errorf("expected one provider gauge left, got %d", n)
	}
	if got := testutil.ToFloat64(m.providerUp.WithLabelValues("shopify")); got != 1 {
		t.Errorf("expected shopify untouched, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveProbe("izipay", "simple", OutcomeFailure, time.Second)
	m.SetProviderUp("izipay", true)
	m.ClearProviderUp("izipay")
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveProbe("izipay", "full", OutcomeFailure, time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `shopizi_probes_total{outcome="failure",provider="izipay",test_type="full"} 1`) {
		t.Errorf("expected probe counter in exposition, got:\n%s", body)
	}
}
