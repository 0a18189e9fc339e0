package worker

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GTDGit/shopizi/internal/config"
	"github.com/GTDGit/shopizi/internal/database"
	"github.com/GTDGit/shopizi/internal/metrics"
	"github.com/GTDGit/shopizi/internal/models"
	"github.com/GTDGit/shopizi/internal/repository"
	"github.com/GTDGit/shopizi/internal/service"
	"github.com/GTDGit/shopizi/pkg/outbound"
)

type statusClient struct {
	status int
}

func (s statusClient) Get(context.Context, string, http.Header, time.Duration) (*outbound.Response, error) {
	return &outbound.Response{StatusCode: s.status}, nil
}

func (s statusClient) Post(context.Context, string, http.Header, []byte, time.Duration) (*outbound.Response, error) {
	return &outbound.Response{StatusCode: s.status}, nil
}

func exposition(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestConnectivityWorkerRun(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "worker.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	izipaySvc := service.NewIzipayConfigService(repository.NewIzipayConfigRepository(db))
	shopifySvc := service.NewShopifyConfigService(repository.NewShopifyConfigRepository(db))
	m := metrics.New()
	probes := service.NewProbeService(izipaySvc, shopifySvc, statusClient{status: 200}, config.ProbeConfig{}, m)

	s := func(v string) *string { return &v }
	created, err := izipaySvc.Create(context.Background(), models.IzipayConfigInput{
		MerchantCode: s("M1"),
		APIKey:       s("k"),
		HashKey:      s("h"),
		PublicKey:    s("p"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	w := NewConnectivityWorker(probes, m, time.Minute)
	w.run(context.Background())

	out := exposition(t, m)
	if !strings.Contains(out, `shopizi_provider_up{provider="izipay"} 1`) {
		t.Errorf("expected izipay up gauge, got:\n%s", out)
	}
	if strings.Contains(out, `shopizi_provider_up{provider="shopify"}`) {
		t.Error("shopify has no active configuration and must not be reported")
	}

	if err := izipaySvc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	w.run(context.Background())

	if out := exposition(t, m); strings.Contains(out, `shopizi_provider_up{provider="izipay"}`) {
		t.Errorf("expected izipay gauge cleared after its configuration was deleted, got:\n%s", out)
	}
}

func TestConnectivityWorkerStopsOnCancel(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "worker.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	probes := service.NewProbeService(
		service.NewIzipayConfigService(repository.NewIzipayConfigRepository(db)),
		service.NewShopifyConfigService(repository.NewShopifyConfigRepository(db)),
		statusClient{status: 200}, config.ProbeConfig{}, nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewConnectivityWorker(probes, nil, 10*time.Millisecond).Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
