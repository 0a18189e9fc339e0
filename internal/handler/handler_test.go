package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/shopizi/internal/config"
	"github.com/GTDGit/shopizi/internal/database"
	"github.com/GTDGit/shopizi/internal/metrics"
	"github.com/GTDGit/shopizi/internal/middleware"
	"github.com/GTDGit/shopizi/internal/repository"
	"github.com/GTDGit/shopizi/internal/service"
	"github.com/GTDGit/shopizi/internal/utils"
	"github.com/GTDGit/shopizi/pkg/outbound"
)

const testSecret = "handler-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	utils.RegisterJSONTagNames()
}

// stubClient answers every probe request with a fixed response.
type stubClient struct {
	resp *outbound.Response
	err  error
}

func (s stubClient) Get(context.Context, string, http.Header, time.Duration) (*outbound.Response, error) {
	return s.resp, s.err
}

func (s stubClient) Post(context.Context, string, http.Header, []byte, time.Duration) (*outbound.Response, error) {
	return s.resp, s.err
}

type testServer struct {
	router *gin.Engine
	token  string
}

func newTestServer(t *testing.T, client service.HTTPClient) *testServer {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "handler.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	izipaySvc := service.NewIzipayConfigService(repository.NewIzipayConfigRepository(db))
	shopifySvc := service.NewShopifyConfigService(repository.NewShopifyConfigRepository(db))
	m := metrics.New()
	probeSvc := service.NewProbeService(izipaySvc, shopifySvc, client, config.ProbeConfig{}, m)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := gin.New()
	RegisterRoutes(router, &Handlers{
		Health:  NewHealthHandler(db, nil),
		Izipay:  NewIzipayConfigHandler(izipaySvc, probeSvc),
		Shopify: NewShopifyConfigHandler(shopifySvc, probeSvc),
		Metrics: m.Handler(),
	},
		middleware.NewJWTMiddleware(testSecret, middleware.NewMemoryLimiter(ctx, 100, time.Minute)).Handle(),
		middleware.RateLimit(middleware.NewMemoryLimiter(ctx, 100, time.Minute)),
	)

	token, err := utils.GenerateJWT(1, "admin@example.pe", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	return &testServer{router: router, token: token}
}

func (s *testServer) do(t *testing.T, method, path, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return out
}

const izipayBody = `{"merchant_code":"M1","api_key":"secret-api","hash_key":"secret-hash","public_key":"PEM","is_sandbox":true,"script_url":"https://evil.example/x.js"}`

func TestIzipayMissingActiveConfig(t *testing.T) {
	s := newTestServer(t, stubClient{})

	w := s.do(t, http.MethodGet, "/izipay/api/config/active_config/", "", false)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if got := decode(t, w)["error"]; got != "No hay configuración activa" {
		t.Errorf("unexpected error %v", got)
	}

	w = s.do(t, http.MethodPost, "/izipay/api/config/test_connectivity/", "", false)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if got := decode(t, w)["error"]; got != "No hay configuración activa de Izipay" {
		t.Errorf("unexpected error %v", got)
	}

	w = s.do(t, http.MethodGet, "/izipay/api/config/script_info/", "", false)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected script_info 404, got %d", w.Code)
	}
}

func TestIzipayCRUDOmitsSecrets(t *testing.T) {
	s := newTestServer(t, stubClient{})

	w := s.do(t, http.MethodPost, "/izipay/api/config/", izipayBody, false)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/izipay/api/config/", izipayBody, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decode(t, w)
	if created["script_url"] != "https://sandbox-checkout.izipay.pe/payments/v1/js/index.js" {
		t.Errorf("expected derived script_url, got %v", created["script_url"])
	}
	id := int(created["id"].(float64))

	reads := []string{
		"/izipay/api/config/",
		"/izipay/api/config/active_config/",
		"/izipay/api/config/" + strconv.Itoa(id) + "/",
	}
	for _, path := range reads {
		w := s.do(t, http.MethodGet, path, "", true)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, w.Code)
		}
		body := w.Body.String()
		for _, secret := range []string{"api_key", "hash_key", "secret-api", "secret-hash"} {
			if strings.Contains(body, secret) {
				t.Errorf("GET %s leaked %s: %s", path, secret, body)
			}
		}
	}

	w = s.do(t, http.MethodPatch, "/izipay/api/config/"+strconv.Itoa(id)+"/", `{"is_sandbox":false}`, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	patched := decode(t, w)
	if patched["script_url"] != "https://checkout.izipay.pe/payments/v1/js/index.js" || patched["environment"] != "Producción" {
		t.Errorf("unexpected patched config %v", patched)
	}

	w = s.do(t, http.MethodPut, "/izipay/api/config/"+strconv.Itoa(id)+"/", `{"merchant_code":"M2"}`, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected full update without required fields to fail, got %d", w.Code)
	}

	w = s.do(t, http.MethodDelete, "/izipay/api/config/"+strconv.Itoa(id)+"/", "", true)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = s.do(t, http.MethodGet, "/izipay/api/config/"+strconv.Itoa(id)+"/", "", true)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestIzipayValidationErrors(t *testing.T) {
	s := newTestServer(t, stubClient{})

	w := s.do(t, http.MethodPost, "/izipay/api/config/", `{"merchant_code":"`+strings.Repeat("x", 51)+`","script_url":"not a url"}`, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	fields := decode(t, w)
	for _, f := range []string{"merchant_code", "script_url"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("expected %s error, got %v", f, fields)
		}
	}

	w = s.do(t, http.MethodPost, "/izipay/api/config/", `{}`, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	fields = decode(t, w)
	msgs, _ := fields["merchant_code"].([]any)
	if len(msgs) != 1 || msgs[0] != "This field is required." {
		t.Errorf("unexpected merchant_code errors %v", fields["merchant_code"])
	}

	w = s.do(t, http.MethodPost, "/izipay/api/config/test_connectivity/", `{"test_type":"bogus"}`, false)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown test_type, got %d", w.Code)
	}
}

func TestIzipayProbeEndpoint(t *testing.T) {
	s := newTestServer(t, stubClient{resp: &outbound.Response{StatusCode: 200, Text: "// izipay", Body: []byte("// izipay")}})

	if w := s.do(t, http.MethodPost, "/izipay/api/config/", izipayBody, true); w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodPost, "/izipay/api/config/test_connectivity/", `{"test_type":"simple"}`, false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	res := decode(t, w)
	if res["success"] != true || res["response_status"] != float64(200) || res["test_type"] != "simple" {
		t.Errorf("unexpected result %v", res)
	}
	info, _ := res["config_info"].(map[string]any)
	if info["environment"] != "Sandbox" {
		t.Errorf("unexpected config_info %v", info)
	}
	if strings.Contains(w.Body.String(), "secret-hash") {
		t.Error("probe result leaked hash_key")
	}

	w = s.do(t, http.MethodPost, "/izipay/api/config/test_connectivity/", `{"config_id":999}`, false)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if got := decode(t, w)["error"]; got != "Configuración con ID 999 no encontrada" {
		t.Errorf("unexpected error %v", got)
	}

	w = s.do(t, http.MethodGet, "/izipay/api/config/script_info/", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decode(t, w)["script_tag"]; got != `<script src="https://sandbox-checkout.izipay.pe/payments/v1/js/index.js" defer></script>` {
		t.Errorf("unexpected script tag %v", got)
	}

	w = s.do(t, http.MethodGet, "/izipay/api/config/checkout_config/", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decode(t, w); got["keyRSA"] != "PEM" || got["isSandbox"] != true {
		t.Errorf("unexpected checkout config %v", got)
	}
}

func TestProbeTransportFailureIsOK(t *testing.T) {
	s := newTestServer(t, stubClient{err: &outbound.TransportError{Kind: outbound.KindDNS, Detail: "no such host"}})

	body := `{"shop_name":"nonexistent.invalid","access_token":"shpat_secret","is_active":true}`
	if w := s.do(t, http.MethodPost, "/shopify/api/config/", body, true); w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodPost, "/shopify/api/config/test_connectivity/", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	res := decode(t, w)
	if res["success"] != false || res["error"] != "dns: no such host" {
		t.Errorf("unexpected result %v", res)
	}
	if res["attempted_url"] != "https://nonexistent.invalid/admin/api/2024-04/shop.json" {
		t.Errorf("unexpected attempted_url %v", res["attempted_url"])
	}
	if _, ok := res["response_status"]; ok {
		t.Error("transport failure must not carry response_status")
	}
}

func TestShopifyEndpoints(t *testing.T) {
	s := newTestServer(t, stubClient{})

	w := s.do(t, http.MethodGet, "/shopify/api/config/active_config/", "", false)
	if w.Code != http.StatusNotFound || decode(t, w)["error"] != "No active Shopify configuration found." {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}

	body := `{"shop_name":"a.myshopify.com","api_key":"k","api_secret":"the-secret"}`
	w = s.do(t, http.MethodPost, "/shopify/api/config/", body, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
	}
	created := decode(t, w)
	if created["auth_method"] != "basic" || created["is_active"] != false {
		t.Errorf("unexpected created config %v", created)
	}
	if strings.Contains(w.Body.String(), "the-secret") {
		t.Error("create response leaked api_secret")
	}

	w = s.do(t, http.MethodPost, "/shopify/api/config/", body, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected duplicate shop_name to fail, got %d", w.Code)
	}
	if _, ok := decode(t, w)["shop_name"]; !ok {
		t.Errorf("expected shop_name error, got %s", w.Body.String())
	}

	w = s.do(t, http.MethodPost, "/shopify/api/config/test_connectivity/", `{"test_type":"full"}`, false)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for full Shopify probe, got %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/shopify/api/config/test_connectivity/", `{"config_id":42}`, false)
	if w.Code != http.StatusNotFound || decode(t, w)["error"] != "Configuration not found." {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/shopify/api/config/abc/", "", true)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for non-numeric id, got %d", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, stubClient{})

	w := s.do(t, http.MethodGet, "/health", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	res := decode(t, w)
	if res["status"] != "healthy" {
		t.Errorf("unexpected health %v", res)
	}
	if redis, _ := res["redis"].(map[string]any); redis["status"] != "disabled" {
		t.Errorf("expected redis disabled, got %v", res["redis"])
	}

	w = s.do(t, http.MethodGet, "/metrics", "", false)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Errorf("unexpected metrics response %d", w.Code)
	}
}
