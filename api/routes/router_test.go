package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/giftly/giftly-backend/pkg/config"
	"github.com/giftly/giftly-backend/pkg/logger"
)

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return false, nil
}

func testRouter() http.Handler {
	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "giftly", ExpirationMinutes: 30},
	}
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	return NewRouter(Deps{
		Config:   cfg,
		Logger:   logg,
		Sessions: stubSessionChecker{},
	})
}

func TestRouterHealthLive(t *testing.T) {
	router := testRouter()

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-Giftly-Env"); got != "test" {
		t.Fatalf("expected env header got %q", got)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["status"] != "live" {
		t.Fatalf("expected live status got %+v", envelope.Data)
	}
}

func TestRouterProtectedRoutesRequireAuth(t *testing.T) {
	router := testRouter()

	targets := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/cart"},
		{http.MethodPost, "/api/v1/checkout"},
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/sellers/me"},
		{http.MethodGet, "/api/v1/seller/products"},
		{http.MethodGet, "/api/v1/admin/sellers"},
		{http.MethodGet, "/api/v1/auth/me"},
	}
	for _, target := range targets {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(target.method, target.path, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", target.method, target.path, resp.Code)
		}
	}
}

func TestRouterPublicProductRoutes(t *testing.T) {
	router := testRouter()

	// A nil product service yields a 500 envelope rather than a 401, which
	// is enough to show the route skips the auth middleware.
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := testRouter()

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
