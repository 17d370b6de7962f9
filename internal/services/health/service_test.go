package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func serveHealth(t *testing.T, svc *Service) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group(""))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	return resp
}

func TestHealthConnected(t *testing.T) {
	resp := serveHealth(t, NewService(pingerFunc(func(context.Context) error { return nil })))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.String() != `{"status":"healthy","database":"connected"}` {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestHealthDisconnected(t *testing.T) {
	resp := serveHealth(t, NewService(pingerFunc(func(context.Context) error { return errors.New("down") })))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
	if resp.Body.String() != `{"status":"unhealthy","database":"disconnected"}` {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestHealthMemoryMode(t *testing.T) {
	status := NewService(nil).Check(context.Background())
	if !status.Healthy() || status.Database != "memory" {
		t.Fatalf("unexpected status: %+v", status)
	}
}
