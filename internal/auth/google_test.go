package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestAppendTokenKeepsExistingQuery(t *testing.T) {
	got, err := appendToken("http://localhost:3000/callback?next=%2Fresumes", "abc")
	if err != nil {
		t.Fatalf("appendToken: %v", err)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Query().Get("token") != "abc" || u.Query().Get("next") != "/resumes" {
		t.Fatalf("unexpected redirect: %s", got)
	}
	if _, err := appendToken("", "abc"); err == nil {
		t.Fatalf("expected error for empty redirect")
	}
}

func TestStateStoreIsSingleUseAndExpires(t *testing.T) {
	now := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	store := newStateStore()
	store.now = func() time.Time { return now }

	store.put("s1", now.Add(time.Minute))
	if !store.consume("s1") {
		t.Fatalf("expected fresh state to be accepted")
	}
	if store.consume("s1") {
		t.Fatalf("expected state to be single use")
	}

	store.put("s2", now.Add(time.Minute))
	now = now.Add(2 * time.Minute)
	if store.consume("s2") {
		t.Fatalf("expected expired state to be rejected")
	}
}

func TestGoogleStartRequiresConfiguration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewGoogleService("", "", "", "", nil, nil, time.Minute)
	r := gin.New()
	svc.RegisterRoutes(r.Group("/auth"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/auth/google/start", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestGoogleStartRedirectsWithState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewGoogleService("client", "secret", "http://localhost:8080/auth/google/callback", "http://localhost:3000", nil, nil, time.Minute)
	r := gin.New()
	svc.RegisterRoutes(r.Group("/auth"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/auth/google/start", nil))
	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.Code)
	}
	loc, err := url.Parse(resp.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	if loc.Query().Get("state") == "" || loc.Query().Get("client_id") != "client" {
		t.Fatalf("unexpected redirect: %s", loc)
	}
}

func TestGoogleCallbackRejectsUnknownState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewGoogleService("client", "secret", "http://localhost/cb", "http://localhost:3000", nil, nil, time.Minute)
	r := gin.New()
	svc.RegisterRoutes(r.Group("/auth"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=forged&code=x", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
