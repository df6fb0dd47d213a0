// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/dishatlas/internal/auth"
	"github.com/tomtom215/dishatlas/internal/authz"
	"github.com/tomtom215/dishatlas/internal/config"
	"github.com/tomtom215/dishatlas/internal/models"
	"github.com/tomtom215/dishatlas/internal/store"
	ws "github.com/tomtom215/dishatlas/internal/websocket"
)

const (
	testAdminUser     = "chef"
	testAdminPassword = "correct horse battery"
	testJWTSecret     = "0123456789abcdef0123456789abcdef-test"
)

// securedConfig enables JWT auth for the admin API.
func securedConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := auth.HashPassword(testAdminPassword)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	cfg := testConfig()
	cfg.Security.AuthMode = "jwt"
	cfg.Security.JWTSecret = testJWTSecret
	cfg.Security.AdminUsername = testAdminUser
	cfg.Security.AdminPasswordHash = hash
	return cfg
}

// newSecuredRouter builds the full route tree with the admin API mounted.
func newSecuredRouter(t *testing.T, deps Dependencies) http.Handler {
	t.Helper()
	if deps.Config == nil {
		deps.Config = securedConfig(t)
	}
	jwtManager, err := auth.NewJWTManager(deps.Config.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	authenticator, err := auth.NewAuthenticator(deps.Config.Security, jwtManager)
	if err != nil {
		t.Fatalf("NewAuthenticator() error = %v", err)
	}
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	deps.Authenticator = authenticator
	return NewRouter(newTestHandler(deps), jwtManager, enforcer).SetupChi()
}

func serve(handler http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, handler http.Handler) string {
	t.Helper()
	rec := serve(handler, http.MethodPost, "/api/v1/auth/login",
		`{"username":"`+testAdminUser+`","password":"`+testAdminPassword+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp models.LoginResponse
	decodeData(t, decodeEnvelope(t, rec), &resp)
	if resp.Token == "" || resp.Role != auth.RoleAdmin || resp.Username != testAdminUser {
		t.Fatalf("login response = %+v", resp)
	}
	if resp.ExpiresAt <= time.Now().Unix() {
		t.Errorf("expires_at = %d, want in the future", resp.ExpiresAt)
	}
	return resp.Token
}

func TestRouter_PublicRoutes(t *testing.T) {
	t.Parallel()

	handler := NewRouter(newTestHandler(Dependencies{
		Histories: &fakeHistories{result: pizzaResult(t), available: true},
		Analytics: &fakeAnalytics{},
	}), nil, nil).SetupChi()

	tests := []struct {
		target string
		want   int
	}{
		{"/api/v1/health", http.StatusOK},
		{"/api/v1/health/live", http.StatusOK},
		{"/api/v1/health/ready", http.StatusOK},
		{"/api/v1/history?dish=pizza", http.StatusOK},
		{"/api/v1/discover", http.StatusOK},
		{"/api/v1/discover/nearby?lat=40&lon=14", http.StatusOK},
		{"/api/v1/search/suggest?q=pi", http.StatusOK},
		{"/api/v1/trending", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/v1/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := serve(handler, http.MethodGet, tt.target, "", "")
		if rec.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.target, rec.Code, tt.want)
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Errorf("GET %s: X-Request-ID missing", tt.target)
		}
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	t.Parallel()

	handler := NewRouter(newTestHandler(Dependencies{}), nil, nil).SetupChi()
	rec := serve(handler, http.MethodGet, "/api/v1/discover", "", "")

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS sent over plain HTTP")
	}
}

func TestRouter_NotFoundEnvelope(t *testing.T) {
	t.Parallel()

	handler := NewRouter(newTestHandler(Dependencies{}), nil, nil).SetupChi()
	rec := serve(handler, http.MethodGet, "/api/v1/does-not-exist", "", "")

	env := decodeEnvelope(t, rec)
	if env.Status != "error" || env.Error == nil || env.Error.Code != models.ErrCodeNotFound {
		t.Errorf("envelope = %+v, want NOT_FOUND error", env)
	}
}

func TestRouter_AdminDisabledWithoutAuth(t *testing.T) {
	t.Parallel()

	handler := NewRouter(newTestHandler(Dependencies{Histories: &fakeHistories{}}), nil, nil).SetupChi()

	if rec := serve(handler, http.MethodGet, "/api/v1/admin/histories", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("admin list = %d, want 404 when auth is disabled", rec.Code)
	}
	rec := serve(handler, http.MethodPost, "/api/v1/auth/login", `{"username":"a","password":"b"}`, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("login = %d, want 404 when auth is disabled", rec.Code)
	}
}

func TestRouter_AdminFlow(t *testing.T) {
	t.Parallel()

	histories := &fakeHistories{cleared: 3}
	lister := &fakeLister{summaries: []models.HistorySummary{
		{Dish: "Pizza", Source: models.SourceLLM, Steps: 6},
	}}
	handler := newSecuredRouter(t, Dependencies{Histories: histories, Store: lister})

	// No token.
	rec := serve(handler, http.MethodGet, "/api/v1/admin/histories", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("without token = %d, want 401", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Error == nil || env.Error.Code != models.ErrCodeUnauthorized {
		t.Errorf("error = %+v, want UNAUTHORIZED envelope", env.Error)
	}

	token := login(t, handler)

	rec = serve(handler, http.MethodGet, "/api/v1/admin/histories", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d, body %s", rec.Code, rec.Body.String())
	}
	var summaries []models.HistorySummary
	decodeData(t, decodeEnvelope(t, rec), &summaries)
	if len(summaries) != 1 || summaries[0].Dish != "Pizza" {
		t.Errorf("summaries = %+v", summaries)
	}
	if rec.Header().Get("Cache-Control") != cacheNoStore {
		t.Errorf("admin Cache-Control = %q, want no-store", rec.Header().Get("Cache-Control"))
	}

	rec = serve(handler, http.MethodDelete, "/api/v1/admin/histories/Pad%20Thai", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d, body %s", rec.Code, rec.Body.String())
	}
	histories.mu.Lock()
	forgotten := strings.Join(histories.forgotten, ",")
	histories.mu.Unlock()
	if forgotten != "Pad Thai" {
		t.Errorf("forgotten = %q, want Pad Thai", forgotten)
	}

	rec = serve(handler, http.MethodPost, "/api/v1/admin/cache/clear", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear = %d, body %s", rec.Code, rec.Body.String())
	}
	var cleared map[string]int
	decodeData(t, decodeEnvelope(t, rec), &cleared)
	if cleared["cleared"] != 3 {
		t.Errorf("cleared = %v, want 3", cleared)
	}
}

func TestRouter_AdminDeleteMissing(t *testing.T) {
	t.Parallel()

	handler := newSecuredRouter(t, Dependencies{Histories: &fakeHistories{forgetErr: store.ErrNotFound}})
	token := login(t, handler)

	rec := serve(handler, http.MethodDelete, "/api/v1/admin/histories/haggis", "", token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete missing = %d, want 404", rec.Code)
	}
}

func TestRouter_ViewerTokenForbidden(t *testing.T) {
	t.Parallel()

	cfg := securedConfig(t)
	handler := newSecuredRouter(t, Dependencies{Config: cfg, Histories: &fakeHistories{}, Store: &fakeLister{}})

	jwtManager, err := auth.NewJWTManager(cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	token, _, err := jwtManager.GenerateToken("guest", auth.RoleViewer)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	rec := serve(handler, http.MethodGet, "/api/v1/admin/histories", "", token)
	if rec.Code != http.StatusForbidden {
		t.Errorf("viewer list = %d, want 403", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Error == nil || env.Error.Code != models.ErrCodeForbidden {
		t.Errorf("error = %+v, want FORBIDDEN", env.Error)
	}
}

func TestRouter_LoginFailures(t *testing.T) {
	t.Parallel()

	handler := newSecuredRouter(t, Dependencies{})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"wrong password", `{"username":"chef","password":"nope"}`, http.StatusUnauthorized, models.ErrCodeUnauthorized},
		{"missing password", `{"username":"chef"}`, http.StatusBadRequest, models.ErrCodeValidation},
		{"unknown field", `{"username":"chef","password":"x","admin":true}`, http.StatusBadRequest, models.ErrCodeBadRequest},
		{"not json", `username=chef`, http.StatusBadRequest, models.ErrCodeBadRequest},
	}

	for _, tt := range tests {
		rec := serve(handler, http.MethodPost, "/api/v1/auth/login", tt.body, "")
		if rec.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.wantStatus)
			continue
		}
		if env := decodeEnvelope(t, rec); env.Error == nil || env.Error.Code != tt.wantCode {
			t.Errorf("%s: error = %+v, want %s", tt.name, env.Error, tt.wantCode)
		}
	}
}

func TestRouter_LoginRateLimited(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Security.RateLimitDisabled = false
	handler := NewRouter(newTestHandler(Dependencies{Config: cfg}), nil, nil).SetupChi()

	var last *httptest.ResponseRecorder
	for i := 0; i <= RateLimitLogin.Requests; i++ {
		last = serve(handler, http.MethodPost, "/api/v1/auth/login", `{"username":"a","password":"b"}`, "")
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status after %d attempts = %d, want 429", RateLimitLogin.Requests+1, last.Code)
	}
	if env := decodeEnvelope(t, last); env.Error == nil || env.Error.Code != models.ErrCodeRateLimited {
		t.Errorf("error = %+v, want %s", env.Error, models.ErrCodeRateLimited)
	}
}

func TestRouter_WebSocketBroadcast(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.RunWithContext(ctx) }()

	server := httptest.NewServer(NewRouter(newTestHandler(Dependencies{Hub: hub}), nil, nil).SetupChi())
	defer server.Close()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws"

	// Missing Origin is rejected.
	if _, resp, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Fatal("dial without Origin succeeded")
	} else if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("dial without Origin: resp = %v, want 403", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://localhost:3000"}})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := hub.BroadcastJSON(ws.MessageTypeHistoryGenerated, map[string]string{"dish": "Pizza"}); err != nil {
		t.Fatalf("BroadcastJSON() error = %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var msg struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	if msg.Type != ws.MessageTypeHistoryGenerated || msg.Data["dish"] != "Pizza" {
		t.Errorf("message = %+v", msg)
	}
}
