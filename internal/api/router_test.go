// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/tomtom215/familymap/docs"
	"github.com/tomtom215/familymap/internal/auth"
	"github.com/tomtom215/familymap/internal/authz"
	"github.com/tomtom215/familymap/internal/config"
	"github.com/tomtom215/familymap/internal/database"
	"github.com/tomtom215/familymap/internal/events"
	"github.com/tomtom215/familymap/internal/models"
	"github.com/tomtom215/familymap/internal/places"
	"github.com/tomtom215/familymap/internal/scraping"
	"github.com/tomtom215/familymap/internal/users"
)

var testDBSemaphore = make(chan struct{}, 1)

const testAdminPassword = "Str0ng-Family-Pass!"

type fakeEnricher struct {
	mu     sync.Mutex
	calls  []int64
	cities []string
	result *models.EnrichResult
	err    error
}

func (f *fakeEnricher) EnrichWithCity(_ context.Context, id int64, city string) (*models.EnrichResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	f.cities = append(f.cities, city)
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.ScrapedPlaceID = id
	return &res, nil
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []events.EnrichJob
}

func (q *fakeQueue) Enqueue(_ context.Context, job events.EnrichJob) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return "msg-1", nil
}

type testServer struct {
	t        *testing.T
	handler  http.Handler
	db       *database.DB
	tokens   *auth.TokenService
	rawDir   string
	enricher *fakeEnricher
	queue    *fakeQueue

	adminToken string
	userToken  string
}

type serverOptions struct {
	noEnricher bool
	noQueue    bool
}

func setupTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", Threads: 2})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	tokens, err := auth.NewTokenService(&config.JWTConfig{
		Secret:               "test_secret_with_at_least_32_characters_for_testing",
		Issuer:               "familymap-test",
		AccessTokenLifetime:  5 * time.Minute,
		RefreshTokenLifetime: time.Hour,
	}, auth.NewMemoryBlacklist())
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	authService := auth.NewService(db, tokens, hasher, nil)
	userService := users.NewService(db, hasher, config.DefaultPasswordPolicy())

	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	rawDir := t.TempDir()
	ts := &testServer{
		t:        t,
		db:       db,
		tokens:   tokens,
		rawDir:   rawDir,
		enricher: &fakeEnricher{result: &models.EnrichResult{PlaceID: 42, Created: true}},
		queue:    &fakeQueue{},
	}

	hopts := HandlerOptions{
		DB:       db,
		Auth:     authService,
		Users:    userService,
		Places:   places.NewService(db),
		Review:   scraping.NewReviewQueue(db),
		Importer: scraping.NewImporter(db, rawDir),
		Version:  "test",
	}
	if !opts.noEnricher {
		hopts.Enricher = ts.enricher
	}
	if !opts.noQueue {
		hopts.Queue = ts.queue
	}

	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = []string{"https://familymap.example"}
	mwCfg.RateLimitDisabled = true

	router := NewRouter(NewHandler(hopts), NewChiMiddleware(mwCfg), authService, enforcer)
	ts.handler = router.SetupChi()

	ctx := context.Background()
	admin, err := userService.CreateAdminUser(ctx, &models.CreateAdminRequest{
		Username: "curator", Email: "curator@example.com", Password: testAdminPassword,
	})
	if err != nil || !admin.Success {
		t.Fatalf("CreateAdminUser() = %+v, %v", admin, err)
	}
	regular, err := userService.Register(ctx, &models.RegisterRequest{
		Username: "parent", Email: "parent@example.com", Password: "kids-are-fun",
	})
	if err != nil || !regular.Success {
		t.Fatalf("Register() = %+v, %v", regular, err)
	}
	ts.adminToken = ts.accessToken(admin.User)
	ts.userToken = ts.accessToken(regular.User)

	return ts
}

func (ts *testServer) accessToken(user *models.User) string {
	ts.t.Helper()
	pair, err := ts.tokens.IssuePair(user)
	if err != nil {
		ts.t.Fatalf("IssuePair() error = %v", err)
	}
	return pair.Access.Token
}

// do sends a request with an optional JSON body and bearer token.
func (ts *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	ts.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			ts.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.10:5555"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) writeJSONL(sourceType, name string, lines ...string) {
	ts.t.Helper()
	dir := filepath.Join(ts.rawDir, sourceType)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		ts.t.Fatal(err)
	}
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, name+".jsonl"), []byte(content), 0o600); err != nil {
		ts.t.Fatal(err)
	}
}

type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data %s: %v", env.Data, err)
		}
	}
	return env
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})

	rec := ts.do(http.MethodGet, "/api/v1/health/live", "", nil)
	expectStatus(t, rec, http.StatusOK)
	var live models.HealthStatus
	decodeEnvelope(t, rec, &live)
	if live.Status != "alive" || live.Version != "test" {
		t.Errorf("live = %+v", live)
	}

	rec = ts.do(http.MethodGet, "/api/v1/health/ready", "", nil)
	expectStatus(t, rec, http.StatusOK)
	var ready models.HealthStatus
	decodeEnvelope(t, rec, &ready)
	if ready.Checks["database"] != "ok" {
		t.Errorf("database check = %q, want ok", ready.Checks["database"])
	}
	if !ready.AIEnabled || !ready.QueueActive {
		t.Errorf("ready = %+v, want AI and queue enabled", ready)
	}
}

func TestHealthReady_DatabaseDown(t *testing.T) {
	h := NewHandler(HandlerOptions{DB: failingPinger{}})
	rec := httptest.NewRecorder()
	h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))

	expectStatus(t, rec, http.StatusServiceUnavailable)
	var status models.HealthStatus
	env := decodeEnvelope(t, rec, &status)
	if env.Status != "error" || status.Checks["database"] != "unreachable" {
		t.Errorf("env = %+v, status = %+v", env, status)
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return context.DeadlineExceeded }

func TestRouter_MetricsAndNotFound(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})

	ts.do(http.MethodGet, "/api/v1/places", "", nil)
	rec := ts.do(http.MethodGet, "/metrics", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "familymap_") {
		t.Error("metrics output should contain familymap_ series")
	}

	rec = ts.do(http.MethodGet, "/api/v1/nope", "", nil)
	expectStatus(t, rec, http.StatusNotFound)
	env := decodeEnvelope(t, rec, nil)
	if env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestRouter_SwaggerDocument(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})

	rec := ts.do(http.MethodGet, "/swagger/doc.json", "", nil)
	expectStatus(t, rec, http.StatusOK)

	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not JSON: %v", err)
	}
	if doc.BasePath != "/api/v1" {
		t.Errorf("basePath = %q", doc.BasePath)
	}
	for _, path := range []string{"/places/", "/auth/refresh", "/scraping/places/{id}/enrich"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("doc.json has no %s", path)
		}
	}

	rec = ts.do(http.MethodGet, "/swagger/index.html", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "swagger-ui") {
		t.Error("index.html should mount swagger-ui")
	}
}

func TestRouter_RequestIDAndCORS(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/places", nil)
	req.Header.Set("Origin", "https://familymap.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://familymap.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	rec = ts.do(http.MethodGet, "/api/v1/auth/info", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID should be set")
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("ETag should be set")
	}
}

func TestRouter_AdminRoutesRequireAdmin(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})

	routes := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/users"},
		{http.MethodGet, "/api/v1/users/admins"},
		{http.MethodPost, "/api/v1/users/parent/promote"},
		{http.MethodPost, "/api/v1/places"},
		{http.MethodDelete, "/api/v1/places/1"},
		{http.MethodGet, "/api/v1/scraping/review/next"},
		{http.MethodPost, "/api/v1/scraping/places/1/enrich"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := ts.do(rt.method, rt.path, "", nil)
			expectStatus(t, rec, http.StatusUnauthorized)
			if env := decodeEnvelope(t, rec, nil); env.Error.Message != auth.MsgNotAuthenticated {
				t.Errorf("message = %q", env.Error.Message)
			}

			rec = ts.do(rt.method, rt.path, ts.userToken, nil)
			expectStatus(t, rec, http.StatusForbidden)
			if env := decodeEnvelope(t, rec, nil); env.Error.Message != auth.MsgNotAuthorized {
				t.Errorf("message = %q", env.Error.Message)
			}
		})
	}
}

func TestRouter_InvalidTokenIsAnonymous(t *testing.T) {
	ts := setupTestServer(t, serverOptions{})

	rec := ts.do(http.MethodGet, "/api/v1/users/me", "not-a-jwt", nil)
	expectStatus(t, rec, http.StatusOK)
	if env := decodeEnvelope(t, rec, nil); string(env.Data) != "null" {
		t.Errorf("data = %s, want null", env.Data)
	}
}
