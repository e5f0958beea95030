package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/taskcore/taskcore"
	"github.com/taskcore/taskcore/stores/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := taskcore.DefaultConfig()
	cfg.JWT.AccessSecret = []byte("test-access-secret")
	cfg.JWT.RefreshSecret = []byte("test-refresh-secret")

	store := memory.NewStore()
	engine, err := taskcore.New().
		WithConfig(cfg).
		WithRedis(client).
		WithUserStore(store).
		WithTaskStore(store).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return New(engine, Config{Development: true})
}

func doJSON(t *testing.T, srv *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, srv *Server, name, email string) (accessToken, refreshCookie string) {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/users/register", map[string]string{
		"name": name, "email": email, "password": "hunter2!",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body credentialsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if body.AccessToken == "" {
		t.Fatal("register returned empty access token")
	}

	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshCookieName {
			if !c.HttpOnly {
				t.Error("refresh cookie must be HttpOnly")
			}
			refreshCookie = c.Value
		}
	}
	if refreshCookie == "" {
		t.Fatal("register did not set the refresh cookie")
	}

	return body.AccessToken, refreshCookie
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestRegisterLoginFlow(t *testing.T) {
	srv := newTestServer(t)

	registerUser(t, srv, "Jane", "jane@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/users/register", map[string]string{
		"name": "Dup", "email": "jane@example.com", "password": "other",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/users/login", map[string]string{
		"email": "jane@example.com", "password": "wrong",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/users/login", map[string]string{
		"email": "jane@example.com", "password": "hunter2!",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRefreshAndLogout(t *testing.T) {
	srv := newTestServer(t)
	_, refresh := registerUser(t, srv, "Jane", "jane@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/users/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: refresh})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", rec.Code, rec.Body.String())
	}
	var refreshed map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &refreshed); err != nil {
		t.Fatalf("decode refresh response: %v", err)
	}
	if refreshed["accessToken"] == "" {
		t.Fatal("refresh returned empty access token")
	}

	// Missing cookie is a plain 401.
	rec = doJSON(t, srv, http.MethodPost, "/api/users/refresh", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh without cookie status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/users/logout", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: refresh})
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout did not clear the refresh cookie")
	}

	// The revoked session must no longer refresh.
	req = httptest.NewRequest(http.MethodPost, "/api/users/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: refresh})
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout status = %d", rec.Code)
	}
}

func TestGuardRejectsMissingToken(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/tasks", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unguarded list status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/tasks", nil, bearer("garbage"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d", rec.Code)
	}
}

func TestTaskLifecycle(t *testing.T) {
	srv := newTestServer(t)
	access, _ := registerUser(t, srv, "Jane", "jane@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", map[string]any{
		"title": "write report",
	}, bearer(access))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Success bool          `json:"success"`
		Data    taskcore.Task `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Data.Status != taskcore.StatusTodo || created.Data.Priority != taskcore.PriorityMedium {
		t.Fatalf("defaults not applied: %+v", created.Data)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/tasks/"+created.Data.ID, nil, bearer(access))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/tasks/"+created.Data.ID, map[string]any{
		"status": "done",
	}, bearer(access))
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"status":"done"`) {
		t.Fatalf("update response missing new status: %s", rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/tasks/"+created.Data.ID, nil, bearer(access))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/tasks/"+created.Data.ID, nil, bearer(access))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
}

func TestTaskAccessStatuses(t *testing.T) {
	srv := newTestServer(t)
	ownerAccess, _ := registerUser(t, srv, "Owner", "owner@example.com")
	otherAccess, _ := registerUser(t, srv, "Other", "other@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", map[string]any{
		"title": "private task",
	}, bearer(ownerAccess))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var created struct {
		Data taskcore.Task `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	// Malformed id short-circuits to 400.
	rec = doJSON(t, srv, http.MethodGet, "/api/tasks/not-a-uuid", nil, bearer(otherAccess))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed id status = %d", rec.Code)
	}

	// A missing task is 404 even for a stranger.
	rec = doJSON(t, srv, http.MethodGet, "/api/tasks/00000000-0000-0000-0000-000000000000", nil, bearer(otherAccess))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing task status = %d", rec.Code)
	}

	// An existing task someone else owns is 403.
	rec = doJSON(t, srv, http.MethodGet, "/api/tasks/"+created.Data.ID, nil, bearer(otherAccess))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign task status = %d", rec.Code)
	}
}

func TestListTasksCachedFlag(t *testing.T) {
	srv := newTestServer(t)
	access, _ := registerUser(t, srv, "Jane", "jane@example.com")

	for i := 0; i < 3; i++ {
		rec := doJSON(t, srv, http.MethodPost, "/api/tasks", map[string]any{
			"title": fmt.Sprintf("task %d", i),
		}, bearer(access))
		if rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d", rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/tasks?limit=2", nil, bearer(access))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `"cached":true`) {
		t.Fatalf("first list should not be cached: %s", rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/tasks?limit=2", nil, bearer(access))
	if rec.Code != http.StatusOK {
		t.Fatalf("second list status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"cached":true`) {
		t.Fatalf("second list should be cached: %s", rec.Body.String())
	}

	var listed struct {
		Meta taskcore.ListMeta `json:"meta"`
		Data []*taskcore.Task  `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if listed.Meta.Total != 3 || listed.Meta.Pages != 2 || len(listed.Data) != 2 {
		t.Fatalf("unexpected meta: %+v with %d rows", listed.Meta, len(listed.Data))
	}
}

func TestStatsReflectWrites(t *testing.T) {
	srv := newTestServer(t)
	access, _ := registerUser(t, srv, "Jane", "jane@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", map[string]any{"title": "a"}, bearer(access))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/tasks/stats", nil, bearer(access))
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"todo":1`) {
		t.Fatalf("stats missing todo count: %s", rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/tasks", map[string]any{"title": "b", "status": "done"}, bearer(access))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	// The write invalidated the stats cache, so this read is fresh.
	rec = doJSON(t, srv, http.MethodGet, "/api/tasks/stats", nil, bearer(access))
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"todo":1`) || !strings.Contains(body, `"done":1`) {
		t.Fatalf("stats stale after write: %s", body)
	}
	if strings.Contains(body, `"cached":true`) {
		t.Fatalf("stats after invalidation should be a cache miss: %s", body)
	}
}
