package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/auth"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/database"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/models"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/monitoring"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/services"
	"github.com/rajeshwarchowhan1992/task-manager-web-app/internal/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	auth.Init("router-test-secret", time.Hour)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	userService := services.NewUserService(db)
	eventService := services.NewEventService(db)
	taskService := services.NewTaskService(db, eventService, hub)
	statUpdater := monitoring.NewStatUpdater(db, time.Minute)

	router := NewRouter(hub, userService, taskService, eventService, statUpdater, "http://localhost:3000")
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func register(t *testing.T, srv *httptest.Server, email string) authResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "a strong password",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: got status %d, want 201", email, resp.StatusCode)
	}
	var out authResponse
	decodeBody(t, resp, &out)
	if out.Token == "" || out.User.ID == "" {
		t.Fatalf("register %s: incomplete response %+v", email, out)
	}
	return out
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	srv := newTestServer(t)

	register(t, srv, "alice@example.com")
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"password": "a strong password",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("got status %d, want 409", resp.StatusCode)
	}
}

func TestLoginAndMe(t *testing.T) {
	srv := newTestServer(t)
	registered := register(t, srv, "alice@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "a strong password",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: got status %d, want 200", resp.StatusCode)
	}
	var loggedIn authResponse
	decodeBody(t, resp, &loggedIn)
	if loggedIn.User.ID != registered.User.ID {
		t.Fatalf("login returned user %q, want %q", loggedIn.User.ID, registered.User.ID)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/auth/me", loggedIn.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: got status %d, want 200", resp.StatusCode)
	}
	var me models.User
	decodeBody(t, resp, &me)
	if me.Email != "alice@example.com" {
		t.Fatalf("me returned %q", me.Email)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "alice@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong password",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", resp.StatusCode)
	}
}

func TestTaskRoutesRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodPut, "/api/tasks/some-id"},
		{http.MethodDelete, "/api/tasks/some-id"},
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/events"},
		{http.MethodGet, "/api/status"},
	} {
		resp := doJSON(t, route.method, srv.URL+route.path, "", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s %s: got status %d, want 401", route.method, route.path, resp.StatusCode)
		}
	}
}

func TestTaskLifecycle(t *testing.T) {
	srv := newTestServer(t)
	owner := register(t, srv, "owner@example.com")

	// Create
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", owner.Token, map[string]string{"title": "X"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: got status %d, want 201", resp.StatusCode)
	}
	var created models.Task
	decodeBody(t, resp, &created)
	if created.Status != models.StatusTodo || created.Priority != models.PriorityMedium {
		t.Fatalf("defaults not applied: %+v", created)
	}

	// List includes it
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/tasks", owner.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: got status %d, want 200", resp.StatusCode)
	}
	var listed []models.Task
	decodeBody(t, resp, &listed)
	if len(listed) != 1 || listed[0].Title != "X" || listed[0].Status != models.StatusTodo {
		t.Fatalf("list mismatch: %+v", listed)
	}

	// Partial update
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/tasks/"+created.ID, owner.Token, map[string]string{"status": models.StatusCompleted})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: got status %d, want 200", resp.StatusCode)
	}
	var updated models.Task
	decodeBody(t, resp, &updated)
	if updated.Status != models.StatusCompleted || updated.Title != "X" {
		t.Fatalf("update mismatch: %+v", updated)
	}

	// Delete
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/tasks/"+created.ID, owner.Token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: got status %d, want 204", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/tasks/"+created.ID, owner.Token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: got status %d, want 404", resp.StatusCode)
	}
}

func TestTaskOwnershipIsolation(t *testing.T) {
	srv := newTestServer(t)
	owner := register(t, srv, "owner@example.com")
	intruder := register(t, srv, "intruder@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", owner.Token, map[string]string{"title": "private"})
	var created models.Task
	decodeBody(t, resp, &created)

	// Invisible in the intruder's list
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/tasks", intruder.Token, nil)
	var listed []models.Task
	decodeBody(t, resp, &listed)
	if len(listed) != 0 {
		t.Fatalf("intruder sees %d tasks, want 0", len(listed))
	}

	// Update and delete by the intruder are 404, not 403
	resp = doJSON(t, http.MethodPut, srv.URL+"/api/tasks/"+created.ID, intruder.Token, map[string]string{"title": "hijacked"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("intruder update: got status %d, want 404", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/tasks/"+created.ID, intruder.Token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("intruder delete: got status %d, want 404", resp.StatusCode)
	}
}

func TestCreateTaskValidationStatus(t *testing.T) {
	srv := newTestServer(t)
	owner := register(t, srv, "owner@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", owner.Token, map[string]string{"title": ""})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["error"] == "" {
		t.Fatal("expected a JSON error message")
	}
}

func TestEventsFeed(t *testing.T) {
	srv := newTestServer(t)
	owner := register(t, srv, "owner@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", owner.Token, map[string]string{"title": "watched"})
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/events", owner.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("events: got status %d, want 200", resp.StatusCode)
	}
	var events []models.Event
	decodeBody(t, resp, &events)

	var sawCreate bool
	for _, e := range events {
		if e.Type == "task.create" {
			sawCreate = true
		}
	}
	if !sawCreate {
		t.Fatalf("no task.create event in feed: %+v", events)
	}
}

func TestHealthAndStatus(t *testing.T) {
	srv := newTestServer(t)
	owner := register(t, srv, "owner@example.com")

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/health", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: got status %d, want 200", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/status", owner.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got status %d, want 200", resp.StatusCode)
	}
	var stats monitoring.SystemStats
	decodeBody(t, resp, &stats)
}
