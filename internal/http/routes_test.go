package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"workflow_api/internal/http/handlers"
	"workflow_api/internal/http/middleware"
	"workflow_api/internal/repository/memory"
	"workflow_api/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db := memory.New()
	auth := service.NewAuthService(db.Users(), service.NewTokenIssuer("test-secret", time.Hour), service.PasswordHasher{Cost: bcrypt.MinCost})
	h := handlers.NewHandler(
		auth,
		service.NewClientService(db.Clients(), db.Tasks()),
		service.NewTaskService(db.Tasks()),
		service.NewDashboardService(db.Dashboard()),
	)
	return NewRouter(Deps{
		Handler:  h,
		Health:   handlers.NewHealthHandler("test", map[string]handlers.Pinger{"database": db}),
		Verifier: auth,
		Limiter:  middleware.NewMemoryLimiter(),
		Limits: Limits{
			AuthRateLimit: 1000, AuthRateWindow: time.Minute,
			APIRateLimit: 1000, APIRateWindow: time.Minute,
		},
	})
}

type apiResp struct {
	Code int
	Body []byte
}

func (r apiResp) decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decode %s: %v", r.Body, err)
	}
}

func (r apiResp) message(t *testing.T) string {
	var m struct {
		Message string `json:"message"`
	}
	r.decode(t, &m)
	return m.Message
}

func call(t *testing.T, r *gin.Engine, method, path, token string, body any) apiResp {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return apiResp{Code: w.Code, Body: w.Body.Bytes()}
}

func register(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	res := call(t, r, http.MethodPost, "/api/auth/register", "", gin.H{"username": username, "password": "pw"})
	if res.Code != http.StatusOK {
		t.Fatalf("register %s: %d %s", username, res.Code, res.Body)
	}
	var out struct {
		Token string `json:"token"`
	}
	res.decode(t, &out)
	return out.Token
}

type taskJSON struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Client      *string `json:"client"`
	ClientID    *int64  `json:"clientId"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Deadline    *string `json:"deadline"`
	Completed   bool    `json:"completed"`
}

func TestEndToEnd(t *testing.T) {
	r := newTestRouter(t)

	register(t, r, "u")
	login := call(t, r, http.MethodPost, "/api/auth/login", "", gin.H{"username": "u", "password": "pw"})
	if login.Code != http.StatusOK {
		t.Fatalf("login: %d %s", login.Code, login.Body)
	}
	var tok struct {
		Token string `json:"token"`
	}
	login.decode(t, &tok)

	me := call(t, r, http.MethodGet, "/api/auth/me", tok.Token, nil)
	var user struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
	me.decode(t, &user)
	if me.Code != http.StatusOK || user.Username != "u" {
		t.Fatalf("me: %d %s", me.Code, me.Body)
	}

	res := call(t, r, http.MethodPost, "/api/clients", tok.Token, gin.H{"name": "Acme"})
	if res.Code != http.StatusCreated {
		t.Fatalf("create client: %d %s", res.Code, res.Body)
	}
	var acme struct {
		ID     int64  `json:"id"`
		UserID int64  `json:"userId"`
		Name   string `json:"name"`
	}
	res.decode(t, &acme)
	if acme.UserID != user.ID {
		t.Fatalf("client owner = %d; want %d", acme.UserID, user.ID)
	}

	res = call(t, r, http.MethodPost, "/api/tasks", tok.Token, gin.H{"title": "T1", "client": "Acme", "deadline": "2030-06-01"})
	if res.Code != http.StatusCreated {
		t.Fatalf("create task: %d %s", res.Code, res.Body)
	}
	var created taskJSON
	res.decode(t, &created)
	// ids are per table, as with BIGSERIAL
	if created.ID != 1 || acme.ID != 1 {
		t.Fatalf("ids = task %d, client %d; want 1, 1", created.ID, acme.ID)
	}

	res = call(t, r, http.MethodGet, fmt.Sprintf("/api/tasks/%d", created.ID), tok.Token, nil)
	var got taskJSON
	res.decode(t, &got)
	if res.Code != http.StatusOK || got.Client == nil || *got.Client != "Acme" || got.ClientID == nil || *got.ClientID != acme.ID {
		t.Fatalf("get task: %d %s", res.Code, res.Body)
	}
	if got.Deadline == nil || *got.Deadline != "2030-06-01" || got.Status != "pending" || got.Priority != "medium" {
		t.Fatalf("task fields: %s", res.Body)
	}

	res = call(t, r, http.MethodGet, fmt.Sprintf("/api/clients/%d/tasks", acme.ID), tok.Token, nil)
	var clientTasks []taskJSON
	res.decode(t, &clientTasks)
	if len(clientTasks) != 1 || clientTasks[0].ID != created.ID {
		t.Fatalf("client tasks: %s", res.Body)
	}

	if res := call(t, r, http.MethodPost, "/api/auth/logout", "", nil); res.Code != http.StatusOK || res.message(t) != "Logged out successfully" {
		t.Fatalf("logout: %d %s", res.Code, res.Body)
	}
}

func TestAuthErrors(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "dup")

	cases := []struct {
		path string
		body any
		code int
		msg  string
	}{
		{"/api/auth/register", gin.H{"username": "dup", "password": "x"}, http.StatusConflict, "Username already exists"},
		{"/api/auth/register", gin.H{"username": "x"}, http.StatusBadRequest, "Username and password are required"},
		{"/api/auth/login", gin.H{"username": "dup", "password": "bad"}, http.StatusUnauthorized, "Invalid password"},
		{"/api/auth/login", gin.H{"username": "ghost", "password": "pw"}, http.StatusNotFound, "User not found"},
		{"/api/auth/login", "not an object", http.StatusBadRequest, "Invalid request payload"},
	}
	for _, tc := range cases {
		res := call(t, r, http.MethodPost, tc.path, "", tc.body)
		if res.Code != tc.code || res.message(t) != tc.msg {
			t.Fatalf("%s %v: got %d %s; want %d %q", tc.path, tc.body, res.Code, res.Body, tc.code, tc.msg)
		}
	}

	for _, path := range []string{"/api/tasks", "/api/clients", "/api/dashboard/stats", "/api/auth/me"} {
		if res := call(t, r, http.MethodGet, path, "", nil); res.Code != http.StatusUnauthorized {
			t.Fatalf("%s without token = %d", path, res.Code)
		}
		if res := call(t, r, http.MethodGet, path, "garbage", nil); res.Code != http.StatusUnauthorized {
			t.Fatalf("%s with bad token = %d", path, res.Code)
		}
	}
}

func TestOwnershipIsolation(t *testing.T) {
	r := newTestRouter(t)
	a, b := register(t, r, "a"), register(t, r, "b")

	res := call(t, r, http.MethodPost, "/api/clients", a, gin.H{"name": "Secret Co"})
	var client struct {
		ID int64 `json:"id"`
	}
	res.decode(t, &client)
	res = call(t, r, http.MethodPost, "/api/tasks", a, gin.H{"title": "private"})
	var task taskJSON
	res.decode(t, &task)

	checks := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, fmt.Sprintf("/api/clients/%d", client.ID), nil},
		{http.MethodPut, fmt.Sprintf("/api/clients/%d", client.ID), gin.H{"name": "x"}},
		{http.MethodDelete, fmt.Sprintf("/api/clients/%d", client.ID), nil},
		{http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), nil},
		{http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), gin.H{"title": "x"}},
		{http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), nil},
		{http.MethodDelete, "/api/tasks/9999", nil},
	}
	for _, c := range checks {
		if res := call(t, r, c.method, c.path, b, c.body); res.Code != http.StatusNotFound {
			t.Fatalf("%s %s as b = %d %s; want 404", c.method, c.path, res.Code, res.Body)
		}
	}

	var list struct {
		Tasks []taskJSON `json:"tasks"`
		Total int64      `json:"total"`
	}
	call(t, r, http.MethodGet, "/api/tasks", b, nil).decode(t, &list)
	if list.Total != 0 || len(list.Tasks) != 0 {
		t.Fatalf("b sees a's tasks: %+v", list)
	}
	var clients []json.RawMessage
	call(t, r, http.MethodGet, "/api/clients", b, nil).decode(t, &clients)
	if len(clients) != 0 {
		t.Fatalf("b sees a's clients")
	}
	var clientTasks []json.RawMessage
	call(t, r, http.MethodGet, fmt.Sprintf("/api/clients/%d/tasks", client.ID), b, nil).decode(t, &clientTasks)
	if len(clientTasks) != 0 {
		t.Fatalf("b sees a's client tasks")
	}

	if res := call(t, r, http.MethodGet, "/api/tasks/abc", a, nil); res.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric id = %d; want 400", res.Code)
	}
}

func TestTaskListAndPatch(t *testing.T) {
	r := newTestRouter(t)
	tok := register(t, r, "p")

	for i := 0; i < 12; i++ {
		res := call(t, r, http.MethodPost, "/api/tasks", tok, gin.H{"title": fmt.Sprintf("task %02d", i)})
		if res.Code != http.StatusCreated {
			t.Fatalf("create: %d %s", res.Code, res.Body)
		}
	}

	var page struct {
		Tasks      []taskJSON `json:"tasks"`
		Total      int64      `json:"total"`
		Page       int        `json:"page"`
		Limit      int        `json:"limit"`
		TotalPages int64      `json:"totalPages"`
	}
	call(t, r, http.MethodGet, "/api/tasks?page=2&limit=5", tok, nil).decode(t, &page)
	if len(page.Tasks) != 5 || page.TotalPages != 3 || page.Total != 12 || page.Page != 2 || page.Limit != 5 {
		t.Fatalf("page = %+v", page)
	}

	res := call(t, r, http.MethodGet, "/api/tasks?page=922337203685477582&limit=10", tok, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("huge page = %d %s", res.Code, res.Body)
	}
	res.decode(t, &page)
	if len(page.Tasks) != 0 || page.Total != 12 {
		t.Fatalf("huge page = %+v", page)
	}

	call(t, r, http.MethodGet, "/api/tasks?sortBy=title&sortOrder=desc&limit=1", tok, nil).decode(t, &page)
	if page.Tasks[0].Title != "task 11" {
		t.Fatalf("title desc first = %q", page.Tasks[0].Title)
	}

	if res := call(t, r, http.MethodGet, "/api/tasks?status=blocked", tok, nil); res.Code != http.StatusBadRequest {
		t.Fatalf("bad status filter = %d", res.Code)
	}

	res = call(t, r, http.MethodPost, "/api/tasks", tok, gin.H{
		"title": "patch me", "description": "keep", "priority": "high", "deadline": "2031-01-01",
	})
	var task taskJSON
	res.decode(t, &task)

	res = call(t, r, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), tok, gin.H{"status": "completed"})
	var patched taskJSON
	res.decode(t, &patched)
	if res.Code != http.StatusOK || patched.Status != "completed" {
		t.Fatalf("patch: %d %s", res.Code, res.Body)
	}
	if patched.Title != "patch me" || *patched.Description != "keep" || patched.Priority != "high" || *patched.Deadline != "2031-01-01" {
		t.Fatalf("patch changed other fields: %s", res.Body)
	}

	if res := call(t, r, http.MethodPost, "/api/tasks", tok, gin.H{"description": "no title"}); res.Code != http.StatusBadRequest || res.message(t) != "Title is required" {
		t.Fatalf("missing title: %d %s", res.Code, res.Body)
	}

	if res := call(t, r, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), tok, nil); res.Code != http.StatusOK {
		t.Fatalf("delete: %d", res.Code)
	}
	if res := call(t, r, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), tok, nil); res.Code != http.StatusNotFound {
		t.Fatalf("delete again: %d", res.Code)
	}
}

func TestDashboardRoutes(t *testing.T) {
	r := newTestRouter(t)
	tok := register(t, r, "d")
	call(t, r, http.MethodPost, "/api/clients", tok, gin.H{"name": "C"})
	call(t, r, http.MethodPost, "/api/tasks", tok, gin.H{"title": "soon", "client": "C", "deadline": "2030-01-01", "priority": "high"})
	call(t, r, http.MethodPost, "/api/tasks", tok, gin.H{"title": "later", "deadline": "2030-02-01", "status": "inProgress"})

	var stats struct {
		TaskStats struct {
			Total, Completed, InProgress, Pending int64
		} `json:"taskStats"`
		PriorityStats struct {
			High, Medium, Low int64
		} `json:"priorityStats"`
		ClientStats struct {
			Total           int64 `json:"total"`
			WithActiveTasks int64 `json:"withActiveTasks"`
		} `json:"clientStats"`
	}
	res := call(t, r, http.MethodGet, "/api/dashboard/stats", tok, nil)
	res.decode(t, &stats)
	if stats.TaskStats.Total != 2 || stats.TaskStats.InProgress != 1 || stats.TaskStats.Pending != 1 {
		t.Fatalf("task stats: %s", res.Body)
	}
	if stats.PriorityStats.High != 1 || stats.PriorityStats.Medium != 1 || stats.PriorityStats.Low != 0 {
		t.Fatalf("priority stats: %s", res.Body)
	}
	if stats.ClientStats.Total != 1 || stats.ClientStats.WithActiveTasks != 1 {
		t.Fatalf("client stats: %s", res.Body)
	}

	var upcoming []struct {
		Title   string `json:"title"`
		DueDate string `json:"due_date"`
		Client  *struct {
			Name string `json:"name"`
		} `json:"client"`
	}
	call(t, r, http.MethodGet, "/api/dashboard/upcoming", tok, nil).decode(t, &upcoming)
	if len(upcoming) != 2 || upcoming[0].Title != "soon" || upcoming[0].DueDate != "2030-01-01" || upcoming[0].Client.Name != "C" || upcoming[1].Client != nil {
		t.Fatalf("upcoming = %+v", upcoming)
	}
}

func TestHealthRoutes(t *testing.T) {
	r := newTestRouter(t)
	for _, path := range []string{"/health", "/healthz", "/readyz"} {
		if res := call(t, r, http.MethodGet, path, "", nil); res.Code != http.StatusOK {
			t.Fatalf("%s = %d %s", path, res.Code, res.Body)
		}
	}
	if res := call(t, r, http.MethodGet, "/metrics", "", nil); res.Code != http.StatusOK {
		t.Fatalf("/metrics = %d", res.Code)
	}
}
