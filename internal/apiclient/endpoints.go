package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"workflow_api/internal/domain"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type Me struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ClientFields is sent on create and update. Nil fields are omitted, which
// the server treats as "keep".
type ClientFields struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Company *string `json:"company,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

type NewTask struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Client      string  `json:"client,omitempty"`
	Status      string  `json:"status,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	Deadline    string  `json:"deadline,omitempty"`
	Completed   bool    `json:"completed,omitempty"`
}

type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Deadline    *string `json:"deadline,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// TaskQuery maps to the list endpoint's query string. Zero values are
// left out.
type TaskQuery struct {
	Status    string
	Priority  string
	Client    string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("status", q.Status)
	set("priority", q.Priority)
	set("client", q.Client)
	set("search", q.Search)
	set("sortBy", q.SortBy)
	set("sortOrder", q.SortOrder)
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (c *Client) session(ctx context.Context, path, username, password string) (Session, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, path, nil, false, credentials{username, password}, &out); err != nil {
		return Session{}, err
	}
	return Session{Token: out.Token, Username: username}, nil
}

func (c *Client) Register(ctx context.Context, username, password string) (Session, error) {
	return c.session(ctx, "/api/auth/register", username, password)
}

func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	return c.session(ctx, "/api/auth/login", username, password)
}

// Logout only informs the server; the caller drops its Session.
func (c *Client) Logout(ctx context.Context) error {
	_, authed := SessionFrom(ctx)
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, authed, nil, &messageResponse{})
}

func (c *Client) Me(ctx context.Context) (*Me, error) {
	var out Me
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListClients(ctx context.Context) ([]domain.Client, error) {
	var out []domain.Client
	err := c.do(ctx, http.MethodGet, "/api/clients", nil, true, nil, &out)
	return out, err
}

func (c *Client) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	var out domain.Client
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/clients/%d", id), nil, true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateClient(ctx context.Context, in ClientFields) (*domain.Client, error) {
	var out domain.Client
	if err := c.do(ctx, http.MethodPost, "/api/clients", nil, true, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateClient(ctx context.Context, id int64, in ClientFields) (*domain.Client, error) {
	var out domain.Client
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/clients/%d", id), nil, true, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteClient(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/clients/%d", id), nil, true, nil, &messageResponse{})
}

func (c *Client) ClientTasks(ctx context.Context, id int64) ([]domain.TaskView, error) {
	var out []domain.TaskView
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/clients/%d/tasks", id), nil, true, nil, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, in NewTask) (*domain.TaskView, error) {
	var out domain.TaskView
	if err := c.do(ctx, http.MethodPost, "/api/tasks", nil, true, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTasks(ctx context.Context, q TaskQuery) (*domain.TaskPage, error) {
	var out domain.TaskPage
	if err := c.do(ctx, http.MethodGet, "/api/tasks", q.values(), true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTask(ctx context.Context, id int64) (*domain.TaskView, error) {
	var out domain.TaskView
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/tasks/%d", id), nil, true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int64, in TaskPatch) (*domain.TaskView, error) {
	var out domain.TaskView
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", id), nil, true, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil, true, nil, &messageResponse{})
}

func (c *Client) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	var out domain.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/stats", nil, true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Upcoming(ctx context.Context) ([]domain.UpcomingTask, error) {
	var out []domain.UpcomingTask
	err := c.do(ctx, http.MethodGet, "/api/dashboard/upcoming", nil, true, nil, &out)
	return out, err
}
