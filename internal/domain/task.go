package domain

import (
	"errors"
	"math"
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "inProgress"
	StatusCompleted  Status = "completed"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var (
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidDate     = errors.New("invalid date")
)

// DateLayout is the wire format of task deadlines.
const DateLayout = "2006-01-02"

// ParseStatus accepts the canonical values and the legacy in-progress
// spellings ("in_progress", "in progress", "in-progress"), case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, nil
	case "inprogress", "in_progress", "in progress", "in-progress":
		return StatusInProgress, nil
	case "completed":
		return StatusCompleted, nil
	}
	return "", ErrInvalidStatus
}

func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityHigh:
		return PriorityHigh, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityLow:
		return PriorityLow, nil
	}
	return "", ErrInvalidPriority
}

// Rank orders priorities low < medium < high.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// ParseDate accepts YYYY-MM-DD or an RFC3339 timestamp and returns the
// calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

type Task struct {
	ID          int64      `db:"id"`
	UserID      int64      `db:"user_id"`
	ClientID    *int64     `db:"client_id"`
	ClientName  *string    `db:"client_name"`
	Title       string     `db:"title"`
	Description *string    `db:"description"`
	DueDate     *time.Time `db:"due_date"`
	Status      Status     `db:"status"`
	Priority    Priority   `db:"priority"`
	Completed   bool       `db:"completed"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// TaskView is the JSON shape of a task: the client by name and the due
// date as a date-only string.
type TaskView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Client      *string   `json:"client"`
	ClientID    *int64    `json:"clientId"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Deadline    *string   `json:"deadline"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (t *Task) View() TaskView {
	return TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Client:      t.ClientName,
		ClientID:    t.ClientID,
		Status:      t.Status,
		Priority:    t.Priority,
		Deadline:    FormatDate(t.DueDate),
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func Views(tasks []Task) []TaskView {
	out := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		out = append(out, tasks[i].View())
	}
	return out
}

type SortField string

const (
	SortDueDate   SortField = "due_date"
	SortPriority  SortField = "priority"
	SortTitle     SortField = "title"
	SortCreatedAt SortField = "createdAt"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (Page-1)*Limit well inside int range.
	MaxPage = math.MaxInt32
)

// TaskFilter describes a task list request after validation.
type TaskFilter struct {
	Status   Status
	Priority Priority
	Client   string
	Search   string
	SortBy   SortField
	Desc     bool
	Page     int
	Limit    int
}

// ResolveSort maps a raw sortBy value onto the whitelist. An empty value
// means due_date; an unknown one means createdAt ascending.
func ResolveSort(sortBy, sortOrder string) (SortField, bool) {
	desc := sortOrder == "desc"
	switch SortField(sortBy) {
	case "":
		return SortDueDate, desc
	case SortDueDate, SortPriority, SortTitle, SortCreatedAt:
		return SortField(sortBy), desc
	}
	return SortCreatedAt, false
}

func (f TaskFilter) Offset() int {
	page := f.Page
	if page > MaxPage {
		page = MaxPage
	}
	if page < 1 {
		return 0
	}
	return (page - 1) * f.Limit
}

type TaskPage struct {
	Tasks      []TaskView `json:"tasks"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int64      `json:"totalPages"`
}

func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
