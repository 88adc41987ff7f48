package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"workflow_api/internal/domain"
	"workflow_api/internal/repository"
)

type CreateTaskInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Client      string  `json:"client"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Deadline    string  `json:"deadline"`
	Completed   bool    `json:"completed"`
}

// UpdateTaskInput is a partial update; nil fields keep the stored value.
type UpdateTaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	Deadline    *string `json:"deadline"`
	Completed   *bool   `json:"completed"`
}

// ListTasksInput holds raw query parameters.
type ListTasksInput struct {
	Status    string `form:"status"`
	Priority  string `form:"priority"`
	Client    string `form:"client"`
	Search    string `form:"search"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
	Page      string `form:"page"`
	Limit     string `form:"limit"`
}

type TaskService struct {
	tasks TaskStore
}

func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks}
}

func parseStatus(s string) (domain.Status, error) {
	st, err := domain.ParseStatus(s)
	if err != nil {
		return "", invalid("Invalid status")
	}
	return st, nil
}

func parsePriority(s string) (domain.Priority, error) {
	p, err := domain.ParsePriority(s)
	if err != nil {
		return "", invalid("Invalid priority")
	}
	return p, nil
}

func parseDeadline(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return nil, invalid("Invalid deadline")
	}
	return &d, nil
}

func (s *TaskService) Create(ctx context.Context, userID int64, in CreateTaskInput) (domain.TaskView, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.TaskView{}, invalid("Title is required")
	}

	t := &domain.Task{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.StatusPending,
		Priority:    domain.PriorityMedium,
		Completed:   in.Completed,
	}

	var err error
	if in.Status != "" {
		if t.Status, err = parseStatus(in.Status); err != nil {
			return domain.TaskView{}, err
		}
	}
	if in.Priority != "" {
		if t.Priority, err = parsePriority(in.Priority); err != nil {
			return domain.TaskView{}, err
		}
	}
	if t.DueDate, err = parseDeadline(in.Deadline); err != nil {
		return domain.TaskView{}, err
	}

	if err := s.tasks.CreateWithClient(ctx, t, strings.TrimSpace(in.Client)); err != nil {
		return domain.TaskView{}, fmt.Errorf("create task: %w", err)
	}
	return t.View(), nil
}

// pageParam parses a positive integer, falling back to def.
func pageParam(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Filter validates raw list parameters.
func (s *TaskService) Filter(in ListTasksInput) (domain.TaskFilter, error) {
	f := domain.TaskFilter{
		Client: strings.TrimSpace(in.Client),
		Search: strings.TrimSpace(in.Search),
		Page:   pageParam(in.Page, domain.DefaultPage),
		Limit:  pageParam(in.Limit, domain.DefaultLimit),
	}
	if f.Limit > domain.MaxLimit {
		f.Limit = domain.MaxLimit
	}
	if f.Page > domain.MaxPage {
		f.Page = domain.MaxPage
	}
	f.SortBy, f.Desc = domain.ResolveSort(in.SortBy, in.SortOrder)

	var err error
	if in.Status != "" {
		if f.Status, err = parseStatus(in.Status); err != nil {
			return f, err
		}
	}
	if in.Priority != "" {
		if f.Priority, err = parsePriority(in.Priority); err != nil {
			return f, err
		}
	}
	return f, nil
}

func (s *TaskService) List(ctx context.Context, userID int64, in ListTasksInput) (*domain.TaskPage, error) {
	f, err := s.Filter(in)
	if err != nil {
		return nil, err
	}

	tasks, total, err := s.tasks.List(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return &domain.TaskPage{
		Tasks:      domain.Views(tasks),
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: domain.TotalPages(total, f.Limit),
	}, nil
}

func (s *TaskService) get(ctx context.Context, userID, id int64) (*domain.Task, error) {
	t, err := s.tasks.GetOwned(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("load task: %w", err)
	}
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id int64) (domain.TaskView, error) {
	t, err := s.get(ctx, userID, id)
	if err != nil {
		return domain.TaskView{}, err
	}
	return t.View(), nil
}

// Update applies a partial update. The task's client is never changed
// here, and an empty deadline keeps the stored one.
func (s *TaskService) Update(ctx context.Context, userID, id int64, in UpdateTaskInput) (domain.TaskView, error) {
	t, err := s.get(ctx, userID, id)
	if err != nil {
		return domain.TaskView{}, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return domain.TaskView{}, invalid("Title is required")
		}
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = in.Description
	}
	if in.Status != nil {
		if t.Status, err = parseStatus(*in.Status); err != nil {
			return domain.TaskView{}, err
		}
	}
	if in.Priority != nil {
		if t.Priority, err = parsePriority(*in.Priority); err != nil {
			return domain.TaskView{}, err
		}
	}
	if in.Deadline != nil {
		due, err := parseDeadline(*in.Deadline)
		if err != nil {
			return domain.TaskView{}, err
		}
		if due != nil {
			t.DueDate = due
		}
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.TaskView{}, ErrTaskNotFound
		}
		return domain.TaskView{}, fmt.Errorf("update task: %w", err)
	}
	return t.View(), nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id int64) error {
	ok, err := s.tasks.DeleteOwned(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if !ok {
		return ErrTaskNotFound
	}
	return nil
}
