package service

import (
	"context"

	"workflow_api/internal/domain"
)

// The repository package provides the Postgres implementations.

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type ClientStore interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.Client, error)
	GetOwned(ctx context.Context, userID, id int64) (*domain.Client, error)
	Create(ctx context.Context, c *domain.Client) error
	Update(ctx context.Context, c *domain.Client) error
	DeleteOwned(ctx context.Context, userID, id int64) (bool, error)
}

type TaskStore interface {
	CreateWithClient(ctx context.Context, t *domain.Task, clientName string) error
	List(ctx context.Context, userID int64, f domain.TaskFilter) ([]domain.Task, int64, error)
	GetOwned(ctx context.Context, userID, id int64) (*domain.Task, error)
	ListByClient(ctx context.Context, userID, clientID int64) ([]domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	DeleteOwned(ctx context.Context, userID, id int64) (bool, error)
}

type DashboardStore interface {
	TaskStats(ctx context.Context, userID int64) (domain.TaskStats, error)
	PriorityStats(ctx context.Context, userID int64) (domain.PriorityStats, error)
	ClientStats(ctx context.Context, userID int64) (domain.ClientStats, error)
	Upcoming(ctx context.Context, userID int64) ([]domain.UpcomingTask, error)
}
