package service

import (
	"context"
	"fmt"

	"workflow_api/internal/domain"

	"golang.org/x/sync/errgroup"
)

type DashboardService struct {
	store DashboardStore
}

func NewDashboardService(store DashboardStore) *DashboardService {
	return &DashboardService{store: store}
}

// Stats runs the three aggregations concurrently. The counts are taken
// independently and are not reconciled against each other.
func (s *DashboardService) Stats(ctx context.Context, userID int64) (*domain.DashboardStats, error) {
	var out domain.DashboardStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		st, err := s.store.TaskStats(gctx, userID)
		if err != nil {
			return fmt.Errorf("task stats: %w", err)
		}
		out.TaskStats = st
		return nil
	})
	g.Go(func() error {
		st, err := s.store.PriorityStats(gctx, userID)
		if err != nil {
			return fmt.Errorf("priority stats: %w", err)
		}
		out.PriorityStats = st
		return nil
	})
	g.Go(func() error {
		st, err := s.store.ClientStats(gctx, userID)
		if err != nil {
			return fmt.Errorf("client stats: %w", err)
		}
		out.ClientStats = st
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *DashboardService) Upcoming(ctx context.Context, userID int64) ([]domain.UpcomingTask, error) {
	res, err := s.store.Upcoming(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("upcoming: %w", err)
	}
	return res, nil
}
