package repository

import (
	"context"
	"time"

	"workflow_api/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DashboardRepository struct {
	db *pgxpool.Pool
}

func NewDashboardRepository(db *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) TaskStats(ctx context.Context, userID int64) (domain.TaskStats, error) {
	var st domain.TaskStats
	s := owned("user_id", userID)
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'completed'),
		        COUNT(*) FILTER (WHERE status = 'inProgress'),
		        COUNT(*) FILTER (WHERE status = 'pending')
		   FROM tasks`+s.where(),
		s.args...,
	).Scan(&st.Total, &st.Completed, &st.InProgress, &st.Pending)
	return st, err
}

// PriorityStats leaves absent priorities at zero.
func (r *DashboardRepository) PriorityStats(ctx context.Context, userID int64) (domain.PriorityStats, error) {
	var st domain.PriorityStats
	s := owned("user_id", userID)
	rows, err := r.db.Query(ctx, `SELECT priority, COUNT(*) FROM tasks`+s.where()+` GROUP BY priority`, s.args...)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p string
			n int64
		)
		if err := rows.Scan(&p, &n); err != nil {
			return st, err
		}
		switch domain.Priority(p) {
		case domain.PriorityHigh:
			st.High = n
		case domain.PriorityMedium:
			st.Medium = n
		case domain.PriorityLow:
			st.Low = n
		}
	}
	return st, rows.Err()
}

func (r *DashboardRepository) ClientStats(ctx context.Context, userID int64) (domain.ClientStats, error) {
	var st domain.ClientStats
	s := owned("c.user_id", userID)
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE EXISTS (
		            SELECT 1 FROM tasks t
		             WHERE t.client_id = c.id AND t.user_id = c.user_id AND t.completed = false))
		   FROM clients c`+s.where(),
		s.args...,
	).Scan(&st.Total, &st.WithActiveTasks)
	return st, err
}

// Upcoming lists incomplete tasks that have a due date, soonest first.
func (r *DashboardRepository) Upcoming(ctx context.Context, userID int64) ([]domain.UpcomingTask, error) {
	s := owned("t.user_id", userID).
		and("t.due_date IS NOT NULL").
		and("t.completed = false")
	rows, err := r.db.Query(ctx,
		`SELECT t.id, t.title, t.due_date, t.priority, t.status, c.name
		   FROM tasks t
		   LEFT JOIN clients c ON c.id = t.client_id AND c.user_id = t.user_id`+
			s.where()+` ORDER BY t.due_date ASC, t.id ASC`,
		s.args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []domain.UpcomingTask{}
	for rows.Next() {
		var (
			u                domain.UpcomingTask
			due              time.Time
			priority, status string
			clientName       *string
		)
		if err := rows.Scan(&u.ID, &u.Title, &due, &priority, &status, &clientName); err != nil {
			return nil, err
		}
		u.DueDate = due.Format(domain.DateLayout)
		u.Priority = domain.Priority(priority)
		u.Status = domain.Status(status)
		if clientName != nil {
			u.Client = &domain.ClientRef{Name: *clientName}
		}
		res = append(res, u)
	}
	return res, rows.Err()
}
