package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"workflow_api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The client join repeats the owner check so a foreign client name never
// leaks into a task view.
const taskSelect = `SELECT t.id, t.user_id, t.client_id, c.name, t.title, t.description, t.due_date,
       t.status, t.priority, t.completed, t.created_at, t.updated_at
  FROM tasks t
  LEFT JOIN clients c ON c.id = t.client_id AND c.user_id = t.user_id`

const taskFrom = ` FROM tasks t LEFT JOIN clients c ON c.id = t.client_id AND c.user_id = t.user_id`

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t                domain.Task
		status, priority string
	)
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.ClientID,
		&t.ClientName,
		&t.Title,
		&t.Description,
		&t.DueDate,
		&status,
		&priority,
		&t.Completed,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	t.Status = domain.Status(status)
	t.Priority = domain.Priority(priority)
	return &t, nil
}

func collectTasks(rows pgx.Rows) ([]domain.Task, error) {
	defer rows.Close()
	res := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *t)
	}
	return res, rows.Err()
}

// CreateWithClient resolves clientName among the owner's clients and inserts
// the task in the same transaction. An unknown name leaves ClientID nil.
func (r *TaskRepository) CreateWithClient(ctx context.Context, t *domain.Task, clientName string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	t.ClientID, t.ClientName = nil, nil
	if clientName != "" {
		var (
			id   int64
			name string
		)
		err := tx.QueryRow(ctx,
			`SELECT id, name FROM clients WHERE user_id = $1 AND name = $2 ORDER BY id LIMIT 1 FOR SHARE`,
			t.UserID, clientName,
		).Scan(&id, &name)
		switch {
		case err == nil:
			t.ClientID, t.ClientName = &id, &name
		case errors.Is(err, pgx.ErrNoRows):
		default:
			return fmt.Errorf("resolve client: %w", err)
		}
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO tasks (user_id, client_id, title, description, due_date, status, priority, completed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		t.UserID, t.ClientID, t.Title, t.Description, t.DueDate,
		string(t.Status), string(t.Priority), t.Completed,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}

	return tx.Commit(ctx)
}

// listQuery returns the page query, the count query and their shared args.
// The page query carries two extra args for LIMIT and OFFSET.
func listQuery(userID int64, f domain.TaskFilter) (string, string, []any) {
	s := owned("t.user_id", userID)
	if f.Status != "" {
		s.eq("t.status", string(f.Status))
	}
	if f.Priority != "" {
		s.eq("t.priority", string(f.Priority))
	}
	if f.Client != "" {
		s.and("c.name ILIKE " + s.arg(containsPattern(f.Client)))
	}
	if f.Search != "" {
		p := s.arg(containsPattern(f.Search))
		s.and("(t.title ILIKE " + p + " OR t.description ILIKE " + p + " OR c.name ILIKE " + p + ")")
	}

	where := s.where()
	count := `SELECT COUNT(*)` + taskFrom + where

	n := len(s.args)
	page := taskSelect + where + orderBy(f.SortBy, f.Desc) +
		" LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2)
	return page, count, s.args
}

func orderBy(field domain.SortField, desc bool) string {
	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	var expr string
	switch field {
	case domain.SortDueDate:
		expr = "t.due_date" + dir + " NULLS LAST"
	case domain.SortPriority:
		expr = "CASE t.priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 ELSE 0 END" + dir
	case domain.SortTitle:
		expr = "lower(t.title)" + dir
	default:
		expr = "t.created_at" + dir
	}
	return " ORDER BY " + expr + ", t.id ASC"
}

func (r *TaskRepository) List(ctx context.Context, userID int64, f domain.TaskFilter) ([]domain.Task, int64, error) {
	pageSQL, countSQL, args := listQuery(userID, f)

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, pageSQL, append(args, f.Limit, f.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *TaskRepository) GetOwned(ctx context.Context, userID, id int64) (*domain.Task, error) {
	s := owned("t.user_id", userID).eq("t.id", id)
	return scanTask(r.db.QueryRow(ctx, taskSelect+s.where(), s.args...))
}

// ListByClient returns the owner's tasks attached to clientID.
func (r *TaskRepository) ListByClient(ctx context.Context, userID, clientID int64) ([]domain.Task, error) {
	s := owned("t.user_id", userID).eq("t.client_id", clientID)
	rows, err := r.db.Query(ctx, taskSelect+s.where()+" ORDER BY t.id", s.args...)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// Update writes the mutable task columns. client_id is not among them.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	s := owned("user_id", t.UserID).eq("id", t.ID)
	set := `title = ` + s.arg(t.Title) +
		`, description = ` + s.arg(t.Description) +
		`, due_date = ` + s.arg(t.DueDate) +
		`, status = ` + s.arg(string(t.Status)) +
		`, priority = ` + s.arg(string(t.Priority)) +
		`, completed = ` + s.arg(t.Completed) +
		`, updated_at = now()`
	err := r.db.QueryRow(ctx,
		`UPDATE tasks SET `+set+s.where()+` RETURNING updated_at`,
		s.args...,
	).Scan(&t.UpdatedAt)
	return mapErr(err)
}

func (r *TaskRepository) DeleteOwned(ctx context.Context, userID, id int64) (bool, error) {
	s := owned("user_id", userID).eq("id", id)
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks`+s.where(), s.args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
