package integration

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"workflow_api/internal/db"
	"workflow_api/internal/domain"
	"workflow_api/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func openPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" || dsn == "memory" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(context.Background(), pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// re-applying must be a no-op
	if err := db.Migrate(context.Background(), pool); err != nil {
		t.Fatalf("migrate twice: %v", err)
	}
	return pool
}

func newUser(t *testing.T, users *repository.UserRepository) *domain.User {
	t.Helper()
	u := &domain.User{Username: "it-" + uuid.NewString(), Password: "hash"}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestUserRepository(t *testing.T) {
	pool := openPool(t)
	users := repository.NewUserRepository(pool)
	ctx := context.Background()

	u := newUser(t, users)
	if u.ID == 0 || u.CreatedAt.IsZero() {
		t.Fatalf("returning columns not scanned: %+v", u)
	}
	if err := users.Create(ctx, &domain.User{Username: u.Username, Password: "x"}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("duplicate username: %v", err)
	}
	got, err := users.GetByUsername(ctx, u.Username)
	if err != nil || got.ID != u.ID || got.Password != "hash" {
		t.Fatalf("GetByUsername = %+v, %v", got, err)
	}
	if _, err := users.GetByID(ctx, -1); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("GetByID missing: %v", err)
	}
}

func TestTaskRepositoryOwnershipAndClients(t *testing.T) {
	pool := openPool(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	clients := repository.NewClientRepository(pool)
	tasks := repository.NewTaskRepository(pool)
	dash := repository.NewDashboardRepository(pool)

	a, b := newUser(t, users), newUser(t, users)

	acme := &domain.Client{UserID: a.ID, Name: "Acme"}
	if err := clients.Create(ctx, acme); err != nil {
		t.Fatalf("create client: %v", err)
	}
	// b's client with the same name must not be picked for a's task
	if err := clients.Create(ctx, &domain.Client{UserID: b.ID, Name: "Acme"}); err != nil {
		t.Fatalf("create b client: %v", err)
	}

	due := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	task := &domain.Task{UserID: a.ID, Title: "T1", Status: domain.StatusPending, Priority: domain.PriorityHigh, DueDate: &due}
	if err := tasks.CreateWithClient(ctx, task, "Acme"); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.ClientID == nil || *task.ClientID != acme.ID {
		t.Fatalf("client resolved to %v; want %d", task.ClientID, acme.ID)
	}

	orphan := &domain.Task{UserID: a.ID, Title: "T2", Status: domain.StatusInProgress, Priority: domain.PriorityLow}
	if err := tasks.CreateWithClient(ctx, orphan, "Nope"); err != nil || orphan.ClientID != nil {
		t.Fatalf("unknown client: %v %v", orphan.ClientID, err)
	}

	got, err := tasks.GetOwned(ctx, a.ID, task.ID)
	if err != nil || got.ClientName == nil || *got.ClientName != "Acme" || got.View().Deadline == nil || *got.View().Deadline != "2030-06-01" {
		t.Fatalf("GetOwned = %+v, %v", got, err)
	}
	if _, err := tasks.GetOwned(ctx, b.ID, task.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("b reading a's task: %v", err)
	}

	list, total, err := tasks.List(ctx, a.ID, domain.TaskFilter{Search: "acm", SortBy: domain.SortDueDate, Page: 1, Limit: 10})
	if err != nil || total != 1 || len(list) != 1 || list[0].ID != task.ID {
		t.Fatalf("search by client name = %v (%d), %v", list, total, err)
	}
	list, total, err = tasks.List(ctx, a.ID, domain.TaskFilter{SortBy: domain.SortPriority, Page: 1, Limit: 10})
	if err != nil || total != 2 || list[0].ID != orphan.ID {
		t.Fatalf("priority asc = %v, %v", list, err)
	}

	got.Status = domain.StatusCompleted
	before := got.UpdatedAt
	if err := tasks.Update(ctx, got); err != nil || !got.UpdatedAt.After(before) {
		t.Fatalf("update: %v (updated_at %v -> %v)", err, before, got.UpdatedAt)
	}
	stray := *got
	stray.UserID = b.ID
	if err := tasks.Update(ctx, &stray); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("b updating a's task: %v", err)
	}

	st, err := dash.TaskStats(ctx, a.ID)
	if err != nil || st.Total != 2 || st.Completed != 1 || st.InProgress != 1 {
		t.Fatalf("TaskStats = %+v, %v", st, err)
	}
	ps, err := dash.PriorityStats(ctx, a.ID)
	if err != nil || ps.High != 1 || ps.Low != 1 {
		t.Fatalf("PriorityStats = %+v, %v", ps, err)
	}

	if ok, err := clients.DeleteOwned(ctx, b.ID, acme.ID); ok || err != nil {
		t.Fatalf("b deleting a's client: %v %v", ok, err)
	}
	if ok, err := clients.DeleteOwned(ctx, a.ID, acme.ID); !ok || err != nil {
		t.Fatalf("delete client: %v %v", ok, err)
	}
	got, err = tasks.GetOwned(ctx, a.ID, task.ID)
	if err != nil || got.ClientID != nil {
		t.Fatalf("task after client delete = %+v, %v", got, err)
	}

	if ok, _ := tasks.DeleteOwned(ctx, b.ID, task.ID); ok {
		t.Fatalf("b deleted a's task")
	}
	if ok, err := tasks.DeleteOwned(ctx, a.ID, task.ID); !ok || err != nil {
		t.Fatalf("delete task: %v %v", ok, err)
	}
}
