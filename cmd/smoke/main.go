package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"workflow_api/internal/apiclient"
	"workflow_api/internal/logger"

	"github.com/google/uuid"
)

// Runs register → login → client → task → read-back against a live server
// and checks that a second user cannot see the first user's task.
func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), false)
	base := os.Getenv("API_BASE_URL")
	if base == "" {
		base = "http://127.0.0.1:5000"
	}
	if err := run(base); err != nil {
		logger.Fatal("smoke test failed", "error", err)
	}
	logger.Info("smoke test finished")
}

func run(base string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	api := apiclient.New(base)
	suffix := uuid.NewString()[:8]

	userA := "smokeA-" + suffix
	if _, err := api.Register(ctx, userA, "pw"); err != nil {
		return fmt.Errorf("register A: %w", err)
	}
	sa, err := api.Login(ctx, userA, "pw")
	if err != nil {
		return fmt.Errorf("login A: %w", err)
	}
	actx := apiclient.WithSession(ctx, sa)

	name := "Acme " + suffix
	client, err := api.CreateClient(actx, apiclient.ClientFields{Name: &name})
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	task, err := api.CreateTask(actx, apiclient.NewTask{Title: "smoke", Client: name, Deadline: time.Now().AddDate(0, 0, 7).Format("2006-01-02")})
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	got, err := api.GetTask(actx, task.ID)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}
	if got.ClientID == nil || *got.ClientID != client.ID {
		return fmt.Errorf("task client = %v; want %d", got.ClientID, client.ID)
	}
	logger.Info("task created", "id", got.ID, "client", name)

	sb, err := api.Register(ctx, "smokeB-"+suffix, "pw")
	if err != nil {
		return fmt.Errorf("register B: %w", err)
	}
	_, err = api.GetTask(apiclient.WithSession(ctx, sb), task.ID)
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 404 {
		return fmt.Errorf("user B reading A's task: %v; want 404", err)
	}

	if err := api.DeleteTask(actx, task.ID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return api.DeleteClient(actx, client.ID)
}
