package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"workflow_api/internal/domain"
	"workflow_api/internal/repository"
)

// ClientInput carries client fields; nil means "not supplied".
type ClientInput struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Company *string `json:"company"`
	Notes   *string `json:"notes"`
}

type ClientService struct {
	clients ClientStore
	tasks   TaskStore
}

func NewClientService(clients ClientStore, tasks TaskStore) *ClientService {
	return &ClientService{clients: clients, tasks: tasks}
}

func (s *ClientService) List(ctx context.Context, userID int64) ([]domain.Client, error) {
	return s.clients.ListByUser(ctx, userID)
}

func (s *ClientService) Get(ctx context.Context, userID, id int64) (*domain.Client, error) {
	c, err := s.clients.GetOwned(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("load client: %w", err)
	}
	return c, nil
}

func (s *ClientService) Create(ctx context.Context, userID int64, in ClientInput) (*domain.Client, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, invalid("Name is required")
	}
	c := &domain.Client{
		UserID:  userID,
		Name:    *in.Name,
		Email:   in.Email,
		Company: in.Company,
		Notes:   in.Notes,
	}
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

// Update applies the supplied fields over the stored client.
func (s *ClientService) Update(ctx context.Context, userID, id int64, in ClientInput) (*domain.Client, error) {
	c, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, invalid("Name is required")
		}
		c.Name = *in.Name
	}
	if in.Email != nil {
		c.Email = in.Email
	}
	if in.Company != nil {
		c.Company = in.Company
	}
	if in.Notes != nil {
		c.Notes = in.Notes
	}

	if err := s.clients.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("update client: %w", err)
	}
	return c, nil
}

func (s *ClientService) Delete(ctx context.Context, userID, id int64) error {
	ok, err := s.clients.DeleteOwned(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if !ok {
		return ErrClientNotFound
	}
	return nil
}

// Tasks lists the caller's tasks attached to client id. An unknown or
// foreign id yields an empty list.
func (s *ClientService) Tasks(ctx context.Context, userID, id int64) ([]domain.TaskView, error) {
	tasks, err := s.tasks.ListByClient(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("list client tasks: %w", err)
	}
	return domain.Views(tasks), nil
}
