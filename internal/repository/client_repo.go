package repository

import (
	"context"

	"workflow_api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clientColumns = `id, user_id, name, email, company, notes, created_at`

type ClientRepository struct {
	db *pgxpool.Pool
}

func NewClientRepository(db *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{db: db}
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var c domain.Client
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Company, &c.Notes, &c.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *ClientRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Client, error) {
	s := owned("user_id", userID)
	rows, err := r.db.Query(ctx, `SELECT `+clientColumns+` FROM clients`+s.where()+` ORDER BY id`, s.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []domain.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *c)
	}
	return res, rows.Err()
}

func (r *ClientRepository) GetOwned(ctx context.Context, userID, id int64) (*domain.Client, error) {
	s := owned("user_id", userID).eq("id", id)
	return scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients`+s.where(), s.args...))
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO clients (user_id, name, email, company, notes)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		c.UserID, c.Name, c.Email, c.Company, c.Notes,
	).Scan(&c.ID, &c.CreatedAt)
	return mapErr(err)
}

// Update overwrites the mutable columns of a client the caller owns.
func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	s := owned("user_id", c.UserID).eq("id", c.ID)
	set := `name = ` + s.arg(c.Name) +
		`, email = ` + s.arg(c.Email) +
		`, company = ` + s.arg(c.Company) +
		`, notes = ` + s.arg(c.Notes)
	err := r.db.QueryRow(ctx,
		`UPDATE clients SET `+set+s.where()+` RETURNING created_at`,
		s.args...,
	).Scan(&c.CreatedAt)
	return mapErr(err)
}

// DeleteOwned reports whether a row was removed.
func (r *ClientRepository) DeleteOwned(ctx context.Context, userID, id int64) (bool, error) {
	s := owned("user_id", userID).eq("id", id)
	tag, err := r.db.Exec(ctx, `DELETE FROM clients`+s.where(), s.args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
