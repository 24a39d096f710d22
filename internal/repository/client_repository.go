package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/backoffice/internal/database"
	"gitlab.com/yelinaung/backoffice/internal/models"
)

const clientColumns = `id, name, phone, address, email, created_at, updated_at`

// ClientRepository handles the customer register.
type ClientRepository struct {
	db database.PGXDB
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(db database.PGXDB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create adds a new client.
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO clients (name, phone, address, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, client.Name, client.Phone, client.Address, nilIfEmpty(client.Email),
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// GetByID retrieves a client by ID.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	client, err := scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get client %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// List returns clients ordered by name.
func (r *ClientRepository) List(ctx context.Context) ([]models.Client, error) {
	rows, err := r.db.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}
	return clients, nil
}

func scanClient(row pgx.Row) (*models.Client, error) {
	var c models.Client
	var email *string
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &email, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}
	c.Email = derefString(email)
	return &c, nil
}
