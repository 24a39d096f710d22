package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"gitlab.com/yelinaung/backoffice/internal/database"
	"gitlab.com/yelinaung/backoffice/internal/models"
)

// ProductRepository handles the product catalogue.
type ProductRepository struct {
	db database.PGXDB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db database.PGXDB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create adds a new product.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (name, description, category, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, product.Name, nilIfEmpty(product.Description), nilIfEmpty(product.Category), product.Price,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// List returns products grouped by category, then by name. Prices that are
// not finite numbers come back as zero.
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, category, price, created_at, updated_at
		FROM products
		ORDER BY category NULLS LAST, name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var description, category *string
		var price pgtype.Numeric
		if err := rows.Scan(&p.ID, &p.Name, &description, &category, &price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Description = derefString(description)
		p.Category = derefString(category)
		p.Price = models.ParseAmount(price)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}
