package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/partshub/api/internal/catalog/domain"
	"github.com/partshub/api/internal/catalog/ports"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, part domain.Part) error {
	query := `
		INSERT INTO parts (id, name, description, price, stock_quantity, date_of_delivery, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		part.ID,
		part.Name,
		part.Description,
		part.Price,
		part.StockQuantity,
		part.DateOfDelivery,
		part.CreatedAt,
		part.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert part: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Part, error) {
	query := `
		SELECT id, name, description, price, stock_quantity, date_of_delivery, created_at, updated_at
		FROM parts
		WHERE id = $1
	`

	part, err := scanPart(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select part: %w", err)
	}

	return part, nil
}

func (r *Repository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Part, error) {
	query := `
		SELECT id, name, description, price, stock_quantity, date_of_delivery, created_at, updated_at
		FROM parts
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query parts by ids: %w", err)
	}
	defer rows.Close()

	result := make(map[string]domain.Part, len(ids))
	for rows.Next() {
		part, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		result[part.ID] = *part
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parts: %w", err)
	}

	return result, nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Part, error) {
	query := `
		SELECT id, name, description, price, stock_quantity, date_of_delivery, created_at, updated_at
		FROM parts
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		  AND ($2::numeric IS NULL OR price >= $2)
		  AND ($3::numeric IS NULL OR price <= $3)
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, filter.NameQuery, filter.MinPrice, filter.MaxPrice)
	if err != nil {
		return nil, fmt.Errorf("query parts: %w", err)
	}
	defer rows.Close()

	var parts []domain.Part
	for rows.Next() {
		part, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		parts = append(parts, *part)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parts: %w", err)
	}

	return parts, nil
}

func (r *Repository) Update(ctx context.Context, part domain.Part) error {
	query := `
		UPDATE parts
		SET name = $1, description = $2, price = $3, stock_quantity = $4, date_of_delivery = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.pool.Exec(ctx, query,
		part.Name,
		part.Description,
		part.Price,
		part.StockQuantity,
		part.DateOfDelivery,
		part.UpdatedAt,
		part.ID,
	)
	if err != nil {
		return fmt.Errorf("update part: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM parts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete part: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func scanPart(row pgx.Row) (*domain.Part, error) {
	var part domain.Part
	err := row.Scan(
		&part.ID,
		&part.Name,
		&part.Description,
		&part.Price,
		&part.StockQuantity,
		&part.DateOfDelivery,
		&part.CreatedAt,
		&part.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &part, nil
}
