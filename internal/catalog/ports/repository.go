package ports

import (
	"context"

	"github.com/partshub/api/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

// ListFilter narrows public catalog queries.
type ListFilter struct {
	NameQuery string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
}

// PartRepository exposes persistence operations for catalog parts.
type PartRepository interface {
	Create(ctx context.Context, part domain.Part) error
	GetByID(ctx context.Context, id string) (*domain.Part, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Part, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Part, error)
	Update(ctx context.Context, part domain.Part) error
	Delete(ctx context.Context, id string) error
}
