package ports

import (
	"context"

	"github.com/partshub/api/internal/orders/domain"
)

// OrderRepository exposes persistence operations required by the application layer.
//
// MarkPaid and MarkCancelled are conditional updates: the storage layer must
// apply them only when the current state still allows the transition, so two
// concurrent callers cannot both succeed. A failed condition surfaces as the
// corresponding conflict error from the domain package.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	MarkPaid(ctx context.Context, id string) (*domain.Order, error)
	MarkCancelled(ctx context.Context, id string) (*domain.Order, error)
}
