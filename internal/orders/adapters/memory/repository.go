package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/partshub/api/internal/orders/domain"
)

// Repository provides an in-memory store useful for local development and tests.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{orders: make(map[string]domain.Order)}
}

// Create stores a new order instance.
func (r *Repository) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := order
	return &copy, nil
}

// ListByUser returns the user's orders, newest first.
func (r *Repository) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.Order{}
	for _, order := range r.orders {
		if order.UserID == userID {
			result = append(result, order)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// MarkPaid completes payment, guarded against double payment.
func (r *Repository) MarkPaid(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if order.PaymentStatus == domain.PaymentCompleted {
		return nil, domain.ErrAlreadyPaid
	}

	order.PaymentStatus = domain.PaymentCompleted
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order

	copy := order
	return &copy, nil
}

// MarkCancelled cancels the order, honoring the shipped/delivered guards.
func (r *Repository) MarkCancelled(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	switch order.Status {
	case domain.StatusShipped, domain.StatusDelivered:
		return nil, domain.ErrAlreadyShipped
	case domain.StatusCancelled:
		return nil, domain.ErrAlreadyCancelled
	}

	order.Status = domain.StatusCancelled
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order

	copy := order
	return &copy, nil
}

// SetStatus overrides the fulfillment status directly. The shipped and
// delivered states arrive from an external fulfillment process; this hook
// stands in for it in development and tests.
func (r *Repository) SetStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	r.orders[id] = order
	return nil
}
