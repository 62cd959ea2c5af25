package ports

import (
	"context"

	"github.com/partshub/api/internal/users/domain"
)

// UserRepository exposes persistence operations required by the application layer.
// Create must enforce email uniqueness and return domain.ErrEmailTaken when
// two registrations race on the same address.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user domain.User) error
	Delete(ctx context.Context, id string) error
}
