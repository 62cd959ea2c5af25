package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/partshub/api/internal/catalog/domain"
	"github.com/partshub/api/internal/catalog/ports"
	"github.com/partshub/api/internal/clock"
	"github.com/shopspring/decimal"
)

// Service bundles catalog use cases. Reads are public; writes are gated to
// administrators at the transport layer.
type Service struct {
	repo  ports.PartRepository
	clock clock.Clock
}

func NewService(repo ports.PartRepository, clk clock.Clock) *Service {
	return &Service{repo: repo, clock: clk}
}

// CreatePartInput captures payload for adding a part to the catalog.
type CreatePartInput struct {
	Name           string
	Description    string
	Price          decimal.Decimal
	StockQuantity  int
	DateOfDelivery *time.Time
}

// CreatePart validates and stores a new catalog part.
func (s *Service) CreatePart(ctx context.Context, input CreatePartInput) (*domain.Part, error) {
	now := s.clock.Now()
	part := domain.Part{
		ID:             uuid.NewString(),
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		StockQuantity:  input.StockQuantity,
		DateOfDelivery: input.DateOfDelivery,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := part.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, part); err != nil {
		return nil, err
	}

	return &part, nil
}

// GetPart retrieves a single part.
func (s *Service) GetPart(ctx context.Context, id string) (*domain.Part, error) {
	return s.repo.GetByID(ctx, id)
}

// GetParts resolves a set of part ids in one batch read. The result may be
// smaller than the request when ids do not exist; no stock is reserved.
func (s *Service) GetParts(ctx context.Context, ids []string) (map[string]domain.Part, error) {
	return s.repo.GetByIDs(ctx, ids)
}

// ListParts returns parts matching the filter, newest first.
func (s *Service) ListParts(ctx context.Context, filter ports.ListFilter) ([]domain.Part, error) {
	return s.repo.List(ctx, filter)
}

// UpdatePart applies a partial update and persists the result.
func (s *Service) UpdatePart(ctx context.Context, id string, patch domain.Patch) (*domain.Part, error) {
	part, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(part)
	part.UpdatedAt = s.clock.Now()

	if err := part.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, *part); err != nil {
		return nil, err
	}

	return part, nil
}

// DeletePart removes a part from the catalog.
func (s *Service) DeletePart(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
