package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/partshub/api/internal/catalog/domain"
	"github.com/partshub/api/internal/catalog/ports"
)

// Repository provides an in-memory catalog useful for local development and tests.
type Repository struct {
	mu    sync.RWMutex
	parts map[string]domain.Part
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{parts: make(map[string]domain.Part)}
}

func (r *Repository) Create(_ context.Context, part domain.Part) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parts[part.ID] = part
	return nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Part, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	part, ok := r.parts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := part
	return &copy, nil
}

func (r *Repository) GetByIDs(_ context.Context, ids []string) (map[string]domain.Part, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]domain.Part, len(ids))
	for _, id := range ids {
		if part, ok := r.parts[id]; ok {
			result[id] = part
		}
	}
	return result, nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Part, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.Part{}
	for _, part := range r.parts {
		if filter.NameQuery != "" && !strings.Contains(strings.ToLower(part.Name), strings.ToLower(filter.NameQuery)) {
			continue
		}
		if filter.MinPrice != nil && part.Price.LessThan(*filter.MinPrice) {
			continue
		}
		if filter.MaxPrice != nil && part.Price.GreaterThan(*filter.MaxPrice) {
			continue
		}
		result = append(result, part)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *Repository) Update(_ context.Context, part domain.Part) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parts[part.ID]; !ok {
		return domain.ErrNotFound
	}
	r.parts[part.ID] = part
	return nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.parts, id)
	return nil
}
