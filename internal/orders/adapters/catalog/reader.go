package catalog

import (
	"context"
	"fmt"

	catalogapp "github.com/partshub/api/internal/catalog/app"
	"github.com/partshub/api/internal/orders/domain"
)

// PartsReader exposes the catalog to the orders context, translating catalog
// parts into the slimmer view order fulfillment needs.
type PartsReader struct {
	catalog *catalogapp.Service
}

func NewPartsReader(catalog *catalogapp.Service) *PartsReader {
	return &PartsReader{catalog: catalog}
}

func (r *PartsReader) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Part, error) {
	parts, err := r.catalog.GetParts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog parts: %w", err)
	}

	result := make(map[string]domain.Part, len(parts))
	for id, part := range parts {
		result[id] = domain.Part{
			ID:             part.ID,
			Name:           part.Name,
			Price:          part.Price,
			StockQuantity:  part.StockQuantity,
			DateOfDelivery: part.DateOfDelivery,
		}
	}

	return result, nil
}
