package ports

import (
	"context"

	"github.com/partshub/api/internal/orders/domain"
)

// PartsReader resolves part identifiers against the catalog in one batch read.
// The returned map may be smaller than the requested set when ids do not
// exist; callers compare sizes to detect that. Lookups never reserve stock.
type PartsReader interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Part, error)
}
