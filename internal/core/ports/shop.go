package ports

import (
	"context"

	"github.com/trackflow/tracking-service/internal/core/domain"
)

// ShopRepository reads merchant branding.
type ShopRepository interface {
	FindBySlug(ctx context.Context, slug string) (*domain.Shop, error)
}
