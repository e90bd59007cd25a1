package ports

import (
	"context"
	"time"

	"github.com/trackflow/tracking-service/internal/core/domain"
)

// AuthRepository defines persistence for accounts and API keys.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	CreateAPIKey(ctx context.Context, key *domain.APIKey) error
	FindAPIKeysByPrefix(ctx context.Context, prefix string) ([]*domain.APIKey, error)
	TouchAPIKey(ctx context.Context, id string, usedAt time.Time) error
}

// AuthService handles accounts, login tokens and API keys.
type AuthService interface {
	Register(ctx context.Context, email, password, role string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	CreateAPIKey(ctx context.Context, userID, label string) (plaintext string, key *domain.APIKey, err error)
	AuthenticateAPIKey(ctx context.Context, plaintext string) (*domain.APIKey, error)
}
