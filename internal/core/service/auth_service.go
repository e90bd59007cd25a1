package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/trackflow/tracking-service/internal/core/domain"
	"github.com/trackflow/tracking-service/internal/core/ports"
)

const apiKeyPrefix = "tf_"

// AuthService implements registration, login and API keys.
type AuthService struct {
	repo      ports.AuthRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(repo ports.AuthRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *AuthService) Register(ctx context.Context, email, password, role string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// CreateAPIKey issues a new key for userID. The plaintext is returned once
// and never stored.
func (s *AuthService) CreateAPIKey(ctx context.Context, userID, label string) (string, *domain.APIKey, error) {
	if userID == "" {
		return "", nil, domain.ErrForbidden
	}

	prefix, err := randomHex(4)
	if err != nil {
		return "", nil, err
	}
	secret, err := randomHex(16)
	if err != nil {
		return "", nil, err
	}
	plaintext := apiKeyPrefix + prefix + "_" + secret

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	key := &domain.APIKey{
		UserID:    userID,
		Prefix:    prefix,
		KeyHash:   string(hash),
		CreatedAt: time.Now().UTC(),
	}
	if label = strings.TrimSpace(label); label != "" {
		key.Label = &label
	}

	if err := s.repo.CreateAPIKey(ctx, key); err != nil {
		return "", nil, fmt.Errorf("create api key: %w", err)
	}
	return plaintext, key, nil
}

// AuthenticateAPIKey resolves a plaintext key and records its use.
func (s *AuthService) AuthenticateAPIKey(ctx context.Context, plaintext string) (*domain.APIKey, error) {
	prefix, ok := parseAPIKey(plaintext)
	if !ok {
		return nil, domain.ErrInvalidAPIKey
	}

	candidates, err := s.repo.FindAPIKeysByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("authenticate api key: %w", err)
	}

	for _, key := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(plaintext)) != nil {
			continue
		}
		now := time.Now().UTC()
		// Usage accounting is not worth rejecting an otherwise valid key.
		_ = s.repo.TouchAPIKey(ctx, key.ID, now)
		key.LastUsedAt = &now
		key.RequestsThisMonth++
		return key, nil
	}
	return nil, domain.ErrInvalidAPIKey
}

// parseAPIKey extracts the lookup prefix from tf_<prefix>_<secret>.
func parseAPIKey(plaintext string) (string, bool) {
	if !strings.HasPrefix(plaintext, apiKeyPrefix) {
		return "", false
	}
	prefix, secret, ok := strings.Cut(strings.TrimPrefix(plaintext, apiKeyPrefix), "_")
	if !ok || prefix == "" || secret == "" {
		return "", false
	}
	return prefix, true
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
