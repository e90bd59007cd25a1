package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/trackflow/tracking-service/internal/core/domain"
)

type stubAuthService struct {
	registerFn     func(ctx context.Context, email, password, role string) (*domain.User, error)
	loginFn        func(ctx context.Context, email, password string) (string, *domain.User, error)
	createAPIKeyFn func(ctx context.Context, userID, label string) (string, *domain.APIKey, error)
}

func (s *stubAuthService) Register(ctx context.Context, email, password, role string) (*domain.User, error) {
	return s.registerFn(ctx, email, password, role)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) CreateAPIKey(ctx context.Context, userID, label string) (string, *domain.APIKey, error) {
	return s.createAPIKeyFn(ctx, userID, label)
}

func (s *stubAuthService) AuthenticateAPIKey(context.Context, string) (*domain.APIKey, error) {
	return nil, domain.ErrInvalidAPIKey
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, email, password, role string) (*domain.User, error) {
			if email != "alice@example.com" || password != "secret123" || role != domain.RoleUser {
				t.Fatalf("unexpected args: %s %s %s", email, password, role)
			}
			return &domain.User{ID: "user-1", Email: email, Role: role}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/auth/register", `{"email":"alice@example.com","password":"secret123"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["email"] != "alice@example.com" || user["role"] != "user" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, email, password, role string) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/auth/register", `{"email":"bob@example.com","password":"secret123"}`)
	err := handler.Register(c)

	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, email, password, role string) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	for _, body := range []string{
		"not-json",
		`{"email":"not-an-email","password":"secret123"}`,
		`{"email":"bob@example.com","password":"short"}`,
	} {
		c, _ := newTestContext(http.MethodPost, "/auth/register", body)
		if code := httpCode(t, handler.Register(c)); code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, code)
		}
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return "token123", &domain.User{ID: "user-1", Email: email, Role: "admin"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"secret"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["email"] != "alice@example.com" || user["role"] != "admin" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"bad"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/auth/login", "{")
	if code := httpCode(t, handler.Login(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_CreateAPIKey(t *testing.T) {
	stub := &stubAuthService{
		createAPIKeyFn: func(ctx context.Context, userID, label string) (string, *domain.APIKey, error) {
			if userID != "user-1" || label != "shop" {
				t.Fatalf("unexpected args: %s %s", userID, label)
			}
			return "tf_0123abcd_secret", &domain.APIKey{ID: "key-1", UserID: userID, Prefix: "0123abcd", KeyHash: "hash"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/v1/api-keys", `{"label":"shop"}`)
	withUser(c, "user-1", domain.RoleUser)
	if err := handler.CreateAPIKey(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["key"] != "tf_0123abcd_secret" {
		t.Fatalf("expected plaintext key, got %v", resp["key"])
	}
	key := resp["api_key"].(map[string]any)
	if _, leaked := key["key_hash"]; leaked {
		t.Fatalf("key hash must not be serialized")
	}
}

func TestAuthHandler_CreateAPIKey_RequiresClaims(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(http.MethodPost, "/v1/api-keys", `{}`)
	if code := httpCode(t, handler.CreateAPIKey(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}
