package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/taskhub/student-task-service/internal/entity"
	"github.com/taskhub/student-task-service/internal/infrastructure/auth"
	"github.com/taskhub/student-task-service/internal/repository"
)

// MockUserRepository - мок для IUserRepository
type MockUserRepository struct {
	CreateWithAuthFunc  func(ctx context.Context, name, email, passwordHash string) (*entity.User, error)
	GetByIDFunc         func(ctx context.Context, id string) (*entity.User, error)
	GetByEmailFunc      func(ctx context.Context, email string) (*entity.User, error)
	UpdateLastLoginFunc func(ctx context.Context, id string, at time.Time) error
}

var _ repository.IUserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) CreateWithAuth(ctx context.Context, name, email, passwordHash string) (*entity.User, error) {
	if m.CreateWithAuthFunc != nil {
		return m.CreateWithAuthFunc(ctx, name, email, passwordHash)
	}
	return nil, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if m.UpdateLastLoginFunc != nil {
		return m.UpdateLastLoginFunc(ctx, id, at)
	}
	return nil
}

// MockRefreshTokenRepository - мок для IRefreshTokenRepository
type MockRefreshTokenRepository struct {
	SaveFunc      func(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error
	GetByHashFunc func(ctx context.Context, tokenHash string) (*repository.RefreshToken, error)
	RevokeFunc    func(ctx context.Context, tokenHash string) error
	RevokeAllFunc func(ctx context.Context, userID string) error
}

var _ repository.IRefreshTokenRepository = (*MockRefreshTokenRepository)(nil)

func (m *MockRefreshTokenRepository) Save(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, userID, tokenHash, expiresAt)
	}
	return nil
}

func (m *MockRefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*repository.RefreshToken, error) {
	if m.GetByHashFunc != nil {
		return m.GetByHashFunc(ctx, tokenHash)
	}
	return nil, nil
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, tokenHash)
	}
	return nil
}

func (m *MockRefreshTokenRepository) RevokeAll(ctx context.Context, userID string) error {
	if m.RevokeAllFunc != nil {
		return m.RevokeAllFunc(ctx, userID)
	}
	return nil
}

func (m *MockRefreshTokenRepository) CleanupExpired(ctx context.Context) error {
	return nil
}

func newTestAuthService(userRepo repository.IUserRepository, tokenRepo repository.IRefreshTokenRepository) *AuthService {
	return NewAuthService(userRepo, tokenRepo, auth.NewPasswordManager(), auth.NewJWTManager())
}

func TestRegisterSuccess(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	ctx := context.Background()

	mockUserRepo := &MockUserRepository{
		CreateWithAuthFunc: func(ctx context.Context, name, email, passwordHash string) (*entity.User, error) {
			if passwordHash == "password123" {
				t.Error("Expected hashed password, got plaintext")
			}
			return &entity.User{ID: "u1", Name: name, Email: &email, IsActive: true}, nil
		},
	}

	saved := false
	mockTokenRepo := &MockRefreshTokenRepository{
		SaveFunc: func(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error {
			saved = true
			return nil
		},
	}

	service := newTestAuthService(mockUserRepo, mockTokenRepo)

	resp, err := service.Register(ctx, &entity.RegisterRequest{
		Name:     "Test User",
		Email:    "user@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("Expected token pair in response")
	}
	if resp.User.ID != "u1" {
		t.Errorf("Expected user u1, got %s", resp.User.ID)
	}
	if !saved {
		t.Error("Expected refresh token hash to be saved")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	ctx := context.Background()

	email := "user@example.com"
	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, e string) (*entity.User, error) {
			return &entity.User{ID: "u1", Email: &email}, nil
		},
	}

	service := newTestAuthService(mockUserRepo, &MockRefreshTokenRepository{})

	_, err := service.Register(ctx, &entity.RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "password123",
	})
	if err != entity.ErrUserExists {
		t.Errorf("Expected ErrUserExists, got %v", err)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	ctx := context.Background()

	service := newTestAuthService(&MockUserRepository{}, &MockRefreshTokenRepository{})

	_, err := service.Register(ctx, &entity.RegisterRequest{
		Name:     "Test User",
		Email:    "user@example.com",
		Password: "short",
	})
	if err != entity.ErrInvalidUserData {
		t.Errorf("Expected ErrInvalidUserData, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	ctx := context.Background()

	pm := auth.NewPasswordManager()
	hash, _ := pm.HashPassword("correct-password")

	email := "user@example.com"
	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, e string) (*entity.User, error) {
			return &entity.User{ID: "u1", Email: &email, PasswordHash: hash, IsActive: true}, nil
		},
	}

	service := newTestAuthService(mockUserRepo, &MockRefreshTokenRepository{})

	_, err := service.Login(ctx, &entity.LoginRequest{Email: email, Password: "wrong-password"})
	if err != entity.ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}

	// Несуществующий email дает ту же ошибку - не раскрываем, кто зарегистрирован
	mockUserRepo.GetByEmailFunc = func(ctx context.Context, e string) (*entity.User, error) {
		return nil, nil
	}
	_, err = service.Login(ctx, &entity.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	if err != entity.ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	ctx := context.Background()

	pm := auth.NewPasswordManager()
	hash, _ := pm.HashPassword("correct-password")

	email := "user@example.com"
	lastLoginUpdated := false
	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, e string) (*entity.User, error) {
			return &entity.User{ID: "u1", Email: &email, PasswordHash: hash, IsActive: true}, nil
		},
		UpdateLastLoginFunc: func(ctx context.Context, id string, at time.Time) error {
			lastLoginUpdated = true
			return nil
		},
	}

	service := newTestAuthService(mockUserRepo, &MockRefreshTokenRepository{})

	resp, err := service.Login(ctx, &entity.LoginRequest{Email: email, Password: "correct-password"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("Expected token pair in response")
	}
	if !lastLoginUpdated {
		t.Error("Expected last_login to be updated")
	}
}

func TestRefreshRevokedToken(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	ctx := context.Background()

	jwtManager := auth.NewJWTManager()
	refreshToken, _ := jwtManager.GenerateRefreshToken("u1", "user@example.com")

	// Подпись валидна, но в БД токена нет (отозван или истек)
	mockTokenRepo := &MockRefreshTokenRepository{
		GetByHashFunc: func(ctx context.Context, tokenHash string) (*repository.RefreshToken, error) {
			return nil, nil
		},
	}

	service := newTestAuthService(&MockUserRepository{}, mockTokenRepo)

	_, err := service.RefreshToken(ctx, refreshToken)
	if err != entity.ErrTokenInvalid {
		t.Errorf("Expected ErrTokenInvalid, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	ctx := context.Background()

	jwtManager := auth.NewJWTManager()
	refreshToken, _ := jwtManager.GenerateRefreshToken("u1", "user@example.com")

	revoked := false
	savedNew := false
	mockTokenRepo := &MockRefreshTokenRepository{
		GetByHashFunc: func(ctx context.Context, tokenHash string) (*repository.RefreshToken, error) {
			return &repository.RefreshToken{UserID: "u1", TokenHash: tokenHash}, nil
		},
		RevokeFunc: func(ctx context.Context, tokenHash string) error {
			revoked = true
			return nil
		},
		SaveFunc: func(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error {
			savedNew = true
			return nil
		},
	}

	service := newTestAuthService(&MockUserRepository{}, mockTokenRepo)

	resp, err := service.RefreshToken(ctx, refreshToken)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("Expected new token pair")
	}
	if !revoked || !savedNew {
		t.Error("Expected old token revoked and new token saved")
	}
}
