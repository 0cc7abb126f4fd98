package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/taskhub/student-task-service/internal/entity"
	"github.com/taskhub/student-task-service/internal/infrastructure/auth"
	"github.com/taskhub/student-task-service/internal/repository"
)

const refreshTokenTTL = 7 * 24 * time.Hour

type AuthService struct {
	userRepo         repository.IUserRepository
	refreshTokenRepo repository.IRefreshTokenRepository
	passwordManager  *auth.PasswordManager
	jwtManager       *auth.JWTManager
}

func NewAuthService(
	userRepo repository.IUserRepository,
	refreshTokenRepo repository.IRefreshTokenRepository,
	passwordManager *auth.PasswordManager,
	jwtManager *auth.JWTManager,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		passwordManager:  passwordManager,
		jwtManager:       jwtManager,
	}
}

// Register регистрирует нового пользователя и сразу выдает пару токенов
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.LoginResponse, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || len(req.Password) < 8 {
		return nil, entity.ErrInvalidUserData
	}

	// Проверяем, что пользователь с таким email не существует
	existingUser, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, entity.ErrUserExists
	}

	// Хешируем пароль
	passwordHash, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Создаем пользователя
	user, err := s.userRepo.CreateWithAuth(ctx, req.Name, req.Email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Login логинит пользователя
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, entity.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, entity.ErrInvalidCredentials
	}

	if !s.passwordManager.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, entity.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// RefreshToken меняет действующий refresh token на новую пару токенов
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenStr string) (*entity.RefreshTokenResponse, error) {
	// Проверяем подпись и срок refresh token
	claims, err := s.jwtManager.ValidateRefreshToken(refreshTokenStr)
	if err != nil {
		return nil, err
	}

	// Проверяем, что токен не отозван
	refreshTokenHash := s.hashToken(refreshTokenStr)
	storedToken, err := s.refreshTokenRepo.GetByHash(ctx, refreshTokenHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	if storedToken == nil {
		return nil, entity.ErrTokenInvalid
	}

	newAccessToken, err := s.jwtManager.GenerateAccessToken(claims.UserID, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate new access token: %w", err)
	}

	newRefreshToken, err := s.jwtManager.GenerateRefreshToken(claims.UserID, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate new refresh token: %w", err)
	}

	// Отзываем старый refresh token
	if err := s.refreshTokenRepo.Revoke(ctx, refreshTokenHash); err != nil {
		return nil, fmt.Errorf("failed to revoke old refresh token: %w", err)
	}

	// Сохраняем новый
	newRefreshTokenHash := s.hashToken(newRefreshToken)
	expiresAt := time.Now().Add(refreshTokenTTL)
	if err := s.refreshTokenRepo.Save(ctx, claims.UserID, newRefreshTokenHash, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to save new refresh token: %w", err)
	}

	return &entity.RefreshTokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// Logout отзывает все refresh токены пользователя
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.refreshTokenRepo.RevokeAll(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *entity.User) (*entity.LoginResponse, error) {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Сохраняем хеш refresh token в БД
	refreshTokenHash := s.hashToken(refreshToken)
	expiresAt := time.Now().Add(refreshTokenTTL)
	if err := s.refreshTokenRepo.Save(ctx, user.ID, refreshTokenHash, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	// Обновляем last_login
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to update last_login: %w", err)
	}

	return &entity.LoginResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// hashToken генерирует хеш токена для хранения в БД
func (s *AuthService) hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
