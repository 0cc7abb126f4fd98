package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/taskhub/student-task-service/internal/entity"
)

type JWTManager struct {
	secretKey string
}

func NewJWTManager() *JWTManager {
	secretKey := os.Getenv("JWT_SECRET_KEY")
	if secretKey == "" {
		secretKey = "your-secret-key-change-in-production" // Default для разработки
	}
	return &JWTManager{
		secretKey: secretKey,
	}
}

// GenerateAccessToken генерирует access token на 15 минут
func (m *JWTManager) GenerateAccessToken(userID string, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(15 * time.Minute).Unix(),
		"iat":     time.Now().Unix(),
		"type":    "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// GenerateRefreshToken генерирует refresh token на 7 дней
func (m *JWTManager) GenerateRefreshToken(userID string, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(7 * 24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
		"type":    "refresh",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken проверяет access token
func (m *JWTManager) ValidateAccessToken(tokenString string) (*entity.JWTClaims, error) {
	return m.validateToken(tokenString, "access")
}

// ValidateRefreshToken проверяет refresh token
func (m *JWTManager) ValidateRefreshToken(tokenString string) (*entity.JWTClaims, error) {
	return m.validateToken(tokenString, "refresh")
}

func (m *JWTManager) validateToken(tokenString string, tokenType string) (*entity.JWTClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, entity.ErrTokenExpired
		}
		return nil, entity.ErrTokenInvalid
	}

	if !token.Valid {
		return nil, entity.ErrTokenInvalid
	}

	// Проверяем тип токена: access нельзя подменить refresh'ем и наоборот
	typ, ok := claims["type"].(string)
	if !ok || typ != tokenType {
		return nil, entity.ErrTokenInvalid
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, entity.ErrTokenInvalid
	}

	email, _ := claims["email"].(string)

	return &entity.JWTClaims{
		UserID: userID,
		Email:  email,
	}, nil
}

// Verify реализует TokenVerifier для auth-middleware:
// bearer-токен -> идентификатор вызывающего.
func (m *JWTManager) Verify(tokenString string) (string, error) {
	claims, err := m.ValidateAccessToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
