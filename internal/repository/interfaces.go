package repository

import (
	"context"
	"time"

	"github.com/taskhub/student-task-service/internal/entity"
)

// ITaskRepository - интерфейс для хранилища задач. Две реализации:
// Postgres (prod) и in-memory (тесты, локальный запуск без БД).
type ITaskRepository interface {
	Create(ctx context.Context, task *entity.Task) (*entity.Task, error)
	GetByID(ctx context.Context, id string) (*entity.Task, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (*entity.Task, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, ownerID string, status string) ([]entity.Task, error)
}

// IUserRepository - интерфейс для UserRepository
type IUserRepository interface {
	CreateWithAuth(ctx context.Context, name, email, passwordHash string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// IRefreshTokenRepository - интерфейс для RefreshTokenRepository
type IRefreshTokenRepository interface {
	Save(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error
	GetByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAll(ctx context.Context, userID string) error
	CleanupExpired(ctx context.Context) error
}

// ITaskAuditRepository - интерфейс для TaskAuditRepository
type ITaskAuditRepository interface {
	Create(ctx context.Context, audit *entity.TaskAudit) error
	ListByEntityID(ctx context.Context, entityID string) ([]entity.TaskAudit, error)
}
