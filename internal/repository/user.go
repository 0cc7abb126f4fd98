package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskhub/student-task-service/internal/entity"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// создаем пользователя с учетными данными
func (r *UserRepository) CreateWithAuth(ctx context.Context, name, email, passwordHash string) (*entity.User, error) {

	query := `
	INSERT INTO users (id, name, email, password_hash)
	VALUES ($1, $2, $3, $4)
	RETURNING id, name, email, password_hash, is_active, last_login, created_at, updated_at
	`

	var createdUser entity.User

	err := r.db.QueryRow(ctx, query, uuid.NewString(), name, email, passwordHash).Scan(
		&createdUser.ID,
		&createdUser.Name,
		&createdUser.Email,
		&createdUser.PasswordHash,
		&createdUser.IsActive,
		&createdUser.LastLogin,
		&createdUser.CreatedAt,
		&createdUser.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &createdUser, nil
}

// получаем данные по id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `
	SELECT id, name, email, password_hash, is_active, last_login, created_at, updated_at
	FROM users
	WHERE id = $1
	`
	var user entity.User

	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// получаем данные по email (для логина)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `
	SELECT id, name, email, password_hash, is_active, last_login, created_at, updated_at
	FROM users
	WHERE email = $1
	`
	var user entity.User

	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// UpdateLastLogin - отметка времени последнего входа
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	query := `
	UPDATE users
	SET last_login = $1, updated_at = CURRENT_TIMESTAMP
	WHERE id = $2
	`

	result, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
