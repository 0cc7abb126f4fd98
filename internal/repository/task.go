package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskhub/student-task-service/internal/entity"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {

	query := `
	INSERT INTO tasks (id, owner_id, title, description, due_date, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, owner_id, title, description, due_date, status, created_at, updated_at
	`

	var createdTask entity.Task
	err := r.db.QueryRow(ctx, query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		task.DueDate,
		task.Status,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(
		&createdTask.ID,
		&createdTask.OwnerID,
		&createdTask.Title,
		&createdTask.Description,
		&createdTask.DueDate,
		&createdTask.Status,
		&createdTask.CreatedAt,
		&createdTask.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &createdTask, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*entity.Task, error) {

	query := `
	SELECT id, owner_id, title, description, due_date, status, created_at, updated_at
	FROM tasks
	WHERE id = $1
	`
	var task entity.Task

	err := r.db.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.Status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &task, nil
}

// Update - частичное обновление: в запрос попадают только переданные поля.
// updated_at всегда обновляется сервером.
func (r *TaskRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*entity.Task, error) {
	setClause := ""
	args := []interface{}{}
	argIndex := 1

	for field, value := range updates {
		if field == "updated_at" {
			continue // не обновляем вручную
		}
		if argIndex > 1 {
			setClause += ", "
		}
		setClause += field + " = $" + strconv.Itoa(argIndex)
		args = append(args, value)
		argIndex++
	}

	if argIndex > 1 {
		setClause += ", updated_at = CURRENT_TIMESTAMP"
	}

	query := `
        UPDATE tasks
        SET ` + setClause + `
        WHERE id = $` + strconv.Itoa(argIndex) + `
        RETURNING id, owner_id, title, description, due_date, status, created_at, updated_at
    `
	args = append(args, id)

	var task entity.Task
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.Status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &task, nil
}

// Delete - удаление задачи. Возвращает false, если строки уже нет:
// повторный delete того же id должен отдать not found, а не второй успех.
func (r *TaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM tasks WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// List - задачи владельца, новые сверху. seq фиксирует порядок вставки
// для задач с одинаковым created_at.
func (r *TaskRepository) List(ctx context.Context, ownerID string, status string) ([]entity.Task, error) {
	query := `
        SELECT id, owner_id, title, description, due_date, status, created_at, updated_at
        FROM tasks
        WHERE owner_id = $1
    `
	args := []interface{}{ownerID}

	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}

	query += " ORDER BY created_at DESC, seq ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]entity.Task, 0)
	for rows.Next() {
		var task entity.Task
		err := rows.Scan(
			&task.ID,
			&task.OwnerID,
			&task.Title,
			&task.Description,
			&task.DueDate,
			&task.Status,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}
