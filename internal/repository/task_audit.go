package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskhub/student-task-service/internal/entity"
)

type TaskAuditRepository struct {
	db *pgxpool.Pool
}

func NewTaskAuditRepository(db *pgxpool.Pool) *TaskAuditRepository {
	return &TaskAuditRepository{
		db: db,
	}
}

func (r *TaskAuditRepository) Create(ctx context.Context, audit *entity.TaskAudit) error {
	query := `
	INSERT INTO task_audit (user_id, action, entity_type, entity_id, old_values, new_values, changes)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, changed_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		audit.UserID,
		audit.Action,
		audit.EntityType,
		audit.EntityID,
		audit.OldValues,
		audit.NewValues,
		audit.Changes,
	).Scan(&audit.ID, &audit.ChangedAt)

	return err
}

// ListByEntityID - история изменений задачи, новые записи сверху
func (r *TaskAuditRepository) ListByEntityID(ctx context.Context, entityID string) ([]entity.TaskAudit, error) {
	query := `
	SELECT id, user_id, action, entity_type, entity_id, old_values, new_values, changes, changed_at
	FROM task_audit
	WHERE entity_id = $1 AND entity_type = 'task'
	ORDER BY changed_at DESC
	`
	rows, err := r.db.Query(ctx, query, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	audits := make([]entity.TaskAudit, 0)
	for rows.Next() {
		var audit entity.TaskAudit
		err := rows.Scan(
			&audit.ID,
			&audit.UserID,
			&audit.Action,
			&audit.EntityType,
			&audit.EntityID,
			&audit.OldValues,
			&audit.NewValues,
			&audit.Changes,
			&audit.ChangedAt,
		)
		if err != nil {
			return nil, err
		}
		audits = append(audits, audit)
	}
	return audits, rows.Err()
}
