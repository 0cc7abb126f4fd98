package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/student-task-service/internal/entity"
	"github.com/taskhub/student-task-service/internal/repository"
)

// AuditPublisher интерфейс для публикации аудит-сообщений в RabbitMQ
type AuditPublisher interface {
	PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error
}

type TaskService struct {
	taskRepo  repository.ITaskRepository
	auditRepo repository.ITaskAuditRepository
	publisher AuditPublisher
}

func NewTaskService(
	taskRepo repository.ITaskRepository,
	auditRepo repository.ITaskAuditRepository,
	publisher AuditPublisher,
) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		auditRepo: auditRepo,
		publisher: publisher,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, callerID string, req *entity.CreateTaskRequest) (*entity.Task, error) {
	// 1. Обязательные поля: title, dueDate, status
	if strings.TrimSpace(req.Title) == "" ||
		strings.TrimSpace(req.DueDate) == "" ||
		strings.TrimSpace(string(req.Status)) == "" {
		return nil, entity.ErrInvalidTaskData
	}

	// 2. Владелец - всегда вызывающий, id и метки времени назначает сервер
	now := time.Now().UTC()
	task := &entity.Task{
		ID:          uuid.NewString(),
		OwnerID:     callerID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	// 3. Асинхронно отправляем аудит
	s.sendAuditMessage(entity.ActionCreate, callerID, created.ID, nil, created, nil)

	return created, nil
}

func (s *TaskService) GetTask(ctx context.Context, callerID string, taskID string) (*entity.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	// Чужая задача неотличима от несуществующей: не раскрываем
	// сам факт ее существования
	if task == nil || task.OwnerID != callerID {
		return nil, entity.ErrTaskNotFound
	}

	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, callerID string, taskID string, req *entity.UpdateTaskRequest) (*entity.Task, error) {
	// 1. Собираем обновления из переданных полей
	updates := make(map[string]interface{})

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, entity.ErrInvalidTaskData
		}
		updates["title"] = *req.Title
	}

	if req.Description.Set {
		if req.Description.Valid {
			updates["description"] = req.Description.Value
		} else {
			updates["description"] = nil // явная очистка
		}
	}

	if req.DueDate != nil {
		if strings.TrimSpace(*req.DueDate) == "" {
			return nil, entity.ErrInvalidTaskData
		}
		updates["due_date"] = *req.DueDate
	}

	if req.Status != nil {
		if strings.TrimSpace(string(*req.Status)) == "" {
			return nil, entity.ErrInvalidTaskData
		}
		updates["status"] = *req.Status
	}

	if len(updates) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}

	// 2. Текущая задача + проверка владельца
	oldTask, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if oldTask == nil || oldTask.OwnerID != callerID {
		return nil, entity.ErrTaskNotFound
	}

	// 3. Обновляем. Между Get и Update нет блокировки: при двух одновременных
	// обновлениях одного владельца побеждает последняя запись.
	updatedTask, err := s.taskRepo.Update(ctx, taskID, updates)
	if err != nil {
		return nil, err
	}
	if updatedTask == nil {
		return nil, entity.ErrTaskNotFound
	}

	// 4. Асинхронно отправляем аудит
	s.sendAuditMessage(entity.ActionUpdate, callerID, taskID, oldTask, updatedTask, updates)

	return updatedTask, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, callerID string, taskID string) error {
	// 1. Получаем задачу (для аудита и проверки прав)
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil || task.OwnerID != callerID {
		return entity.ErrTaskNotFound
	}

	// 2. Удаляем. Повторный delete того же id снова отдает not found
	deleted, err := s.taskRepo.Delete(ctx, taskID)
	if err != nil {
		return err
	}
	if !deleted {
		return entity.ErrTaskNotFound
	}

	// 3. Асинхронно отправляем аудит
	s.sendAuditMessage(entity.ActionDelete, callerID, taskID, task, nil, nil)

	return nil
}

func (s *TaskService) ListTasks(ctx context.Context, callerID string, status string) ([]entity.Task, error) {
	return s.taskRepo.List(ctx, callerID, status)
}

// GetTaskAudit - история изменений задачи, доступна только владельцу
func (s *TaskService) GetTaskAudit(ctx context.Context, callerID string, taskID string) ([]entity.TaskAudit, error) {
	if _, err := s.GetTask(ctx, callerID, taskID); err != nil {
		return nil, err
	}
	if s.auditRepo == nil {
		return []entity.TaskAudit{}, nil
	}
	return s.auditRepo.ListByEntityID(ctx, taskID)
}

// Вспомогательный метод для отправки аудита
func (s *TaskService) sendAuditMessage(
	action entity.ActionType,
	callerID string,
	taskID string,
	oldTask *entity.Task,
	newTask *entity.Task,
	updates map[string]interface{},
) {
	if s.publisher == nil {
		return
	}

	auditMsg := &entity.AuditMessage{
		Action:    action,
		UserID:    callerID,
		EntityID:  taskID,
		Timestamp: time.Now().UTC(),
	}

	switch action {
	case entity.ActionCreate:
		if newTask != nil {
			auditMsg.NewValues = taskValues(newTask)
		}

	case entity.ActionUpdate:
		if oldTask != nil && newTask != nil {
			auditMsg.OldValues = taskValues(oldTask)
			auditMsg.NewValues = taskValues(newTask)
			changes := make(map[string]interface{})
			if oldTask.Title != newTask.Title {
				changes["title"] = map[string]interface{}{"old": oldTask.Title, "new": newTask.Title}
			}
			if !equalDescription(oldTask.Description, newTask.Description) {
				changes["description"] = map[string]interface{}{"old": oldTask.Description, "new": newTask.Description}
			}
			if oldTask.DueDate != newTask.DueDate {
				changes["dueDate"] = map[string]interface{}{"old": oldTask.DueDate, "new": newTask.DueDate}
			}
			if oldTask.Status != newTask.Status {
				changes["status"] = map[string]interface{}{"old": oldTask.Status, "new": newTask.Status}
			}
			auditMsg.Changes = changes
		}

	case entity.ActionDelete:
		if oldTask != nil {
			auditMsg.OldValues = taskValues(oldTask)
		}
	}

	// Сбой аудита не должен ронять запрос - отправляем в фоне
	go func() {
		if err := s.publisher.PublishAuditMessage(context.Background(), auditMsg); err != nil {
			log.Printf("❌ Ошибка отправки аудита в RabbitMQ: %v", err)
		}
	}()
}

func taskValues(t *entity.Task) map[string]interface{} {
	return map[string]interface{}{
		"title":       t.Title,
		"description": t.Description,
		"dueDate":     t.DueDate,
		"status":      t.Status,
		"ownerId":     t.OwnerID,
	}
}

func equalDescription(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
