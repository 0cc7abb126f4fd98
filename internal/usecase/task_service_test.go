package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/taskhub/student-task-service/internal/entity"
	"github.com/taskhub/student-task-service/internal/repository"
)

// MockTaskRepository - мок для ITaskRepository
type MockTaskRepository struct {
	CreateFunc  func(ctx context.Context, task *entity.Task) (*entity.Task, error)
	GetByIDFunc func(ctx context.Context, id string) (*entity.Task, error)
	UpdateFunc  func(ctx context.Context, id string, updates map[string]interface{}) (*entity.Task, error)
	DeleteFunc  func(ctx context.Context, id string) (bool, error)
	ListFunc    func(ctx context.Context, ownerID string, status string) ([]entity.Task, error)
}

var _ repository.ITaskRepository = (*MockTaskRepository)(nil)

func (m *MockTaskRepository) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, task)
	}
	return nil, nil
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTaskRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*entity.Task, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, updates)
	}
	return nil, nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return false, nil
}

func (m *MockTaskRepository) List(ctx context.Context, ownerID string, status string) ([]entity.Task, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, status)
	}
	return nil, nil
}

// MockTaskAuditRepository - мок для ITaskAuditRepository
type MockTaskAuditRepository struct {
	CreateFunc         func(ctx context.Context, audit *entity.TaskAudit) error
	ListByEntityIDFunc func(ctx context.Context, entityID string) ([]entity.TaskAudit, error)
}

var _ repository.ITaskAuditRepository = (*MockTaskAuditRepository)(nil)

func (m *MockTaskAuditRepository) Create(ctx context.Context, audit *entity.TaskAudit) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, audit)
	}
	return nil
}

func (m *MockTaskAuditRepository) ListByEntityID(ctx context.Context, entityID string) ([]entity.TaskAudit, error) {
	if m.ListByEntityIDFunc != nil {
		return m.ListByEntityIDFunc(ctx, entityID)
	}
	return nil, nil
}

// MockAuditPublisher - мок для AuditPublisher
type MockAuditPublisher struct {
	PublishAuditMessageFunc func(ctx context.Context, message *entity.AuditMessage) error
}

func (m *MockAuditPublisher) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	if m.PublishAuditMessageFunc != nil {
		return m.PublishAuditMessageFunc(ctx, message)
	}
	return nil
}

func strPtr(s string) *string { return &s }

// Tests

func TestCreateTaskSuccess(t *testing.T) {
	ctx := context.Background()

	var storedTask *entity.Task
	mockTaskRepo := &MockTaskRepository{
		CreateFunc: func(ctx context.Context, task *entity.Task) (*entity.Task, error) {
			storedTask = task
			return task, nil
		},
	}

	service := NewTaskService(mockTaskRepo, &MockTaskAuditRepository{}, &MockAuditPublisher{})

	req := &entity.CreateTaskRequest{
		Title:   "Write spec",
		DueDate: "2024-01-01",
		Status:  entity.StatusPending,
	}

	result, err := service.CreateTask(ctx, "u1", req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.ID == "" {
		t.Error("Expected generated task ID, got empty string")
	}
	if result.OwnerID != "u1" {
		t.Errorf("Expected owner u1, got %s", result.OwnerID)
	}
	if result.Description != nil {
		t.Errorf("Expected nil description, got %v", *result.Description)
	}
	if result.CreatedAt.IsZero() || result.UpdatedAt.IsZero() {
		t.Error("Expected server-assigned timestamps")
	}
	if storedTask == nil || storedTask.ID != result.ID {
		t.Error("Expected task to be passed to repository")
	}
}

func TestCreateTaskMissingFields(t *testing.T) {
	ctx := context.Background()

	repoCalled := false
	mockTaskRepo := &MockTaskRepository{
		CreateFunc: func(ctx context.Context, task *entity.Task) (*entity.Task, error) {
			repoCalled = true
			return task, nil
		},
	}

	service := NewTaskService(mockTaskRepo, &MockTaskAuditRepository{}, &MockAuditPublisher{})

	cases := []struct {
		name string
		req  entity.CreateTaskRequest
	}{
		{"no title", entity.CreateTaskRequest{DueDate: "2024-01-01", Status: entity.StatusPending}},
		{"no dueDate", entity.CreateTaskRequest{Title: "Task", Status: entity.StatusPending}},
		{"no status", entity.CreateTaskRequest{Title: "Task", DueDate: "2024-01-01"}},
		{"blank title", entity.CreateTaskRequest{Title: "   ", DueDate: "2024-01-01", Status: entity.StatusPending}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateTask(ctx, "u1", &tc.req)
			if err != entity.ErrInvalidTaskData {
				t.Errorf("Expected ErrInvalidTaskData, got %v", err)
			}
		})
	}

	if repoCalled {
		t.Error("Expected repository to stay untouched on validation failure")
	}
}

func TestGetTaskForeignOwner(t *testing.T) {
	ctx := context.Background()

	mockTaskRepo := &MockTaskRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.Task, error) {
			return &entity.Task{ID: id, OwnerID: "u1", Title: "Secret"}, nil
		},
	}

	service := NewTaskService(mockTaskRepo, &MockTaskAuditRepository{}, &MockAuditPublisher{})

	// Чужая задача должна выглядеть как несуществующая, не как forbidden
	result, err := service.GetTask(ctx, "u2", "task-1")
	if err != entity.ErrTaskNotFound {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil task, got %v", result)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	ctx := context.Background()

	service := NewTaskService(&MockTaskRepository{}, &MockTaskAuditRepository{}, &MockAuditPublisher{})

	_, err := service.GetTask(ctx, "u1", "missing")
	if err != entity.ErrTaskNotFound {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}

func TestUpdateTaskSuccess(t *testing.T) {
	ctx := context.Background()
	oldTask := &entity.Task{
		ID:        "task-1",
		OwnerID:   "u1",
		Title:     "Old Title",
		DueDate:   "2024-01-01",
		Status:    entity.StatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	var gotUpdates map[string]interface{}
	mockTaskRepo := &MockTaskRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.Task, error) {
			return oldTask, nil
		},
		UpdateFunc: func(ctx context.Context, id string, updates map[string]interface{}) (*entity.Task, error) {
			gotUpdates = updates
			updated := *oldTask
			updated.Status = entity.StatusCompleted
			return &updated, nil
		},
	}

	service := NewTaskService(mockTaskRepo, &MockTaskAuditRepository{}, &MockAuditPublisher{})

	status := entity.StatusCompleted
	req := &entity.UpdateTaskRequest{Status: &status}

	result, err := service.UpdateTask(ctx, "u1", "task-1", req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Status != entity.StatusCompleted {
		t.Errorf("Expected status completed, got %s", result.Status)
	}
	if result.Title != "Old Title" {
		t.Errorf("Expected title unchanged, got %s", result.Title)
	}
	if len(gotUpdates) != 1 {
		t.Errorf("Expected single updated field, got %v", gotUpdates)
	}
}

func TestUpdateTaskNoFields(t *testing.T) {
	ctx := context.Background()

	getCalled := false
	mockTaskRepo := &MockTaskRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.Task, error) {
			getCalled = true
			return nil, nil
		},
	}

	service := NewTaskService(mockTaskRepo, &MockTaskAuditRepository{}, &MockAuditPublisher{})

	_, err := service.UpdateTask(ctx, "u1", "task-1", &entity.UpdateTaskRequest{})
	if err != entity.ErrNoFieldsToUpdate {
		t.Errorf("Expected ErrNoFieldsToUpdate, got %v", err)
	}
	if getCalled {
		t.Error("Expected no storage calls on empty patch")
	}
}

func TestUpdateTaskClearDescription(t *testing.T) {
	ctx := context.Background()
	oldTask := &entity.Task{
		ID:          "task-1",
		OwnerID:     "u1",
		Title:       "Task",
		Description: strPtr("old note"),
		DueDate:     "2024-01-01",
		Status:      entity.StatusPending,
	}

	var gotUpdates map[string]interface{}
	mockTaskRepo := &MockTaskRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.Task, error) {
			return oldTask, nil
		},
		UpdateFunc: func(ctx context.Context, id string, updates map[string]interface{}) (*entity.Task, error) {
			gotUpdates = updates
			updated := *oldTask
			updated.Description = nil
			return &updated, nil
		},
	}

	service := NewTaskService(mockTaskRepo, &MockTaskAuditRepository{}, &MockAuditPublisher{})

	// description: null - явная очистка, не "поле не передано"
	req := &entity.UpdateTaskRequest{
		Description: entity.OptionalString{Set: true, Valid: false},
	}

	result, err := service.UpdateTask(ctx, "u1", "task-1", req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	value, ok := gotUpdates["description"]
	if !ok {
		t.Fatal("Expected description in updates")
	}
	if value != nil {
		t.Errorf("Expected nil description update, got %v", value)
	}
	if result.Description != nil {
		t.Errorf("Expected cleared description, got %v", *result.Description)
	}
}

func TestUpdateTaskEmptyTitle(t *testing.T) {
	ctx := context.Background()

	service := NewTaskService(&MockTaskRepository{}, &MockTaskAuditRepository{}, &MockAuditPublisher{})

	req := &entity.UpdateTaskRequest{Title: strPtr("  ")}
	_, err := service.UpdateTask(ctx, "u1", "task-1", req)
	if err != entity.ErrInvalidTaskData {
		t.Errorf("Expected ErrInvalidTaskData, got %v", err)
	}
}

func TestUpdateTaskForeignOwner(t *testing.T) {
	ctx := context.Background()

	mockTaskRepo := &MockTaskRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.Task, error) {
			return &entity.Task{ID: id, OwnerID: "u1"}, nil
		},
	}

	service := NewTaskService(mockTaskRepo, &MockTaskAuditRepository{}, &MockAuditPublisher{})

	req := &entity.UpdateTaskRequest{Title: strPtr("Hacked")}
	_, err := service.UpdateTask(ctx, "u2", "task-1", req)
	if err != entity.ErrTaskNotFound {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}

func TestDeleteTaskForeignOwner(t *testing.T) {
	ctx := context.Background()

	deleteCalled := false
	mockTaskRepo := &MockTaskRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.Task, error) {
			return &entity.Task{ID: id, OwnerID: "u1"}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) (bool, error) {
			deleteCalled = true
			return true, nil
		},
	}

	service := NewTaskService(mockTaskRepo, &MockTaskAuditRepository{}, &MockAuditPublisher{})

	err := service.DeleteTask(ctx, "u2", "task-1")
	if err != entity.ErrTaskNotFound {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
	if deleteCalled {
		t.Error("Expected no delete call for foreign owner")
	}
}

func TestDeleteTaskAlreadyGone(t *testing.T) {
	ctx := context.Background()

	// Задача уже удалена: повторный delete снова отдает not found
	service := NewTaskService(&MockTaskRepository{}, &MockTaskAuditRepository{}, &MockAuditPublisher{})

	err := service.DeleteTask(ctx, "u1", "task-1")
	if err != entity.ErrTaskNotFound {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}

func TestGetTaskAuditForeignOwner(t *testing.T) {
	ctx := context.Background()

	mockTaskRepo := &MockTaskRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*entity.Task, error) {
			return &entity.Task{ID: id, OwnerID: "u1"}, nil
		},
	}
	mockAuditRepo := &MockTaskAuditRepository{
		ListByEntityIDFunc: func(ctx context.Context, entityID string) ([]entity.TaskAudit, error) {
			t.Error("Expected no audit read for foreign owner")
			return nil, nil
		},
	}

	service := NewTaskService(mockTaskRepo, mockAuditRepo, &MockAuditPublisher{})

	_, err := service.GetTaskAudit(ctx, "u2", "task-1")
	if err != entity.ErrTaskNotFound {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}
