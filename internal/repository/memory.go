package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taskhub/student-task-service/internal/entity"
)

// MemoryTaskRepository - in-memory замена глобального массива из исходника.
// Используется в тестах и при локальном запуске без Postgres.
// Семантика совпадает с TaskRepository: те же ключи updates, то же поведение
// "последняя запись побеждает" при конкурентных обновлениях.
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*memoryTask
	seq   int64
}

type memoryTask struct {
	task entity.Task
	seq  int64 // порядок вставки, разруливает равные created_at
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		tasks: make(map[string]*memoryTask),
	}
}

// cloneTask - копия без общих указателей: мутация результата
// не должна доставать до хранимой записи
func cloneTask(t entity.Task) entity.Task {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	return t
}

func (r *MemoryTaskRepository) Create(ctx context.Context, task *entity.Task) (*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	stored := cloneTask(*task)
	r.tasks[stored.ID] = &memoryTask{task: stored, seq: r.seq}

	out := cloneTask(stored)
	return &out, nil
}

func (r *MemoryTaskRepository) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	out := cloneTask(stored.task)
	return &out, nil
}

func (r *MemoryTaskRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}

	for field, value := range updates {
		switch field {
		case "title":
			stored.task.Title = value.(string)
		case "description":
			if value == nil {
				stored.task.Description = nil
			} else {
				d := value.(string)
				stored.task.Description = &d
			}
		case "due_date":
			stored.task.DueDate = value.(string)
		case "status":
			stored.task.Status = value.(entity.TaskStatus)
		}
	}
	stored.task.UpdatedAt = time.Now().UTC()

	out := cloneTask(stored.task)
	return &out, nil
}

func (r *MemoryTaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return false, nil
	}
	delete(r.tasks, id)
	return true, nil
}

func (r *MemoryTaskRepository) List(ctx context.Context, ownerID string, status string) ([]entity.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*memoryTask, 0)
	for _, stored := range r.tasks {
		if stored.task.OwnerID != ownerID {
			continue
		}
		if status != "" && string(stored.task.Status) != status {
			continue
		}
		matched = append(matched, stored)
	}

	// created_at по убыванию, при равенстве - порядок вставки
	sort.Slice(matched, func(i, j int) bool {
		ti, tj := matched[i].task.CreatedAt, matched[j].task.CreatedAt
		if ti.Equal(tj) {
			return matched[i].seq < matched[j].seq
		}
		return ti.After(tj)
	})

	tasks := make([]entity.Task, 0, len(matched))
	for _, stored := range matched {
		tasks = append(tasks, cloneTask(stored.task))
	}
	return tasks, nil
}
