package entity

import (
	"encoding/json"
	"time"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// Task - единственная сущность сервиса. ID и OwnerID - непрозрачные строки,
// JSON-имена совпадают с исходным API (camelCase).
type Task struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     string     `json:"dueDate"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     string     `json:"dueDate"`
	Status      TaskStatus `json:"status"`
}

// OptionalString - поле патча с тремя состояниями: не передано / null / значение.
// UnmarshalJSON вызывается только когда ключ присутствует в JSON.
type OptionalString struct {
	Set   bool
	Valid bool
	Value string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// UpdateTaskRequest - частичное обновление. nil значит "поле не передано".
// Description через OptionalString: можно явно очистить (null), а можно не трогать.
type UpdateTaskRequest struct {
	Title       *string        `json:"title"`
	Description OptionalString `json:"description"`
	DueDate     *string        `json:"dueDate"`
	Status      *TaskStatus    `json:"status"`
}
