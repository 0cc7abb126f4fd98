package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taskhub/student-task-service/internal/api/middleware"
	"github.com/taskhub/student-task-service/internal/entity"
	"github.com/taskhub/student-task-service/internal/usecase"
)

type TaskHandler struct {
	taskService *usecase.TaskService
}

func NewTaskHandler(taskService *usecase.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// список задач вызывающего, новые сверху; опционально ?status=
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.CallerID(r.Context())
	status := r.URL.Query().Get("status")

	tasks, err := h.taskService.ListTasks(r.Context(), callerID, status)
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "Failed to fetch tasks")
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// создаем новую задачу, владелец - вызывающий
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	callerID := middleware.CallerID(r.Context())

	task, err := h.taskService.CreateTask(r.Context(), callerID, &req)
	if err != nil {
		switch err {
		case entity.ErrInvalidTaskData:
			respondMessage(w, http.StatusBadRequest, "Title, due date, and status are required")
		default:
			respondMessage(w, http.StatusInternalServerError, "Failed to create task")
		}
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	callerID := middleware.CallerID(r.Context())

	task, err := h.taskService.GetTask(r.Context(), callerID, taskID)
	if err != nil {
		switch err {
		case entity.ErrTaskNotFound:
			respondMessage(w, http.StatusNotFound, "Task not found")
		default:
			respondMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")

	var req entity.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	callerID := middleware.CallerID(r.Context())

	task, err := h.taskService.UpdateTask(r.Context(), callerID, taskID, &req)
	if err != nil {
		switch err {
		case entity.ErrNoFieldsToUpdate:
			respondMessage(w, http.StatusBadRequest, "No fields provided for update")
		case entity.ErrInvalidTaskData:
			respondMessage(w, http.StatusBadRequest, "Invalid task data")
		case entity.ErrTaskNotFound:
			respondMessage(w, http.StatusNotFound, "Task not found")
		default:
			respondMessage(w, http.StatusInternalServerError, "Failed to update task")
		}
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	callerID := middleware.CallerID(r.Context())

	err := h.taskService.DeleteTask(r.Context(), callerID, taskID)
	if err != nil {
		switch err {
		case entity.ErrTaskNotFound:
			respondMessage(w, http.StatusNotFound, "Task not found")
		default:
			respondMessage(w, http.StatusInternalServerError, "Failed to delete task")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Task deleted successfully",
		"id":      taskID,
	})
}

// история изменений задачи (только для владельца)
func (h *TaskHandler) GetTaskAudit(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	callerID := middleware.CallerID(r.Context())

	audits, err := h.taskService.GetTaskAudit(r.Context(), callerID, taskID)
	if err != nil {
		switch err {
		case entity.ErrTaskNotFound:
			respondMessage(w, http.StatusNotFound, "Task not found")
		default:
			respondMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	respondJSON(w, http.StatusOK, audits)
}
