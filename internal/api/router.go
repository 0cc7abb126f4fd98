package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/taskhub/student-task-service/internal/api/handlers"
	"github.com/taskhub/student-task-service/internal/api/middleware"
	"github.com/taskhub/student-task-service/internal/usecase"
)

// HealthChecker - проверка готовности хранилища для /health
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

func NewRouter(
	taskService *usecase.TaskService,
	authService *usecase.AuthService,
	verifier middleware.TokenVerifier,
	health HealthChecker,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	taskHandler := handlers.NewTaskHandler(taskService)
	authHandler := handlers.NewAuthHandler(authService)
	calcHandler := handlers.NewCalcHandler()

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			if err := health.HealthCheck(req.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	// Без БД нет пользователей: в in-memory режиме /auth не монтируется
	if authService != nil {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})
	}

	r.Route("/tasks", func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier))
		r.Get("/", taskHandler.ListTasks)
		r.Post("/", taskHandler.CreateTask)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", taskHandler.GetTask)
			r.Put("/", taskHandler.UpdateTask)
			r.Delete("/", taskHandler.DeleteTask)
			r.Get("/audit", taskHandler.GetTaskAudit)
		})
	})

	r.Route("/calc", func(r chi.Router) {
		r.Get("/add", calcHandler.Add)
		r.Get("/subtract", calcHandler.Subtract)
		r.Get("/multiply", calcHandler.Multiply)
		r.Get("/divide", calcHandler.Divide)
		r.Get("/exponent", calcHandler.Exponent)
		r.Get("/sqrt", calcHandler.Sqrt)
		r.Get("/modulus", calcHandler.Modulus)
	})

	return r
}
