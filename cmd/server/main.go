package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/taskhub/student-task-service/internal/api"
	apimw "github.com/taskhub/student-task-service/internal/api/middleware"
	"github.com/taskhub/student-task-service/internal/infrastructure/auth"
	"github.com/taskhub/student-task-service/internal/infrastructure/client"
	"github.com/taskhub/student-task-service/internal/repository"
	"github.com/taskhub/student-task-service/internal/usecase"
	"github.com/taskhub/student-task-service/internal/worker"
)

func main() {
	var wg sync.WaitGroup

	var (
		taskRepo      repository.ITaskRepository
		taskAuditRepo repository.ITaskAuditRepository
		authService   *usecase.AuthService
		health        api.HealthChecker
	)

	jwtManager := auth.NewJWTManager()

	// Без DB_HOST работаем на in-memory хранилище: задачи живут до рестарта,
	// миграции не нужны, /auth и аудит недоступны
	if os.Getenv("DB_HOST") == "" {
		log.Println("⚠️  DB_HOST не задан, задачи хранятся в памяти (/auth и аудит отключены)")
		taskRepo = repository.NewMemoryTaskRepository()
	} else {
		dbCfg := client.Config{
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
			SSLMode:  "disable",
		}

		// Запускаем миграции
		if err := runMigrations(dbCfg.URL()); err != nil {
			log.Fatal("❌ Ошибка миграций:", err)
		}

		// Подключаемся к БД
		pg, err := client.NewPostgresClient(dbCfg)
		if err != nil {
			log.Fatal("❌ Ошибка подключения к БД:", err)
		}
		defer pg.Close()
		fmt.Println("✅ Подключение к БД установлено")

		taskRepo = repository.NewTaskRepository(pg.Pool)
		taskAuditRepo = repository.NewTaskAuditRepository(pg.Pool)
		userRepo := repository.NewUserRepository(pg.Pool)
		refreshTokenRepo := repository.NewRefreshTokenRepository(pg.Pool)
		authService = usecase.NewAuthService(userRepo, refreshTokenRepo, auth.NewPasswordManager(), jwtManager)
		health = pg
	}

	// RabbitMQ опционален: без него сервис работает, но аудит не пишется.
	// Без БД аудит-логу некуда писать, поэтому включаем только вместе с ней.
	var publisher usecase.AuditPublisher
	var rabbitMQ *client.RabbitMQClient
	if taskAuditRepo != nil && os.Getenv("RABBITMQ_HOST") != "" {
		rabbitMQURL := fmt.Sprintf("amqp://%s:%s@%s:%s/",
			os.Getenv("RABBITMQ_USER"),
			os.Getenv("RABBITMQ_PASSWORD"),
			os.Getenv("RABBITMQ_HOST"),
			os.Getenv("RABBITMQ_PORT"))
		rmq, err := client.NewRabbitMQClient(rabbitMQURL)
		if err != nil {
			log.Fatal("❌ Ошибка подключения к RabbitMQ:", err)
		}
		defer rmq.Close()
		rabbitMQ = rmq
		publisher = rmq
		fmt.Println("✅ Подключение к RabbitMQ установлено")
	} else {
		log.Println("⚠️  RABBITMQ_HOST не задан, аудит-лог отключен")
	}

	// Инициализируем сервис задач
	taskService := usecase.NewTaskService(taskRepo, taskAuditRepo, publisher)

	// Проверка личности: внешний identity-провайдер через JWKS
	// или собственные HS256-токены
	var verifier apimw.TokenVerifier = jwtManager
	if jwksURL := os.Getenv("AUTH_JWKS_URL"); jwksURL != "" {
		jwksVerifier, err := auth.NewJWKSVerifier(jwksURL, os.Getenv("AUTH_AUDIENCE"), os.Getenv("AUTH_ISSUER"))
		if err != nil {
			log.Fatal("❌ Ошибка загрузки JWKS:", err)
		}
		defer jwksVerifier.Close()
		verifier = jwksVerifier
		fmt.Println("✅ Проверка токенов через JWKS:", jwksURL)
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	// Запускаем воркер для обработки аудит-сообщений
	if rabbitMQ != nil {
		auditWorker := worker.NewAuditWorker(rabbitMQ, taskAuditRepo)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Println("Запуск Audit Worker...")
			auditWorker.Start(workerCtx)
		}()
	}

	// HTTP сервер
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	router := api.NewRouter(taskService, authService, verifier, health)
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		fmt.Println("✅ HTTP сервер запущен на порту " + port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ HTTP server error: %v", err)
		}
	}()

	fmt.Println(" Task API: http://localhost:" + port + "/tasks")
	fmt.Println("Для остановки нажмите Ctrl+C")

	// Ждем сигнал завершения
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("Завершение работы...")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Ошибка остановки сервера: %v", err)
	}

	wg.Wait()
	fmt.Println("✅ Приложение завершено корректно")
}

func runMigrations(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return fmt.Errorf("ошибка создания мигратора: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	}

	fmt.Println("✅ Миграции выполнены успешно")
	return nil
}
