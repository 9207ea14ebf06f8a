package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"accounts-web-server/config"
	_ "accounts-web-server/docs"
	"accounts-web-server/internal/handler"
	"accounts-web-server/internal/repository"
	"accounts-web-server/internal/security"
	"accounts-web-server/internal/service"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Accounts-web-server
// @version 1.0
// @description REST API для регистрации, аутентификации и управления пользователями

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	if err := db.RunMigrations(ctx); err != nil {
		log.Fatalf("Ошибка применения миграций: %v", err)
	}

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	srv, router := config.SetupServer(cfg.ServerAddr)

	userRepo := repository.NewUserRepository(db)
	jwtRepo := repository.NewJWTRepository(db)
	revocationCache := repository.NewRevocationCacheRepository(redisClient)

	s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
	if err != nil {
		log.Fatalf("Ошибка создания S3 сервиса: %v", err)
	}

	jwtService := security.NewJWTService(&cfg.JWT)
	hasher := security.NewPasswordHasher(&cfg.Password)

	authService := service.NewAuthenticationService(jwtRepo, revocationCache, cfg, jwtService, userRepo, hasher)
	userService := service.NewUserService(userRepo, jwtRepo, s3Service, hasher, &cfg.Avatar)

	authHandler := handler.NewAuthenticationHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/health", healthHandler.Health)

	setupAuthRoutes(router, authHandler, jwtService, jwtRepo, revocationCache)
	setupUserRoutes(router, userHandler, jwtService, jwtRepo, revocationCache)

	go runSessionJanitor(ctx, jwtRepo, cfg.Janitor.Interval)

	runServer(ctx, srv)
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, jwtService *security.JWTService, sessions security.SessionStore, revoked security.RevocationChecker) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.RefreshToken)
			r.Post("/logout", h.Logout)
		})
		r.Group(func(r chi.Router) {
			r.Use(security.JWTMiddleware(jwtService, sessions, revoked))
			r.Get("/me", h.GetCurrentUsersUUID)
			r.Head("/me", h.GetCurrentUsersUUIDHead)
		})
	})
}

func setupUserRoutes(r chi.Router, h *handler.UserHandler, jwtService *security.JWTService, sessions security.SessionStore, revoked security.RevocationChecker) {
	r.Route("/api/users", func(r chi.Router) {
		r.Use(security.JWTMiddleware(jwtService, sessions, revoked))

		r.Get("/", h.ListUsers)
		r.Head("/", h.ListUsersHead)

		r.Route("/{uuid}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Head("/", h.GetUserHead)
			r.Put("/", h.UpdateUser)
			r.Delete("/", h.DeleteUser)
			r.Put("/password", h.UpdatePassword)
			r.Get("/avatar", h.AvatarDownloadURL)
			r.Put("/avatar", h.AvatarUploadURL)
		})
	})
}

// runSessionJanitor периодически удаляет записи реестра refresh-токенов,
// пережившие естественный срок действия
func runSessionJanitor(ctx context.Context, jwtRepo *repository.JWTRepository, interval string) {
	duration, err := time.ParseDuration(interval)
	if err != nil || duration <= 0 {
		duration = time.Hour
	}

	ticker := time.NewTicker(duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := jwtRepo.DeleteExpired(ctx)
			if err != nil {
				log.Printf("ошибка очистки просроченных токенов: %v", err)
				continue
			}
			if deleted > 0 {
				log.Printf("удалено просроченных refresh токенов: %d", deleted)
			}
		}
	}
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
