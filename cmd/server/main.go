package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"appointments/internal/api"
	"appointments/internal/auth"
	"appointments/internal/config"
	"appointments/internal/logger"
	"appointments/internal/repository"
	"appointments/internal/service"

	"github.com/gorilla/handlers"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zapLogger, err := logger.NewZapLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repo repository.BookingRepository
	switch cfg.Store.Driver {
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			zapLogger.Fatal("DATABASE_URL not set")
		}
		database, err := repository.OpenPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			zapLogger.Fatal("Failed to connect to DB", zap.Error(err))
		}
		defer database.Close()
		repo = repository.NewPostgresBookingRepository(database)
	default:
		repo = repository.NewCSVBookingRepository(cfg.Store.CSVFile)
	}
	if err := repo.Initialize(ctx); err != nil {
		zapLogger.Fatal("Failed to initialize booking store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}

	if cfg.Admin.JWTSecret == "" || cfg.Admin.PasswordHash == "" {
		zapLogger.Warn("JWT_SECRET or ADMIN_PASSWORD_HASH not set; admin endpoints will reject every login")
	}

	dispatcher := service.NewDispatcher(cfg.Mail, zapLogger)
	slotSvc := service.NewSlotService(repo, zapLogger)
	senderSvc := service.NewSenderService(dispatcher, zapLogger)
	bookingSvc := service.NewBookingService(repo, slotSvc, senderSvc, zapLogger)
	adminSvc := service.NewAdminService(bookingSvc, zapLogger)

	tokens := auth.NewTokenManager(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
	adminAuthSvc := service.NewAdminAuthService(
		repository.NewConfigAdminRepository(cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.PasswordHash),
		tokens,
		zapLogger,
	)

	jobSvc := service.NewJobService(bookingSvc, cfg.Retention.Days, zapLogger)
	jobSvc.Start(ctx, cfg.Retention.CronSpec)
	defer jobSvc.Stop()

	r := api.NewRouter(
		api.NewUserBookingHandler(slotSvc, bookingSvc),
		api.NewAdminHandler(adminSvc),
		api.NewAdminAuthHandler(adminAuthSvc),
		auth.AdminAuthMiddleware(tokens, zapLogger),
	)

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(zap.NewStdLog(zapLogger)))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           recovery(corsHandler(r)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("Server running", zap.String("port", cfg.Port), zap.String("store", cfg.Store.Driver), zap.String("mail", cfg.Mail.Provider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
