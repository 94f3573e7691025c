package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/St1cky1/command-center/internal/api"
	grpcapi "github.com/St1cky1/command-center/internal/api/grpc"
	"github.com/St1cky1/command-center/internal/board"
	"github.com/St1cky1/command-center/internal/config"
	"github.com/St1cky1/command-center/internal/infrastructure/ai"
	"github.com/St1cky1/command-center/internal/infrastructure/auth"
	"github.com/St1cky1/command-center/internal/infrastructure/client"
	"github.com/St1cky1/command-center/internal/infrastructure/mail"
	"github.com/St1cky1/command-center/internal/infrastructure/storage"
	"github.com/St1cky1/command-center/internal/infrastructure/tracing"
	"github.com/St1cky1/command-center/internal/repository"
	"github.com/St1cky1/command-center/internal/usecase"
	"github.com/St1cky1/command-center/internal/worker"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run REST API, gRPC server, gateway and background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if !skipMigrations {
				if err := runMigrations(cfg, log); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations on start")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	variant, ok := board.ParseVariant(cfg.BoardVariant)
	if !ok {
		return fmt.Errorf("unknown board variant %q", cfg.BoardVariant)
	}

	if cfg.TracingEnabled {
		shutdownTracing := tracing.Setup("command-center", log)
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdownTracing(flushCtx); err != nil {
				log.WithError(err).Warn("failed to flush spans")
			}
		}()
	}

	// Подключаемся к БД
	pg, err := client.NewPostgresClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer pg.Close()
	log.Info("✅ connected to postgres")

	// Redis кэширует списки задач
	rdb, err := client.NewRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info("✅ connected to redis")

	rabbitMQ, err := client.NewRabbitMQClient(cfg.RabbitMQURL(), cfg.AuditQueue, log)
	if err != nil {
		return err
	}
	defer rabbitMQ.Close()
	log.Info("✅ connected to rabbitmq")

	store, err := storage.OpenBucketStore(ctx, cfg.StorageURL)
	if err != nil {
		return err
	}
	defer store.Close()

	titles, err := ai.NewTitleGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.TitleModel)
	if err != nil {
		return err
	}
	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY is not set, voice tasks will fail")
	}
	if cfg.ResendAPIKey == "" {
		log.Warn("RESEND_API_KEY is not set, reports will be saved without email")
	}

	// Репозитории
	userRepo := repository.NewUserRepository(pg.Pool)
	refreshTokenRepo := repository.NewRefreshTokenRepository(pg.Pool)
	taskRepo := repository.NewCachedTaskRepository(repository.NewTaskRepository(pg.Pool), rdb, cfg.TasksCacheTTL)
	taskAuditRepo := repository.NewTaskAuditRepository(pg.Pool)
	attachmentRepo := repository.NewAttachmentRepository(pg.Pool)
	reportRepo := repository.NewReportRepository(pg.Pool)
	referenceRepo := repository.NewReferenceRepository(pg.Pool)

	// Сервисы
	validate := usecase.NewValidator()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	authService := usecase.NewAuthService(userRepo, refreshTokenRepo, auth.NewPasswordManager(), jwtManager, validate, log)
	boardService := usecase.NewBoardService(taskRepo, rabbitMQ, variant, validate, log)
	attachmentService := usecase.NewAttachmentService(attachmentRepo, store, log)
	services := api.Services{
		Auth:        authService,
		Users:       usecase.NewUserService(userRepo, refreshTokenRepo, validate),
		Board:       boardService,
		Attachments: attachmentService,
		Reports:     usecase.NewReportService(reportRepo, userRepo, mail.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom), validate, log),
		References:  usecase.NewReferenceService(referenceRepo, attachmentRepo, validate),
		Voice:       usecase.NewVoiceService(ai.NewTranscriber(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.TranscriptionModel), titles, boardService, log),
		History:     usecase.NewHistoryService(boardService, taskAuditRepo),
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 3)

	// Воркеры
	auditWorker := worker.NewAuditWorker(cfg.RabbitMQURL(), cfg.AuditQueue, taskAuditRepo, log)
	cleanupWorker := worker.NewTokenCleanupWorker(refreshTokenRepo, cfg.TokenCleanupInterval, log)
	wg.Add(2)
	go func() {
		defer wg.Done()
		auditWorker.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleanupWorker.Start(ctx)
	}()

	// gRPC
	grpcServer := grpcapi.NewGRPCServer(boardService, attachmentService, authService, log)
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.WithField("port", cfg.GRPCPort).Info("starting gRPC server")
		if err := grpcServer.Start(cfg.GRPCPort); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	gateway, err := grpcapi.NewGatewayHandler(ctx, "localhost:"+cfg.GRPCPort)
	if err != nil {
		return err
	}
	gatewayServer := &http.Server{
		Addr:              ":" + cfg.GatewayPort,
		Handler:           gateway,
		ReadHeaderTimeout: 10 * time.Second,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(services, log, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	for _, srv := range []*http.Server{httpServer, gatewayServer} {
		wg.Add(1)
		go func(srv *http.Server) {
			defer wg.Done()
			log.WithField("addr", srv.Addr).Info("starting http server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	log.WithField("variant", variant).Info("✅ command center is ready")

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down...")
	case serveErr = <-errCh:
		log.WithError(serveErr).Error("server failed, shutting down")
	}

	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	for _, srv := range []*http.Server{httpServer, gatewayServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("http shutdown")
		}
	}
	grpcServer.Stop()

	waitWorkers(&wg)
	// ждем отправку аудита перед закрытием RabbitMQ
	boardService.Wait()

	log.Info("✅ stopped")
	return serveErr
}

func waitWorkers(wg *sync.WaitGroup) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
	}
}
