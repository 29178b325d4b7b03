package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	v1 "github.com/anudeep227/personal-health-manager/gen/proto/health/v1"
	"github.com/anudeep227/personal-health-manager/internal/analysis"
	"github.com/anudeep227/personal-health-manager/internal/async"
	"github.com/anudeep227/personal-health-manager/internal/classify"
	"github.com/anudeep227/personal-health-manager/internal/common"
	"github.com/anudeep227/personal-health-manager/internal/export"
	"github.com/anudeep227/personal-health-manager/internal/extract"
	"github.com/anudeep227/personal-health-manager/internal/fields"
	"github.com/anudeep227/personal-health-manager/internal/ingest"
	"github.com/anudeep227/personal-health-manager/internal/reminders"
	repo "github.com/anudeep227/personal-health-manager/internal/repository"
	svc "github.com/anudeep227/personal-health-manager/internal/server"
	"github.com/anudeep227/personal-health-manager/internal/summarize"
	"github.com/anudeep227/personal-health-manager/internal/summarize/openai"
)

func main() {
	// Setup structured logger that outputs messages with variables but no time/level
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove time and level attributes, keep message and other variables
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load() // ignore error if .env doesn't exist

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.HasPrefix(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	entc, pool, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err, "db_url", cfg.Database.DSN)
		os.Exit(1)
	}
	defer repo.Close(entc, pool, logger)

	// Ping DB to ensure connectivity
	if err := repo.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := repo.Migrate(ctx, entc); err != nil {
		logger.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}

	usersRepo := repo.NewUserRepository(entc, logger)
	medsRepo := repo.NewMedicationRepository(entc, logger)
	apptsRepo := repo.NewAppointmentRepository(entc, logger)
	recordsRepo := repo.NewHealthRecordRepository(entc, logger)
	analysesRepo := repo.NewAnalysisRepository(entc, logger)
	settingsRepo := repo.NewSettingsRepository(entc, logger)

	if err := settingsRepo.InitializeDefaults(ctx); err != nil {
		logger.Error("failed to seed default settings", "error", err)
		os.Exit(1)
	}

	// Document pipeline
	extractor := extract.NewExtractor(extract.Config{
		Tesseract:     cfg.OCR.Tesseract,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, logger)

	// The remote summarizer is optional: without a key every document takes
	// the rule-based path.
	var remote summarize.Summarizer
	if cfg.LLM.APIKey != "" {
		remote = openai.NewClient(openai.Config{
			Model:       cfg.LLM.Model,
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Timeout:     cfg.LLM.Timeout,
			Temperature: cfg.LLM.Temperature,
		}, logger)
	} else {
		logger.Info("OPENAI_API_KEY not set, summaries use the rule-based fallback")
	}
	summarizer := summarize.NewService(summarize.ServiceConfig{}, remote, logger)

	analyzer := analysis.NewAnalyzer(analysis.Config{MaxFileSize: cfg.Pipeline.MaxFileSize},
		extractor,
		classify.NewClassifier(logger),
		fields.NewExtractor(logger),
		summarizer,
		logger,
	)
	processor := analysis.NewProcessor(analyzer, analysesRepo, logger)

	queue := async.NewProcessorQueue(processor, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
		async.WithProcessTimeout(cfg.Pipeline.PerDocumentBudget),
	)

	ingestor := ingest.NewFSIngestor(usersRepo, analysesRepo, logger)
	ingestSvc := ingest.NewService(ingestor, usersRepo, queue, logger)
	exportSvc := export.NewService(medsRepo, recordsRepo, analysesRepo, logger)

	// gRPC server
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()

	v1.RegisterUsersServiceServer(grpcServer, svc.NewUsersServer(usersRepo, logger))
	v1.RegisterMedicationsServiceServer(grpcServer, svc.NewMedicationsServer(medsRepo, usersRepo, logger))
	v1.RegisterAppointmentsServiceServer(grpcServer, svc.NewAppointmentsServer(apptsRepo, usersRepo, logger))
	v1.RegisterRecordsServiceServer(grpcServer, svc.NewRecordsServer(recordsRepo, usersRepo, logger))
	v1.RegisterAnalysisServiceServer(grpcServer, svc.NewAnalysisServer(ingestor, processor, analysesRepo, logger))
	v1.RegisterIngestionServiceServer(grpcServer, svc.NewIngestionServer(ingestSvc, logger))
	v1.RegisterExportServiceServer(grpcServer, svc.NewExportServer(exportSvc, logger))

	// Register gRPC health service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	// Set the service as serving (empty string means overall server health)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(grpcServer)

	// Reminder sweeps
	scheduler := reminders.NewScheduler(reminders.Config{
		Spec: cfg.Reminders.CronSpec,
	}, medsRepo, apptsRepo, settingsRepo, nil, logger)
	if cfg.Reminders.Enabled {
		if err := scheduler.Start(); err != nil {
			logger.Error("failed to start reminder scheduler", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("reminder scheduler disabled")
	}

	// Inbox watcher, optional
	if cfg.Ingest.InboxDir != "" && cfg.Ingest.WatchInbox {
		if cfg.Ingest.InboxUser == "" {
			logger.Error("INBOX_DIR set but INBOX_USER_ID missing")
			os.Exit(1)
		}
		err := ingestSvc.Watch(ctx, cfg.Ingest.InboxUser, ingest.WatchConfig{
			Roots:       []string{cfg.Ingest.InboxDir},
			InitialScan: cfg.Ingest.InitialScan,
			Debounce:    cfg.Ingest.Debounce,
		})
		if err != nil {
			logger.Error("failed to start inbox watcher", "dir", cfg.Ingest.InboxDir, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("healthd listening", "addr", addr)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	scheduler.Stop(shutdownCtx)
	queue.Shutdown(shutdownCtx)
	grpcServer.GracefulStop()
}
